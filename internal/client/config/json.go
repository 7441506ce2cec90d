package config

import (
	"encoding/json"
	"os"

	"github.com/ajudae/go-client/internal/flagx"
	"github.com/ajudae/go-client/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It relies on
// timex.Duration so the timeout can be written either as a string like
// "30s" or as integer nanoseconds.
type JsonConfig struct {
	APIBaseURL     string         `json:"api_base_url"`
	RequestTimeout timex.Duration `json:"request_timeout"`
	VaultDSN       string         `json:"vault_dsn"`
	KeyPath        string         `json:"key_path"`
}

// parseJson overlays Config with values loaded from a JSON file. The file
// path comes from the -c/-config flags; with neither present nothing is
// loaded. Read or unmarshal errors panic, since a config file that was
// explicitly pointed at but cannot be used is a startup defect.
//
// Only fields actually present in the JSON override the current values.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.APIBaseURL != "" {
		cfg.APIBaseURL = jc.APIBaseURL
	}
	if jc.RequestTimeout.Duration != 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.VaultDSN != "" {
		cfg.VaultDSN = jc.VaultDSN
	}
	if jc.KeyPath != "" {
		cfg.KeyPath = jc.KeyPath
	}
}
