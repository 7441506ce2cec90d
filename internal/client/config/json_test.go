package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseJsonOverlaysPresentFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"api_base_url": "http://json:5000",
		"request_timeout": "12s"
	}`), 0o600))

	withArgs(t, "-c", path)

	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)

	require.Equal(t, "http://json:5000", cfg.APIBaseURL)
	require.Equal(t, 12*time.Second, cfg.RequestTimeout)
	// untouched fields keep their defaults
	require.Equal(t, "ajudae.db", cfg.VaultDSN)
}

func TestParseJsonNoFileFlagIsNoop(t *testing.T) {
	withArgs(t)

	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)

	require.Equal(t, "http://localhost:3000", cfg.APIBaseURL)
}

func TestParseJsonPanicsOnUnreadableFile(t *testing.T) {
	withArgs(t, "-c", filepath.Join(t.TempDir(), "missing.json"))

	cfg := &Config{}
	cfg.LoadDefaults()
	require.Panics(t, func() { parseJson(cfg) })
}
