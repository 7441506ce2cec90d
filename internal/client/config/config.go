package config

import "time"

// Config holds runtime settings for the Ajudaê client.
//
// Fields:
//   - APIBaseURL: base URL of the backend REST API.
//   - RequestTimeout: upper bound on one request exchange, including a
//     token refresh and retry.
//   - VaultDSN: sqlite DSN of the local credential vault.
//   - KeyPath: path of the device key file sealing the vault.
type Config struct {
	APIBaseURL     string
	RequestTimeout time.Duration
	VaultDSN       string
	KeyPath        string
}

// LoadDefaults populates c with sensible defaults for local development.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://localhost:3000"
	c.RequestTimeout = 30 * time.Second
	c.VaultDSN = "ajudae.db"
	c.KeyPath = "ajudae.key"
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from the environment (including a .env file if present), a JSON file
// (if given), and command-line flags. Later sources take precedence.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
