package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// parseEnv overlays Config with environment variables. A .env file in the
// working directory is loaded first (missing file is fine, and real
// environment variables are not overridden by it).
//
// Recognized variables:
//
//	AJUDAE_API_URL  base URL of the backend
//	AJUDAE_TIMEOUT  request timeout as a Go duration ("30s")
//	AJUDAE_VAULT    sqlite DSN of the credential vault
//	AJUDAE_KEY      path of the device key file
func parseEnv(cfg *Config) {
	_ = godotenv.Load()

	if v := os.Getenv("AJUDAE_API_URL"); v != "" {
		cfg.APIBaseURL = v
	}
	if v := os.Getenv("AJUDAE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.RequestTimeout = d
		}
	}
	if v := os.Getenv("AJUDAE_VAULT"); v != "" {
		cfg.VaultDSN = v
	}
	if v := os.Getenv("AJUDAE_KEY"); v != "" {
		cfg.KeyPath = v
	}
}
