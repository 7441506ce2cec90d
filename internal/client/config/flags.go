package config

import (
	"flag"
	"os"
	"time"

	"github.com/ajudae/go-client/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags:
//
//	-a string   base URL of the backend API
//	-t int      request timeout in seconds
//	-d string   sqlite DSN of the credential vault
//	-k string   path of the device key file
//
// os.Args is filtered with flagx.FilterArgs so flags owned by other
// components do not interfere.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-t", "-d", "-k"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.APIBaseURL, "a", cfg.APIBaseURL, "base URL of the backend API")
	timeoutSec := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	fs.StringVar(&cfg.VaultDSN, "d", cfg.VaultDSN, "sqlite DSN of the credential vault")
	fs.StringVar(&cfg.KeyPath, "k", cfg.KeyPath, "path of the device key file")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.RequestTimeout = time.Duration(*timeoutSec) * time.Second
}
