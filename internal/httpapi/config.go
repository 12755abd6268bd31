package httpapi

import (
	"errors"
	"os"
)

// Config controls the HTTP server.
type Config struct {
	Addr string
	// JWTSecret verifies HS256 bearer tokens.
	JWTSecret string
	// Release switches gin to release mode.
	Release bool
}

// DefaultConfig listens on :3000.
func DefaultConfig() Config {
	return Config{Addr: ":3000"}
}

// ConfigFromEnv reads LEARNPATH_HTTP_ADDR, LEARNPATH_JWT_SECRET and
// LEARNPATH_LOG_MODE over the defaults.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	if v := os.Getenv("LEARNPATH_HTTP_ADDR"); v != "" {
		cfg.Addr = v
	}
	cfg.JWTSecret = os.Getenv("LEARNPATH_JWT_SECRET")
	cfg.Release = os.Getenv("LEARNPATH_LOG_MODE") == "production"
	return cfg
}

// Validate checks that the server can authenticate requests.
func (c Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("LEARNPATH_JWT_SECRET is required to serve the API")
	}
	return nil
}
