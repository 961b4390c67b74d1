package config

import (
	"strings"
	"time"
)

const apiPrefix = "/api"

// Config holds runtime settings for the botadmin CLI.
//
// Fields:
//   - BaseURL: origin of the backend, without the /api prefix.
//   - RequestTimeout: upper bound for one HTTP exchange.
//   - RefreshTimeout: upper bound for the shared session refresh call.
//   - StatePath: SQLite file that keeps the session between runs.
//   - UploadBatchSize: documents uploaded concurrently per batch.
//   - LogLevel: debug, info, warn or error.
type Config struct {
	BaseURL         string
	RequestTimeout  time.Duration
	RefreshTimeout  time.Duration
	StatePath       string
	UploadBatchSize int
	LogLevel        string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.BaseURL = "http://localhost:8000"
	c.RequestTimeout = 30 * time.Second
	c.RefreshTimeout = 10 * time.Second
	c.StatePath = "state/session.db"
	c.UploadBatchSize = 10
	c.LogLevel = "info"
}

// APIBaseURL is the root every API path is resolved against.
func (c *Config) APIBaseURL() string {
	base := strings.TrimRight(c.BaseURL, "/")
	if strings.HasSuffix(base, apiPrefix) {
		return base
	}
	return base + apiPrefix
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// a config file, the environment and command-line flags. Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseFile(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
