package config

import (
	"os"
	"strings"
)

// BaseURLEnv is the deploy-time variable naming the backend origin.
const BaseURLEnv = "API_BASE_URL"

func parseEnv(cfg *Config) {
	if v, ok := os.LookupEnv(BaseURLEnv); ok && strings.TrimSpace(v) != "" {
		cfg.BaseURL = strings.TrimSpace(v)
	}
}
