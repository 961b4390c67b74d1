package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/dmitrijs2005/botadmin/internal/flagx"
	"github.com/dmitrijs2005/botadmin/internal/timex"
)

// FileConfig is the on-disk shape of the configuration. Durations use
// timex.Duration so they may be written as "3s"; JSON also accepts
// integer nanoseconds.
type FileConfig struct {
	BaseURL         string         `json:"base_url" toml:"base_url"`
	RequestTimeout  timex.Duration `json:"request_timeout" toml:"request_timeout"`
	RefreshTimeout  timex.Duration `json:"refresh_timeout" toml:"refresh_timeout"`
	StatePath       string         `json:"state_path" toml:"state_path"`
	UploadBatchSize int            `json:"upload_batch_size" toml:"upload_batch_size"`
	LogLevel        string         `json:"log_level" toml:"log_level"`
}

// parseFile overlays cfg with the file named by -c or -config. The format
// follows the extension: .toml is TOML, anything else is JSON. Only fields
// present in the file are applied. Panics on read or decode errors.
func parseFile(cfg *Config) {
	path := flagx.ConfigFileFlag()
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var fc FileConfig
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		err = toml.Unmarshal(data, &fc)
	} else {
		err = json.Unmarshal(data, &fc)
	}
	if err != nil {
		panic(fmt.Errorf("decode %s: %w", path, err))
	}

	fc.apply(cfg)
}

func (fc *FileConfig) apply(cfg *Config) {
	if fc.BaseURL != "" {
		cfg.BaseURL = fc.BaseURL
	}
	if fc.RequestTimeout.Duration > 0 {
		cfg.RequestTimeout = fc.RequestTimeout.Duration
	}
	if fc.RefreshTimeout.Duration > 0 {
		cfg.RefreshTimeout = fc.RefreshTimeout.Duration
	}
	if fc.StatePath != "" {
		cfg.StatePath = fc.StatePath
	}
	if fc.UploadBatchSize > 0 {
		cfg.UploadBatchSize = fc.UploadBatchSize
	}
	if fc.LogLevel != "" {
		cfg.LogLevel = fc.LogLevel
	}
}
