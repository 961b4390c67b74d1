// Package config loads runtime configuration for the botadmin CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional config file selected with -c or -config. Files ending in
//     .toml are read as TOML, everything else as JSON.
//  3. The API_BASE_URL environment variable.
//  4. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-a string   backend origin
//	-t int      request timeout (seconds)
//	-d string   session state database path
//
// # File schema
//
//	{
//	  "base_url": "https://bots.example.com",
//	  "request_timeout": "30s",
//	  "refresh_timeout": "10s",
//	  "state_path": "state/session.db",
//	  "upload_batch_size": 10,
//	  "log_level": "info"
//	}
//
// The same keys are used in TOML. Durations are strings like "3s"; JSON
// files may also give integer nanoseconds.
package config
