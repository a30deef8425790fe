// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Hireline Contributors

// Package config loads service configuration from defaults, an optional
// YAML file, command-line flags and the environment, in that order of
// increasing precedence. Secrets are read from the environment only.
package config

import (
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/hireline/hireline/internal/auth"
	"github.com/hireline/hireline/internal/logging"
)

// Environment variables holding secrets.
const (
	EnvDatabaseURL   = "DATABASE_URL"
	EnvSessionSecret = "HIRELINE_SESSION_SECRET"
)

// Defaults.
const (
	DefaultHTTPAddr         = ":3000"
	DefaultMetricsAddr      = "127.0.0.1:9100"
	DefaultLogFormat        = "json"
	DefaultLogLevel         = "info"
	DefaultCORSOrigin       = "https://localhost:5173"
	DefaultDBConnectTimeout = 30 * time.Second
)

// Config is the resolved service configuration.
type Config struct {
	HTTPAddr         string        `koanf:"http_addr"`
	MetricsAddr      string        `koanf:"metrics_addr"`
	LogFormat        string        `koanf:"log_format"`
	LogLevel         string        `koanf:"log_level"`
	CORSOrigin       string        `koanf:"cors_origin"`
	CookieSecure     bool          `koanf:"cookie_secure"`
	AutoMigrate      bool          `koanf:"auto_migrate"`
	DBConnectTimeout time.Duration `koanf:"db_connect_timeout"`

	DatabaseURL   string `koanf:"-"`
	SessionSecret []byte `koanf:"-"`
}

// RegisterFlags adds the service flags, with their defaults, to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("http-addr", DefaultHTTPAddr, "HTTP API listen address")
	fs.String("metrics-addr", DefaultMetricsAddr, "metrics/health HTTP address (empty = disabled)")
	fs.String("log-format", DefaultLogFormat, "log format (json or text)")
	fs.String("log-level", DefaultLogLevel, "log level (debug, info, warn, error)")
	fs.String("cors-origin", DefaultCORSOrigin, "browser origin allowed to call the API with credentials (empty = no CORS)")
	fs.Bool("cookie-secure", true, "mark the session cookie Secure")
	fs.Bool("auto-migrate", false, "apply pending migrations on startup")
	fs.Duration("db-connect-timeout", DefaultDBConnectTimeout, "how long to retry the initial database connection")
}

// Load resolves the configuration. path may be empty. getenv is usually
// os.Getenv.
func Load(path string, fs *pflag.FlagSet, getenv func(string) string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").
				With("operation", "read config file").
				With("path", path).
				Wrap(err)
		}
	}

	// Unchanged flags only fill keys the file left unset.
	flags := posflag.ProviderWithFlag(fs, ".", k, func(f *pflag.Flag) (string, any) {
		return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(fs, f)
	})
	if err := k.Load(flags, nil); err != nil {
		return nil, oops.Code("CONFIG_LOAD_FAILED").With("operation", "read flags").Wrap(err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, oops.Code("CONFIG_LOAD_FAILED").With("operation", "decode config").Wrap(err)
	}

	cfg.DatabaseURL = getenv(EnvDatabaseURL)
	if secret := getenv(EnvSessionSecret); secret != "" {
		cfg.SessionSecret = []byte(secret)
	}
	return &cfg, nil
}

// Validate checks the non-secret settings.
func (c *Config) Validate() error {
	if c.HTTPAddr == "" {
		return oops.Code("CONFIG_INVALID").With("key", "http_addr").Errorf("http_addr is required")
	}
	if c.LogFormat != "json" && c.LogFormat != "text" {
		return oops.Code("CONFIG_INVALID").
			With("key", "log_format").
			Errorf("log_format must be 'json' or 'text', got %q", c.LogFormat)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return oops.Code("CONFIG_INVALID").With("key", "log_level").Errorf("log_level %q is not a level", c.LogLevel)
	}
	if c.DBConnectTimeout <= 0 {
		return oops.Code("CONFIG_INVALID").With("key", "db_connect_timeout").Errorf("db_connect_timeout must be positive")
	}
	return nil
}

// RequireDatabase checks that DATABASE_URL is set.
func (c *Config) RequireDatabase() error {
	if c.DatabaseURL == "" {
		return oops.Code("CONFIG_INVALID").With("key", EnvDatabaseURL).Errorf("%s is required", EnvDatabaseURL)
	}
	return nil
}

// RequireSessionSecret checks that the signing secret is present and long
// enough for HS256.
func (c *Config) RequireSessionSecret() error {
	if len(c.SessionSecret) == 0 {
		return oops.Code("CONFIG_INVALID").With("key", EnvSessionSecret).Errorf("%s is required", EnvSessionSecret)
	}
	if len(c.SessionSecret) < auth.MinSecretLength {
		return oops.Code("CONFIG_INVALID").
			With("key", EnvSessionSecret).
			Errorf("%s must be at least %d bytes", EnvSessionSecret, auth.MinSecretLength)
	}
	return nil
}
