// Package config loads server and client settings from defaults, an
// optional YAML file, QUESTS_* environment variables and command flags,
// in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "QUESTS"

type Config struct {
	Port         string `mapstructure:"port"`
	DBPath       string `mapstructure:"db_path"`
	LogLevel     string `mapstructure:"log_level"`
	LogFormat    string `mapstructure:"log_format"`
	Env          string `mapstructure:"env"`
	Version      string `mapstructure:"version"`
	Secret       string `mapstructure:"secret"`
	SecureCookie bool   `mapstructure:"secure_cookie"`
	RedisURL     string `mapstructure:"redis_url"`
	WriteLimit   int    `mapstructure:"write_limit"`
	// BaseURL is where the terminal client finds the server.
	BaseURL string `mapstructure:"base_url"`
}

func defaults(v *viper.Viper) {
	v.SetDefault("port", "3000")
	v.SetDefault("db_path", "quests.db")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("env", "development")
	v.SetDefault("version", "dev")
	v.SetDefault("secret", "")
	v.SetDefault("secure_cookie", false)
	v.SetDefault("redis_url", "")
	v.SetDefault("write_limit", 120)
	v.SetDefault("base_url", "http://localhost:3000")
}

// Load reads configuration. path may be empty; flags may be nil. Flags
// bind by name with dashes mapped to underscores, and only override when
// set on the command line.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	defaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	// REDIS_URL is the conventional name; the prefixed one wins.
	if err := v.BindEnv("redis_url", envPrefix+"_REDIS_URL", "REDIS_URL"); err != nil {
		return nil, fmt.Errorf("bind redis env: %w", err)
	}

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	if flags != nil {
		var bindErr error
		flags.VisitAll(func(f *pflag.Flag) {
			key := strings.ReplaceAll(f.Name, "-", "_")
			if !isKnown(v, key) {
				return
			}
			if err := v.BindPFlag(key, f); err != nil && bindErr == nil {
				bindErr = err
			}
		})
		if bindErr != nil {
			return nil, fmt.Errorf("bind flags: %w", bindErr)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func isKnown(v *viper.Viper, key string) bool {
	for _, k := range v.AllKeys() {
		if k == key {
			return true
		}
	}
	return false
}

var validLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	var errs []error
	if c.Port == "" {
		errs = append(errs, errors.New("port is required"))
	}
	if c.DBPath == "" {
		errs = append(errs, errors.New("db_path is required"))
	}
	if !validLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Errorf("log_level %q must be one of debug, info, warn, error", c.LogLevel))
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		errs = append(errs, fmt.Errorf("log_format %q must be text or json", c.LogFormat))
	}
	if c.WriteLimit < 0 {
		errs = append(errs, errors.New("write_limit must not be negative"))
	}
	if c.Env == "production" && c.Secret == "" {
		errs = append(errs, errors.New("secret is required in production"))
	}
	return errors.Join(errs...)
}
