// Package config provides configuration loading and validation for donosd.
//
// Configuration is loaded with the following priority (highest to lowest):
//  1. Environment variables (DONOS_* prefix)
//  2. YAML config file (if specified with --config)
//  3. Hardcoded defaults
//
// Command-line flags only select the config file path (see
// cmd/donosd/main.go); they do not override individual settings.
//
// Environment variables are mapped from DONOS_CATEGORY_SETTING format,
// e.g., DONOS_DNS_HOST maps to dns.host in YAML.
//
// All configuration is validated during Load() to ensure correctness early.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// initConfig sets up the config loader with defaults, env binding, and config file.
func initConfig(configPath string) (*viper.Viper, error) {
	v := viper.New()

	setDefaults(v)

	// Uses DONOS_ prefix: DONOS_DNS_HOST -> dns.host
	v.SetEnvPrefix("DONOS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return v, nil
}

// setDefaults configures all default values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("dns.host", "0.0.0.0")
	v.SetDefault("dns.port", 53)

	v.SetDefault("cache.size", 1000)

	v.SetDefault("lookup.address", "0.0.0.0:43210")
	v.SetDefault("lookup.servers", []string{"1.1.1.1", "1.0.0.1"})

	v.SetDefault("database.path", "donosd.db")

	v.SetDefault("blocklists.sources", []BlocklistSourceConfig{})
	v.SetDefault("blocklists.refresh_interval", "24h")

	v.SetDefault("api.enabled", false)
	v.SetDefault("api.host", "127.0.0.1")
	v.SetDefault("api.port", 8080)

	v.SetDefault("logging.level", "INFO")
	v.SetDefault("logging.structured", true)
}

// loadFromSource loads configuration from file and environment.
func loadFromSource(configPath string) (*Config, error) {
	v, err := initConfig(configPath)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}

	loadDNSConfig(v, cfg)
	loadCacheConfig(v, cfg)
	loadLookupConfig(v, cfg)
	loadDatabaseConfig(v, cfg)
	loadBlocklistsConfig(v, cfg)
	loadAPIConfig(v, cfg)
	loadLoggingConfig(v, cfg)

	if err := normalizeConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func loadDNSConfig(v *viper.Viper, cfg *Config) {
	cfg.DNS.Host = v.GetString("dns.host")
	cfg.DNS.Port = v.GetInt("dns.port")
}

func loadCacheConfig(v *viper.Viper, cfg *Config) {
	cfg.Cache.Size = v.GetInt("cache.size")
}

func loadLookupConfig(v *viper.Viper, cfg *Config) {
	cfg.Lookup.Address = v.GetString("lookup.address")
	cfg.Lookup.Servers = getStringSliceOrSplit(v, "lookup.servers")
}

func loadDatabaseConfig(v *viper.Viper, cfg *Config) {
	cfg.Database.Path = v.GetString("database.path")
}

func loadBlocklistsConfig(v *viper.Viper, cfg *Config) {
	if err := v.UnmarshalKey("blocklists.sources", &cfg.Blocklists.Sources); err != nil {
		cfg.Blocklists.Sources = nil
	}
	cfg.Blocklists.RefreshInterval = v.GetString("blocklists.refresh_interval")

	// A single source URL supplied over the environment, since env vars
	// cannot express the sources slice's structure.
	if url := v.GetString("blocklists.url"); url != "" {
		cfg.Blocklists.Sources = append(cfg.Blocklists.Sources, BlocklistSourceConfig{
			Name: "env-blocklist",
			URL:  url,
		})
	}
}

func loadAPIConfig(v *viper.Viper, cfg *Config) {
	cfg.API.Enabled = v.GetBool("api.enabled")
	cfg.API.Host = v.GetString("api.host")
	cfg.API.Port = v.GetInt("api.port")
}

func loadLoggingConfig(v *viper.Viper, cfg *Config) {
	cfg.Logging.Level = strings.ToUpper(v.GetString("logging.level"))
	cfg.Logging.Structured = v.GetBool("logging.structured")
}

// getStringSliceOrSplit handles both slice and comma-separated string values.
func getStringSliceOrSplit(v *viper.Viper, key string) []string {
	if slice := v.GetStringSlice(key); len(slice) > 0 {
		result := make([]string, 0, len(slice))
		for _, s := range slice {
			for _, p := range strings.Split(s, ",") {
				p = strings.TrimSpace(p)
				if p != "" {
					result = append(result, p)
				}
			}
		}
		return result
	}
	if s := v.GetString(key); s != "" {
		parts := strings.Split(s, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				result = append(result, p)
			}
		}
		return result
	}
	return nil
}

// normalizeConfig validates and fills in any remaining defaults.
func normalizeConfig(cfg *Config) error {
	if cfg.DNS.Port <= 0 || cfg.DNS.Port > 65535 {
		return errors.New("dns.port must be 1..65535")
	}

	if cfg.Cache.Size <= 0 {
		cfg.Cache.Size = 1000
	}

	if len(cfg.Lookup.Servers) == 0 {
		cfg.Lookup.Servers = []string{"1.1.1.1", "1.0.0.1"}
	}
	if cfg.Lookup.Address == "" {
		cfg.Lookup.Address = "0.0.0.0:43210"
	}

	if cfg.Database.Path == "" {
		cfg.Database.Path = "donosd.db"
	}

	if cfg.Blocklists.RefreshInterval == "" {
		cfg.Blocklists.RefreshInterval = "24h"
	}

	if cfg.API.Host == "" {
		cfg.API.Host = "127.0.0.1"
	}
	if cfg.API.Enabled {
		if cfg.API.Port <= 0 || cfg.API.Port > 65535 {
			return errors.New("api.port must be 1..65535")
		}
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "INFO"
	}

	return nil
}
