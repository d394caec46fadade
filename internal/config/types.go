// Package config loads donosd's configuration from a YAML file with
// automatic environment variable binding.
//
// Environment variables use the DONOS_ prefix and underscore-separated
// keys:
//   - DONOS_DNS_HOST -> dns.host
//   - DONOS_DNS_PORT -> dns.port
//   - DONOS_LOOKUP_SERVERS -> lookup.servers (comma-separated)
//   - DONOS_API_ENABLED -> api.enabled
package config

import (
	"os"
	"strings"
)

// DNSConfig contains the listener settings for the UDP resolver.
type DNSConfig struct {
	Host string `yaml:"host" mapstructure:"host"`
	Port int    `yaml:"port" mapstructure:"port"`
}

// CacheConfig contains the answer cache settings.
type CacheConfig struct {
	Size int `yaml:"size" mapstructure:"size"`
}

// LookupConfig contains the upstream resolver settings.
type LookupConfig struct {
	Address string   `yaml:"address" mapstructure:"address"`
	Servers []string `yaml:"servers" mapstructure:"servers"`
}

// DatabaseConfig contains the blocklist persistence settings.
type DatabaseConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// BlocklistSourceConfig defines a single remote blocklist to fetch and
// sync into the database.
type BlocklistSourceConfig struct {
	Name string `yaml:"name" mapstructure:"name"`
	URL  string `yaml:"url"  mapstructure:"url"`
}

// BlocklistsConfig lists the hostname-filtering blocklist sources and a
// refresh interval. RefreshInterval is loaded and defaulted but no
// component reads it.
type BlocklistsConfig struct {
	Sources         []BlocklistSourceConfig `yaml:"sources"          mapstructure:"sources"`
	RefreshInterval string                  `yaml:"refresh_interval" mapstructure:"refresh_interval"`
}

// APIConfig contains the optional management HTTP API settings.
//
// Disabled by default and bound to localhost, a safety-first default for
// an administrative surface.
type APIConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Host    string `yaml:"host"    mapstructure:"host"`
	Port    int    `yaml:"port"    mapstructure:"port"`
}

// LoggingConfig contains structured-logging settings, carried as ambient
// stack regardless of which features are in scope.
type LoggingConfig struct {
	Level      string `yaml:"level"      mapstructure:"level"`
	Structured bool   `yaml:"structured" mapstructure:"structured"`
}

// Config is the root configuration structure.
type Config struct {
	DNS        DNSConfig        `yaml:"dns"        mapstructure:"dns"`
	Cache      CacheConfig      `yaml:"cache"      mapstructure:"cache"`
	Lookup     LookupConfig     `yaml:"lookup"     mapstructure:"lookup"`
	Database   DatabaseConfig   `yaml:"database"   mapstructure:"database"`
	Blocklists BlocklistsConfig `yaml:"blocklists" mapstructure:"blocklists"`
	API        APIConfig        `yaml:"api"        mapstructure:"api"`
	Logging    LoggingConfig    `yaml:"logging"    mapstructure:"logging"`
}

// ResolveConfigPath determines the config file path from a flag value or
// the DONOS_CONFIG environment variable.
func ResolveConfigPath(flagValue string) string {
	if strings.TrimSpace(flagValue) != "" {
		return flagValue
	}
	if v := strings.TrimSpace(os.Getenv("DONOS_CONFIG")); v != "" {
		return v
	}
	return ""
}

// Load loads configuration from a YAML file with environment variable
// overrides. This is the main entry point for loading configuration.
//
// Configuration priority (highest to lowest):
//  1. Environment variables (DONOS_*)
//  2. Config file values
//  3. Default values
func Load(path string) (*Config, error) {
	return loadFromSource(path)
}
