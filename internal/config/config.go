package config

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileConfig is the on-disk YAML configuration shape for enginesniff.
type FileConfig struct {
	Engines         *string  `yaml:"engines,omitempty"`
	Include         *string  `yaml:"include,omitempty"`
	Exclude         *string  `yaml:"exclude,omitempty"`
	DefaultExcludes *bool    `yaml:"default_excludes,omitempty"`
	MaxEntries      *int     `yaml:"max_entries,omitempty"`
	MinConfidence   *float64 `yaml:"min_confidence,omitempty"`
	NoColor         *bool    `yaml:"no_color,omitempty"`
	Cache           *bool    `yaml:"cache,omitempty"`
	Audit           *bool    `yaml:"audit,omitempty"`

	Server *ServerConfig `yaml:"server,omitempty"`
}

// ServerConfig holds settings for the HTTP identification service.
type ServerConfig struct {
	// Addr is the listen address, e.g. ":3000".
	Addr *string `yaml:"addr,omitempty"`

	// MaxBodyBytes caps the size of an /identify request body.
	MaxBodyBytes *int64 `yaml:"max_body_bytes,omitempty"`
}

const (
	DefaultAddr         = ":3000"
	DefaultMaxBodyBytes = 8 << 20
)

// LoadFile reads a YAML config file from the provided path.
func LoadFile(path string) (FileConfig, error) {
	var cfg FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// LoadLocal searches for a config file in the given root.
// It supports .enginesniff.yml/.yaml and enginesniff.yml/.yaml.
func LoadLocal(root string) (FileConfig, error) {
	var cfg FileConfig
	for _, name := range []string{".enginesniff.yml", ".enginesniff.yaml", "enginesniff.yml", "enginesniff.yaml"} {
		p := filepath.Join(root, name)
		if _, err := os.Stat(p); err == nil {
			return LoadFile(p)
		}
	}
	return cfg, fmt.Errorf("no local config: %w", fs.ErrNotExist)
}

// LoadGlobal loads the global config file from XDG base directory or ~/.config.
func LoadGlobal() (FileConfig, error) {
	var cfg FileConfig
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, _ := os.UserHomeDir()
		if home != "" {
			base = filepath.Join(home, ".config")
		}
	}
	if base == "" {
		return cfg, fmt.Errorf("no config dir: %w", fs.ErrNotExist)
	}
	p := filepath.Join(base, "enginesniff", "config.yml")
	if _, err := os.Stat(p); err == nil {
		return LoadFile(p)
	}
	return cfg, fmt.Errorf("no global config: %w", fs.ErrNotExist)
}

// GetServerConfig returns the server configuration with defaults applied.
func (fc FileConfig) GetServerConfig() ServerConfig {
	var sc ServerConfig
	if fc.Server != nil {
		sc = *fc.Server
	}
	if sc.Addr == nil || *sc.Addr == "" {
		addr := DefaultAddr
		sc.Addr = &addr
	}
	if sc.MaxBodyBytes == nil || *sc.MaxBodyBytes <= 0 {
		n := int64(DefaultMaxBodyBytes)
		sc.MaxBodyBytes = &n
	}
	return sc
}

// GetAddr returns the listen address or the default.
func (sc ServerConfig) GetAddr() string {
	if sc.Addr == nil || *sc.Addr == "" {
		return DefaultAddr
	}
	return *sc.Addr
}

// GetMaxBodyBytes returns the request body cap or the default.
func (sc ServerConfig) GetMaxBodyBytes() int64 {
	if sc.MaxBodyBytes == nil || *sc.MaxBodyBytes <= 0 {
		return DefaultMaxBodyBytes
	}
	return *sc.MaxBodyBytes
}
