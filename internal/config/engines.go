package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/enginesniff/enginesniff/internal/types"
)

var (
	ErrEmptyName       = errors.New("engine name is empty")
	ErrDuplicateEngine = errors.New("duplicate engine name")
	ErrReservedName    = errors.New("engine name is reserved")
	ErrNoEngines       = errors.New("no engines defined")
)

// Format selects the engine-set document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

//go:embed engines.json
var defaultEnginesJSON []byte

// DefaultEngines returns the built-in engine signature set.
func DefaultEngines() []types.EngineConfig {
	cfgs, err := ParseEngines(defaultEnginesJSON, FormatJSON)
	if err != nil {
		panic(fmt.Sprintf("built-in engines.json is invalid: %v", err))
	}
	return cfgs
}

// FormatForPath picks a format from the file extension. Anything that is not
// .yml/.yaml is treated as JSON.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// LoadEngines reads and validates an engine set from path. Any failure is
// returned; there is no fallback to an empty set.
func LoadEngines(path string) ([]types.EngineConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read engines %s: %w", path, err)
	}
	cfgs, err := ParseEngines(b, FormatForPath(path))
	if err != nil {
		return nil, fmt.Errorf("load engines %s: %w", path, err)
	}
	return cfgs, nil
}

// ParseEngines decodes and validates an engine set document. A document
// that defines no engines (empty, comments only, null or []) is an error.
func ParseEngines(data []byte, format Format) ([]types.EngineConfig, error) {
	var cfgs []types.EngineConfig
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &cfgs); err != nil {
			return nil, err
		}
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&cfgs); err != nil {
			return nil, err
		}
	}
	if len(cfgs) == 0 {
		return nil, ErrNoEngines
	}
	if err := Validate(cfgs); err != nil {
		return nil, err
	}
	return cfgs, nil
}

// Validate checks engine names. Signature records are validated while
// decoding.
func Validate(cfgs []types.EngineConfig) error {
	seen := make(map[string]int, len(cfgs))
	for i, c := range cfgs {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return fmt.Errorf("engine %d: %w", i, ErrEmptyName)
		}
		if strings.EqualFold(name, types.Unknown) {
			return fmt.Errorf("engine %d: %w: %q", i, ErrReservedName, c.Name)
		}
		if j, ok := seen[c.Name]; ok {
			return fmt.Errorf("engine %d: %w: %q (first declared at %d)", i, ErrDuplicateEngine, c.Name, j)
		}
		seen[c.Name] = i
		for k, s := range c.Signatures {
			if s.Kind == nil {
				return fmt.Errorf("engine %q signature %d: missing type", c.Name, k)
			}
		}
	}
	return nil
}
