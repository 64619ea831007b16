package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// DefaultFiles are tried in order by Load when no path is given.
var DefaultFiles = []string{"flowchart.yaml", "flowchart.yml", "flowchart.json"}

// Load reads path, or the first of DefaultFiles that exists when path is
// empty. With no path and no default file it returns an empty Config.
func Load(path string) (Config, error) {
	if path != "" {
		return FromFile(path)
	}
	for _, name := range DefaultFiles {
		if _, err := os.Stat(name); err == nil {
			return FromFile(name)
		} else if !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("stat config file: %w", err)
		}
	}
	return New(nil), nil
}

// decoders maps file extensions to their parsers.
var decoders = map[string]func([]byte) (Config, error){
	".yaml": FromYAML,
	".yml":  FromYAML,
	".json": FromJSON,
}

// FromFile reads a .yaml, .yml or .json file.
func FromFile(path string) (Config, error) {
	ext := strings.ToLower(filepath.Ext(path))
	decode, ok := decoders[ext]
	if !ok {
		return Config{}, fmt.Errorf("config %s: unsupported extension %q", path, ext)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}
	cfg, err := decode(raw)
	if err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// FromYAML decodes a YAML document. An empty document is an empty Config.
func FromYAML(raw []byte) (Config, error) {
	return decodeMap(raw, yaml.Unmarshal, "yaml")
}

// FromJSON decodes a JSON object.
func FromJSON(raw []byte) (Config, error) {
	return decodeMap(raw, json.Unmarshal, "json")
}

func decodeMap(raw []byte, unmarshal func([]byte, any) error, format string) (Config, error) {
	var data map[string]any
	if err := unmarshal(raw, &data); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", format, err)
	}
	return New(data), nil
}
