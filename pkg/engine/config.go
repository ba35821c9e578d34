package engine

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	berrors "github.com/goliatone/go-boiler/pkg/errors"
)

// Config is the file form of the engine options. Unset pointer fields keep
// the constructor's defaults.
type Config struct {
	Autoescape     *bool          `json:"autoescape,omitempty" yaml:"autoescape,omitempty"`
	Extension      string         `json:"extension,omitempty" yaml:"extension,omitempty"`
	MaxLayoutDepth int            `json:"max_layout_depth,omitempty" yaml:"max_layout_depth,omitempty"`
	Cache          *bool          `json:"cache,omitempty" yaml:"cache,omitempty"`
	Dirs           []DirConfig    `json:"dirs" yaml:"dirs"`
	Defaults       map[string]any `json:"defaults,omitempty" yaml:"defaults,omitempty"`
}

// DirConfig is one template root.
type DirConfig struct {
	Namespace string `json:"namespace,omitempty" yaml:"namespace,omitempty"`
	Path      string `json:"path" yaml:"path"`
}

// LoadConfig reads a JSON or YAML configuration file. Relative directories
// are resolved against the file's own directory.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("engine: read config %s: %w", path, err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return Config{}, fmt.Errorf("engine: %s: %w", path, err)
	}
	base := filepath.Dir(path)
	for i, dir := range cfg.Dirs {
		if dir.Path != "" && !filepath.IsAbs(dir.Path) {
			cfg.Dirs[i].Path = filepath.Join(base, dir.Path)
		}
	}
	return cfg, nil
}

// ParseConfig decodes JSON first and falls back to YAML.
func ParseConfig(data []byte) (Config, error) {
	var cfg Config
	if len(bytes.TrimSpace(data)) == 0 {
		return cfg, nil
	}
	jsonErr := json.Unmarshal(data, &cfg)
	if jsonErr != nil {
		cfg = Config{}
		if yamlErr := yaml.Unmarshal(data, &cfg); yamlErr != nil {
			return Config{}, berrors.Configurationf("config", "decode config: %v", yamlErr)
		}
	}
	for i, dir := range cfg.Dirs {
		if dir.Path == "" {
			return Config{}, berrors.Configurationf("dirs", "dirs[%d]: path is required", i)
		}
	}
	return cfg, nil
}
