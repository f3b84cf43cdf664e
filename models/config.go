package models

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ConvertConfig holds runtime configuration for convert operations.
// Values come from CLI flags, optionally seeded from a YAML config file.
type ConvertConfig struct {
	URLs        []string `yaml:"urls"`
	WorkerCount int      `yaml:"workers"`
	OutputDir   string   `yaml:"output_dir"`
}

// LoadConfig reads a YAML config file. A missing file is not an error;
// callers get an empty config and rely on flag defaults.
func LoadConfig(path string) (*ConvertConfig, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &ConvertConfig{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	config := &ConvertConfig{}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}
