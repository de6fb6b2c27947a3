package main

import (
	"encoding/json"
	"os"
)

// FileConfig holds the settings that can be loaded from a JSON config file.
// Flags take precedence over the file.
type FileConfig struct {
	BaseURL string `json:"base_url"`
}

// LoadConfig reads a benchmark config from a JSON file
func LoadConfig(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg FileConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SaveConfig writes a benchmark config to a JSON file
func SaveConfig(path string, cfg *FileConfig) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
