// file: internal/config/persistence.go
// version: 1.4.0
// guid: 3f7b0d5c-9a2e-4861-b4f0-6e1d8c3a5972

package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ConfigFilePath returns the path to the YAML config file inside the
// data directory.
func ConfigFilePath() string {
	if AppConfig.DataDir == "" {
		return ""
	}
	return filepath.Join(AppConfig.DataDir, "config.yaml")
}

// fileConfig is the on-disk shape of the optional config file. Every
// field is optional; missing values keep their defaults.
type fileConfig struct {
	DataDir      string `yaml:"data_dir,omitempty"`
	DatabasePath string `yaml:"database_path,omitempty"`
	GalleryDir   string `yaml:"gallery_dir,omitempty"`
	MapsDir      string `yaml:"maps_dir,omitempty"`
}

// LoadConfigFromFile overlays settings from the YAML config file onto
// the current configuration. A missing file is fine; a malformed one is
// logged and ignored so a bad edit cannot brick the application.
func LoadConfigFromFile() error {
	path := ConfigFilePath()
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		log.Printf("Warning: Failed to parse config file %s: %v", path, err)
		return nil
	}

	if fc.DataDir != "" {
		AppConfig.DataDir = fc.DataDir
		if fc.DatabasePath == "" {
			AppConfig.DatabasePath = filepath.Join(fc.DataDir, "grimorium.db")
		}
	}
	if fc.DatabasePath != "" {
		AppConfig.DatabasePath = fc.DatabasePath
	}
	if fc.GalleryDir != "" {
		AppConfig.GalleryDir = fc.GalleryDir
	}
	if fc.MapsDir != "" {
		AppConfig.MapsDir = fc.MapsDir
	}
	return nil
}

// SaveConfigToFile writes the current configuration to the YAML config
// file.
func SaveConfigToFile() error {
	path := ConfigFilePath()
	if path == "" {
		return fmt.Errorf("no data directory configured")
	}

	fc := fileConfig{
		DataDir:      AppConfig.DataDir,
		DatabasePath: AppConfig.DatabasePath,
		GalleryDir:   AppConfig.GalleryDir,
		MapsDir:      AppConfig.MapsDir,
	}
	data, err := yaml.Marshal(fc)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
