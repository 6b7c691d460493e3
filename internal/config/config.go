// file: internal/config/config.go
// version: 1.3.0
// guid: 8c2f5a1d-4e97-40b3-b6d8-f09c1e7a2354

package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	// DataDir is the root of all persistent state: the database file
	// plus the asset subdirectories (covers, portraits, emblems,
	// gallery, maps).
	DataDir      string
	DatabasePath string
	GalleryDir   string
	MapsDir      string
}

var AppConfig Config

// InitConfig initializes the application configuration
func InitConfig() {
	viper.SetDefault("data_dir", defaultDataDir())

	dataDir := viper.GetString("data_dir")

	AppConfig = Config{
		DataDir:      dataDir,
		DatabasePath: viper.GetString("database_path"),
		GalleryDir:   viper.GetString("gallery_dir"),
		MapsDir:      viper.GetString("maps_dir"),
	}

	if AppConfig.DatabasePath == "" {
		AppConfig.DatabasePath = filepath.Join(dataDir, "grimorium.db")
	}
	if AppConfig.GalleryDir == "" {
		AppConfig.GalleryDir = "gallery"
	}
	if AppConfig.MapsDir == "" {
		AppConfig.MapsDir = "maps"
	}
}

// defaultDataDir picks the per-user application data directory.
func defaultDataDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		home, err := os.UserHomeDir()
		if err != nil {
			return "."
		}
		base = home
	}
	return filepath.Join(base, "grimorium")
}
