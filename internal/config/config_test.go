// file: internal/config/config_test.go
// version: 1.2.0
// guid: 6d4b8f2e-0a95-4c31-87de-b3f1c6a0e529

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetConfig(t *testing.T) {
	t.Helper()
	prev := AppConfig
	t.Cleanup(func() {
		AppConfig = prev
		viper.Reset()
	})
	viper.Reset()
}

func TestInitConfigDefaults(t *testing.T) {
	resetConfig(t)

	InitConfig()

	assert.NotEmpty(t, AppConfig.DataDir)
	assert.Equal(t, filepath.Join(AppConfig.DataDir, "grimorium.db"), AppConfig.DatabasePath)
	assert.Equal(t, "gallery", AppConfig.GalleryDir)
	assert.Equal(t, "maps", AppConfig.MapsDir)
}

func TestInitConfigExplicitValues(t *testing.T) {
	resetConfig(t)

	dir := t.TempDir()
	viper.Set("data_dir", dir)
	viper.Set("database_path", filepath.Join(dir, "custom.db"))

	InitConfig()

	assert.Equal(t, dir, AppConfig.DataDir)
	assert.Equal(t, filepath.Join(dir, "custom.db"), AppConfig.DatabasePath)
}

func TestConfigFileRoundTrip(t *testing.T) {
	resetConfig(t)

	dir := t.TempDir()
	AppConfig = Config{
		DataDir:      dir,
		DatabasePath: filepath.Join(dir, "grimorium.db"),
		GalleryDir:   "gallery",
		MapsDir:      "maps",
	}
	require.NoError(t, SaveConfigToFile())

	// Mutate, then reload from disk.
	AppConfig.GalleryDir = "changed"
	require.NoError(t, LoadConfigFromFile())
	assert.Equal(t, "gallery", AppConfig.GalleryDir)
}

func TestLoadConfigFromFileMissing(t *testing.T) {
	resetConfig(t)

	AppConfig = Config{DataDir: t.TempDir()}
	assert.NoError(t, LoadConfigFromFile())
}

func TestLoadConfigFromFileMalformed(t *testing.T) {
	resetConfig(t)

	dir := t.TempDir()
	AppConfig = Config{DataDir: dir, GalleryDir: "gallery"}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("{not yaml:::"), 0o644))

	// A malformed file is ignored, never fatal.
	assert.NoError(t, LoadConfigFromFile())
	assert.Equal(t, "gallery", AppConfig.GalleryDir)
}
