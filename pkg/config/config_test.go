package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	App    App    `mapstructure:"app"`
	Logger Logger `mapstructure:"logger"`
	API    API    `mapstructure:"api"`
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "app:\n  name: chart-analyzer\nlogger:\n  level: debug\n  encoding: console\napi:\n  port: 9090\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	var cfg testConfig
	require.NoError(t, Load(path, &cfg, map[string]interface{}{"api.port": 8080}))

	assert.Equal(t, "chart-analyzer", cfg.App.Name)
	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, 9090, cfg.API.Port)
}

func TestLoadFallsBackToDefaultsAndEnv(t *testing.T) {
	t.Setenv("LOGGER_LEVEL", "warn")

	var cfg testConfig
	err := Load(filepath.Join(t.TempDir(), "missing.yaml"), &cfg, map[string]interface{}{
		"api.port":     8080,
		"logger.level": "info",
	})
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.API.Port)
	assert.Equal(t, "warn", cfg.Logger.Level)
}
