package utilities

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("LOG_DEV", "1")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("LOG_FILE", "")
	t.Setenv("LOG_FILE_MAX_AGE", "bogus")
	t.Setenv("LOG_FILE_ROTATION", "1h")

	cfg := ConfigFromEnv()
	assert.True(t, cfg.Dev)
	assert.Equal(t, "debug", cfg.Level)
	assert.Equal(t, "168h0m0s", cfg.FileMaxAge.String())
	assert.Equal(t, "1h0m0s", cfg.FileRotation.String())
}

func TestLevelFromString(t *testing.T) {
	for in, want := range map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"nope":    zapcore.InfoLevel,
	} {
		assert.Equal(t, want, levelFromString(in), in)
	}
}

func TestInitWithFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dashboard.log")
	lg, err := Init(Config{Level: "info", File: path})
	require.NoError(t, err)
	lg.Info("hello")
	_ = lg.Sync()
}

func TestSnowflakeFallsBackToKSUID(t *testing.T) {
	// node ids above 1023 are rejected by snowflake
	id := NewSnowflakeIDWithNode(5000)
	assert.Len(t, id, 27)

	t.Setenv("SNOWFLAKE_NODE", "3")
	assert.NotEmpty(t, NewSnapshotID())
}
