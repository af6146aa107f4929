package logging

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docqa/internal/config"
)

func TestNew_Console(t *testing.T) {
	logger, err := New(config.LogConfig{Level: "debug"})
	require.NoError(t, err)
	require.NotNil(t, logger)
	logger.Debug().Str("component", "test").Msg("console logger ready")
}

func TestNew_FileWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "docqa.log")
	logger, err := New(config.LogConfig{Level: "info", File: path})
	require.NoError(t, err)
	logger.Info().Msg("file logger ready")
	assert.DirExists(t, filepath.Dir(path))
}
