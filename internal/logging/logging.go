// Package logging builds the arbor logger shared by every component.
package logging

import (
	"os"
	"path/filepath"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/arbor/models"

	"docqa/internal/config"
)

const timeFormat = "15:04:05"

// New returns a console logger at the configured level, with a file writer
// added when cfg.File is set.
func New(cfg config.LogConfig) (arbor.ILogger, error) {
	logger := arbor.NewLogger().WithConsoleWriter(models.WriterConfiguration{
		Type:             models.LogWriterTypeConsole,
		TimeFormat:       timeFormat,
		OutputType:       models.OutputFormatLogfmt,
		DisableTimestamp: false,
	})

	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
			return nil, err
		}
		logger = logger.WithFileWriter(models.WriterConfiguration{
			Type:       models.LogWriterTypeFile,
			FileName:   cfg.File,
			TimeFormat: timeFormat,
			MaxSize:    10 * 1024 * 1024,
			MaxBackups: 3,
			OutputType: models.OutputFormatLogfmt,
		})
	}

	level := cfg.Level
	if level == "" {
		level = "info"
	}
	return logger.WithLevelFromString(level), nil
}
