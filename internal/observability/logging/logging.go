package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/emberforge-labs/asset-ledger/internal/config"
)

// Init configures the global zerolog logger. File output, when enabled,
// rotates through lumberjack so long-running nodes do not fill the disk.
func Init(cfg *config.LoggingConfig) {
	writers := []io.Writer{os.Stderr}
	if cfg.File != "" {
		writers = append(writers, &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMb,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
		})
	}

	log.Logger = zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(cfg.ParsedLevel()).
		With().
		Timestamp().
		Logger()
}
