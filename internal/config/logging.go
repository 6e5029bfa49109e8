package config

import (
	"fmt"

	"github.com/rs/zerolog"
)

type LoggingConfig struct {
	Level string `mapstructure:"level"`
	// File enables rotated file output when set. Empty means stderr only.
	File       string `mapstructure:"file"`
	MaxSizeMb  int    `mapstructure:"max-size-mb"`
	MaxBackups int    `mapstructure:"max-backups"`
	MaxAgeDays int    `mapstructure:"max-age-days"`
}

func (cfg *LoggingConfig) Validate() error {
	if _, err := zerolog.ParseLevel(cfg.Level); err != nil {
		return fmt.Errorf("invalid logging level %q: %w", cfg.Level, err)
	}

	if cfg.File != "" {
		if cfg.MaxSizeMb <= 0 {
			return fmt.Errorf("logging max-size-mb must be positive when file output is enabled")
		}
		if cfg.MaxBackups < 0 {
			return fmt.Errorf("logging max-backups must not be negative")
		}
		if cfg.MaxAgeDays < 0 {
			return fmt.Errorf("logging max-age-days must not be negative")
		}
	}

	return nil
}

func (cfg *LoggingConfig) ParsedLevel() zerolog.Level {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return zerolog.InfoLevel
	}
	return level
}
