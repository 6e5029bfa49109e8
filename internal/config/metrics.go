package config

import (
	"errors"
)

type MetricsConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

func (cfg *MetricsConfig) Validate() error {
	if cfg.Host == "" {
		return errors.New("missing metrics server host")
	}

	if cfg.Port < 1024 || cfg.Port > 65535 {
		return errors.New("metrics server port must be between 1024 and 65535")
	}

	return nil
}

func (cfg *MetricsConfig) GetMetricsPort() int {
	return cfg.Port
}
