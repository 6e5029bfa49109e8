package config

import (
	"errors"
)

type ApiConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

func (cfg *ApiConfig) Validate() error {
	if cfg.Host == "" {
		return errors.New("missing api server host")
	}

	if cfg.Port < 1024 || cfg.Port > 65535 {
		return errors.New("api server port must be between 1024 and 65535")
	}

	return nil
}
