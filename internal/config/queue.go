package config

import (
	"errors"
	"time"
)

type QueueConfig struct {
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	// Url specifies the RabbitMQ address as host:port without a protocol prefix.
	Url            string        `mapstructure:"url"`
	Exchange       string        `mapstructure:"exchange"`
	PublishTimeout time.Duration `mapstructure:"publish-timeout"`
	ConnectRetries uint          `mapstructure:"connect-retries"`
}

func (cfg *QueueConfig) Validate() error {
	if cfg.User == "" {
		return errors.New("missing queue user")
	}

	if cfg.Password == "" {
		return errors.New("missing queue password")
	}

	if cfg.Url == "" {
		return errors.New("missing queue url")
	}

	if cfg.Exchange == "" {
		return errors.New("missing queue exchange")
	}

	if cfg.PublishTimeout <= 0 {
		return errors.New("queue publish-timeout must be positive")
	}

	if cfg.ConnectRetries == 0 {
		return errors.New("queue connect-retries must be positive")
	}

	return nil
}
