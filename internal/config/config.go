package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Ledger  LedgerConfig  `mapstructure:"ledger"`
	Auth    AuthConfig    `mapstructure:"auth"`
	Db      DbConfig      `mapstructure:"db"`
	Queue   QueueConfig   `mapstructure:"queue"`
	Api     ApiConfig     `mapstructure:"api"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Logging LoggingConfig `mapstructure:"logging"`
}

func (cfg *Config) Validate() error {
	if err := cfg.Ledger.Validate(); err != nil {
		return err
	}
	if err := cfg.Auth.Validate(); err != nil {
		return err
	}
	if err := cfg.Db.Validate(); err != nil {
		return err
	}
	if err := cfg.Queue.Validate(); err != nil {
		return err
	}
	if err := cfg.Api.Validate(); err != nil {
		return err
	}
	if err := cfg.Metrics.Validate(); err != nil {
		return err
	}
	if err := cfg.Logging.Validate(); err != nil {
		return err
	}

	return nil
}

// New returns a fully parsed Config object from a given file directory
func New(cfgFile string) (*Config, error) {
	viper.SetConfigFile(cfgFile)
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
