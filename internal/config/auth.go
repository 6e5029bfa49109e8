package config

import (
	"fmt"
)

// AuthConfig assigns administrative roles to account names. Accounts
// absent from every list can still hold, trade and stake; the lists only
// gate the privileged operations.
type AuthConfig struct {
	Owners       []string `mapstructure:"owners"`
	Minters      []string `mapstructure:"minters"`
	GameMasters  []string `mapstructure:"game-masters"`
	Marketplaces []string `mapstructure:"marketplaces"`
}

func (cfg *AuthConfig) Validate() error {
	if len(cfg.Owners) == 0 {
		return fmt.Errorf("at least one owner account must be set")
	}

	lists := map[string][]string{
		"owners":       cfg.Owners,
		"minters":      cfg.Minters,
		"game-masters": cfg.GameMasters,
		"marketplaces": cfg.Marketplaces,
	}
	for name, accounts := range lists {
		seen := make(map[string]bool, len(accounts))
		for _, account := range accounts {
			if account == "" {
				return fmt.Errorf("%s contains an empty account name", name)
			}
			if seen[account] {
				return fmt.Errorf("%s contains duplicate account %q", name, account)
			}
			seen[account] = true
		}
	}

	return nil
}
