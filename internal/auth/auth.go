package auth

import (
	"fmt"

	"github.com/emberforge-labs/asset-ledger/internal/config"
	"github.com/emberforge-labs/asset-ledger/internal/types"
	"github.com/emberforge-labs/asset-ledger/internal/utils"
)

// Authorizer decides whether an actor may run an operation gated behind a
// role. The ledger itself never looks at roles; every privileged entry point
// asks the authorizer before touching state.
type Authorizer interface {
	Authorize(actor string, roles ...types.Role) *types.Error
}

// StaticAuthorizer grants roles from fixed config-driven account lists.
// Owners implicitly pass every role check.
type StaticAuthorizer struct {
	roles map[types.Role][]string
}

func NewStaticAuthorizer(cfg *config.AuthConfig) *StaticAuthorizer {
	return &StaticAuthorizer{
		roles: map[types.Role][]string{
			types.RoleOwner:       cfg.Owners,
			types.RoleMinter:      cfg.Minters,
			types.RoleGameMaster:  cfg.GameMasters,
			types.RoleMarketplace: cfg.Marketplaces,
		},
	}
}

func (a *StaticAuthorizer) Authorize(actor string, roles ...types.Role) *types.Error {
	if actor == "" {
		return types.NewValidationFailedError(fmt.Errorf("actor must not be empty"))
	}

	if utils.Contains(a.roles[types.RoleOwner], actor) {
		return nil
	}
	for _, role := range roles {
		if utils.Contains(a.roles[role], actor) {
			return nil
		}
	}

	return types.NewUnauthorizedError(
		fmt.Errorf("account %q holds none of the required roles %v", actor, roles),
	)
}
