package types

import "fmt"

// Role is a capability granted to an API caller. Roles gate the governor-only
// operations; they are checked by the authorizer before the ledger runs, never
// inside the entity logic itself.
type Role string

const (
	RoleOwner       Role = "OWNER"
	RoleMinter      Role = "MINTER"
	RoleGameMaster  Role = "GAME_MASTER"
	RoleMarketplace Role = "MARKETPLACE"
)

func (r Role) String() string {
	return string(r)
}

func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleOwner, RoleMinter, RoleGameMaster, RoleMarketplace:
		return Role(s), nil
	default:
		return "", fmt.Errorf("unknown role: %q", s)
	}
}
