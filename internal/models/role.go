package models

import "strings"

// Role is the site role attached to an authenticated user.
type Role string

const (
	RoleAdmin       Role = "admin"
	RoleModerator   Role = "moderator"
	RoleContributor Role = "contributor"
	RoleUser        Role = "user"
	RoleUnknown     Role = "unknown"
)

// ParseRole normalizes a role string from the auth store. The user table
// stores upper-case enum values ("ADMIN"), tokens usually carry lower case.
func ParseRole(s string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleAdmin:
		return RoleAdmin
	case RoleModerator:
		return RoleModerator
	case RoleContributor:
		return RoleContributor
	case RoleUser:
		return RoleUser
	default:
		return RoleUnknown
	}
}

// Priority is the display rank of the role, lower sorts first.
func (r Role) Priority() int {
	switch r {
	case RoleAdmin:
		return 1
	case RoleModerator:
		return 2
	case RoleContributor:
		return 3
	case RoleUser:
		return 4
	default:
		return 5
	}
}

// CanBroadcast reports whether the role may trigger a play heard by every
// connected session.
func (r Role) CanBroadcast() bool {
	return r == RoleAdmin || r == RoleModerator || r == RoleContributor
}

func (r Role) String() string { return string(r) }
