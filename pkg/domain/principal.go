package domain

import dErrors "masjid/pkg/domain-errors"

// Role is the capability level of a caller. Roles are ordered: each grants
// everything the previous one does.
type Role string

const (
	RoleGuest         Role = "guest"
	RoleAuthenticated Role = "authenticated"
	RoleModerator     Role = "moderator"
	RoleAdmin         Role = "admin"
)

func (r Role) rank() int {
	switch r {
	case RoleAuthenticated:
		return 1
	case RoleModerator:
		return 2
	case RoleAdmin:
		return 3
	default:
		return 0
	}
}

// AtLeast reports whether r grants min.
func (r Role) AtLeast(min Role) bool {
	return r.rank() >= min.rank()
}

// ParseRole accepts the known role names; anything else is rejected.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleGuest, RoleAuthenticated, RoleModerator, RoleAdmin:
		return Role(s), nil
	}
	return "", dErrors.New(dErrors.CodeBadRequest, "unknown role")
}

// Principal identifies the caller of an operation. The zero value is a guest.
type Principal struct {
	UserID UserID
	Role   Role
}

// Guest is the principal of an unauthenticated caller.
var Guest = Principal{Role: RoleGuest}

// IsAuthenticated reports whether the principal carries a user identity.
func (p Principal) IsAuthenticated() bool {
	return p.UserID > 0 && p.Role.AtLeast(RoleAuthenticated)
}

// IsPrivileged reports whether the principal may moderate content.
func (p Principal) IsPrivileged() bool {
	return p.UserID > 0 && p.Role.AtLeast(RoleModerator)
}

// Require returns an error unless the principal holds at least min.
func Require(p Principal, min Role) error {
	if min.AtLeast(RoleAuthenticated) && !p.IsAuthenticated() {
		return dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	if !p.Role.AtLeast(min) {
		return dErrors.New(dErrors.CodeForbidden, "insufficient role")
	}
	return nil
}
