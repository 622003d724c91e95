package settings

import "strings"

// Role ranks the roles a password-disable threshold can name. Higher ranks
// are more privileged. The order is the one the plugin has always stored,
// which places author above editor.
type Role int

const (
	RoleUnknown Role = iota - 1
	RoleSubscriber
	RoleEditor
	RoleAuthor
	RoleAdministrator
	RoleSuperAdministrator
)

var roleNames = [...]string{
	RoleSubscriber:         "subscriber",
	RoleEditor:             "editor",
	RoleAuthor:             "author",
	RoleAdministrator:      "administrator",
	RoleSuperAdministrator: "super administrator",
}

// ParseRole maps a role or threshold name to its rank, ignoring case and
// treating underscores as spaces. Unrecognised names return RoleUnknown.
func ParseRole(name string) Role {
	normalized := strings.ToLower(strings.TrimSpace(strings.ReplaceAll(name, "_", " ")))
	for rank, candidate := range roleNames {
		if candidate == normalized {
			return Role(rank)
		}
	}
	return RoleUnknown
}

func (r Role) String() string {
	if !r.Known() {
		return "unknown"
	}
	return roleNames[r]
}

// Known reports whether r is one of the ranked roles.
func (r Role) Known() bool {
	return r >= RoleSubscriber && r <= RoleSuperAdministrator
}

// User is the subset of a host user the password policy inspects.
type User struct {
	ID    int64
	Roles []string
}
