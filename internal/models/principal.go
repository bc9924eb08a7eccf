package models

const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleCook    = "cook"
	RoleWaiter  = "waiter"
	RoleBilling = "billing"
)

// Principal is the authenticated actor behind a request. It is built from
// verified token claims only.
type Principal struct {
	Username  string `json:"username"`
	Role      string `json:"role"`
	Privilege string `json:"privilege,omitempty"`
}

// HasAny reports whether the principal's role or privilege is one of roles.
func (p Principal) HasAny(roles ...string) bool {
	for _, r := range roles {
		if p.Role == r || (p.Privilege != "" && p.Privilege == r) {
			return true
		}
	}
	return false
}
