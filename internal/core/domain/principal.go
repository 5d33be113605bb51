package domain

// Principal is the acting identity reconstructed from a bearer token. It
// lives for one request only. Role is the snapshot taken when the token was
// issued; later role changes in storage are not reflected until re-login.
type Principal struct {
	ID       int64
	Username string
	Role     Role
}

// RoleSet is the statically declared set of roles a route admits.
// An empty set admits any authenticated principal.
type RoleSet map[Role]struct{}

// Roles builds a RoleSet from its arguments.
func Roles(roles ...Role) RoleSet {
	set := make(RoleSet, len(roles))
	for _, r := range roles {
		set[r] = struct{}{}
	}
	return set
}

// Has reports whether r is a member of the set.
func (s RoleSet) Has(r Role) bool {
	_, ok := s[r]
	return ok
}
