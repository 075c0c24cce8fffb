package model

// Capability is a named privilege derivable from the actor's role and
// flags. Authorization rules check capabilities instead of comparing role
// strings, so the two admin sources (role and superuser flag) collapse in
// exactly one place.
type Capability int

const (
	// CapAdmin covers catalog writes and user management.
	CapAdmin Capability = iota
	// CapModerate allows editing and deleting other users' reviews and
	// comments.
	CapModerate
)

// Actor is the identity attached to a request after the JWT middleware
// ran. The zero value is the anonymous actor.
type Actor struct {
	ID            uint64
	Username      string
	Role          string
	Superuser     bool
	Authenticated bool
}

// Can reports whether the actor holds the given capability. Anonymous
// actors hold none.
func (a Actor) Can(c Capability) bool {
	if !a.Authenticated {
		return false
	}
	switch c {
	case CapAdmin:
		return a.Role == RoleAdmin || a.Superuser
	case CapModerate:
		return a.Role == RoleModerator
	}
	return false
}
