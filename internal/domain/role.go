package domain

// Role enumerates the acting party's capability set.
type Role string

const (
	RoleCitizen  Role = "CITIZEN"
	RoleEngineer Role = "ENGINEER"
	RoleCouncil  Role = "COUNCIL"
)

// Valid reports whether the role is known.
func (r Role) Valid() bool {
	switch r {
	case RoleCitizen, RoleEngineer, RoleCouncil:
		return true
	}
	return false
}

// CanTriage reports whether the role may issue status transitions.
func (r Role) CanTriage() bool {
	return r == RoleEngineer || r == RoleCouncil
}
