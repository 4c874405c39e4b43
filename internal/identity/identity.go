package identity

import "github.com/google/uuid"

// Role is the closed set of application roles.
type Role string

const (
	RoleAdmin       Role = "admin"
	RoleCreator     Role = "creator"
	RoleParticipant Role = "participant"
)

// Valid reports whether r is one of the three known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleCreator, RoleParticipant:
		return true
	}
	return false
}

// Identity is the verified caller: who they are, what they may do, and which
// organization every query they issue is scoped to.
type Identity struct {
	Subject string
	Email   string
	Role    Role
	OrgID   uuid.UUID
}
