package session

import (
	"github.com/orbitcrm/orbit-backend/internal/identity"
	"gorm.io/gorm"
)

// Session is one unit of work: a transactional handle bound to a verified
// caller. Repositories receive a Session and never a raw organization id,
// so identity attaches to queries in exactly one place.
type Session struct {
	Tx       *gorm.DB
	Identity identity.Identity
}
