package tenant

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ForOrg returns a GORM scope that filters by organization. Every repository
// query goes through this; the database's row-level security policies are a
// second line of defense keyed off the session variables, not the only one.
func ForOrg(orgID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("org_id = ?", orgID)
	}
}
