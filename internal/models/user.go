package models

import (
	"time"

	"github.com/google/uuid"
)

// User is the application-level user, distinct from the caller identity in
// the bearer token. Created lazily the first time a verified subject acts
// inside an organization; one row per (subject, organization) pair.
type User struct {
	ID          uuid.UUID    `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrgID       uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:idx_users_org_subject" json:"-"`
	Subject     string       `gorm:"size:255;not null;uniqueIndex:idx_users_org_subject" json:"subject"`
	Email       string       `gorm:"size:255" json:"email"`
	DisplayName string       `gorm:"size:255" json:"display_name"`
	Role        string       `gorm:"size:20;not null;default:'participant'" json:"role"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
	Org         Organization `gorm:"foreignKey:OrgID;constraint:OnDelete:CASCADE" json:"-"`
}
