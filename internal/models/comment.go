package models

import (
	"time"

	"github.com/google/uuid"
)

// Comment is a child of Contact. Never hard-deleted: "delete" sets
// DeletedAt, which hides it from all reads regardless of Archived.
type Comment struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrgID       uuid.UUID  `gorm:"type:uuid;not null;index" json:"-"`
	ContactID   uuid.UUID  `gorm:"type:uuid;not null;index" json:"contact_id"`
	Body        string     `gorm:"type:text;not null" json:"body"`
	Archived    bool       `gorm:"default:false" json:"archived"`
	DeletedAt   *time.Time `gorm:"index" json:"-"`
	CreatedByID *uuid.UUID `gorm:"type:uuid" json:"created_by_id"`
	CreatedAt   time.Time  `json:"created_at"`
	Contact     Contact    `gorm:"foreignKey:ContactID;constraint:OnDelete:CASCADE" json:"-"`
}
