package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// AuditLogEntry is an immutable append-only record of one mutating action.
// This layer only ever inserts rows here.
type AuditLogEntry struct {
	ID           uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrgID        uuid.UUID      `gorm:"type:uuid;not null;index" json:"-"`
	ActorUserID  *uuid.UUID     `gorm:"type:uuid;index" json:"actor_user_id"`
	ActorSubject string         `gorm:"size:255;not null" json:"actor_subject"`
	Action       string         `gorm:"size:100;not null;index" json:"action"`
	EntityType   string         `gorm:"size:50" json:"entity_type"`
	EntityID     *uuid.UUID     `gorm:"type:uuid;index" json:"entity_id"`
	IP           string         `gorm:"size:64" json:"ip"`
	UserAgent    string         `gorm:"size:500" json:"user_agent"`
	Metadata     datatypes.JSON `gorm:"type:jsonb;default:'{}'" json:"metadata"`
	CreatedAt    time.Time      `json:"created_at"`
	Org          Organization   `gorm:"foreignKey:OrgID;constraint:OnDelete:CASCADE" json:"-"`
}
