package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Contact statuses (closed set).
var ContactStatuses = []string{"Active", "Prospect", "Inactive", "Archived"}

// Contact is the aggregate root. Always scoped to exactly one organization;
// ReferredByContactID, when set, must point inside the same organization.
type Contact struct {
	ID                  uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrgID               uuid.UUID  `gorm:"type:uuid;not null;index" json:"-"`
	FirstName           string     `gorm:"size:255;not null" json:"first_name"`
	LastName            string     `gorm:"size:255;not null" json:"last_name"`
	Company             string     `gorm:"size:255" json:"company"`
	RoleTitle           string     `gorm:"size:255" json:"role_title"`
	InternalContact     string     `gorm:"size:255" json:"internal_contact"`
	ReferredBy          string     `gorm:"size:255" json:"referred_by"`
	ReferredByContactID *uuid.UUID `gorm:"type:uuid;index" json:"referred_by_contact_id"`
	ContactType         string     `gorm:"size:100" json:"contact_type"`
	Status              string     `gorm:"size:50;default:'Active'" json:"status"`

	LinkedInURL      string `gorm:"size:500" json:"linkedin_url"`
	LinkedInPicture  string `gorm:"size:500" json:"linkedin_picture"`
	LinkedInCompany  string `gorm:"size:255" json:"linkedin_company"`
	LinkedInJobTitle string `gorm:"size:255" json:"linkedin_job_title"`
	LinkedInLocation string `gorm:"size:255" json:"linkedin_location"`

	BillingLine1          string `gorm:"size:255" json:"billing_line1"`
	BillingLine2          string `gorm:"size:255" json:"billing_line2"`
	BillingCity           string `gorm:"size:100" json:"billing_city"`
	BillingState          string `gorm:"size:100" json:"billing_state"`
	BillingZip            string `gorm:"size:20" json:"billing_zip"`
	ShippingSameAsBilling bool   `gorm:"default:true" json:"shipping_same_as_billing"`
	ShippingLine1         string `gorm:"size:255" json:"shipping_line1"`
	ShippingLine2         string `gorm:"size:255" json:"shipping_line2"`
	ShippingCity          string `gorm:"size:100" json:"shipping_city"`
	ShippingState         string `gorm:"size:100" json:"shipping_state"`
	ShippingZip           string `gorm:"size:20" json:"shipping_zip"`

	// Attributes is a jsonb array of tag strings; the set grows over time.
	Attributes datatypes.JSON `gorm:"type:jsonb;default:'[]'" json:"attributes"`

	// SearchDoc is a precomputed lowercase document used by list search.
	SearchDoc string `gorm:"type:text" json:"-"`

	CreatedByID *uuid.UUID `gorm:"type:uuid" json:"created_by_id"`
	UpdatedByID *uuid.UUID `gorm:"type:uuid" json:"updated_by_id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	Org Organization `gorm:"foreignKey:OrgID;constraint:OnDelete:CASCADE" json:"-"`
}

// ContactPhone is a value-list child; the whole set is replaced on every
// contact update.
type ContactPhone struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrgID     uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`
	ContactID uuid.UUID `gorm:"type:uuid;not null;index" json:"contact_id"`
	Label     string    `gorm:"size:100" json:"label"`
	Value     string    `gorm:"size:100;not null" json:"value"`
	CreatedAt time.Time `json:"created_at"`
	Contact   Contact   `gorm:"foreignKey:ContactID;constraint:OnDelete:CASCADE" json:"-"`
}

type ContactEmail struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrgID     uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`
	ContactID uuid.UUID `gorm:"type:uuid;not null;index" json:"contact_id"`
	Label     string    `gorm:"size:100" json:"label"`
	Value     string    `gorm:"size:255;not null" json:"value"`
	CreatedAt time.Time `json:"created_at"`
	Contact   Contact   `gorm:"foreignKey:ContactID;constraint:OnDelete:CASCADE" json:"-"`
}

type ContactWebsite struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrgID     uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`
	ContactID uuid.UUID `gorm:"type:uuid;not null;index" json:"contact_id"`
	Label     string    `gorm:"size:100" json:"label"`
	Value     string    `gorm:"size:500;not null" json:"value"`
	CreatedAt time.Time `json:"created_at"`
	Contact   Contact   `gorm:"foreignKey:ContactID;constraint:OnDelete:CASCADE" json:"-"`
}

// LinkedInHistory is an append-only snapshot per import event, newest first.
type LinkedInHistory struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrgID      uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`
	ContactID  uuid.UUID `gorm:"type:uuid;not null;index" json:"contact_id"`
	ProfileURL string    `gorm:"size:500" json:"profile_url"`
	Company    string    `gorm:"size:255" json:"company"`
	JobTitle   string    `gorm:"size:255" json:"job_title"`
	Location   string    `gorm:"size:255" json:"location"`
	CapturedAt time.Time `gorm:"not null;index" json:"captured_at"`
	Contact    Contact   `gorm:"foreignKey:ContactID;constraint:OnDelete:CASCADE" json:"-"`
}
