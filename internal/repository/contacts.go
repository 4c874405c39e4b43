package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/orbitcrm/orbit-backend/internal/models"
	"github.com/orbitcrm/orbit-backend/internal/session"
	"github.com/orbitcrm/orbit-backend/internal/tenant"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Search results are capped; the list view is not a paging API.
const searchLimit = 200

// MethodEntry is one phone/email/website value submitted by the client.
type MethodEntry struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// ContactInput is the full mutable surface of a contact. Create and update
// both take the whole struct; updates rewrite every field.
type ContactInput struct {
	FirstName           string     `json:"firstName"`
	LastName            string     `json:"lastName"`
	Company             string     `json:"company"`
	RoleTitle           string     `json:"roleTitle"`
	InternalContact     string     `json:"internalContact"`
	ReferredBy          string     `json:"referredBy"`
	ReferredByContactID *uuid.UUID `json:"referredByContactId"`
	ContactType         string     `json:"contactType"`
	Status              string     `json:"status"`

	LinkedInURL      string `json:"linkedinUrl"`
	LinkedInPicture  string `json:"linkedinPicture"`
	LinkedInCompany  string `json:"linkedinCompany"`
	LinkedInJobTitle string `json:"linkedinJobTitle"`
	LinkedInLocation string `json:"linkedinLocation"`

	BillingLine1          string `json:"billingLine1"`
	BillingLine2          string `json:"billingLine2"`
	BillingCity           string `json:"billingCity"`
	BillingState          string `json:"billingState"`
	BillingZip            string `json:"billingZip"`
	ShippingSameAsBilling bool   `json:"shippingSameAsBilling"`
	ShippingLine1         string `json:"shippingLine1"`
	ShippingLine2         string `json:"shippingLine2"`
	ShippingCity          string `json:"shippingCity"`
	ShippingState         string `json:"shippingState"`
	ShippingZip           string `json:"shippingZip"`

	Attributes []string `json:"attributes"`

	Phones   []MethodEntry `json:"phones"`
	Emails   []MethodEntry `json:"emails"`
	Websites []MethodEntry `json:"websites"`
}

// ContactSummary is the list projection.
type ContactSummary struct {
	ID          uuid.UUID `json:"id"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Company     string    `json:"company"`
	RoleTitle   string    `json:"role_title"`
	ContactType string    `json:"contact_type"`
	Status      string    `json:"status"`
	LinkedInURL string    `json:"linkedin_url"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ContactDetail is the full aggregate returned by contacts.get.
type ContactDetail struct {
	Contact        models.Contact           `json:"contact"`
	Phones         []models.ContactPhone    `json:"phones"`
	Emails         []models.ContactEmail    `json:"emails"`
	Websites       []models.ContactWebsite  `json:"websites"`
	Comments       []models.Comment         `json:"comments"`
	Referrals      []ContactSummary         `json:"referrals"`
	ReferredByName string                   `json:"referred_by_name,omitempty"`
	LinkedIn       []models.LinkedInHistory `json:"linkedin_history"`
}

// SearchContacts returns org-scoped summaries, optionally filtered by a
// free-text term. The term is matched against the precomputed search
// document first, with a fallback scan over the contact's own columns and
// its related phone/email/website/comment text.
func SearchContacts(s *session.Session, term string) ([]ContactSummary, error) {
	q := s.Tx.Model(&models.Contact{}).Scopes(tenant.ForOrg(s.Identity.OrgID))

	term = strings.TrimSpace(term)
	if term != "" {
		like := "%" + strings.ToLower(term) + "%"
		q = q.Where(
			`search_doc LIKE @like
				OR lower(first_name) LIKE @like
				OR lower(last_name) LIKE @like
				OR lower(company) LIKE @like
				OR lower(role_title) LIKE @like
				OR lower(internal_contact) LIKE @like
				OR lower(referred_by) LIKE @like
				OR lower(attributes::text) LIKE @like
				OR EXISTS (SELECT 1 FROM contact_phones p WHERE p.contact_id = contacts.id AND p.org_id = contacts.org_id AND lower(p.value) LIKE @like)
				OR EXISTS (SELECT 1 FROM contact_emails e WHERE e.contact_id = contacts.id AND e.org_id = contacts.org_id AND lower(e.value) LIKE @like)
				OR EXISTS (SELECT 1 FROM contact_websites w WHERE w.contact_id = contacts.id AND w.org_id = contacts.org_id AND lower(w.value) LIKE @like)
				OR EXISTS (SELECT 1 FROM comments cm WHERE cm.contact_id = contacts.id AND cm.org_id = contacts.org_id AND cm.deleted_at IS NULL AND lower(cm.body) LIKE @like)`,
			map[string]interface{}{"like": like},
		)
	}

	var out []ContactSummary
	err := q.Select("id, first_name, last_name, company, role_title, contact_type, status, linked_in_url, updated_at").
		Order("last_name, first_name").
		Limit(searchLimit).
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("contact search failed: %w", err)
	}
	return out, nil
}

// GetContactDetail assembles one contact with all child collections.
// Fetches run sequentially: the session owns a single transaction
// connection, which cannot serve concurrent queries.
func GetContactDetail(s *session.Session, id uuid.UUID) (*ContactDetail, error) {
	org := tenant.ForOrg(s.Identity.OrgID)

	var detail ContactDetail
	err := s.Tx.Scopes(org).Where("id = ?", id).First(&detail.Contact).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load contact: %w", err)
	}

	if err := s.Tx.Scopes(org).Where("contact_id = ?", id).Order("created_at").Find(&detail.Phones).Error; err != nil {
		return nil, fmt.Errorf("failed to load phones: %w", err)
	}
	if err := s.Tx.Scopes(org).Where("contact_id = ?", id).Order("created_at").Find(&detail.Emails).Error; err != nil {
		return nil, fmt.Errorf("failed to load emails: %w", err)
	}
	if err := s.Tx.Scopes(org).Where("contact_id = ?", id).Order("created_at").Find(&detail.Websites).Error; err != nil {
		return nil, fmt.Errorf("failed to load websites: %w", err)
	}
	if err := s.Tx.Scopes(org).Where("contact_id = ? AND deleted_at IS NULL", id).Order("created_at DESC").Find(&detail.Comments).Error; err != nil {
		return nil, fmt.Errorf("failed to load comments: %w", err)
	}
	if err := s.Tx.Scopes(org).Where("contact_id = ?", id).Order("captured_at DESC").Find(&detail.LinkedIn).Error; err != nil {
		return nil, fmt.Errorf("failed to load linkedin history: %w", err)
	}

	err = s.Tx.Model(&models.Contact{}).Scopes(org).
		Where("referred_by_contact_id = ?", id).
		Select("id, first_name, last_name, company, role_title, contact_type, status, linked_in_url, updated_at").
		Order("last_name, first_name").
		Find(&detail.Referrals).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load referrals: %w", err)
	}

	if detail.Contact.ReferredByContactID != nil {
		var ref models.Contact
		err := s.Tx.Scopes(org).Select("first_name, last_name").
			Where("id = ?", *detail.Contact.ReferredByContactID).
			First(&ref).Error
		if err == nil {
			detail.ReferredByName = strings.TrimSpace(ref.FirstName + " " + ref.LastName)
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to load referred-by contact: %w", err)
		}
	}

	return &detail, nil
}

// FindDuplicate applies the soft duplicate heuristic: same-org contact with
// a case-insensitive matching LinkedIn URL (when one is supplied), or a
// case-insensitive matching first+last name, additionally matching company
// when one is supplied. First match wins (LIMIT 1).
func FindDuplicate(s *session.Session, in *ContactInput) (*DuplicateError, error) {
	q := s.Tx.Model(&models.Contact{}).Scopes(tenant.ForOrg(s.Identity.OrgID))

	// Compare what would actually be stored: applyInput trims these fields.
	first := strings.TrimSpace(in.FirstName)
	last := strings.TrimSpace(in.LastName)
	company := strings.TrimSpace(in.Company)
	linkedIn := strings.TrimSpace(in.LinkedInURL)

	nameCond := s.Tx.Where("lower(first_name) = lower(?) AND lower(last_name) = lower(?)", first, last)
	if company != "" {
		nameCond = nameCond.Where("lower(company) = lower(?)", company)
	}

	if linkedIn != "" {
		q = q.Where(s.Tx.Where("lower(linked_in_url) = lower(?)", linkedIn).Or(nameCond))
	} else {
		q = q.Where(nameCond)
	}

	var match models.Contact
	res := q.Limit(1).Find(&match)
	if res.Error != nil {
		return nil, fmt.Errorf("duplicate check failed: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return &DuplicateError{ID: match.ID, FirstName: match.FirstName, LastName: match.LastName}, nil
}

// CreateContact inserts the aggregate: the contact row, its child method
// collections, and a LinkedIn snapshot when enrichment fields are present.
// allowDuplicate skips the duplicate guard (explicit client override).
func CreateContact(s *session.Session, in *ContactInput, actor *models.User, allowDuplicate bool) (*models.Contact, error) {
	if !allowDuplicate {
		dup, err := FindDuplicate(s, in)
		if err != nil {
			return nil, err
		}
		if dup != nil {
			return nil, dup
		}
	}

	if err := checkReferredBy(s, in.ReferredByContactID, uuid.Nil); err != nil {
		return nil, err
	}

	contact := models.Contact{ID: uuid.New(), OrgID: s.Identity.OrgID}
	applyInput(&contact, in)
	contact.CreatedByID = &actor.ID
	contact.UpdatedByID = &actor.ID

	if err := s.Tx.Create(&contact).Error; err != nil {
		return nil, fmt.Errorf("failed to create contact: %w", err)
	}

	if err := ReplaceMethods(s, contact.ID, in); err != nil {
		return nil, err
	}
	if err := appendLinkedInSnapshot(s, &contact, nil); err != nil {
		return nil, err
	}

	return &contact, nil
}

// UpdateContact rewrites every mutable field and performs a full child
// collection replacement.
func UpdateContact(s *session.Session, id uuid.UUID, in *ContactInput, actor *models.User) (*models.Contact, error) {
	var contact models.Contact
	err := s.Tx.Scopes(tenant.ForOrg(s.Identity.OrgID)).Where("id = ?", id).First(&contact).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load contact: %w", err)
	}

	if err := checkReferredBy(s, in.ReferredByContactID, id); err != nil {
		return nil, err
	}

	prev := contact
	applyInput(&contact, in)
	contact.UpdatedByID = &actor.ID

	if err := s.Tx.Save(&contact).Error; err != nil {
		return nil, fmt.Errorf("failed to update contact: %w", err)
	}

	if err := ReplaceMethods(s, contact.ID, in); err != nil {
		return nil, err
	}
	if err := appendLinkedInSnapshot(s, &contact, &prev); err != nil {
		return nil, err
	}

	return &contact, nil
}

// DeleteContact hard-deletes; child rows cascade via foreign keys.
func DeleteContact(s *session.Session, id uuid.UUID) error {
	res := s.Tx.Scopes(tenant.ForOrg(s.Identity.OrgID)).Where("id = ?", id).Delete(&models.Contact{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete contact: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ReplaceMethods synchronizes the phone/email/website collections as whole
// sets: delete everything, re-insert exactly what was submitted, skipping
// entries whose value is empty after trimming.
func ReplaceMethods(s *session.Session, contactID uuid.UUID, in *ContactInput) error {
	org := s.Identity.OrgID

	if err := s.Tx.Where("contact_id = ? AND org_id = ?", contactID, org).Delete(&models.ContactPhone{}).Error; err != nil {
		return fmt.Errorf("failed to clear phones: %w", err)
	}
	if err := s.Tx.Where("contact_id = ? AND org_id = ?", contactID, org).Delete(&models.ContactEmail{}).Error; err != nil {
		return fmt.Errorf("failed to clear emails: %w", err)
	}
	if err := s.Tx.Where("contact_id = ? AND org_id = ?", contactID, org).Delete(&models.ContactWebsite{}).Error; err != nil {
		return fmt.Errorf("failed to clear websites: %w", err)
	}

	phones := make([]models.ContactPhone, 0, len(in.Phones))
	for _, m := range in.Phones {
		if v := strings.TrimSpace(m.Value); v != "" {
			phones = append(phones, models.ContactPhone{ID: uuid.New(), OrgID: org, ContactID: contactID, Label: m.Label, Value: v})
		}
	}
	if len(phones) > 0 {
		if err := s.Tx.Create(&phones).Error; err != nil {
			return fmt.Errorf("failed to insert phones: %w", err)
		}
	}

	emails := make([]models.ContactEmail, 0, len(in.Emails))
	for _, m := range in.Emails {
		if v := strings.TrimSpace(m.Value); v != "" {
			emails = append(emails, models.ContactEmail{ID: uuid.New(), OrgID: org, ContactID: contactID, Label: m.Label, Value: v})
		}
	}
	if len(emails) > 0 {
		if err := s.Tx.Create(&emails).Error; err != nil {
			return fmt.Errorf("failed to insert emails: %w", err)
		}
	}

	websites := make([]models.ContactWebsite, 0, len(in.Websites))
	for _, m := range in.Websites {
		if v := strings.TrimSpace(m.Value); v != "" {
			websites = append(websites, models.ContactWebsite{ID: uuid.New(), OrgID: org, ContactID: contactID, Label: m.Label, Value: v})
		}
	}
	if len(websites) > 0 {
		if err := s.Tx.Create(&websites).Error; err != nil {
			return fmt.Errorf("failed to insert websites: %w", err)
		}
	}

	return nil
}

// appendLinkedInSnapshot records one history row per import event: when
// LinkedIn fields are present and differ from the previous values.
func appendLinkedInSnapshot(s *session.Session, contact *models.Contact, prev *models.Contact) error {
	if contact.LinkedInURL == "" && contact.LinkedInCompany == "" &&
		contact.LinkedInJobTitle == "" && contact.LinkedInLocation == "" {
		return nil
	}
	if prev != nil &&
		prev.LinkedInURL == contact.LinkedInURL &&
		prev.LinkedInCompany == contact.LinkedInCompany &&
		prev.LinkedInJobTitle == contact.LinkedInJobTitle &&
		prev.LinkedInLocation == contact.LinkedInLocation {
		return nil
	}

	snap := models.LinkedInHistory{
		ID:         uuid.New(),
		OrgID:      s.Identity.OrgID,
		ContactID:  contact.ID,
		ProfileURL: contact.LinkedInURL,
		Company:    contact.LinkedInCompany,
		JobTitle:   contact.LinkedInJobTitle,
		Location:   contact.LinkedInLocation,
		CapturedAt: time.Now().UTC(),
	}
	if err := s.Tx.Create(&snap).Error; err != nil {
		return fmt.Errorf("failed to record linkedin snapshot: %w", err)
	}
	return nil
}

// checkReferredBy enforces that a referred-by reference stays inside the
// organization and never points at the contact itself.
func checkReferredBy(s *session.Session, refID *uuid.UUID, self uuid.UUID) error {
	if refID == nil {
		return nil
	}
	if *refID == self {
		return ErrReferredByNotInOrg
	}
	var count int64
	err := s.Tx.Model(&models.Contact{}).Scopes(tenant.ForOrg(s.Identity.OrgID)).
		Where("id = ?", *refID).Count(&count).Error
	if err != nil {
		return fmt.Errorf("failed to check referred-by contact: %w", err)
	}
	if count == 0 {
		return ErrReferredByNotInOrg
	}
	return nil
}

// applyInput copies the full mutable surface onto the model and recomputes
// the search document.
func applyInput(c *models.Contact, in *ContactInput) {
	c.FirstName = strings.TrimSpace(in.FirstName)
	c.LastName = strings.TrimSpace(in.LastName)
	c.Company = strings.TrimSpace(in.Company)
	c.RoleTitle = in.RoleTitle
	c.InternalContact = in.InternalContact
	c.ReferredBy = in.ReferredBy
	c.ReferredByContactID = in.ReferredByContactID
	c.ContactType = in.ContactType
	c.Status = in.Status
	if c.Status == "" {
		c.Status = "Active"
	}

	c.LinkedInURL = strings.TrimSpace(in.LinkedInURL)
	c.LinkedInPicture = in.LinkedInPicture
	c.LinkedInCompany = in.LinkedInCompany
	c.LinkedInJobTitle = in.LinkedInJobTitle
	c.LinkedInLocation = in.LinkedInLocation

	c.BillingLine1 = in.BillingLine1
	c.BillingLine2 = in.BillingLine2
	c.BillingCity = in.BillingCity
	c.BillingState = in.BillingState
	c.BillingZip = in.BillingZip
	c.ShippingSameAsBilling = in.ShippingSameAsBilling
	if in.ShippingSameAsBilling {
		c.ShippingLine1 = in.BillingLine1
		c.ShippingLine2 = in.BillingLine2
		c.ShippingCity = in.BillingCity
		c.ShippingState = in.BillingState
		c.ShippingZip = in.BillingZip
	} else {
		c.ShippingLine1 = in.ShippingLine1
		c.ShippingLine2 = in.ShippingLine2
		c.ShippingCity = in.ShippingCity
		c.ShippingState = in.ShippingState
		c.ShippingZip = in.ShippingZip
	}

	attrs := in.Attributes
	if attrs == nil {
		attrs = []string{}
	}
	if b, err := json.Marshal(attrs); err == nil {
		c.Attributes = datatypes.JSON(b)
	}

	c.SearchDoc = BuildSearchDoc(c, in)
}

// BuildSearchDoc precomputes the lowercase document the list search matches
// against.
func BuildSearchDoc(c *models.Contact, in *ContactInput) string {
	parts := []string{
		c.FirstName, c.LastName, c.Company, c.RoleTitle, c.InternalContact,
		c.ReferredBy, c.ContactType, c.Status, c.LinkedInURL,
		c.LinkedInCompany, c.LinkedInJobTitle, c.LinkedInLocation,
	}
	parts = append(parts, in.Attributes...)
	for _, m := range in.Phones {
		parts = append(parts, m.Value)
	}
	for _, m := range in.Emails {
		parts = append(parts, m.Value)
	}
	for _, m := range in.Websites {
		parts = append(parts, m.Value)
	}

	kept := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.ToLower(strings.Join(kept, " "))
}
