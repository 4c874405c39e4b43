package audit

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/orbitcrm/orbit-backend/internal/models"
	"github.com/orbitcrm/orbit-backend/internal/session"
	"github.com/orbitcrm/orbit-backend/internal/tenant"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Request carries the HTTP metadata captured into each audit entry.
type Request struct {
	IP        string
	UserAgent string
}

// EnsureUser resolves the application User row for the caller, creating it
// on first sight of a new (subject, organization) pair. Idempotent; call
// once per transaction.
func EnsureUser(s *session.Session) (*models.User, error) {
	var user models.User
	err := s.Tx.Scopes(tenant.ForOrg(s.Identity.OrgID)).
		Where("subject = ?", s.Identity.Subject).
		First(&user).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to resolve user: %w", err)
	}

	user = models.User{
		ID:          uuid.New(),
		OrgID:       s.Identity.OrgID,
		Subject:     s.Identity.Subject,
		Email:       s.Identity.Email,
		DisplayName: displayName(s.Identity.Email, s.Identity.Subject),
		Role:        string(s.Identity.Role),
	}
	if err := s.Tx.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return &user, nil
}

// Record appends one immutable audit entry for a mutating action. A failed
// insert propagates so the surrounding transaction rolls back: no mutation
// is ever committed unaudited.
func Record(s *session.Session, actor *models.User, req Request, action, entityType string, entityID *uuid.UUID, metadata map[string]interface{}) error {
	entry := models.AuditLogEntry{
		ID:           uuid.New(),
		OrgID:        s.Identity.OrgID,
		ActorSubject: s.Identity.Subject,
		Action:       action,
		EntityType:   entityType,
		EntityID:     entityID,
		IP:           req.IP,
		UserAgent:    req.UserAgent,
	}
	if actor != nil {
		entry.ActorUserID = &actor.ID
	}
	if len(metadata) > 0 {
		b, err := json.Marshal(metadata)
		if err != nil {
			return fmt.Errorf("failed to encode audit metadata: %w", err)
		}
		entry.Metadata = datatypes.JSON(b)
	}

	if err := s.Tx.Create(&entry).Error; err != nil {
		return fmt.Errorf("failed to record audit entry: %w", err)
	}
	return nil
}

func displayName(email, subject string) string {
	if email != "" {
		return strings.Split(email, "@")[0]
	}
	return subject
}
