package repository

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/orbitcrm/orbit-backend/internal/models"
	"github.com/orbitcrm/orbit-backend/internal/session"
	"github.com/orbitcrm/orbit-backend/internal/tenant"
)

var ErrEmptyComment = errors.New("comment body is empty")

// AddComment creates a visible comment on an in-org contact.
func AddComment(s *session.Session, contactID uuid.UUID, body string, actor *models.User) (*models.Comment, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, ErrEmptyComment
	}

	var count int64
	err := s.Tx.Model(&models.Contact{}).Scopes(tenant.ForOrg(s.Identity.OrgID)).
		Where("id = ?", contactID).Count(&count).Error
	if err != nil {
		return nil, fmt.Errorf("failed to check contact: %w", err)
	}
	if count == 0 {
		return nil, ErrNotFound
	}

	comment := models.Comment{
		ID:          uuid.New(),
		OrgID:       s.Identity.OrgID,
		ContactID:   contactID,
		Body:        body,
		CreatedByID: &actor.ID,
	}
	if err := s.Tx.Create(&comment).Error; err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}
	return &comment, nil
}

// SetCommentArchived toggles the reversible archived marker. Soft-deleted
// comments are out of reach.
func SetCommentArchived(s *session.Session, commentID uuid.UUID, archived bool) error {
	res := s.Tx.Model(&models.Comment{}).Scopes(tenant.ForOrg(s.Identity.OrgID)).
		Where("id = ? AND deleted_at IS NULL", commentID).
		Update("archived", archived)
	if res.Error != nil {
		return fmt.Errorf("failed to archive comment: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SoftDeleteComment sets the terminal deleted_at marker; the row stays but
// disappears from every read. Deleting an already-deleted comment matches
// nothing and reports not-found.
func SoftDeleteComment(s *session.Session, commentID uuid.UUID) error {
	now := time.Now().UTC()
	res := s.Tx.Model(&models.Comment{}).Scopes(tenant.ForOrg(s.Identity.OrgID)).
		Where("id = ? AND deleted_at IS NULL", commentID).
		Update("deleted_at", &now)
	if res.Error != nil {
		return fmt.Errorf("failed to delete comment: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
