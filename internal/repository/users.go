package repository

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/orbitcrm/orbit-backend/internal/models"
	"github.com/orbitcrm/orbit-backend/internal/session"
	"github.com/orbitcrm/orbit-backend/internal/tenant"
	"gorm.io/gorm"
)

// ListUsers returns every application user in the caller's organization.
func ListUsers(s *session.Session) ([]models.User, error) {
	var users []models.User
	err := s.Tx.Scopes(tenant.ForOrg(s.Identity.OrgID)).
		Order("created_at").
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// UpdateUserRole changes a user's role and returns the previous one for the
// audit trail.
func UpdateUserRole(s *session.Session, userID uuid.UUID, role string) (previous string, err error) {
	var user models.User
	err = s.Tx.Scopes(tenant.ForOrg(s.Identity.OrgID)).Where("id = ?", userID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to load user: %w", err)
	}

	previous = user.Role
	err = s.Tx.Model(&user).Update("role", role).Error
	if err != nil {
		return "", fmt.Errorf("failed to update role: %w", err)
	}
	return previous, nil
}
