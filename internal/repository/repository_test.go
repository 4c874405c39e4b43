package repository

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/orbitcrm/orbit-backend/internal/identity"
	"github.com/orbitcrm/orbit-backend/internal/models"
	"github.com/orbitcrm/orbit-backend/internal/session"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newMockSession wires GORM over a sqlmock connection. The default
// transaction wrapper is disabled because production code always runs
// inside the session runner's transaction.
func newMockSession(t *testing.T, role identity.Role) (*session.Session, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	return &session.Session{
		Tx: gdb,
		Identity: identity.Identity{
			Subject: "subj-1",
			Email:   "subj@example.com",
			Role:    role,
			OrgID:   uuid.New(),
		},
	}, mock
}

func testActor(orgID uuid.UUID) *models.User {
	return &models.User{
		ID:      uuid.New(),
		OrgID:   orgID,
		Subject: "subj-1",
		Email:   "subj@example.com",
		Role:    "creator",
	}
}
