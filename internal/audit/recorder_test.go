package audit

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/orbitcrm/orbit-backend/internal/identity"
	"github.com/orbitcrm/orbit-backend/internal/models"
	"github.com/orbitcrm/orbit-backend/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockSession(t *testing.T) (*session.Session, sqlmock.Sqlmock) {
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
			Email:   "jordan@example.com",
			Role:    identity.RoleCreator,
			OrgID:   uuid.New(),
		},
	}, mock
}

func TestEnsureUserReturnsExistingRow(t *testing.T) {
	s, mock := newMockSession(t)
	userID := uuid.New()

	mock.ExpectQuery(`SELECT (.+) FROM "users"`).
		WithArgs("subj-1", s.Identity.OrgID.String(), 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "org_id", "subject", "role"}).
			AddRow(userID.String(), s.Identity.OrgID.String(), "subj-1", "admin"))

	user, err := EnsureUser(s)
	require.NoError(t, err)
	assert.Equal(t, userID, user.ID)
	// The stored role wins over the token role.
	assert.Equal(t, "admin", user.Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureUserCreatesOnFirstSight(t *testing.T) {
	s, mock := newMockSession(t)

	mock.ExpectQuery(`SELECT (.+) FROM "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectExec(`INSERT INTO "users"`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	user, err := EnsureUser(s)
	require.NoError(t, err)
	assert.Equal(t, s.Identity.OrgID, user.OrgID)
	assert.Equal(t, "subj-1", user.Subject)
	assert.Equal(t, "jordan", user.DisplayName)
	assert.Equal(t, "creator", user.Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordWritesEntryWithMetadata(t *testing.T) {
	s, mock := newMockSession(t)
	actor := &models.User{ID: uuid.New(), OrgID: s.Identity.OrgID, Subject: "subj-1"}
	entityID := uuid.New()

	mock.ExpectExec(`INSERT INTO "audit_log_entries"`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := Record(s, actor, Request{IP: "10.0.0.1", UserAgent: "test"},
		"contacts.delete", "contact", &entityID,
		map[string]interface{}{"reason": "cleanup"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDisplayNameFallsBackToSubject(t *testing.T) {
	assert.Equal(t, "jordan", displayName("jordan@example.com", "subj-1"))
	assert.Equal(t, "subj-1", displayName("", "subj-1"))
}
