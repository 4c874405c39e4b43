package repository

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/orbitcrm/orbit-backend/internal/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddComment(t *testing.T) {
	s, mock := newMockSession(t, identity.RoleCreator)
	contactID := uuid.New()

	mock.ExpectQuery(`SELECT count\(\*\) FROM "contacts"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectExec(`INSERT INTO "comments"`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	comment, err := AddComment(s, contactID, "  followed up by phone  ", testActor(s.Identity.OrgID))
	require.NoError(t, err)
	assert.Equal(t, "followed up by phone", comment.Body)
	assert.Equal(t, contactID, comment.ContactID)
	assert.Equal(t, s.Identity.OrgID, comment.OrgID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddCommentEmptyBody(t *testing.T) {
	s, mock := newMockSession(t, identity.RoleCreator)

	_, err := AddComment(s, uuid.New(), "   ", testActor(s.Identity.OrgID))
	assert.ErrorIs(t, err, ErrEmptyComment)
	// Rejected before any query.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddCommentContactMissing(t *testing.T) {
	s, mock := newMockSession(t, identity.RoleCreator)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "contacts"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	_, err := AddComment(s, uuid.New(), "hello", testActor(s.Identity.OrgID))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSetCommentArchived(t *testing.T) {
	s, mock := newMockSession(t, identity.RoleAdmin)

	mock.ExpectExec(`UPDATE "comments"`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, SetCommentArchived(s, uuid.New(), true))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetCommentArchivedSkipsDeleted(t *testing.T) {
	s, mock := newMockSession(t, identity.RoleAdmin)

	// Soft-deleted (or missing) comments match zero rows.
	mock.ExpectExec(`UPDATE "comments"`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := SetCommentArchived(s, uuid.New(), false)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSoftDeleteCommentSecondCallNotFound(t *testing.T) {
	s, mock := newMockSession(t, identity.RoleAdmin)
	id := uuid.New()

	mock.ExpectExec(`UPDATE "comments"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "comments"`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, SoftDeleteComment(s, id))
	assert.ErrorIs(t, SoftDeleteComment(s, id), ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
