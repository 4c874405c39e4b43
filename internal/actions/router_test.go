package actions

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/orbitcrm/orbit-backend/internal/envelope"
	"github.com/orbitcrm/orbit-backend/internal/identity"
	"github.com/orbitcrm/orbit-backend/internal/repository"
	"github.com/orbitcrm/orbit-backend/internal/session"
	"github.com/orbitcrm/orbit-backend/internal/tenant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRunner executes the unit of work without a database; handlers under
// test must not touch the nil transaction.
type fakeRunner struct{}

func (f *fakeRunner) Run(_ context.Context, id identity.Identity, fn func(s *session.Session) error) error {
	return fn(&session.Session{Identity: id})
}

func testIdentity(role identity.Role) identity.Identity {
	return identity.Identity{
		Subject: "subj-1",
		Email:   "subj@example.com",
		Role:    role,
		OrgID:   uuid.New(),
	}
}

func newTestApp(r *Router, id *identity.Identity) *fiber.App {
	app := fiber.New()
	app.All("/api/actions", func(c *fiber.Ctx) error {
		if id != nil {
			tenant.SetIdentity(c, *id)
		}
		return r.Dispatch(c)
	})
	return app
}

func doAction(t *testing.T, app *fiber.App, action, body string) (int, envelope.Response) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/actions?action="+action, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out envelope.Response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestDispatchRejectsMissingAndUnknownActions(t *testing.T) {
	r := NewRouter(&fakeRunner{})
	id := testIdentity(identity.RoleAdmin)
	app := newTestApp(r, &id)

	status, out := doAction(t, app, "", "")
	assert.Equal(t, http.StatusBadRequest, status)
	require.NotNil(t, out.Error)
	assert.Equal(t, envelope.CodeBadRequest, out.Error.Code)

	status, out = doAction(t, app, "contacts.nonsense", "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, envelope.CodeBadRequest, out.Error.Code)
}

func TestDispatchRequiresIdentity(t *testing.T) {
	r := NewRouter(&fakeRunner{})
	app := newTestApp(r, nil)

	status, out := doAction(t, app, "me", "")
	assert.Equal(t, http.StatusUnauthorized, status)
	require.NotNil(t, out.Error)
	assert.Equal(t, envelope.CodeUnauthorized, out.Error.Code)
	assert.False(t, out.OK)
}

func TestDispatchRoleGate(t *testing.T) {
	r := NewRouter(&fakeRunner{})
	id := testIdentity(identity.RoleParticipant)
	app := newTestApp(r, &id)

	// Forbidden regardless of payload validity.
	for _, action := range []string{"entities/delete", "contact.deleteComment", "users/list", "entities/create"} {
		status, out := doAction(t, app, action, `{"whatever":true}`)
		assert.Equal(t, http.StatusForbidden, status, action)
		require.NotNil(t, out.Error, action)
		assert.Equal(t, envelope.CodeForbidden, out.Error.Code, action)
	}
}

func TestAliasesShareOneHandler(t *testing.T) {
	r := NewRouter(&fakeRunner{})

	pairs := [][2]string{
		{"contact.list", "entities/list"},
		{"contact.get", "entities/get"},
		{"contact.update", "entities/update"},
		{"contact.delete", "entities/delete"},
		{"contact.addComment", "comments.add"},
		{"users/update-role", "users.updateRole"},
		{"csv/export", "csv.export"},
	}
	for _, p := range pairs {
		a, b := r.resolve(p[0]), r.resolve(p[1])
		require.NotNil(t, a, p[0])
		require.NotNil(t, b, p[1])
		assert.Same(t, a, b, "%s and %s must resolve to one definition", p[0], p[1])
	}
}

func TestDispatchEnvelopeOnSuccess(t *testing.T) {
	r := NewRouter(&fakeRunner{})
	r.register("test.echo", nil, func(c *fiber.Ctx, s *session.Session) (interface{}, error) {
		return fiber.Map{"org": s.Identity.OrgID, "role": s.Identity.Role}, nil
	})

	id := testIdentity(identity.RoleCreator)
	app := newTestApp(r, &id)

	status, out := doAction(t, app, "test.echo", "")
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, out.OK)
	assert.Nil(t, out.Error)
	require.NotNil(t, out.Data)
}

func TestDispatchClassifiesErrors(t *testing.T) {
	dupID := uuid.New()
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"not found", repository.ErrNotFound, http.StatusNotFound, envelope.CodeNotFound},
		{"duplicate", &repository.DuplicateError{ID: dupID, FirstName: "Jordan", LastName: "Price"}, http.StatusConflict, envelope.CodeDuplicateContact},
		{"validation", envelope.Validation("firstName and lastName are required"), http.StatusBadRequest, envelope.CodeValidation},
		{"referred-by", repository.ErrReferredByNotInOrg, http.StatusBadRequest, envelope.CodeValidation},
		{"unclassified", errors.New("pq: connection reset"), http.StatusInternalServerError, envelope.CodeDatabase},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRouter(&fakeRunner{})
			r.register("test.fail", nil, func(c *fiber.Ctx, s *session.Session) (interface{}, error) {
				return nil, tt.err
			})
			id := testIdentity(identity.RoleAdmin)
			app := newTestApp(r, &id)

			status, out := doAction(t, app, "test.fail", "")
			assert.Equal(t, tt.wantStatus, status)
			assert.False(t, out.OK)
			require.NotNil(t, out.Error)
			assert.Equal(t, tt.wantCode, out.Error.Code)
		})
	}
}

func TestDuplicateConflictCarriesExistingContact(t *testing.T) {
	dupID := uuid.New()
	r := NewRouter(&fakeRunner{})
	r.register("test.dup", nil, func(c *fiber.Ctx, s *session.Session) (interface{}, error) {
		return nil, &repository.DuplicateError{ID: dupID, FirstName: "Jordan", LastName: "Price"}
	})
	id := testIdentity(identity.RoleCreator)
	app := newTestApp(r, &id)

	status, out := doAction(t, app, "test.dup", "")
	assert.Equal(t, http.StatusConflict, status)
	require.NotNil(t, out.Data)

	data, ok := out.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, dupID.String(), data["id"])
	assert.Equal(t, "Jordan", data["first_name"])
}

func TestUnclassifiedErrorMessageDoesNotLeak(t *testing.T) {
	r := NewRouter(&fakeRunner{})
	r.register("test.boom", nil, func(c *fiber.Ctx, s *session.Session) (interface{}, error) {
		return nil, errors.New("pq: password authentication failed for user postgres")
	})
	id := testIdentity(identity.RoleAdmin)
	app := newTestApp(r, &id)

	_, out := doAction(t, app, "test.boom", "")
	require.NotNil(t, out.Error)
	assert.Equal(t, "internal error", out.Error.Message)
}
