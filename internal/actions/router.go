package actions

import (
	"errors"
	"log/slog"

	"github.com/getsentry/sentry-go"
	"github.com/gofiber/fiber/v2"
	"github.com/orbitcrm/orbit-backend/internal/envelope"
	"github.com/orbitcrm/orbit-backend/internal/identity"
	"github.com/orbitcrm/orbit-backend/internal/repository"
	"github.com/orbitcrm/orbit-backend/internal/session"
	"github.com/orbitcrm/orbit-backend/internal/tenant"
	"gorm.io/gorm"
)

// HandlerFunc is one action: it runs entirely inside the session
// transaction and returns the data half of the envelope or an error the
// router classifies.
type HandlerFunc func(c *fiber.Ctx, s *session.Session) (interface{}, error)

type actionDef struct {
	name    string
	roles   []identity.Role // nil means any authenticated caller
	handler HandlerFunc
}

// Router maps action names to role-gated handlers. Aliases resolve to one
// canonical key so duplicate names cannot drift apart in behavior.
type Router struct {
	runner  session.Runner
	defs    map[string]*actionDef
	aliases map[string]string
}

func NewRouter(runner session.Runner) *Router {
	r := &Router{
		runner:  runner,
		defs:    make(map[string]*actionDef),
		aliases: make(map[string]string),
	}
	r.registerBuiltin()
	return r
}

func (r *Router) register(name string, roles []identity.Role, h HandlerFunc) {
	r.defs[name] = &actionDef{name: name, roles: roles, handler: h}
}

func (r *Router) alias(alias, canonical string) {
	r.aliases[alias] = canonical
}

// resolve returns the canonical definition for an action name or alias.
func (r *Router) resolve(action string) *actionDef {
	if canonical, ok := r.aliases[action]; ok {
		action = canonical
	}
	return r.defs[action]
}

var (
	adminOnly    = []identity.Role{identity.RoleAdmin}
	adminCreator = []identity.Role{identity.RoleAdmin, identity.RoleCreator}
)

func (r *Router) registerBuiltin() {
	r.register("me", nil, handleMe)

	r.register("users.list", adminOnly, handleUsersList)
	r.register("users.updateRole", adminOnly, handleUsersUpdateRole)
	r.alias("users/list", "users.list")
	r.alias("users/update-role", "users.updateRole")

	r.register("contacts.list", nil, handleContactsList)
	r.register("contacts.get", nil, handleContactsGet)
	r.register("contacts.create", adminCreator, handleContactsCreate)
	r.register("contacts.update", adminCreator, handleContactsUpdate)
	r.register("contacts.delete", adminOnly, handleContactsDelete)
	r.register("contacts.importCsv", adminCreator, handleImportCsv)
	r.alias("contact.list", "contacts.list")
	r.alias("entities/list", "contacts.list")
	r.alias("contact.get", "contacts.get")
	r.alias("entities/get", "contacts.get")
	r.alias("entities/create", "contacts.create")
	r.alias("contact.update", "contacts.update")
	r.alias("entities/update", "contacts.update")
	r.alias("contact.delete", "contacts.delete")
	r.alias("entities/delete", "contacts.delete")
	r.alias("contact.importCsv", "contacts.importCsv")

	r.register("comments.add", nil, handleAddComment)
	r.register("comments.archive", adminCreator, handleArchiveComment)
	r.register("comments.delete", adminOnly, handleDeleteComment)
	r.alias("contact.addComment", "comments.add")
	r.alias("contact.archiveComment", "comments.archive")
	r.alias("contact.deleteComment", "comments.delete")

	r.register("csv.export", adminCreator, handleCsvExport)
	r.alias("csv/export", "csv.export")
}

// Dispatch is the single action endpoint. It resolves the action, checks
// the caller's role, runs the handler inside one session-scoped
// transaction, and translates the outcome into the response envelope. No
// handler picks its own HTTP status.
func (r *Router) Dispatch(c *fiber.Ctx) error {
	action := c.Query("action")
	if action == "" {
		return envelope.Fail(c, envelope.BadRequest("action query parameter is required"))
	}

	def := r.resolve(action)
	if def == nil {
		return envelope.Fail(c, envelope.BadRequest("unknown action: "+action))
	}

	id, ok := tenant.GetIdentity(c)
	if !ok {
		return envelope.Fail(c, envelope.Unauthorized("authentication required"))
	}

	if !roleAllowed(def.roles, id.Role) {
		return envelope.Fail(c, envelope.Forbidden("role "+string(id.Role)+" is not permitted for "+def.name))
	}

	var data interface{}
	err := r.runner.Run(c.UserContext(), id, func(s *session.Session) error {
		d, err := def.handler(c, s)
		data = d
		return err
	})
	if err != nil {
		return envelope.Fail(c, classify(c, def.name, err))
	}
	return envelope.OK(c, data)
}

func roleAllowed(required []identity.Role, have identity.Role) bool {
	if len(required) == 0 {
		return true
	}
	for _, r := range required {
		if r == have {
			return true
		}
	}
	return false
}

// classify maps handler errors onto the error taxonomy. Anything
// unrecognized is reported and surfaced as a generic storage failure so no
// internals leak.
func classify(c *fiber.Ctx, action string, err error) error {
	var apiErr *envelope.Error
	if errors.As(err, &apiErr) {
		return apiErr
	}

	var dup *repository.DuplicateError
	if errors.As(err, &dup) {
		return envelope.DuplicateContact("a matching contact already exists", dup)
	}

	switch {
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		return envelope.NotFound("record not found")
	case errors.Is(err, repository.ErrReferredByNotInOrg):
		return envelope.Validation("referredByContactId does not resolve to a contact in your organization")
	case errors.Is(err, repository.ErrEmptyComment):
		return envelope.Validation("comment body is required")
	}

	slog.Error("action failed", "action", action, "path", c.Path(), "error", err.Error())
	sentry.CaptureException(err)
	return &envelope.Error{Code: envelope.CodeDatabase, Status: fiber.StatusInternalServerError, Message: "internal error"}
}
