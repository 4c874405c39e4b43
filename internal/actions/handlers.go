package actions

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/orbitcrm/orbit-backend/internal/audit"
	"github.com/orbitcrm/orbit-backend/internal/envelope"
	"github.com/orbitcrm/orbit-backend/internal/identity"
	"github.com/orbitcrm/orbit-backend/internal/models"
	"github.com/orbitcrm/orbit-backend/internal/repository"
	"github.com/orbitcrm/orbit-backend/internal/session"
)

func requestMeta(c *fiber.Ctx) audit.Request {
	return audit.Request{IP: c.IP(), UserAgent: c.Get("User-Agent")}
}

// --- Identity ---

func handleMe(c *fiber.Ctx, s *session.Session) (interface{}, error) {
	// Resolving identity doubles as login bootstrap: first sight of a new
	// subject creates its application user row.
	user, err := audit.EnsureUser(s)
	if err != nil {
		return nil, err
	}
	return fiber.Map{
		"identity": fiber.Map{
			"subject": s.Identity.Subject,
			"email":   s.Identity.Email,
			"role":    s.Identity.Role,
			"org_id":  s.Identity.OrgID,
		},
		"user": user,
	}, nil
}

// --- Users ---

func handleUsersList(c *fiber.Ctx, s *session.Session) (interface{}, error) {
	users, err := repository.ListUsers(s)
	if err != nil {
		return nil, err
	}
	return fiber.Map{"users": users}, nil
}

type updateRoleRequest struct {
	UserID uuid.UUID `json:"userId"`
	Role   string    `json:"role"`
}

func handleUsersUpdateRole(c *fiber.Ctx, s *session.Session) (interface{}, error) {
	var req updateRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, envelope.BadRequest("invalid JSON body")
	}
	if req.UserID == uuid.Nil {
		return nil, envelope.Validation("userId is required")
	}
	if !identity.Role(req.Role).Valid() {
		return nil, envelope.Validation("role must be one of admin, creator, participant")
	}

	previous, err := repository.UpdateUserRole(s, req.UserID, req.Role)
	if err != nil {
		return nil, err
	}

	actor, err := audit.EnsureUser(s)
	if err != nil {
		return nil, err
	}
	err = audit.Record(s, actor, requestMeta(c), "users.updateRole", "user", &req.UserID, map[string]interface{}{
		"previous_role": previous,
		"new_role":      req.Role,
	})
	if err != nil {
		return nil, err
	}

	return fiber.Map{"id": req.UserID, "role": req.Role}, nil
}

// --- Contacts ---

func handleContactsList(c *fiber.Ctx, s *session.Session) (interface{}, error) {
	term := c.Query("q")
	if term == "" {
		var body struct {
			Q string `json:"q"`
		}
		if len(c.Body()) > 0 {
			_ = c.BodyParser(&body)
			term = body.Q
		}
	}

	contacts, err := repository.SearchContacts(s, term)
	if err != nil {
		return nil, err
	}
	return fiber.Map{"contacts": contacts, "count": len(contacts)}, nil
}

func handleContactsGet(c *fiber.Ctx, s *session.Session) (interface{}, error) {
	id, err := idParam(c, "contactId")
	if err != nil {
		return nil, err
	}
	return repository.GetContactDetail(s, id)
}

type createContactRequest struct {
	repository.ContactInput
	AllowDuplicate bool `json:"allowDuplicate"`
}

func handleContactsCreate(c *fiber.Ctx, s *session.Session) (interface{}, error) {
	var req createContactRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, envelope.BadRequest("invalid JSON body")
	}
	if err := validateContactInput(&req.ContactInput); err != nil {
		return nil, err
	}

	actor, err := audit.EnsureUser(s)
	if err != nil {
		return nil, err
	}

	contact, err := repository.CreateContact(s, &req.ContactInput, actor, req.AllowDuplicate)
	if err != nil {
		return nil, err
	}

	err = audit.Record(s, actor, requestMeta(c), "contacts.create", "contact", &contact.ID, nil)
	if err != nil {
		return nil, err
	}
	return contact, nil
}

type updateContactRequest struct {
	ID uuid.UUID `json:"id"`
	repository.ContactInput
}

func handleContactsUpdate(c *fiber.Ctx, s *session.Session) (interface{}, error) {
	var req updateContactRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, envelope.BadRequest("invalid JSON body")
	}
	if req.ID == uuid.Nil {
		return nil, envelope.Validation("id is required")
	}
	if err := validateContactInput(&req.ContactInput); err != nil {
		return nil, err
	}

	actor, err := audit.EnsureUser(s)
	if err != nil {
		return nil, err
	}

	contact, err := repository.UpdateContact(s, req.ID, &req.ContactInput, actor)
	if err != nil {
		return nil, err
	}

	err = audit.Record(s, actor, requestMeta(c), "contacts.update", "contact", &contact.ID, nil)
	if err != nil {
		return nil, err
	}
	return contact, nil
}

func handleContactsDelete(c *fiber.Ctx, s *session.Session) (interface{}, error) {
	id, err := idParam(c, "id")
	if err != nil {
		return nil, err
	}

	actor, err := audit.EnsureUser(s)
	if err != nil {
		return nil, err
	}

	if err := repository.DeleteContact(s, id); err != nil {
		return nil, err
	}

	err = audit.Record(s, actor, requestMeta(c), "contacts.delete", "contact", &id, nil)
	if err != nil {
		return nil, err
	}
	return fiber.Map{"deleted": id}, nil
}

type importCsvRequest struct {
	CSV string `json:"csv"`
}

func handleImportCsv(c *fiber.Ctx, s *session.Session) (interface{}, error) {
	var req importCsvRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, envelope.BadRequest("invalid JSON body")
	}
	if strings.TrimSpace(req.CSV) == "" {
		return nil, envelope.Validation("csv text is required")
	}

	inputs, skipped, err := parseContactsCSV(req.CSV)
	if err != nil {
		return nil, envelope.Validation("unreadable csv: " + err.Error())
	}

	actor, err := audit.EnsureUser(s)
	if err != nil {
		return nil, err
	}

	imported := 0
	for i := range inputs {
		// Bulk import skips the duplicate guard: re-imports are expected.
		if _, err := repository.CreateContact(s, &inputs[i], actor, true); err != nil {
			return nil, err
		}
		imported++
	}

	err = audit.Record(s, actor, requestMeta(c), "contacts.importCsv", "contact", nil, map[string]interface{}{
		"imported": imported,
		"skipped":  skipped,
	})
	if err != nil {
		return nil, err
	}
	return fiber.Map{"imported": imported, "skipped": skipped}, nil
}

// --- Comments ---

type addCommentRequest struct {
	ContactID uuid.UUID `json:"contactId"`
	Body      string    `json:"body"`
}

func handleAddComment(c *fiber.Ctx, s *session.Session) (interface{}, error) {
	var req addCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, envelope.BadRequest("invalid JSON body")
	}
	if req.ContactID == uuid.Nil {
		return nil, envelope.Validation("contactId is required")
	}

	actor, err := audit.EnsureUser(s)
	if err != nil {
		return nil, err
	}

	comment, err := repository.AddComment(s, req.ContactID, req.Body, actor)
	if err != nil {
		return nil, err
	}

	err = audit.Record(s, actor, requestMeta(c), "comments.add", "comment", &comment.ID, nil)
	if err != nil {
		return nil, err
	}
	return comment, nil
}

type commentRequest struct {
	CommentID uuid.UUID `json:"commentId"`
	Archived  *bool     `json:"archived"`
}

func handleArchiveComment(c *fiber.Ctx, s *session.Session) (interface{}, error) {
	var req commentRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, envelope.BadRequest("invalid JSON body")
	}
	if req.CommentID == uuid.Nil {
		return nil, envelope.Validation("commentId is required")
	}
	archived := true
	if req.Archived != nil {
		archived = *req.Archived
	}

	actor, err := audit.EnsureUser(s)
	if err != nil {
		return nil, err
	}

	if err := repository.SetCommentArchived(s, req.CommentID, archived); err != nil {
		return nil, err
	}

	err = audit.Record(s, actor, requestMeta(c), "comments.archive", "comment", &req.CommentID, map[string]interface{}{
		"archived": archived,
	})
	if err != nil {
		return nil, err
	}
	return fiber.Map{"id": req.CommentID, "archived": archived}, nil
}

func handleDeleteComment(c *fiber.Ctx, s *session.Session) (interface{}, error) {
	var req commentRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, envelope.BadRequest("invalid JSON body")
	}
	if req.CommentID == uuid.Nil {
		return nil, envelope.Validation("commentId is required")
	}

	actor, err := audit.EnsureUser(s)
	if err != nil {
		return nil, err
	}

	if err := repository.SoftDeleteComment(s, req.CommentID); err != nil {
		return nil, err
	}

	err = audit.Record(s, actor, requestMeta(c), "comments.delete", "comment", &req.CommentID, nil)
	if err != nil {
		return nil, err
	}
	return fiber.Map{"id": req.CommentID, "deleted": true}, nil
}

// --- Export ---

// handleCsvExport returns a descriptor only; generating the file is a
// client-side concern for now.
func handleCsvExport(c *fiber.Ctx, s *session.Session) (interface{}, error) {
	return fiber.Map{
		"status": "pending",
		"format": "csv",
		"org_id": s.Identity.OrgID,
	}, nil
}

// --- helpers ---

// idParam reads a UUID from the named query param, falling back to the
// "id"/named field of a JSON body.
func idParam(c *fiber.Ctx, name string) (uuid.UUID, error) {
	raw := c.Query(name)
	if raw == "" {
		raw = c.Query("id")
	}
	if raw == "" && len(c.Body()) > 0 {
		var body map[string]interface{}
		if err := c.BodyParser(&body); err == nil {
			if v, ok := body[name].(string); ok {
				raw = v
			} else if v, ok := body["id"].(string); ok {
				raw = v
			}
		}
	}
	if raw == "" {
		return uuid.Nil, envelope.Validation(name + " is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, envelope.Validation(name + " is not a valid UUID")
	}
	return id, nil
}

func validateContactInput(in *repository.ContactInput) error {
	if strings.TrimSpace(in.FirstName) == "" || strings.TrimSpace(in.LastName) == "" {
		return envelope.Validation("firstName and lastName are required")
	}
	if in.Status != "" && !validStatus(in.Status) {
		return envelope.Validation("status must be one of Active, Prospect, Inactive, Archived")
	}
	return nil
}

func validStatus(status string) bool {
	for _, s := range models.ContactStatuses {
		if s == status {
			return true
		}
	}
	return false
}
