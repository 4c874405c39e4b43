package repository

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrNotFound           = errors.New("record not found in organization")
	ErrReferredByNotInOrg = errors.New("referred-by contact not found in organization")
)

// DuplicateError is the soft duplicate-guard rejection. It carries the
// existing contact so the client can link to it instead of creating a
// second record.
type DuplicateError struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate of existing contact %s", e.ID)
}
