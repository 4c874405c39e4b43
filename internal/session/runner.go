package session

import (
	"context"
	"fmt"

	"github.com/orbitcrm/orbit-backend/internal/identity"
	"gorm.io/gorm"
)

// Runner executes a unit of work as one atomic transaction with the caller
// identity bound into the connection's session state.
type Runner interface {
	Run(ctx context.Context, id identity.Identity, fn func(s *Session) error) error
}

// GormRunner is the production Runner backed by the shared GORM pool.
type GormRunner struct {
	db *gorm.DB
}

func NewRunner(db *gorm.DB) *GormRunner {
	return &GormRunner{db: db}
}

// Run acquires one connection, begins a transaction, sets the subject, role
// and organization as transaction-local variables so the database's
// row-level security policies see them, then executes fn. Commit on nil
// error, rollback otherwise; the connection is released either way. Any
// failure inside fn (including the audit write) aborts the whole
// transaction.
func (r *GormRunner) Run(ctx context.Context, id identity.Identity, fn func(s *Session) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := bindIdentity(tx, id); err != nil {
			return fmt.Errorf("failed to bind session identity: %w", err)
		}
		return fn(&Session{Tx: tx, Identity: id})
	})
}

// bindIdentity sets transaction-local variables via set_config(..., true);
// they vanish at commit or rollback, so a pooled connection never leaks one
// caller's identity into the next request.
func bindIdentity(tx *gorm.DB, id identity.Identity) error {
	return tx.Exec(
		"SELECT set_config('app.current_subject', ?, true), set_config('app.current_role', ?, true), set_config('app.current_org', ?, true)",
		id.Subject, string(id.Role), id.OrgID.String(),
	).Error
}
