// Package record holds the persisted registration entity and its stores.
package record

import (
	"context"
	"time"

	"github.com/uptrace/bun"

	statex "github.com/sirinut/regibot/agent/state"
)

// Record is the registration entity, keyed by unique email.
type Record struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID          int64     `bun:"id,pk,autoincrement" json:"id"`
	FullName    string    `bun:"full_name,notnull" json:"full_name"`
	Email       string    `bun:"email,notnull,unique" json:"email"`
	PhoneNumber string    `bun:"phone_number,notnull" json:"phone_number"`
	DateOfBirth time.Time `bun:"date_of_birth,notnull" json:"date_of_birth"`
	Address     string    `bun:"address,notnull" json:"address"`
	CreatedAt   time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt   time.Time `bun:"updated_at,notnull,default:current_timestamp" json:"updated_at"`
}

// AuditEntry records a mutating store operation. Writing it must never fail
// the primary operation.
type AuditEntry struct {
	bun.BaseModel `bun:"table:audit_log,alias:a"`

	ID          int64          `bun:"id,pk,autoincrement" json:"id"`
	RecordID    *int64         `bun:"record_id" json:"record_id,omitempty"`
	Operation   string         `bun:"operation,notnull" json:"operation"`
	Details     map[string]any `bun:"details,type:jsonb" json:"details,omitempty"`
	PerformedAt time.Time      `bun:"performed_at,notnull,default:current_timestamp" json:"performed_at"`
}

// Store is the persistence contract consumed by the conversation engine.
type Store interface {
	// Create inserts rec and returns the stored record with its assigned
	// id; a duplicate email yields ErrConflict.
	Create(ctx context.Context, rec *Record) (*Record, error)

	// FindByEmail returns ErrNotFound when no record exists for email.
	FindByEmail(ctx context.Context, email string) (*Record, error)

	// Update applies the given field values to the record keyed by email
	// and returns the updated record, or ErrNotFound.
	Update(ctx context.Context, email string, fields map[statex.Field]string) (*Record, error)

	// Delete removes the record keyed by email and reports whether one
	// was removed.
	Delete(ctx context.Context, email string) (bool, error)
}
