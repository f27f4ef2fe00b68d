package record

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	contractx "github.com/sirinut/regibot/agent/contract"
	statex "github.com/sirinut/regibot/agent/state"
	validatex "github.com/sirinut/regibot/agent/validate"
)

// pgUniqueViolation is the SQLSTATE for a unique-constraint violation.
const pgUniqueViolation = "23505"

type PostgresConfig struct {
	DSN     string        `envconfig:"DSN" split_words:"true" required:"true"`
	Timeout time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"10s"`
	InitDB  bool          `envconfig:"INIT_DB" split_words:"true" default:"false"`
}

// Connect opens a bun DB over the Postgres wire driver.
func Connect(cfg PostgresConfig) *bun.DB {
	sqldb := sql.OpenDB(pgdriver.NewConnector(
		pgdriver.WithDSN(cfg.DSN),
		pgdriver.WithTimeout(cfg.Timeout),
	))
	return bun.NewDB(sqldb, pgdialect.New())
}

// PostgresStore is the durable Store implementation. Every mutating
// operation writes an audit entry; audit failures are logged and swallowed.
type PostgresStore struct {
	db  *bun.DB
	now func() time.Time
}

func NewPostgresStore(db *bun.DB) (*PostgresStore, error) {
	if db == nil {
		return nil, errors.New("bun db is required")
	}
	return &PostgresStore{db: db, now: time.Now}, nil
}

// InitSchema creates the users and audit_log tables if missing.
func (s *PostgresStore) InitSchema(ctx context.Context) error {
	for _, model := range []any{(*Record)(nil), (*AuditEntry)(nil)} {
		if _, err := s.db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	return nil
}

func (s *PostgresStore) Create(ctx context.Context, rec *Record) (*Record, error) {
	if rec == nil {
		return nil, errors.New("record is nil")
	}
	now := s.now().UTC()
	rec.CreatedAt = now
	rec.UpdatedAt = now

	if _, err := s.db.NewInsert().Model(rec).Returning("*").Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: %s", contractx.ErrConflict, rec.Email)
		}
		return nil, fmt.Errorf("insert record: %w", err)
	}

	s.audit(ctx, "CREATE", &rec.ID, map[string]any{"email": rec.Email})
	log.Info().Int64("id", rec.ID).Msg("record created")
	return rec, nil
}

func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (*Record, error) {
	rec := new(Record)
	err := s.db.NewSelect().Model(rec).Where("email = ?", email).Limit(1).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", contractx.ErrNotFound, email)
		}
		return nil, fmt.Errorf("select record: %w", err)
	}

	s.audit(ctx, "READ", &rec.ID, map[string]any{"email": email})
	return rec, nil
}

func (s *PostgresStore) Update(ctx context.Context, email string, fields map[statex.Field]string) (*Record, error) {
	if len(fields) == 0 {
		return s.FindByEmail(ctx, email)
	}

	rec := new(Record)
	q := s.db.NewUpdate().Model(rec).
		Where("email = ?", email).
		Set("updated_at = ?", s.now().UTC()).
		Returning("*")

	changed := make([]string, 0, len(fields))
	for field, value := range fields {
		switch field {
		case statex.FieldFullName, statex.FieldEmail, statex.FieldPhoneNumber, statex.FieldAddress:
			q = q.Set("? = ?", bun.Ident(string(field)), value)
		case statex.FieldDateOfBirth:
			dob, err := time.Parse(validatex.DateLayout, value)
			if err != nil {
				return nil, fmt.Errorf("%w: malformed date of birth %q", contractx.ErrValidation, value)
			}
			q = q.Set("? = ?", bun.Ident(string(field)), dob)
		case statex.FieldUpdateSelection, statex.KeyUpdateTarget:
			return nil, fmt.Errorf("%w: %q is not an updateable column", contractx.ErrValidation, field)
		default:
			return nil, fmt.Errorf("%w: unknown field %q", contractx.ErrValidation, field)
		}
		changed = append(changed, string(field))
	}

	res, err := q.Exec(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: %s", contractx.ErrConflict, fields[statex.FieldEmail])
		}
		return nil, fmt.Errorf("update record: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, fmt.Errorf("%w: %s", contractx.ErrNotFound, email)
	}

	s.audit(ctx, "UPDATE", &rec.ID, map[string]any{"email": email, "updated_fields": changed})
	log.Info().Int64("id", rec.ID).Strs("fields", changed).Msg("record updated")
	return rec, nil
}

func (s *PostgresStore) Delete(ctx context.Context, email string) (bool, error) {
	// Fetch first so the audit entry can carry the record id.
	rec, err := s.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, contractx.ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	res, err := s.db.NewDelete().Model((*Record)(nil)).Where("email = ?", email).Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("delete record: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete record: %w", err)
	}
	if n == 0 {
		return false, nil
	}

	s.audit(ctx, "DELETE", &rec.ID, map[string]any{"email": email})
	log.Info().Str("email", email).Msg("record deleted")
	return true, nil
}

func (s *PostgresStore) audit(ctx context.Context, operation string, recordID *int64, details map[string]any) {
	entry := &AuditEntry{
		RecordID:    recordID,
		Operation:   operation,
		Details:     details,
		PerformedAt: s.now().UTC(),
	}
	if _, err := s.db.NewInsert().Model(entry).Exec(ctx); err != nil {
		log.Error().Err(err).Str("operation", operation).Msg("audit log write failed")
	}
}

func isUniqueViolation(err error) bool {
	var pgErr pgdriver.Error
	return errors.As(err, &pgErr) && pgErr.Field('C') == pgUniqueViolation
}
