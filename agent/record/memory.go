package record

import (
	"context"
	"fmt"
	"sync"
	"time"

	contractx "github.com/sirinut/regibot/agent/contract"
	statex "github.com/sirinut/regibot/agent/state"
	validatex "github.com/sirinut/regibot/agent/validate"
)

// MemoryStore is an in-process Store for tests and database-less runs.
type MemoryStore struct {
	mu      sync.Mutex
	nextID  int64
	byEmail map[string]*Record
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nextID:  1,
		byEmail: make(map[string]*Record),
		now:     time.Now,
	}
}

func (m *MemoryStore) Create(ctx context.Context, rec *Record) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.byEmail[rec.Email]; exists {
		return nil, fmt.Errorf("%w: %s", contractx.ErrConflict, rec.Email)
	}

	now := m.now().UTC()
	stored := *rec
	stored.ID = m.nextID
	stored.CreatedAt = now
	stored.UpdatedAt = now
	m.nextID++
	m.byEmail[stored.Email] = &stored

	out := stored
	return &out, nil
}

func (m *MemoryStore) FindByEmail(ctx context.Context, email string) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.byEmail[email]
	if !ok {
		return nil, fmt.Errorf("%w: %s", contractx.ErrNotFound, email)
	}
	out := *rec
	return &out, nil
}

func (m *MemoryStore) Update(ctx context.Context, email string, fields map[statex.Field]string) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.byEmail[email]
	if !ok {
		return nil, fmt.Errorf("%w: %s", contractx.ErrNotFound, email)
	}

	updated := *rec
	for field, value := range fields {
		switch field {
		case statex.FieldFullName:
			updated.FullName = value
		case statex.FieldEmail:
			if other, exists := m.byEmail[value]; exists && other.ID != rec.ID {
				return nil, fmt.Errorf("%w: %s", contractx.ErrConflict, value)
			}
			updated.Email = value
		case statex.FieldPhoneNumber:
			updated.PhoneNumber = value
		case statex.FieldAddress:
			updated.Address = value
		case statex.FieldDateOfBirth:
			dob, err := time.Parse(validatex.DateLayout, value)
			if err != nil {
				return nil, fmt.Errorf("%w: malformed date of birth %q", contractx.ErrValidation, value)
			}
			updated.DateOfBirth = dob
		case statex.FieldUpdateSelection, statex.KeyUpdateTarget:
			return nil, fmt.Errorf("%w: %q is not an updateable column", contractx.ErrValidation, field)
		default:
			return nil, fmt.Errorf("%w: unknown field %q", contractx.ErrValidation, field)
		}
	}
	updated.UpdatedAt = m.now().UTC()

	if updated.Email != email {
		delete(m.byEmail, email)
	}
	m.byEmail[updated.Email] = &updated

	out := updated
	return &out, nil
}

func (m *MemoryStore) Delete(ctx context.Context, email string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byEmail[email]; !ok {
		return false, nil
	}
	delete(m.byEmail, email)
	return true, nil
}
