package storage

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Source tags the website flow a lead came from.
type Source string

const (
	// SourceContact is the contact form.
	SourceContact Source = "contact"
	// SourceHero is the demo request form in the landing page hero.
	SourceHero Source = "hero"
)

// Valid reports whether s is one of the accepted sources.
func (s Source) Valid() bool {
	return s == SourceContact || s == SourceHero
}

// Lead is a persisted inquiry. Optional fields are nil when the visitor left
// them blank and are serialized as null, never omitted.
type Lead struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	Phone     string    `json:"phone" db:"phone"`
	Company   *string   `json:"company" db:"company"`
	Message   *string   `json:"message" db:"message"`
	Demo      *string   `json:"demo" db:"demo"`
	Source    Source    `json:"source" db:"source"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// LeadDraft is everything the caller supplies; the store assigns ID and
// CreatedAt.
type LeadDraft struct {
	Name    string
	Email   string
	Phone   string
	Company *string
	Message *string
	Demo    *string
	Source  Source
}

// ErrConstraint is the cause reported when a draft breaks a lead invariant.
var ErrConstraint = errors.New("lead constraint violated")

// check mirrors the CHECK constraints of the leads table.
func (d LeadDraft) check() error {
	required := []struct{ field, value string }{
		{"name", d.Name},
		{"email", d.Email},
		{"phone", d.Phone},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return fmt.Errorf("%w: %s is empty", ErrConstraint, r.field)
		}
	}
	if !d.Source.Valid() {
		return fmt.Errorf("%w: source %q", ErrConstraint, d.Source)
	}
	return nil
}

// StorageError reports that the backing medium was unreachable or rejected
// the operation.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func wrapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}
