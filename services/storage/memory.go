package storage

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStorage keeps leads in process memory. It is NOT durable: every
// lead is lost when the process exits. Use it for tests and demos only.
type MemoryStorage struct {
	mu    sync.RWMutex
	leads []Lead
	now   func() time.Time
}

// MemoryOption customises a MemoryStorage.
type MemoryOption func(*MemoryStorage)

// WithClock replaces time.Now as the source of CreatedAt.
func WithClock(now func() time.Time) MemoryOption {
	return func(m *MemoryStorage) {
		if now != nil {
			m.now = now
		}
	}
}

// NewMemory creates an empty in-memory store.
func NewMemory(opts ...MemoryOption) *MemoryStorage {
	m := &MemoryStorage{now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// CreateLead appends a lead. The write lock serializes id assignment.
func (m *MemoryStorage) CreateLead(_ context.Context, draft LeadDraft) (*Lead, error) {
	const op = "create lead"
	if err := draft.check(); err != nil {
		return nil, wrapErr(op, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	id, err := uuid.NewV7()
	if err != nil {
		return nil, wrapErr(op, fmt.Errorf("generate id: %w", err))
	}
	lead := Lead{
		ID:        id,
		Name:      draft.Name,
		Email:     draft.Email,
		Phone:     draft.Phone,
		Company:   cloneString(draft.Company),
		Message:   cloneString(draft.Message),
		Demo:      cloneString(draft.Demo),
		Source:    draft.Source,
		CreatedAt: m.now().UTC(),
	}
	m.leads = append(m.leads, lead)

	out := lead
	return &out, nil
}

// ListRecentLeads returns a copy of all leads, newest first. Leads with
// equal CreatedAt come back in reverse insertion order.
func (m *MemoryStorage) ListRecentLeads(_ context.Context) ([]Lead, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Lead, 0, len(m.leads))
	for i := len(m.leads) - 1; i >= 0; i-- {
		out = append(out, m.leads[i])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// Ping always succeeds.
func (m *MemoryStorage) Ping(context.Context) error {
	return nil
}

// Len returns the number of stored leads.
func (m *MemoryStorage) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.leads)
}

// LogNonDurable warns that the process is running without durable storage.
func (m *MemoryStorage) LogNonDurable() {
	slog.Warn("using in-memory lead store: leads are NOT durable and will be lost on restart")
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

var (
	_ Storage = (*PgStorage)(nil)
	_ Storage = (*MemoryStorage)(nil)
)
