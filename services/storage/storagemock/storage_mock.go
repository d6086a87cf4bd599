package storagemock

import (
	"context"
	"time"

	"github.com/google/uuid"

	"settlo-leads/api/services/storage"
)

// StorageMock satisfies storage.Storage. Unset funcs fall back to a
// successful default.
type StorageMock struct {
	CreateLeadMock      func(ctx context.Context, draft storage.LeadDraft) (*storage.Lead, error)
	ListRecentLeadsMock func(ctx context.Context) ([]storage.Lead, error)
	PingMock            func(ctx context.Context) error
}

func (m *StorageMock) CreateLead(ctx context.Context, draft storage.LeadDraft) (*storage.Lead, error) {
	if m != nil && m.CreateLeadMock != nil {
		return m.CreateLeadMock(ctx, draft)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, err
	}
	return &storage.Lead{
		ID:        id,
		Name:      draft.Name,
		Email:     draft.Email,
		Phone:     draft.Phone,
		Company:   draft.Company,
		Message:   draft.Message,
		Demo:      draft.Demo,
		Source:    draft.Source,
		CreatedAt: time.Now().UTC(),
	}, nil
}

func (m *StorageMock) ListRecentLeads(ctx context.Context) ([]storage.Lead, error) {
	if m != nil && m.ListRecentLeadsMock != nil {
		return m.ListRecentLeadsMock(ctx)
	}
	return []storage.Lead{}, nil
}

func (m *StorageMock) Ping(ctx context.Context) error {
	if m != nil && m.PingMock != nil {
		return m.PingMock(ctx)
	}
	return nil
}

var _ storage.Storage = (*StorageMock)(nil)
