package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// queryTimeout bounds every statement issued by PgStorage.
const queryTimeout = 5 * time.Second

// DB abstracts the database operations used by the storage layer.
// Satisfied by *pgxpool.Pool in production and pgxmock in tests.
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Ping(ctx context.Context) error
}

// Storage defines the interface for lead data access.
// Leads are append-only: there is no update or delete.
type Storage interface {
	CreateLead(ctx context.Context, draft LeadDraft) (*Lead, error)
	ListRecentLeads(ctx context.Context) ([]Lead, error)
	Ping(ctx context.Context) error
}

// PgStorage implements Storage using PostgreSQL. It is the durable store.
type PgStorage struct {
	db    DB
	newID func() (uuid.UUID, error)
}

// NewPostgres creates a PostgreSQL-backed Storage implementation.
func NewPostgres(db DB) (*PgStorage, error) {
	if db == nil {
		return nil, fmt.Errorf("storage: db connection cannot be nil")
	}
	return &PgStorage{db: db, newID: uuid.NewV7}, nil
}

// CreateLead inserts one row. The id is a UUIDv7 generated here so ids sort
// in creation order; created_at comes from the database clock.
func (s *PgStorage) CreateLead(ctx context.Context, draft LeadDraft) (*Lead, error) {
	const op = "create lead"
	if err := draft.check(); err != nil {
		return nil, wrapErr(op, err)
	}

	id, err := s.newID()
	if err != nil {
		return nil, wrapErr(op, fmt.Errorf("generate id: %w", err))
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	lead := &Lead{
		ID:      id,
		Name:    draft.Name,
		Email:   draft.Email,
		Phone:   draft.Phone,
		Company: draft.Company,
		Message: draft.Message,
		Demo:    draft.Demo,
		Source:  draft.Source,
	}

	err = s.db.QueryRow(timeoutCtx, `
        INSERT INTO leads (id, name, email, phone, company, message, demo, source)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING created_at`,
		id, draft.Name, draft.Email, draft.Phone,
		draft.Company, draft.Message, draft.Demo, string(draft.Source),
	).Scan(&lead.CreatedAt)
	if err != nil {
		return nil, wrapErr(op, err)
	}
	lead.CreatedAt = lead.CreatedAt.UTC()

	return lead, nil
}

// ListRecentLeads returns every lead, newest first. Ties on created_at are
// broken by id, which is time ordered.
func (s *PgStorage) ListRecentLeads(ctx context.Context) ([]Lead, error) {
	const op = "list leads"

	timeoutCtx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := s.db.Query(timeoutCtx, `
        SELECT id, name, email, phone, company, message, demo, source, created_at
        FROM leads
        ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, wrapErr(op, err)
	}
	defer rows.Close()

	leads := []Lead{}
	for rows.Next() {
		var (
			l      Lead
			source string
		)
		err := rows.Scan(
			&l.ID,
			&l.Name,
			&l.Email,
			&l.Phone,
			&l.Company,
			&l.Message,
			&l.Demo,
			&source,
			&l.CreatedAt,
		)
		if err != nil {
			return nil, wrapErr(op, err)
		}
		l.Source = Source(source)
		l.CreatedAt = l.CreatedAt.UTC()
		leads = append(leads, l)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr(op, err)
	}

	return leads, nil
}

// Ping checks that the database is reachable.
func (s *PgStorage) Ping(ctx context.Context) error {
	timeoutCtx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	return wrapErr("ping", s.db.Ping(timeoutCtx))
}
