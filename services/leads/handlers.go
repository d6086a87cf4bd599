package leads

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"settlo-leads/api/pkg/middleware"
	"settlo-leads/api/services/storage"
)

// maxRequestBody limits the size of a submission body.
const maxRequestBody = 1 << 20 // 1MB

var tracer = otel.Tracer("settlo-leads.services.leads")

type leadSummary struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

type createLeadResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Lead    leadSummary `json:"lead"`
}

type listLeadsResponse struct {
	Success bool           `json:"success"`
	Count   int            `json:"count"`
	Leads   []storage.Lead `json:"leads"`
}

type failureResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// HandleCreateLead validates and persists a submission, then hands the
// notification off without waiting for it.
func (s *Service) HandleCreateLead(w http.ResponseWriter, r *http.Request) {
	rid := middleware.RequestIDFromContext(r.Context())
	ctx, span := tracer.Start(r.Context(), "leads.create")
	defer span.End()

	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)

	var req CreateLeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("invalid lead request body", "requestId", rid, "error", err)
		s.opts.Metrics.observeRejected("invalid_body")
		span.RecordError(err)
		writeFailure(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	draft, err := req.Validate()
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			slog.Warn("lead rejected", "requestId", rid, "reason", verr.Reason, "source", req.Source)
			s.opts.Metrics.observeRejected(verr.Reason)
			writeFailure(w, http.StatusBadRequest, verr.Message)
			return
		}
		writeFailure(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	span.SetAttributes(attribute.String("lead.source", string(draft.Source)))

	lead, err := s.storage.CreateLead(ctx, draft)
	if err != nil {
		slog.Error("failed to save lead", "requestId", rid, "source", draft.Source, "error", err)
		s.opts.Metrics.observeStorageError("create")
		span.RecordError(err)
		span.SetStatus(codes.Error, "storage failure")
		writeFailure(w, http.StatusInternalServerError, s.storageMessage(err))
		return
	}
	span.SetAttributes(attribute.String("lead.id", lead.ID.String()))
	slog.Info("new lead saved", "id", lead.ID, "source", lead.Source, "requestId", rid)
	s.opts.Metrics.observeSubmission(string(lead.Source))

	s.notifyDetached(ctx, *lead, rid)

	writeJSON(w, http.StatusCreated, createLeadResponse{
		Success: true,
		Message: "Lead submitted successfully!",
		Lead: leadSummary{
			ID:        lead.ID,
			Name:      lead.Name,
			CreatedAt: lead.CreatedAt,
		},
	})
}

// HandleListLeads returns every stored lead, newest first.
func (s *Service) HandleListLeads(w http.ResponseWriter, r *http.Request) {
	rid := middleware.RequestIDFromContext(r.Context())
	ctx, span := tracer.Start(r.Context(), "leads.list")
	defer span.End()

	leads, err := s.storage.ListRecentLeads(ctx)
	if err != nil {
		slog.Error("failed to fetch leads", "requestId", rid, "error", err)
		s.opts.Metrics.observeStorageError("list")
		span.RecordError(err)
		span.SetStatus(codes.Error, "storage failure")
		writeFailure(w, http.StatusInternalServerError, "Failed to fetch leads")
		return
	}
	if leads == nil {
		leads = []storage.Lead{}
	}
	span.SetAttributes(attribute.Int("lead.count", len(leads)))

	writeJSON(w, http.StatusOK, listLeadsResponse{
		Success: true,
		Count:   len(leads),
		Leads:   leads,
	})
}

func (s *Service) storageMessage(err error) string {
	if s.opts.Production {
		return "Failed to submit lead. Please try again."
	}
	cause := err
	var serr *storage.StorageError
	if errors.As(err, &serr) && serr.Err != nil {
		cause = serr.Err
	}
	return "Database error: " + cause.Error()
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	payload, err := json.Marshal(body)
	if err != nil {
		slog.Error("failed to marshal response", "error", err)
		writeFailure(w, http.StatusInternalServerError, "internal server error")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(payload); err != nil {
		slog.Error("failed to write response", "error", err)
	}
}

func writeFailure(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(failureResponse{Success: false, Error: message})
}
