package health

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"settlo-leads/api/pkg/middleware"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type statusResponse struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	Database string `json:"database,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Service serves liveness and readiness probes.
type Service struct {
	store      Pinger
	message    string
	production bool
}

// NewService creates a health Service. brand is used in the running message.
func NewService(store Pinger, brand string, production bool) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("health: store cannot be nil")
	}
	if brand == "" {
		brand = "Settlo"
	}
	return &Service{
		store:      store,
		message:    brand + " Backend is running!",
		production: production,
	}, nil
}

func (s *Service) LoadRoutes(router *mux.Router) {
	router.HandleFunc("/", s.HandleRoot).Methods(http.MethodGet)
	router.HandleFunc("/api/health", s.HandleHealth).Methods(http.MethodGet)
}

// HandleRoot is the liveness probe; it never touches the store.
func (s *Service) HandleRoot(w http.ResponseWriter, _ *http.Request) {
	write(w, http.StatusOK, statusResponse{Status: "ok", Message: s.message})
}

// HandleHealth pings the store.
func (s *Service) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		slog.Error("database connection failed", "requestId", middleware.RequestIDFromContext(r.Context()), "error", err)
		resp := statusResponse{Status: "error", Message: "Database connection failed"}
		if !s.production {
			resp.Error = err.Error()
		}
		write(w, http.StatusInternalServerError, resp)
		return
	}
	write(w, http.StatusOK, statusResponse{Status: "ok", Message: s.message, Database: "connected"})
}

func write(w http.ResponseWriter, status int, body statusResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to write response", "error", err)
	}
}
