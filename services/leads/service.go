package leads

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"settlo-leads/api/services/storage"
)

// DefaultNotifyTimeout bounds a detached notification when Options leaves
// NotifyTimeout unset.
const DefaultNotifyTimeout = 30 * time.Second

// LeadNotifier delivers the notification for a persisted lead and reports
// success. Implementations must not panic on delivery failure.
type LeadNotifier interface {
	NotifyLead(ctx context.Context, lead storage.Lead) bool
}

// Options tune a Service.
type Options struct {
	// Production hides internal error causes from responses.
	Production    bool
	NotifyTimeout time.Duration
	Metrics       *Metrics
}

// Service handles the lead intake and listing endpoints.
type Service struct {
	storage  storage.Storage
	notifier LeadNotifier
	opts     Options

	mu       sync.Mutex // guards closing and inflight.Add
	closing  bool
	inflight sync.WaitGroup
}

// NewService creates a lead Service. notifier may be nil, in which case no
// notifications are sent.
func NewService(store storage.Storage, notifier LeadNotifier, opts Options) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("service: store cannot be nil")
	}
	if opts.NotifyTimeout <= 0 {
		opts.NotifyTimeout = DefaultNotifyTimeout
	}
	return &Service{storage: store, notifier: notifier, opts: opts}, nil
}

// jsonMiddleware sets the Content-Type header to application/json
func jsonMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

func (s *Service) LoadRoutes(parentRouter *mux.Router) {
	router := parentRouter.PathPrefix("/leads").Subrouter()
	router.StrictSlash(false)
	router.Use(jsonMiddleware)

	router.HandleFunc("", s.HandleCreateLead).Methods(http.MethodPost)
	router.HandleFunc("", s.HandleListLeads).Methods(http.MethodGet)
}

// notifyDetached runs the notification on its own goroutine. The context
// keeps the request's values but not its cancellation, so the send outlives
// the response.
func (s *Service) notifyDetached(ctx context.Context, lead storage.Lead, rid string) {
	if s.notifier == nil {
		return
	}
	s.mu.Lock()
	if s.closing {
		s.mu.Unlock()
		slog.Warn("lead saved but notification skipped during shutdown", "id", lead.ID, "requestId", rid)
		return
	}
	s.inflight.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.inflight.Done()
		defer func() {
			if rec := recover(); rec != nil {
				slog.Error("panic in lead notification", "id", lead.ID, "requestId", rid, "panic", rec)
			}
		}()

		nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opts.NotifyTimeout)
		defer cancel()

		if !s.notifier.NotifyLead(nctx, lead) {
			slog.Warn("lead saved but notification not delivered", "id", lead.ID, "requestId", rid)
		}
	}()
}

// Wait stops new notifications from starting and blocks until in-flight
// ones finish or ctx is done. Leads created after Wait are still saved.
func (s *Service) Wait(ctx context.Context) error {
	s.mu.Lock()
	s.closing = true
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
