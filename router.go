package main

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"settlo-leads/api/pkg/logging"
	"settlo-leads/api/pkg/middleware"
	"settlo-leads/api/services/health"
	"settlo-leads/api/services/leads"
)

var (
	corsMethods = []string{
		http.MethodGet,
		http.MethodPost,
		http.MethodPut,
		http.MethodPatch,
		http.MethodDelete,
		http.MethodOptions,
	}
	corsHeaders = []string{
		"Content-Type",
		"Accept",
		"Accept-Version",
		"Authorization",
		"Content-Length",
		"Content-MD5",
		"Date",
		"X-Api-Version",
		"X-CSRF-Token",
		"X-Request-ID",
		"X-Requested-With",
	}
)

// newRouter mounts every route. metricsHandler may be nil.
func newRouter(healthSvc *health.Service, leadSvc *leads.Service, metricsHandler http.Handler) *mux.Router {
	mainRouter := mux.NewRouter()
	mainRouter.NotFoundHandler = http.HandlerFunc(notFound)
	mainRouter.MethodNotAllowedHandler = http.HandlerFunc(notFound)

	healthSvc.LoadRoutes(mainRouter)

	apiRouter := mainRouter.PathPrefix("/api").Subrouter()
	leadSvc.LoadRoutes(apiRouter)

	if metricsHandler != nil {
		mainRouter.Handle("/metrics", metricsHandler).Methods(http.MethodGet)
	}
	return mainRouter
}

// newHandler wraps the router with recovery, request ids, access logging
// and CORS, outermost first.
func newHandler(router http.Handler, origins []string) http.Handler {
	corsHandler := handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedMethods(corsMethods),
		handlers.AllowedHeaders(corsHeaders),
		handlers.AllowCredentials(),
		handlers.OptionStatusCode(http.StatusOK),
	)(router)

	h := middleware.AllowPreflightHeaders(corsHeaders)(corsHandler)
	h = middleware.BarePreflight(h)
	h = middleware.RequestLogger(h)
	h = middleware.RequestID(h)
	return handlers.RecoveryHandler(
		handlers.RecoveryLogger(logging.RecoveryLogger{}),
		handlers.PrintRecoveryStack(false),
	)(h)
}

func notFound(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	json.NewEncoder(w).Encode(map[string]string{"error": "Not found"})
}
