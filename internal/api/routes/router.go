package routes

import (
	"net/http"

	"github.com/fonoclinic/backend/internal/api/handlers"
	"github.com/fonoclinic/backend/internal/api/middleware"
	"github.com/fonoclinic/backend/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	patientHandler *handlers.PatientHandler
	sessionHandler *handlers.SessionHandler
	billingHandler *handlers.BillingHandler
	streamHandler  *handlers.InvoiceStreamHandler

	allowedOrigins []string
	metrics        *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(
	patientHandler *handlers.PatientHandler,
	sessionHandler *handlers.SessionHandler,
	billingHandler *handlers.BillingHandler,
	streamHandler *handlers.InvoiceStreamHandler,
	allowedOrigins []string,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux:            http.NewServeMux(),
		patientHandler: patientHandler,
		sessionHandler: sessionHandler,
		billingHandler: billingHandler,
		streamHandler:  streamHandler,
		allowedOrigins: allowedOrigins,
		metrics:        metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	// Health check endpoint
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	// Patient endpoints
	r.mux.HandleFunc("POST /api/patients", r.patientHandler.CreatePatient)
	r.mux.HandleFunc("GET /api/patients", r.patientHandler.ListPatients)

	// Session endpoints
	r.mux.HandleFunc("POST /api/sessions", r.sessionHandler.CreateSession)
	r.mux.HandleFunc("GET /api/sessions", r.sessionHandler.ListSessions)
	r.mux.HandleFunc("POST /api/sessions/{id}/invoice", r.billingHandler.MarkInvoiceIssued)

	// Billing endpoints
	r.mux.HandleFunc("GET /api/billing/review", r.billingHandler.GetReview)
	r.mux.HandleFunc("GET /api/billing/pending/export", r.billingHandler.ExportPending)

	// Invoice event stream, only when an event bus is configured
	if r.streamHandler != nil {
		r.mux.HandleFunc("GET /api/billing/events", r.streamHandler.StreamInvoiceEvents)
	}

	// Observability sits directly on the mux so it sees the routed pattern.
	// CORS wraps everything so preflights never reach the handlers.
	var handler http.Handler = r.mux
	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.CORSMiddleware(r.allowedOrigins)(handler)

	return handler
}
