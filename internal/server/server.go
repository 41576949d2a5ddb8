// Package server exposes the mentor REST and streaming API.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/mentorlabs/mentor/internal/agent"
	"github.com/mentorlabs/mentor/internal/auth"
	"github.com/mentorlabs/mentor/internal/logger"
	"github.com/mentorlabs/mentor/internal/metrics"
	"github.com/mentorlabs/mentor/internal/schedule"
	"github.com/mentorlabs/mentor/internal/store"
)

// Server handles HTTP requests for the mentor service
type Server struct {
	store        *store.Store
	schedule     *schedule.Store
	orchestrator *agent.Orchestrator
	contexts     *agent.ContextBuilder
	authStore    *auth.Store
	limiter      *auth.RateLimiter
	httpServer   *http.Server
}

// New creates a server over the given dependencies
func New(s *store.Store, sched *schedule.Store, orch *agent.Orchestrator, contexts *agent.ContextBuilder, authStore *auth.Store, limiter *auth.RateLimiter) *Server {
	return &Server{
		store:        s,
		schedule:     sched,
		orchestrator: orch,
		contexts:     contexts,
		authStore:    authStore,
		limiter:      limiter,
	}
}

// Handler builds the full route table with middleware applied
func (s *Server) Handler() http.Handler {
	protected := http.NewServeMux()

	protected.HandleFunc("POST /chat/sessions", s.handleCreateSession)
	protected.HandleFunc("GET /chat/sessions", s.handleListSessions)
	protected.HandleFunc("PATCH /chat/sessions/{id}", s.handleRenameSession)
	protected.HandleFunc("DELETE /chat/sessions/{id}", s.handleDeleteSession)
	protected.HandleFunc("GET /chat/history/{id}", s.handleHistory)
	protected.HandleFunc("POST /chat/message", s.handleChatMessage)

	protected.HandleFunc("GET /goals", s.handleListGoals)
	protected.HandleFunc("GET /goals/stats", s.handleGoalStats)
	protected.HandleFunc("PATCH /goals/{id}", s.handleUpdateGoal)

	protected.HandleFunc("GET /calendar", s.handleListEvents)
	protected.HandleFunc("POST /calendar", s.handleCreateEvent)
	protected.HandleFunc("POST /calendar/{id}/complete", s.handleCompleteEvent)
	protected.HandleFunc("DELETE /calendar/{id}", s.handleDeleteEvent)

	protected.HandleFunc("GET /notifications", s.handleListNotifications)
	protected.HandleFunc("POST /notifications/{id}/read", s.handleMarkNotificationRead)

	protected.HandleFunc("GET /profile", s.handleGetProfile)
	protected.HandleFunc("PATCH /profile", s.handleUpdateProfile)

	protected.HandleFunc("GET /reminders", s.handleListReminders)
	protected.HandleFunc("POST /reminders", s.handleCreateReminder)
	protected.HandleFunc("PATCH /reminders/{id}", s.handleUpdateReminder)
	protected.HandleFunc("DELETE /reminders/{id}", s.handleDeleteReminder)

	var protectedChain http.Handler = protected
	protectedChain = auth.RateLimitMiddleware(s.limiter)(protectedChain)
	protectedChain = auth.Middleware(s.authStore)(protectedChain)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /ready", s.handleReady)
	mux.Handle("GET /metrics", metrics.Handler())
	mux.Handle("/", protectedChain)

	return metrics.Middleware(mux)
}

// Serve starts the HTTP server and blocks until it stops
func (s *Server) Serve(addr string) error {
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	logger.Info("HTTP server listening on %s", addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown stops the HTTP server gracefully
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DB().Ping(); err != nil {
		writeError(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
