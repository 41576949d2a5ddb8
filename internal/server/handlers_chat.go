package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/mentorlabs/mentor/internal/actions"
	"github.com/mentorlabs/mentor/internal/agent"
	"github.com/mentorlabs/mentor/internal/audit"
	"github.com/mentorlabs/mentor/internal/logger"
	"github.com/mentorlabs/mentor/internal/metrics"
	"github.com/mentorlabs/mentor/internal/store"
	"github.com/mentorlabs/mentor/internal/validation"
)

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	session, err := s.store.CreateSession(userID)
	if err != nil {
		audit.LogFailure(audit.OpSessionCreate, userID, "", "", err)
		writeStoreError(w, err)
		return
	}
	audit.LogSuccess(audit.OpSessionCreate, userID, session.ID, session.ID)
	writeJSON(w, http.StatusCreated, session)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	sessions, err := s.store.ListSessions(userID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if sessions == nil {
		sessions = []*store.ChatSession{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"sessions": sessions})
}

func (s *Server) handleRenameSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var body struct {
		Title string `json:"title"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	if err := validation.ValidateNonEmpty("title", body.Title); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	session, ok := s.ownedSession(w, r.PathValue("id"), userID)
	if !ok {
		return
	}
	if err := s.store.RenameSession(session.ID, body.Title); err != nil {
		writeStoreError(w, err)
		return
	}
	session.Title = body.Title
	writeJSON(w, http.StatusOK, session)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	session, ok := s.ownedSession(w, r.PathValue("id"), userID)
	if !ok {
		return
	}
	if err := s.store.DeleteSession(session.ID); err != nil {
		audit.LogFailure(audit.OpSessionDelete, userID, session.ID, session.ID, err)
		writeStoreError(w, err)
		return
	}
	audit.LogSuccess(audit.OpSessionDelete, userID, session.ID, session.ID)
	writeJSON(w, http.StatusOK, map[string]any{"deleted": true})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	session, ok := s.ownedSession(w, r.PathValue("id"), userID)
	if !ok {
		return
	}
	turns, err := s.store.SessionHistory(session.ID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if turns == nil {
		turns = []*store.Turn{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"session": session, "turns": turns})
}

type chatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// handleChatMessage runs one conversation turn, streaming events to the
// client as newline-delimited JSON. Persistence happens after the stream
// so a transport fault never leaves a half-written turn behind.
func (s *Server) handleChatMessage(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req chatRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := validation.ValidateSessionID(req.SessionID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validation.ValidateNonEmpty("message", req.Message); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	session, ok := s.ownedSession(w, req.SessionID, userID)
	if !ok {
		return
	}

	flusher, canFlush := w.(http.Flusher)
	if !canFlush {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	principal := agent.Principal{UserID: userID, SessionID: session.ID}

	if _, err := s.store.AppendTurn(session.ID, userID, store.RoleUser, store.TurnTypeChat, req.Message, nil); err != nil {
		writeStoreError(w, err)
		return
	}
	if err := s.store.MaybeAutoTitle(session.ID, req.Message); err != nil {
		logger.Error("Auto-title failed for session %s: %v", session.ID, err)
	}

	bundle, err := s.contexts.Build(principal)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	encoder := json.NewEncoder(w)
	var lastError string
	emit := func(event agent.Event) {
		if event.Type == agent.EventError {
			lastError = event.Text
		}
		if err := encoder.Encode(event); err != nil {
			logger.Error("Stream write failed for session %s: %v", session.ID, err)
			return
		}
		flusher.Flush()
	}

	metrics.RecordStreamStart()
	start := time.Now()

	outcome, runErr := s.orchestrator.Run(r.Context(), principal, bundle, req.Message, emit)

	status := "ok"
	if runErr != nil {
		status = "error"
	}
	metrics.RecordStreamEnd(status, time.Since(start).Seconds())

	if runErr != nil {
		if lastError == "" {
			lastError = "conversation failed"
		}
		if _, err := s.store.AppendTurn(session.ID, userID, store.RoleAgent, store.TurnTypeError, lastError, nil); err != nil {
			logger.Error("Failed to persist error turn: %v", err)
		}
		return
	}

	s.persistOutcome(principal, outcome)
}

// persistOutcome writes the agent's side of a finished turn: the
// narrative, any structured payloads, and the goal a fresh plan implies.
func (s *Server) persistOutcome(principal agent.Principal, outcome *agent.Outcome) {
	if outcome.Narrative != "" {
		if _, err := s.store.AppendTurn(principal.SessionID, principal.UserID, store.RoleAgent, store.TurnTypeChat, outcome.Narrative, nil); err != nil {
			logger.Error("Failed to persist agent turn: %v", err)
		}
	}

	for _, result := range outcome.Results {
		if result.Err != nil || result.Kind == "" {
			continue
		}
		payload, err := json.Marshal(result.Payload)
		if err != nil {
			logger.Error("Failed to encode %s payload: %v", result.Name, err)
			continue
		}

		msgType := store.TurnTypeResources
		if result.Kind == agent.ResultPlan {
			msgType = store.TurnTypePlan
		}
		if _, err := s.store.AppendTurn(principal.SessionID, principal.UserID, store.RoleAgent, msgType, "", payload); err != nil {
			logger.Error("Failed to persist %s turn: %v", msgType, err)
		}

		if result.Name == "generate_study_plan" {
			if plan, ok := result.Payload.(*actions.Plan); ok {
				s.trackPlanGoal(principal, plan)
			}
		}
	}
}

// trackPlanGoal upserts the session goal a generated plan implies
func (s *Server) trackPlanGoal(principal agent.Principal, plan *actions.Plan) {
	text, totalTasks, deadline := actions.DeriveGoal(plan, time.Now())
	if text == "" {
		return
	}
	goal, err := s.store.UpsertSessionGoal(principal.UserID, principal.SessionID, text, deadline, totalTasks)
	if err != nil {
		logger.Error("Failed to upsert session goal: %v", err)
		return
	}
	audit.LogSuccess(audit.OpGoalCreate, principal.UserID, principal.SessionID, goal.ID)
	if stats, err := s.store.GoalStats(principal.UserID); err == nil {
		metrics.SetGoalsActive(float64(stats.Active))
	}
}
