package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mentorlabs/mentor/internal/auth"
	"github.com/mentorlabs/mentor/internal/schedule"
	"github.com/mentorlabs/mentor/internal/store"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeStoreError maps store errors onto HTTP status codes
func writeStoreError(w http.ResponseWriter, err error) {
	writeError(w, errorStatus(err), err.Error())
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, store.ErrUserNotFound),
		errors.Is(err, store.ErrSessionNotFound),
		errors.Is(err, store.ErrGoalNotFound),
		errors.Is(err, store.ErrEventNotFound),
		errors.Is(err, store.ErrNotificationNotFound),
		errors.Is(err, schedule.ErrReminderNotFound):
		return http.StatusNotFound
	case errors.Is(err, schedule.ErrInvalidCron):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// requireUser pulls the authenticated user out of the request context
func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := auth.FromContext(r.Context()).UserID()
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return "", false
	}
	return userID, true
}

// decodeBody parses a JSON request body into dst
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

// ownedSession loads a session and verifies the caller owns it
func (s *Server) ownedSession(w http.ResponseWriter, sessionID, userID string) (*store.ChatSession, bool) {
	session, err := s.store.GetSession(sessionID)
	if err != nil {
		writeStoreError(w, err)
		return nil, false
	}
	if session.UserID != userID {
		writeError(w, http.StatusForbidden, "session belongs to another user")
		return nil, false
	}
	return session, true
}
