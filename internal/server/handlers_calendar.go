package server

import (
	"net/http"
	"time"

	"github.com/mentorlabs/mentor/internal/store"
	"github.com/mentorlabs/mentor/internal/validation"
)

func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var from, to time.Time
	if v := r.URL.Query().Get("from"); v != "" {
		parsed, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "from must be RFC 3339")
			return
		}
		from = parsed
	}
	if v := r.URL.Query().Get("to"); v != "" {
		parsed, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "to must be RFC 3339")
			return
		}
		to = parsed
	}

	events, err := s.store.ListEvents(userID, from, to)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if events == nil {
		events = []*store.CalendarEvent{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": events})
}

func (s *Server) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var body struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		StartTime   string `json:"start_time"`
		EndTime     string `json:"end_time"`
		GoalID      string `json:"goal_id"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	if err := validation.ValidateNonEmpty("title", body.Title); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	start, err := time.Parse(time.RFC3339, body.StartTime)
	if err != nil {
		writeError(w, http.StatusBadRequest, "start_time must be RFC 3339")
		return
	}

	var end *time.Time
	if body.EndTime != "" {
		parsed, err := time.Parse(time.RFC3339, body.EndTime)
		if err != nil {
			writeError(w, http.StatusBadRequest, "end_time must be RFC 3339")
			return
		}
		if err := validation.ValidateTimeRange(start, parsed); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		end = &parsed
	}

	event, err := s.store.CreateEvent(userID, body.Title, body.Description, start, end, body.GoalID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, event)
}

func (s *Server) handleCompleteEvent(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUser(w, r); !ok {
		return
	}

	if err := s.store.CompleteEvent(r.PathValue("id")); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"completed": true})
}

func (s *Server) handleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUser(w, r); !ok {
		return
	}

	if err := s.store.DeleteEvent(r.PathValue("id")); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": true})
}
