package server

import (
	"net/http"

	"github.com/mentorlabs/mentor/internal/audit"
	"github.com/mentorlabs/mentor/internal/metrics"
	"github.com/mentorlabs/mentor/internal/store"
	"github.com/mentorlabs/mentor/internal/validation"
)

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	goals, err := s.store.ListGoals(userID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if goals == nil {
		goals = []*store.Goal{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"goals": goals})
}

func (s *Server) handleGoalStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	stats, err := s.store.GoalStats(userID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleUpdateGoal(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var body struct {
		Status string `json:"status"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	if err := validation.ValidateGoalStatus(body.Status); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	goalID := r.PathValue("id")
	goal, err := s.store.GetGoal(goalID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if goal.UserID != userID {
		writeError(w, http.StatusForbidden, "goal belongs to another user")
		return
	}

	if err := s.store.SetGoalStatus(goalID, body.Status); err != nil {
		audit.LogFailure(audit.OpGoalStatus, userID, "", goalID, err)
		writeStoreError(w, err)
		return
	}
	audit.LogSuccess(audit.OpGoalStatus, userID, "", goalID)

	if stats, err := s.store.GoalStats(userID); err == nil {
		metrics.SetGoalsActive(float64(stats.Active))
	}

	goal.Status = body.Status
	writeJSON(w, http.StatusOK, goal)
}
