package server

import (
	"net/http"

	"github.com/mentorlabs/mentor/internal/audit"
	"github.com/mentorlabs/mentor/internal/schedule"
	"github.com/mentorlabs/mentor/internal/validation"
)

func (s *Server) handleListReminders(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	reminders, err := s.schedule.List(userID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if reminders == nil {
		reminders = []*schedule.Reminder{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"reminders": reminders})
}

func (s *Server) handleCreateReminder(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var body struct {
		Title    string `json:"title"`
		Message  string `json:"message"`
		CronExpr string `json:"cron_expr"`
		Enabled  *bool  `json:"enabled"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	if err := validation.ValidateNonEmpty("title", body.Title); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validation.ValidateNonEmpty("cron_expr", body.CronExpr); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if body.Message == "" {
		body.Message = body.Title
	}

	enabled := true
	if body.Enabled != nil {
		enabled = *body.Enabled
	}

	reminder := &schedule.Reminder{
		UserID:   userID,
		Title:    body.Title,
		Message:  body.Message,
		CronExpr: body.CronExpr,
		Enabled:  enabled,
	}
	if err := s.schedule.Create(reminder); err != nil {
		audit.LogFailure(audit.OpReminderCreate, userID, "", "", err)
		writeStoreError(w, err)
		return
	}
	audit.LogSuccess(audit.OpReminderCreate, userID, "", reminder.ID)

	writeJSON(w, http.StatusCreated, reminder)
}

func (s *Server) handleUpdateReminder(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	reminder, ok := s.ownedReminder(w, r.PathValue("id"), userID)
	if !ok {
		return
	}

	var update schedule.ReminderUpdate
	if !decodeBody(w, r, &update) {
		return
	}
	if err := s.schedule.Update(reminder.ID, &update); err != nil {
		writeStoreError(w, err)
		return
	}

	updated, err := s.schedule.Get(reminder.ID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteReminder(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	reminder, ok := s.ownedReminder(w, r.PathValue("id"), userID)
	if !ok {
		return
	}
	if err := s.schedule.Delete(reminder.ID); err != nil {
		audit.LogFailure(audit.OpReminderDelete, userID, "", reminder.ID, err)
		writeStoreError(w, err)
		return
	}
	audit.LogSuccess(audit.OpReminderDelete, userID, "", reminder.ID)

	writeJSON(w, http.StatusOK, map[string]any{"deleted": true})
}

func (s *Server) ownedReminder(w http.ResponseWriter, reminderID, userID string) (*schedule.Reminder, bool) {
	reminder, err := s.schedule.Get(reminderID)
	if err != nil {
		writeStoreError(w, err)
		return nil, false
	}
	if reminder.UserID != userID {
		writeError(w, http.StatusForbidden, "reminder belongs to another user")
		return nil, false
	}
	return reminder, true
}
