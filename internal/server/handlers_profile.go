package server

import (
	"encoding/json"
	"net/http"
)

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	user, err := s.store.GetUser(userID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var body struct {
		Email       *string         `json:"email"`
		FullName    *string         `json:"full_name"`
		Preferences json.RawMessage `json:"preferences"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	user, err := s.store.GetUser(userID)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	if body.Email != nil || body.FullName != nil {
		email := user.Email
		fullName := user.FullName
		if body.Email != nil {
			email = *body.Email
		}
		if body.FullName != nil {
			fullName = *body.FullName
		}
		if err := s.store.UpdateUserProfile(userID, email, fullName); err != nil {
			writeStoreError(w, err)
			return
		}
		user.Email = email
		user.FullName = fullName
	}

	if len(body.Preferences) > 0 {
		if err := s.store.SetUserPreferences(userID, body.Preferences); err != nil {
			writeStoreError(w, err)
			return
		}
		user.Preferences = body.Preferences
	}

	writeJSON(w, http.StatusOK, user)
}
