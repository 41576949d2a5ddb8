package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const defaultSessionTitle = "New chat"

// CreateSession starts a new chat session for a user
func (s *Store) CreateSession(userID string) (*ChatSession, error) {
	session := &ChatSession{
		ID:        uuid.New().String(),
		UserID:    userID,
		Title:     defaultSessionTitle,
		CreatedAt: time.Now().UTC(),
	}

	_, err := s.db.Exec(
		`INSERT INTO chat_sessions (id, user_id, title, created_at) VALUES (?, ?, ?, ?)`,
		session.ID, session.UserID, session.Title, session.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert session: %w", err)
	}

	return session, nil
}

// GetSession returns a session by ID
func (s *Store) GetSession(sessionID string) (*ChatSession, error) {
	var session ChatSession
	err := s.db.QueryRow(
		`SELECT id, user_id, title, created_at FROM chat_sessions WHERE id = ?`,
		sessionID,
	).Scan(&session.ID, &session.UserID, &session.Title, &session.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query session: %w", err)
	}
	return &session, nil
}

// ListSessions returns a user's sessions, newest first
func (s *Store) ListSessions(userID string) ([]*ChatSession, error) {
	rows, err := s.db.Query(
		`SELECT id, user_id, title, created_at FROM chat_sessions WHERE user_id = ? ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var sessions []*ChatSession
	for rows.Next() {
		var session ChatSession
		if err := rows.Scan(&session.ID, &session.UserID, &session.Title, &session.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, &session)
	}
	return sessions, rows.Err()
}

// RenameSession updates a session title
func (s *Store) RenameSession(sessionID, title string) error {
	result, err := s.db.Exec(`UPDATE chat_sessions SET title = ? WHERE id = ?`, title, sessionID)
	if err != nil {
		return fmt.Errorf("failed to rename session: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// DeleteSession removes a session and its turns
func (s *Store) DeleteSession(sessionID string) error {
	result, err := s.db.Exec(`DELETE FROM chat_sessions WHERE id = ?`, sessionID)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrSessionNotFound
	}
	_, _ = s.db.Exec(`DELETE FROM turns WHERE session_id = ?`, sessionID)
	return nil
}

// MaybeAutoTitle derives a title from the first message when the session
// still carries the default title. The title is the first five words.
func (s *Store) MaybeAutoTitle(sessionID, message string) error {
	session, err := s.GetSession(sessionID)
	if err != nil {
		return err
	}
	if session.Title != defaultSessionTitle {
		return nil
	}

	words := strings.Fields(message)
	if len(words) == 0 {
		return nil
	}
	title := strings.Join(words[:min(5, len(words))], " ")
	if len(words) > 5 {
		title += "..."
	}
	return s.RenameSession(sessionID, title)
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
