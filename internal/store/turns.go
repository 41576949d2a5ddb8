package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AppendTurn persists one message of a conversation
func (s *Store) AppendTurn(sessionID, userID, role, msgType, text string, content json.RawMessage) (*Turn, error) {
	turn := &Turn{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		UserID:    userID,
		Role:      role,
		MsgType:   msgType,
		Text:      text,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}

	var contentStr any
	if content != nil {
		contentStr = string(content)
	}

	_, err := s.db.Exec(
		`INSERT INTO turns (id, session_id, user_id, role, msg_type, text, content, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		turn.ID, turn.SessionID, turn.UserID, turn.Role, turn.MsgType, turn.Text, contentStr, turn.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert turn: %w", err)
	}

	return turn, nil
}

// SessionHistory returns a session's turns in chronological order
func (s *Store) SessionHistory(sessionID string) ([]*Turn, error) {
	rows, err := s.db.Query(
		`SELECT id, session_id, user_id, role, msg_type, text, content, created_at
		 FROM turns WHERE session_id = ? ORDER BY created_at ASC`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer func() { _ = rows.Close() }()
	return scanTurns(rows)
}

// RecentSessionTurns returns the last n turns of one session, oldest first
func (s *Store) RecentSessionTurns(sessionID string, n int) ([]*Turn, error) {
	rows, err := s.db.Query(
		`SELECT id, session_id, user_id, role, msg_type, text, content, created_at
		 FROM turns WHERE session_id = ? ORDER BY created_at DESC LIMIT ?`,
		sessionID, n,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent turns: %w", err)
	}
	defer func() { _ = rows.Close() }()

	turns, err := scanTurns(rows)
	if err != nil {
		return nil, err
	}
	reverse(turns)
	return turns, nil
}

// RecentUserTurns returns the last n chat turns across all of a user's
// sessions except the given one, oldest first.
func (s *Store) RecentUserTurns(userID, excludeSessionID string, n int) ([]*Turn, error) {
	rows, err := s.db.Query(
		`SELECT id, session_id, user_id, role, msg_type, text, content, created_at
		 FROM turns WHERE user_id = ? AND session_id != ? AND msg_type = 'chat'
		 ORDER BY created_at DESC LIMIT ?`,
		userID, excludeSessionID, n,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query cross-session turns: %w", err)
	}
	defer func() { _ = rows.Close() }()

	turns, err := scanTurns(rows)
	if err != nil {
		return nil, err
	}
	reverse(turns)
	return turns, nil
}

// CountTurns returns the number of turns in a session
func (s *Store) CountTurns(sessionID string) (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM turns WHERE session_id = ?`, sessionID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count turns: %w", err)
	}
	return count, nil
}

// LatestPlanContent returns the most recent plan payload stored for a
// session, or nil when none exists.
func (s *Store) LatestPlanContent(sessionID string) (json.RawMessage, error) {
	var content sql.NullString
	err := s.db.QueryRow(
		`SELECT content FROM turns WHERE session_id = ? AND msg_type = 'plan'
		 ORDER BY created_at DESC LIMIT 1`,
		sessionID,
	).Scan(&content)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query plan: %w", err)
	}
	if !content.Valid {
		return nil, nil
	}
	return json.RawMessage(content.String), nil
}

func scanTurns(rows *sql.Rows) ([]*Turn, error) {
	var turns []*Turn
	for rows.Next() {
		var turn Turn
		var content sql.NullString
		if err := rows.Scan(&turn.ID, &turn.SessionID, &turn.UserID, &turn.Role,
			&turn.MsgType, &turn.Text, &content, &turn.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan turn: %w", err)
		}
		if content.Valid && content.String != "" {
			turn.Content = json.RawMessage(content.String)
		}
		turns = append(turns, &turn)
	}
	return turns, rows.Err()
}

func reverse(turns []*Turn) {
	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}
}
