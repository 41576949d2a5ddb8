package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CreateGoal inserts a new goal
func (s *Store) CreateGoal(userID, sessionID, text string, deadline *time.Time, totalTasks int) (*Goal, error) {
	now := time.Now().UTC()
	goal := &Goal{
		ID:         uuid.New().String(),
		UserID:     userID,
		SessionID:  sessionID,
		Text:       text,
		Deadline:   deadline,
		Status:     GoalActive,
		TotalTasks: totalTasks,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	_, err := s.db.Exec(
		`INSERT INTO goals (id, user_id, session_id, text, deadline, status, progress, completed_tasks, total_tasks, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		goal.ID, goal.UserID, goal.SessionID, goal.Text, goal.Deadline, goal.Status,
		goal.Progress, goal.CompletedTasks, goal.TotalTasks, goal.CreatedAt, goal.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert goal: %w", err)
	}

	return goal, nil
}

// GetGoal returns a goal by ID
func (s *Store) GetGoal(goalID string) (*Goal, error) {
	return s.scanGoal(s.db.QueryRow(
		`SELECT id, user_id, session_id, text, deadline, status, progress, completed_tasks, total_tasks, created_at, updated_at
		 FROM goals WHERE id = ?`, goalID,
	))
}

// SessionGoal returns the goal linked to a chat session, if any
func (s *Store) SessionGoal(sessionID string) (*Goal, error) {
	return s.scanGoal(s.db.QueryRow(
		`SELECT id, user_id, session_id, text, deadline, status, progress, completed_tasks, total_tasks, created_at, updated_at
		 FROM goals WHERE session_id = ? ORDER BY created_at DESC LIMIT 1`, sessionID,
	))
}

// ListGoals returns all goals for a user, newest first
func (s *Store) ListGoals(userID string) ([]*Goal, error) {
	rows, err := s.db.Query(
		`SELECT id, user_id, session_id, text, deadline, status, progress, completed_tasks, total_tasks, created_at, updated_at
		 FROM goals WHERE user_id = ? ORDER BY created_at DESC`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list goals: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var goals []*Goal
	for rows.Next() {
		goal, err := scanGoalRow(rows)
		if err != nil {
			return nil, err
		}
		goals = append(goals, goal)
	}
	return goals, rows.Err()
}

// UpsertSessionGoal creates or replaces the goal tracked for a session.
// A session carries at most one goal; plan regeneration updates it in place.
func (s *Store) UpsertSessionGoal(userID, sessionID, text string, deadline *time.Time, totalTasks int) (*Goal, error) {
	existing, err := s.SessionGoal(sessionID)
	if err == ErrGoalNotFound {
		return s.CreateGoal(userID, sessionID, text, deadline, totalTasks)
	}
	if err != nil {
		return nil, err
	}

	existing.Text = text
	existing.Deadline = deadline
	existing.TotalTasks = totalTasks
	existing.CompletedTasks = 0
	existing.Progress = 0
	existing.Status = GoalActive
	existing.UpdatedAt = time.Now().UTC()

	_, err = s.db.Exec(
		`UPDATE goals SET text = ?, deadline = ?, total_tasks = ?, completed_tasks = 0, progress = 0, status = ?, updated_at = ?
		 WHERE id = ?`,
		existing.Text, existing.Deadline, existing.TotalTasks, existing.Status, existing.UpdatedAt, existing.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update goal: %w", err)
	}
	return existing, nil
}

// UpdateGoalProgress records completed task count. Progress is the
// completed/total percentage capped at 100; reaching 100 completes the goal.
func (s *Store) UpdateGoalProgress(goalID string, completedTasks int) (*Goal, error) {
	goal, err := s.GetGoal(goalID)
	if err != nil {
		return nil, err
	}

	goal.CompletedTasks = completedTasks
	if goal.TotalTasks > 0 {
		goal.Progress = completedTasks * 100 / goal.TotalTasks
		if goal.Progress > 100 {
			goal.Progress = 100
		}
	}
	if goal.Progress >= 100 {
		goal.Status = GoalCompleted
	}
	goal.UpdatedAt = time.Now().UTC()

	_, err = s.db.Exec(
		`UPDATE goals SET completed_tasks = ?, progress = ?, status = ?, updated_at = ? WHERE id = ?`,
		goal.CompletedTasks, goal.Progress, goal.Status, goal.UpdatedAt, goal.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update progress: %w", err)
	}
	return goal, nil
}

// SetGoalStatus updates a goal's lifecycle state
func (s *Store) SetGoalStatus(goalID, status string) error {
	result, err := s.db.Exec(
		`UPDATE goals SET status = ?, updated_at = ? WHERE id = ?`,
		status, time.Now().UTC(), goalID,
	)
	if err != nil {
		return fmt.Errorf("failed to set goal status: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrGoalNotFound
	}
	return nil
}

// GoalStats summarizes a user's goals in one query pass
func (s *Store) GoalStats(userID string) (*GoalStats, error) {
	goals, err := s.ListGoals(userID)
	if err != nil {
		return nil, err
	}

	stats := &GoalStats{Total: len(goals)}
	progressSum := 0
	for _, g := range goals {
		switch g.Status {
		case GoalActive:
			stats.Active++
		case GoalCompleted:
			stats.Completed++
		case GoalPaused:
			stats.Paused++
		}
		progressSum += g.Progress
	}
	if stats.Total > 0 {
		stats.AverageProgress = progressSum / stats.Total
	}
	return stats, nil
}

func (s *Store) scanGoal(row *sql.Row) (*Goal, error) {
	var goal Goal
	var sessionID sql.NullString
	var deadline sql.NullTime

	err := row.Scan(&goal.ID, &goal.UserID, &sessionID, &goal.Text, &deadline, &goal.Status,
		&goal.Progress, &goal.CompletedTasks, &goal.TotalTasks, &goal.CreatedAt, &goal.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrGoalNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query goal: %w", err)
	}

	goal.SessionID = sessionID.String
	if deadline.Valid {
		goal.Deadline = &deadline.Time
	}
	return &goal, nil
}

func scanGoalRow(rows *sql.Rows) (*Goal, error) {
	var goal Goal
	var sessionID sql.NullString
	var deadline sql.NullTime

	err := rows.Scan(&goal.ID, &goal.UserID, &sessionID, &goal.Text, &deadline, &goal.Status,
		&goal.Progress, &goal.CompletedTasks, &goal.TotalTasks, &goal.CreatedAt, &goal.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to scan goal: %w", err)
	}

	goal.SessionID = sessionID.String
	if deadline.Valid {
		goal.Deadline = &deadline.Time
	}
	return &goal, nil
}
