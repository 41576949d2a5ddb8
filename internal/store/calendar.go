package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CreateEvent schedules a calendar event
func (s *Store) CreateEvent(userID, title, description string, start time.Time, end *time.Time, goalID string) (*CalendarEvent, error) {
	event := &CalendarEvent{
		ID:          uuid.New().String(),
		UserID:      userID,
		Title:       title,
		Description: description,
		StartTime:   start,
		EndTime:     end,
		GoalID:      goalID,
		CreatedAt:   time.Now().UTC(),
	}

	var goalRef any
	if goalID != "" {
		goalRef = goalID
	}

	_, err := s.db.Exec(
		`INSERT INTO calendar_events (id, user_id, title, description, start_time, end_time, completed, goal_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, 0, ?, ?)`,
		event.ID, event.UserID, event.Title, event.Description, event.StartTime, event.EndTime, goalRef, event.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert event: %w", err)
	}

	return event, nil
}

// ListEvents returns a user's events within the window, ordered by start time.
// Zero from/to bounds are treated as open.
func (s *Store) ListEvents(userID string, from, to time.Time) ([]*CalendarEvent, error) {
	query := `SELECT id, user_id, title, description, start_time, end_time, completed, goal_id, created_at
	          FROM calendar_events WHERE user_id = ?`
	args := []any{userID}

	if !from.IsZero() {
		query += ` AND start_time >= ?`
		args = append(args, from)
	}
	if !to.IsZero() {
		query += ` AND start_time < ?`
		args = append(args, to)
	}
	query += ` ORDER BY start_time ASC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var events []*CalendarEvent
	for rows.Next() {
		var event CalendarEvent
		var description, goalID sql.NullString
		var endTime sql.NullTime

		if err := rows.Scan(&event.ID, &event.UserID, &event.Title, &description,
			&event.StartTime, &endTime, &event.Completed, &goalID, &event.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}

		event.Description = description.String
		event.GoalID = goalID.String
		if endTime.Valid {
			event.EndTime = &endTime.Time
		}
		events = append(events, &event)
	}
	return events, rows.Err()
}

// CompleteEvent marks an event as done
func (s *Store) CompleteEvent(eventID string) error {
	result, err := s.db.Exec(`UPDATE calendar_events SET completed = 1 WHERE id = ?`, eventID)
	if err != nil {
		return fmt.Errorf("failed to complete event: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrEventNotFound
	}
	return nil
}

// DeleteEvent removes a calendar event
func (s *Store) DeleteEvent(eventID string) error {
	result, err := s.db.Exec(`DELETE FROM calendar_events WHERE id = ?`, eventID)
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrEventNotFound
	}
	return nil
}
