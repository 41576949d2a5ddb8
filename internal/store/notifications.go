package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CreateNotification inserts a notification for a user
func (s *Store) CreateNotification(userID, title, message, notifType string, scheduledFor *time.Time) (*Notification, error) {
	if notifType == "" {
		notifType = NotifySystem
	}
	notification := &Notification{
		ID:           uuid.New().String(),
		UserID:       userID,
		Title:        title,
		Message:      message,
		Type:         notifType,
		ScheduledFor: scheduledFor,
		CreatedAt:    time.Now().UTC(),
	}

	_, err := s.db.Exec(
		`INSERT INTO notifications (id, user_id, title, message, type, read, scheduled_for, created_at)
		 VALUES (?, ?, ?, ?, ?, 0, ?, ?)`,
		notification.ID, notification.UserID, notification.Title, notification.Message,
		notification.Type, notification.ScheduledFor, notification.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert notification: %w", err)
	}

	return notification, nil
}

// ListNotifications returns a user's notifications, newest first.
// When unreadOnly is set, read notifications are filtered out.
func (s *Store) ListNotifications(userID string, unreadOnly bool) ([]*Notification, error) {
	query := `SELECT id, user_id, title, message, type, read, scheduled_for, created_at
	          FROM notifications WHERE user_id = ?`
	if unreadOnly {
		query += ` AND read = 0`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var notifications []*Notification
	for rows.Next() {
		var n Notification
		var scheduledFor sql.NullTime
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &n.Type, &n.Read,
			&scheduledFor, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		if scheduledFor.Valid {
			n.ScheduledFor = &scheduledFor.Time
		}
		notifications = append(notifications, &n)
	}
	return notifications, rows.Err()
}

// MarkNotificationRead flags a notification as read
func (s *Store) MarkNotificationRead(notificationID string) error {
	result, err := s.db.Exec(`UPDATE notifications SET read = 1 WHERE id = ?`, notificationID)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

// PurgeReadNotifications deletes read notifications older than the cutoff.
// Returns the number removed.
func (s *Store) PurgeReadNotifications(before time.Time) (int64, error) {
	result, err := s.db.Exec(
		`DELETE FROM notifications WHERE read = 1 AND created_at < ?`, before,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to purge notifications: %w", err)
	}
	removed, _ := result.RowsAffected()
	return removed, nil
}

// PurgeEmptySessions deletes sessions created before the cutoff that never
// received a turn. Returns the number removed.
func (s *Store) PurgeEmptySessions(before time.Time) (int64, error) {
	result, err := s.db.Exec(
		`DELETE FROM chat_sessions WHERE created_at < ?
		 AND id NOT IN (SELECT DISTINCT session_id FROM turns)`, before,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to purge sessions: %w", err)
	}
	removed, _ := result.RowsAffected()
	return removed, nil
}
