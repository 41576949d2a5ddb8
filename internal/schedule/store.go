package schedule

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

var (
	ErrReminderNotFound = errors.New("reminder not found")
	ErrInvalidCron      = errors.New("invalid cron expression")
)

// Store handles reminder persistence
type Store struct {
	db *sql.DB
}

// NewStore creates a new reminder store with SQLite backend
func NewStore(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "reminders.db")
	db, err := sql.Open("sqlite", dbPath+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS reminders (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		title TEXT NOT NULL,
		message TEXT NOT NULL,
		cron_expr TEXT NOT NULL,
		enabled INTEGER NOT NULL DEFAULT 1,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		last_run_at DATETIME,
		next_run_at DATETIME
	);
	CREATE INDEX IF NOT EXISTS idx_reminders_user ON reminders(user_id);
	CREATE INDEX IF NOT EXISTS idx_reminders_next_run ON reminders(enabled, next_run_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// Create inserts a new reminder and computes its first run time
func (s *Store) Create(reminder *Reminder) error {
	if err := ValidateCron(reminder.CronExpr); err != nil {
		return err
	}

	if reminder.ID == "" {
		reminder.ID = "rem_" + uuid.New().String()[:8]
	}
	now := time.Now()
	reminder.CreatedAt = now
	reminder.UpdatedAt = now

	if reminder.NextRunAt == nil && reminder.Enabled {
		nextRun, err := NextRun(reminder.CronExpr, now)
		if err == nil {
			reminder.NextRunAt = &nextRun
		}
	}

	_, err := s.db.Exec(`
		INSERT INTO reminders (id, user_id, title, message, cron_expr, enabled, created_at, updated_at, last_run_at, next_run_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		reminder.ID, reminder.UserID, reminder.Title, reminder.Message, reminder.CronExpr,
		reminder.Enabled, reminder.CreatedAt, reminder.UpdatedAt, reminder.LastRunAt, reminder.NextRunAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert reminder: %w", err)
	}
	return nil
}

// Get retrieves a reminder by ID
func (s *Store) Get(id string) (*Reminder, error) {
	row := s.db.QueryRow(`
		SELECT id, user_id, title, message, cron_expr, enabled, created_at, updated_at, last_run_at, next_run_at
		FROM reminders WHERE id = ?`, id,
	)
	reminder, err := scanReminderRow(row.Scan)
	if err == sql.ErrNoRows {
		return nil, ErrReminderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query reminder: %w", err)
	}
	return reminder, nil
}

// List returns a user's reminders, newest first
func (s *Store) List(userID string) ([]*Reminder, error) {
	rows, err := s.db.Query(`
		SELECT id, user_id, title, message, cron_expr, enabled, created_at, updated_at, last_run_at, next_run_at
		FROM reminders WHERE user_id = ? ORDER BY created_at DESC`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list reminders: %w", err)
	}
	defer func() { _ = rows.Close() }()
	return scanReminders(rows)
}

// Update applies partial updates to a reminder
func (s *Store) Update(id string, update *ReminderUpdate) error {
	if update.CronExpr != nil {
		if err := ValidateCron(*update.CronExpr); err != nil {
			return err
		}
	}

	var setClauses []string
	var args []any

	if update.Title != nil {
		setClauses = append(setClauses, "title = ?")
		args = append(args, *update.Title)
	}
	if update.Message != nil {
		setClauses = append(setClauses, "message = ?")
		args = append(args, *update.Message)
	}
	if update.CronExpr != nil {
		setClauses = append(setClauses, "cron_expr = ?")
		args = append(args, *update.CronExpr)
	}
	if update.Enabled != nil {
		setClauses = append(setClauses, "enabled = ?")
		if *update.Enabled {
			args = append(args, 1)
		} else {
			args = append(args, 0)
		}
	}
	if len(setClauses) == 0 {
		return nil
	}

	setClauses = append(setClauses, "updated_at = ?")
	args = append(args, time.Now(), id)

	query := "UPDATE reminders SET " + strings.Join(setClauses, ", ") + " WHERE id = ?"
	result, err := s.db.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("failed to update reminder: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrReminderNotFound
	}

	// Recompute the next run when the expression changed
	if update.CronExpr != nil {
		nextRun, err := NextRun(*update.CronExpr, time.Now())
		if err == nil {
			_, _ = s.db.Exec("UPDATE reminders SET next_run_at = ? WHERE id = ?", nextRun, id)
		}
	}
	return nil
}

// Delete removes a reminder
func (s *Store) Delete(id string) error {
	result, err := s.db.Exec("DELETE FROM reminders WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete reminder: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrReminderNotFound
	}
	return nil
}

// ListDue returns enabled reminders where next_run_at <= now
func (s *Store) ListDue(now time.Time) ([]*Reminder, error) {
	rows, err := s.db.Query(`
		SELECT id, user_id, title, message, cron_expr, enabled, created_at, updated_at, last_run_at, next_run_at
		FROM reminders
		WHERE enabled = 1 AND next_run_at IS NOT NULL AND next_run_at <= ?
		ORDER BY next_run_at ASC`, now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list due reminders: %w", err)
	}
	defer func() { _ = rows.Close() }()
	return scanReminders(rows)
}

// UpdateRunTimes updates last_run_at and next_run_at after a delivery
func (s *Store) UpdateRunTimes(id string, lastRun, nextRun time.Time) error {
	result, err := s.db.Exec(`
		UPDATE reminders SET last_run_at = ?, next_run_at = ?, updated_at = ? WHERE id = ?`,
		lastRun, nextRun, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update run times: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrReminderNotFound
	}
	return nil
}

func scanReminders(rows *sql.Rows) ([]*Reminder, error) {
	var reminders []*Reminder
	for rows.Next() {
		reminder, err := scanReminderRow(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reminder: %w", err)
		}
		reminders = append(reminders, reminder)
	}
	return reminders, rows.Err()
}

func scanReminderRow(scan func(...any) error) (*Reminder, error) {
	var reminder Reminder
	var enabled int
	var lastRunAt, nextRunAt sql.NullTime

	err := scan(&reminder.ID, &reminder.UserID, &reminder.Title, &reminder.Message,
		&reminder.CronExpr, &enabled, &reminder.CreatedAt, &reminder.UpdatedAt, &lastRunAt, &nextRunAt)
	if err != nil {
		return nil, err
	}

	reminder.Enabled = enabled != 0
	if lastRunAt.Valid {
		reminder.LastRunAt = &lastRunAt.Time
	}
	if nextRunAt.Valid {
		reminder.NextRunAt = &nextRunAt.Time
	}
	return &reminder, nil
}
