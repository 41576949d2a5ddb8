package schedule

import (
	"time"
)

// Reminder is a recurring study reminder. When due, the runner turns it
// into a notification for its user.
type Reminder struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	Title     string     `json:"title"`
	Message   string     `json:"message"`
	CronExpr  string     `json:"cron_expr"` // standard 5-field cron expression
	Enabled   bool       `json:"enabled"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	LastRunAt *time.Time `json:"last_run_at,omitempty"`
	NextRunAt *time.Time `json:"next_run_at,omitempty"`
}

// ReminderUpdate contains optional fields for updating a reminder
type ReminderUpdate struct {
	Title    *string `json:"title,omitempty"`
	Message  *string `json:"message,omitempty"`
	CronExpr *string `json:"cron_expr,omitempty"`
	Enabled  *bool   `json:"enabled,omitempty"`
}
