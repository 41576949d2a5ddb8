package actions

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mentorlabs/mentor/internal/agent"
	"github.com/mentorlabs/mentor/internal/audit"
	"github.com/mentorlabs/mentor/internal/schedule"
	"github.com/mentorlabs/mentor/internal/validation"
)

type notificationArgs struct {
	Title        string `json:"title"`
	Message      string `json:"message"`
	Type         string `json:"type"`
	ScheduledFor string `json:"scheduled_for"` // optional, RFC 3339
}

func (d *Deps) createNotification(ctx context.Context, principal agent.Principal, args json.RawMessage) (any, error) {
	var parsed notificationArgs
	if err := json.Unmarshal(args, &parsed); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}
	if err := validation.ValidateNonEmpty("title", parsed.Title); err != nil {
		return nil, err
	}
	if err := validation.ValidateNonEmpty("message", parsed.Message); err != nil {
		return nil, err
	}
	if parsed.Type != "" {
		if err := validation.ValidateNotificationType(parsed.Type); err != nil {
			return nil, err
		}
	}

	var scheduledFor *time.Time
	if parsed.ScheduledFor != "" {
		at, err := time.Parse(time.RFC3339, parsed.ScheduledFor)
		if err != nil {
			return nil, fmt.Errorf("scheduled_for must be RFC 3339: %w", err)
		}
		scheduledFor = &at
	}

	notification, err := d.Store.CreateNotification(principal.UserID, parsed.Title, parsed.Message, parsed.Type, scheduledFor)
	if err != nil {
		audit.LogFailure(audit.OpNotificationCreate, principal.UserID, principal.SessionID, "", err)
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}
	audit.LogSuccess(audit.OpNotificationCreate, principal.UserID, principal.SessionID, notification.ID)

	return map[string]any{"notification_id": notification.ID, "created": true}, nil
}

type reminderArgs struct {
	Title    string `json:"title"`
	Message  string `json:"message"`
	CronExpr string `json:"cron"`
}

// setReminder creates a recurring reminder. The action stays out of the
// advertised catalogue but resolves when the model names it.
func (d *Deps) setReminder(ctx context.Context, principal agent.Principal, args json.RawMessage) (any, error) {
	var parsed reminderArgs
	if err := json.Unmarshal(args, &parsed); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}
	if err := validation.ValidateNonEmpty("title", parsed.Title); err != nil {
		return nil, err
	}
	if parsed.CronExpr == "" {
		parsed.CronExpr = "0 9 * * *" // daily at 9am
	}
	if parsed.Message == "" {
		parsed.Message = parsed.Title
	}

	reminder := &schedule.Reminder{
		UserID:   principal.UserID,
		Title:    parsed.Title,
		Message:  parsed.Message,
		CronExpr: parsed.CronExpr,
		Enabled:  true,
	}
	if err := d.Schedule.Create(reminder); err != nil {
		audit.LogFailure(audit.OpReminderCreate, principal.UserID, principal.SessionID, "", err)
		return nil, fmt.Errorf("failed to create reminder: %w", err)
	}
	audit.LogSuccess(audit.OpReminderCreate, principal.UserID, principal.SessionID, reminder.ID)

	result := map[string]any{"reminder_id": reminder.ID, "cron": reminder.CronExpr, "created": true}
	if reminder.NextRunAt != nil {
		result["next_run"] = reminder.NextRunAt.Format(time.RFC3339)
	}
	return result, nil
}
