package actions

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mentorlabs/mentor/internal/agent"
	"github.com/mentorlabs/mentor/internal/validation"
)

type scheduleSessionArgs struct {
	Title           string `json:"title"`
	Description     string `json:"description"`
	StartTime       string `json:"start_time"` // RFC 3339
	DurationMinutes int    `json:"duration_minutes"`
}

func (d *Deps) scheduleLearningSession(ctx context.Context, principal agent.Principal, args json.RawMessage) (any, error) {
	var parsed scheduleSessionArgs
	if err := json.Unmarshal(args, &parsed); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}
	if err := validation.ValidateNonEmpty("title", parsed.Title); err != nil {
		return nil, err
	}

	start, err := time.Parse(time.RFC3339, parsed.StartTime)
	if err != nil {
		return nil, fmt.Errorf("start_time must be RFC 3339: %w", err)
	}

	var end *time.Time
	if parsed.DurationMinutes > 0 {
		endAt := start.Add(time.Duration(parsed.DurationMinutes) * time.Minute)
		end = &endAt
	}
	if err := validation.ValidateTimeRange(start, deref(end)); err != nil {
		return nil, err
	}

	goalID := ""
	if goal, err := d.Store.SessionGoal(principal.SessionID); err == nil {
		goalID = goal.ID
	}

	event, err := d.Store.CreateEvent(principal.UserID, parsed.Title, parsed.Description, start, end, goalID)
	if err != nil {
		return nil, fmt.Errorf("failed to schedule session: %w", err)
	}

	return map[string]any{
		"event_id":   event.ID,
		"title":      event.Title,
		"start_time": event.StartTime.Format(time.RFC3339),
		"scheduled":  true,
	}, nil
}

type userScheduleArgs struct {
	Days int `json:"days"`
}

func (d *Deps) getUserSchedule(ctx context.Context, principal agent.Principal, args json.RawMessage) (any, error) {
	var parsed userScheduleArgs
	if len(args) > 0 {
		if err := json.Unmarshal(args, &parsed); err != nil {
			return nil, fmt.Errorf("invalid arguments: %w", err)
		}
	}
	days := parsed.Days
	if days <= 0 || days > 90 {
		days = 7
	}

	now := time.Now()
	events, err := d.Store.ListEvents(principal.UserID, now, now.AddDate(0, 0, days))
	if err != nil {
		return nil, fmt.Errorf("failed to load schedule: %w", err)
	}

	entries := make([]map[string]any, 0, len(events))
	for _, event := range events {
		entry := map[string]any{
			"title":      event.Title,
			"start_time": event.StartTime.Format(time.RFC3339),
			"completed":  event.Completed,
		}
		if event.EndTime != nil {
			entry["end_time"] = event.EndTime.Format(time.RFC3339)
		}
		if strings.TrimSpace(event.Description) != "" {
			entry["description"] = event.Description
		}
		entries = append(entries, entry)
	}

	return map[string]any{"days": days, "events": entries}, nil
}

func deref(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}
