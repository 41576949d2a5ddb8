package validation

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var (
	// uuidRegex matches standard UUID format
	uuidRegex = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)
)

// ValidateUUID checks if the string is a valid UUID
func ValidateUUID(id string) error {
	if id == "" {
		return fmt.Errorf("ID cannot be empty")
	}
	if !uuidRegex.MatchString(id) {
		return fmt.Errorf("invalid UUID format: %s", id)
	}
	return nil
}

// ValidateSessionID validates a chat session ID
func ValidateSessionID(id string) error {
	return ValidateUUID(id)
}

// ValidateGoalID validates a goal ID
func ValidateGoalID(id string) error {
	return ValidateUUID(id)
}

// GoalStatuses are the accepted goal lifecycle states
var GoalStatuses = []string{"active", "completed", "paused"}

// ValidateGoalStatus checks a goal status value
func ValidateGoalStatus(status string) error {
	for _, s := range GoalStatuses {
		if status == s {
			return nil
		}
	}
	return fmt.Errorf("invalid goal status %q (want one of %s)", status, strings.Join(GoalStatuses, ", "))
}

// NotificationTypes are the accepted notification categories
var NotificationTypes = []string{"daily_task", "reminder", "system"}

// ValidateNotificationType checks a notification type value
func ValidateNotificationType(typ string) error {
	for _, t := range NotificationTypes {
		if typ == t {
			return nil
		}
	}
	return fmt.Errorf("invalid notification type %q (want one of %s)", typ, strings.Join(NotificationTypes, ", "))
}

// ValidateProgress checks a goal progress percentage
func ValidateProgress(progress int) error {
	if progress < 0 || progress > 100 {
		return fmt.Errorf("progress must be between 0 and 100, got %d", progress)
	}
	return nil
}

// ValidateTimeRange checks that an event window is well-formed
func ValidateTimeRange(start, end time.Time) error {
	if start.IsZero() {
		return fmt.Errorf("start time is required")
	}
	if !end.IsZero() && end.Before(start) {
		return fmt.Errorf("end time %v is before start time %v", end, start)
	}
	return nil
}

// ValidateNonEmpty checks that a named field carries a value
func ValidateNonEmpty(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s cannot be empty", field)
	}
	return nil
}
