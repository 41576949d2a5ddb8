package validation

import (
	"testing"
	"time"
)

func TestValidateUUID(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantErr bool
	}{
		{"valid", "550e8400-e29b-41d4-a716-446655440000", false},
		{"valid uppercase", "550E8400-E29B-41D4-A716-446655440000", false},
		{"empty", "", true},
		{"too short", "550e8400-e29b", true},
		{"not hex", "zzze8400-e29b-41d4-a716-446655440000", true},
		{"no dashes", "550e8400e29b41d4a716446655440000", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUUID(tt.id)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateUUID(%q) error = %v, wantErr %v", tt.id, err, tt.wantErr)
			}
		})
	}
}

func TestValidateGoalStatus(t *testing.T) {
	for _, status := range []string{"active", "completed", "paused"} {
		if err := ValidateGoalStatus(status); err != nil {
			t.Errorf("ValidateGoalStatus(%q) error = %v, want nil", status, err)
		}
	}
	for _, status := range []string{"", "done", "Active", "archived"} {
		if err := ValidateGoalStatus(status); err == nil {
			t.Errorf("ValidateGoalStatus(%q) error = nil, want error", status)
		}
	}
}

func TestValidateNotificationType(t *testing.T) {
	for _, typ := range []string{"daily_task", "reminder", "system"} {
		if err := ValidateNotificationType(typ); err != nil {
			t.Errorf("ValidateNotificationType(%q) error = %v, want nil", typ, err)
		}
	}
	if err := ValidateNotificationType("urgent"); err == nil {
		t.Error("ValidateNotificationType(\"urgent\") error = nil, want error")
	}
}

func TestValidateProgress(t *testing.T) {
	for _, p := range []int{0, 50, 100} {
		if err := ValidateProgress(p); err != nil {
			t.Errorf("ValidateProgress(%d) error = %v, want nil", p, err)
		}
	}
	for _, p := range []int{-1, 101, 1000} {
		if err := ValidateProgress(p); err == nil {
			t.Errorf("ValidateProgress(%d) error = nil, want error", p)
		}
	}
}

func TestValidateTimeRange(t *testing.T) {
	start := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	if err := ValidateTimeRange(start, start.Add(time.Hour)); err != nil {
		t.Errorf("valid range returned error: %v", err)
	}
	if err := ValidateTimeRange(start, time.Time{}); err != nil {
		t.Errorf("open-ended range returned error: %v", err)
	}
	if err := ValidateTimeRange(time.Time{}, start); err == nil {
		t.Error("zero start should return error")
	}
	if err := ValidateTimeRange(start, start.Add(-time.Hour)); err == nil {
		t.Error("end before start should return error")
	}
}

func TestValidateNonEmpty(t *testing.T) {
	if err := ValidateNonEmpty("title", "Learn Go"); err != nil {
		t.Errorf("ValidateNonEmpty error = %v, want nil", err)
	}
	if err := ValidateNonEmpty("title", "   "); err == nil {
		t.Error("whitespace-only value should return error")
	}
}
