package schedule

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestDeliverDue(t *testing.T) {
	s := newTestStore(t)

	past := time.Now().Add(-time.Minute)
	due := &Reminder{UserID: "u1", Title: "due", Message: "m", CronExpr: "0 9 * * *", Enabled: true, NextRunAt: &past}
	if err := s.Create(due); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	var delivered []string
	r := NewRunner(s, func(ctx context.Context, reminder *Reminder) error {
		delivered = append(delivered, reminder.ID)
		return nil
	})

	r.deliverDue()

	if len(delivered) != 1 || delivered[0] != due.ID {
		t.Fatalf("delivered = %v, want the due reminder", delivered)
	}

	// The reminder is rescheduled, not redelivered
	got, _ := s.Get(due.ID)
	if got.LastRunAt == nil {
		t.Error("last_run_at not recorded after delivery")
	}
	if got.NextRunAt == nil || !got.NextRunAt.After(time.Now()) {
		t.Errorf("next_run_at = %v, want a future time", got.NextRunAt)
	}

	r.deliverDue()
	if len(delivered) != 1 {
		t.Errorf("delivered twice for one due window: %v", delivered)
	}
}

func TestDeliverDue_FailureKeepsSchedule(t *testing.T) {
	s := newTestStore(t)

	past := time.Now().Add(-time.Minute)
	due := &Reminder{UserID: "u1", Title: "due", Message: "m", CronExpr: "0 9 * * *", Enabled: true, NextRunAt: &past}
	if err := s.Create(due); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	r := NewRunner(s, func(ctx context.Context, reminder *Reminder) error {
		return errors.New("notification store down")
	})
	r.deliverDue()

	// A failed delivery leaves the reminder due for the next tick
	got, _ := s.Get(due.ID)
	if got.LastRunAt != nil {
		t.Error("failed delivery recorded a run time")
	}
	dueList, _ := s.ListDue(time.Now())
	if len(dueList) != 1 {
		t.Errorf("reminder no longer due after failed delivery")
	}
}
