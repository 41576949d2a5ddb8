package cleanup

import (
	"testing"
	"time"

	"github.com/mentorlabs/mentor/internal/store"
)

func newTestCleaner(t *testing.T, cfg Config) (*Cleaner, *store.Store) {
	t.Helper()
	dataDir := t.TempDir()
	s, err := store.New(dataDir)
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	cfg.DataDir = dataDir
	return New(s, cfg), s
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("/test/data")

	if cfg.DataDir != "/test/data" {
		t.Errorf("DataDir = %q, want %q", cfg.DataDir, "/test/data")
	}
	if cfg.Interval != 60*time.Minute {
		t.Errorf("Interval = %v, want %v", cfg.Interval, 60*time.Minute)
	}
	if cfg.NotifyRetention != 30*24*time.Hour {
		t.Errorf("NotifyRetention = %v, want %v", cfg.NotifyRetention, 30*24*time.Hour)
	}
	if cfg.SessionRetention != 24*time.Hour {
		t.Errorf("SessionRetention = %v, want %v", cfg.SessionRetention, 24*time.Hour)
	}
	if cfg.DiskWarnPercent != 80.0 {
		t.Errorf("DiskWarnPercent = %f, want 80.0", cfg.DiskWarnPercent)
	}
	if cfg.DiskErrorPercent != 90.0 {
		t.Errorf("DiskErrorPercent = %f, want 90.0", cfg.DiskErrorPercent)
	}
}

func TestCleaner_StartStop(t *testing.T) {
	cleaner, _ := newTestCleaner(t, Config{
		Interval:         100 * time.Millisecond, // Fast for testing
		NotifyRetention:  time.Hour,
		SessionRetention: time.Hour,
		DiskWarnPercent:  80.0,
		DiskErrorPercent: 90.0,
	})

	cleaner.Start()

	// Give it time to run at least once
	time.Sleep(150 * time.Millisecond)

	cleaner.Stop()

	// Verify it stopped (no panic, no hanging)
}

func TestCleaner_PurgeReadNotifications(t *testing.T) {
	cleaner, s := newTestCleaner(t, Config{
		Interval:        time.Hour, // Won't run during test
		NotifyRetention: -time.Minute,
	})

	user, err := s.CreateUser("alice", "alice@example.com", "Alice")
	if err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}

	read, err := s.CreateNotification(user.ID, "Done", "Read me", "", nil)
	if err != nil {
		t.Fatalf("CreateNotification() error = %v", err)
	}
	if err := s.MarkNotificationRead(read.ID); err != nil {
		t.Fatalf("MarkNotificationRead() error = %v", err)
	}
	if _, err := s.CreateNotification(user.ID, "Pending", "Unread", "", nil); err != nil {
		t.Fatalf("CreateNotification() error = %v", err)
	}

	// Negative retention makes every read notification eligible
	cleaner.purgeReadNotifications()

	remaining, err := s.ListNotifications(user.ID, false)
	if err != nil {
		t.Fatalf("ListNotifications() error = %v", err)
	}
	if len(remaining) != 1 {
		t.Fatalf("len(remaining) = %d, want 1", len(remaining))
	}
	if remaining[0].Title != "Pending" {
		t.Errorf("remaining notification = %q, want Pending", remaining[0].Title)
	}
}

func TestCleaner_PurgeEmptySessions(t *testing.T) {
	cleaner, s := newTestCleaner(t, Config{
		Interval:         time.Hour,
		SessionRetention: -time.Minute,
	})

	user, err := s.CreateUser("alice", "alice@example.com", "Alice")
	if err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}

	empty, err := s.CreateSession(user.ID)
	if err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}
	active, err := s.CreateSession(user.ID)
	if err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}
	if _, err := s.AppendTurn(active.ID, user.ID, store.RoleUser, store.TurnTypeChat, "hi", nil); err != nil {
		t.Fatalf("AppendTurn() error = %v", err)
	}

	cleaner.purgeEmptySessions()

	if _, err := s.GetSession(empty.ID); err != store.ErrSessionNotFound {
		t.Errorf("GetSession(empty) error = %v, want ErrSessionNotFound", err)
	}
	if _, err := s.GetSession(active.ID); err != nil {
		t.Errorf("GetSession(active) error = %v, want nil", err)
	}
}

func TestCleaner_DiskUsage(t *testing.T) {
	cleaner, _ := newTestCleaner(t, Config{})

	used, total, percent, err := cleaner.DiskUsage()
	if err != nil {
		t.Fatalf("DiskUsage() error = %v", err)
	}

	if total == 0 {
		t.Error("total bytes should be > 0")
	}
	if used > total {
		t.Error("used bytes should be <= total bytes")
	}
	if percent < 0 || percent > 100 {
		t.Errorf("percent = %f, should be between 0 and 100", percent)
	}
}

func TestCleaner_RunCleanup(t *testing.T) {
	cleaner, _ := newTestCleaner(t, Config{
		NotifyRetention:  time.Hour,
		SessionRetention: time.Hour,
		DiskWarnPercent:  80.0,
		DiskErrorPercent: 90.0,
	})

	// Should run all cleanup tasks without panic
	cleaner.runCleanup()
}
