package backup

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestManager(t *testing.T, retention int) (*Manager, string) {
	t.Helper()

	dataDir := filepath.Join(t.TempDir(), "data")
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		t.Fatalf("failed to create data dir: %v", err)
	}

	mgr, err := New(Config{
		DataDir:   dataDir,
		BackupDir: filepath.Join(t.TempDir(), "backups"),
		Retention: retention,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return mgr, dataDir
}

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func TestBackupAndRestore(t *testing.T) {
	mgr, dataDir := newTestManager(t, 5)

	writeTestFile(t, filepath.Join(dataDir, "mentor.db"), "main data")
	writeTestFile(t, filepath.Join(dataDir, "auth.db"), "auth data")

	snapshot, err := mgr.Backup()
	if err != nil {
		t.Fatalf("Backup() error = %v", err)
	}
	if snapshot.SizeBytes == 0 {
		t.Error("snapshot size is zero")
	}

	// Corrupt the data dir, then restore
	writeTestFile(t, filepath.Join(dataDir, "mentor.db"), "corrupted")
	if err := os.Remove(filepath.Join(dataDir, "auth.db")); err != nil {
		t.Fatalf("failed to remove auth.db: %v", err)
	}

	if err := mgr.Restore(snapshot.Filename); err != nil {
		t.Fatalf("Restore() error = %v", err)
	}

	got, err := os.ReadFile(filepath.Join(dataDir, "mentor.db"))
	if err != nil {
		t.Fatalf("failed to read restored file: %v", err)
	}
	if string(got) != "main data" {
		t.Errorf("restored content = %q, want %q", got, "main data")
	}
	if _, err := os.Stat(filepath.Join(dataDir, "auth.db")); err != nil {
		t.Errorf("auth.db not restored: %v", err)
	}
}

func TestBackupSkipsTransientFiles(t *testing.T) {
	mgr, dataDir := newTestManager(t, 5)

	writeTestFile(t, filepath.Join(dataDir, "mentor.db"), "main data")
	writeTestFile(t, filepath.Join(dataDir, "mentor.db-wal"), "wal")
	writeTestFile(t, filepath.Join(dataDir, "mentor.db-shm"), "shm")

	snapshot, err := mgr.Backup()
	if err != nil {
		t.Fatalf("Backup() error = %v", err)
	}

	if err := os.RemoveAll(dataDir); err != nil {
		t.Fatalf("failed to clear data dir: %v", err)
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		t.Fatalf("failed to recreate data dir: %v", err)
	}
	if err := mgr.Restore(snapshot.Filename); err != nil {
		t.Fatalf("Restore() error = %v", err)
	}

	if _, err := os.Stat(filepath.Join(dataDir, "mentor.db")); err != nil {
		t.Errorf("mentor.db missing after restore: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dataDir, "mentor.db-wal")); !os.IsNotExist(err) {
		t.Error("WAL file should not be included in snapshots")
	}
}

func TestListSnapshots(t *testing.T) {
	mgr, dataDir := newTestManager(t, 5)
	writeTestFile(t, filepath.Join(dataDir, "mentor.db"), "data")

	snapshots, err := mgr.ListSnapshots()
	if err != nil {
		t.Fatalf("ListSnapshots() error = %v", err)
	}
	if len(snapshots) != 0 {
		t.Errorf("expected no snapshots, got %d", len(snapshots))
	}

	if _, err := mgr.Backup(); err != nil {
		t.Fatalf("Backup() error = %v", err)
	}

	snapshots, err = mgr.ListSnapshots()
	if err != nil {
		t.Fatalf("ListSnapshots() error = %v", err)
	}
	if len(snapshots) != 1 {
		t.Fatalf("expected 1 snapshot, got %d", len(snapshots))
	}
	if snapshots[0].Timestamp.IsZero() {
		t.Error("snapshot timestamp not parsed")
	}
}

func TestEnforceRetention(t *testing.T) {
	mgr, dataDir := newTestManager(t, 2)
	writeTestFile(t, filepath.Join(dataDir, "mentor.db"), "data")

	// Write fake snapshots with distinct timestamps so ordering is stable
	base := time.Now().Add(-time.Hour)
	for i := 0; i < 4; i++ {
		name := "mentor_" + base.Add(time.Duration(i)*time.Minute).Format("20060102_150405") + ".tar.gz"
		writeTestFile(t, filepath.Join(mgr.backupDir, name), "snapshot")
	}

	mgr.enforceRetention()

	snapshots, err := mgr.ListSnapshots()
	if err != nil {
		t.Fatalf("ListSnapshots() error = %v", err)
	}
	if len(snapshots) != 2 {
		t.Fatalf("expected 2 snapshots after retention, got %d", len(snapshots))
	}

	// The newest two survive
	wantNewest := "mentor_" + base.Add(3*time.Minute).Format("20060102_150405") + ".tar.gz"
	if snapshots[0].Filename != wantNewest {
		t.Errorf("newest snapshot = %s, want %s", snapshots[0].Filename, wantNewest)
	}
}

func TestRestoreMissingSnapshot(t *testing.T) {
	mgr, _ := newTestManager(t, 5)

	if err := mgr.Restore("mentor_20240101_000000.tar.gz"); err == nil {
		t.Error("expected error restoring missing snapshot")
	}
}

func TestBackupMissingDataDir(t *testing.T) {
	mgr, err := New(Config{
		DataDir:   filepath.Join(t.TempDir(), "does-not-exist"),
		BackupDir: t.TempDir(),
		Retention: 5,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if _, err := mgr.Backup(); err == nil {
		t.Error("expected error backing up missing data dir")
	}
}
