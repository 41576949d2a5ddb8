// Package cleanup provides background housekeeping for the mentor service.
package cleanup

import (
	"context"
	"sync"
	"syscall"
	"time"

	"github.com/mentorlabs/mentor/internal/logger"
	"github.com/mentorlabs/mentor/internal/store"
)

// Cleaner performs periodic data cleanup.
type Cleaner struct {
	store         *store.Store
	dataDir       string
	interval      time.Duration
	notifyMaxAge  time.Duration
	sessionMaxAge time.Duration
	diskWarn      float64
	diskError     float64
	cancel        context.CancelFunc
	wg            sync.WaitGroup
}

// Config holds cleanup configuration.
type Config struct {
	DataDir          string
	Interval         time.Duration // How often to run cleanup
	NotifyRetention  time.Duration // How long to keep read notifications
	SessionRetention time.Duration // How long to keep empty chat sessions
	DiskWarnPercent  float64       // Warn at this disk usage percentage
	DiskErrorPercent float64       // Error at this disk usage percentage
}

// DefaultConfig returns sensible defaults.
func DefaultConfig(dataDir string) Config {
	return Config{
		DataDir:          dataDir,
		Interval:         60 * time.Minute,
		NotifyRetention:  30 * 24 * time.Hour,
		SessionRetention: 24 * time.Hour,
		DiskWarnPercent:  80.0,
		DiskErrorPercent: 90.0,
	}
}

// New creates a new Cleaner with the given configuration.
func New(s *store.Store, cfg Config) *Cleaner {
	return &Cleaner{
		store:         s,
		dataDir:       cfg.DataDir,
		interval:      cfg.Interval,
		notifyMaxAge:  cfg.NotifyRetention,
		sessionMaxAge: cfg.SessionRetention,
		diskWarn:      cfg.DiskWarnPercent,
		diskError:     cfg.DiskErrorPercent,
	}
}

// Start begins the periodic cleanup loop.
func (c *Cleaner) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.wg.Add(1)

	go func() {
		defer c.wg.Done()
		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()

		// Run immediately on start
		c.runCleanup()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.runCleanup()
			}
		}
	}()

	logger.Printf("🧹 Cleanup started (interval=%v)", c.interval)
}

// Stop halts the cleanup loop.
func (c *Cleaner) Stop() {
	if c.cancel != nil {
		c.cancel()
		c.wg.Wait()
		logger.Println("🧹 Cleanup stopped")
	}
}

// runCleanup performs all cleanup tasks.
func (c *Cleaner) runCleanup() {
	c.purgeReadNotifications()
	c.purgeEmptySessions()
	c.checkDiskUsage()
}

// purgeReadNotifications removes notifications read before the retention window.
func (c *Cleaner) purgeReadNotifications() {
	cutoff := time.Now().Add(-c.notifyMaxAge)
	removed, err := c.store.PurgeReadNotifications(cutoff)
	if err != nil {
		logger.Printf("⚠️  Notification cleanup error: %v", err)
		return
	}
	if removed > 0 {
		logger.Printf("🧹 Purged %d read notifications", removed)
	}
}

// purgeEmptySessions removes chat sessions that never received a turn.
func (c *Cleaner) purgeEmptySessions() {
	cutoff := time.Now().Add(-c.sessionMaxAge)
	removed, err := c.store.PurgeEmptySessions(cutoff)
	if err != nil {
		logger.Printf("⚠️  Session cleanup error: %v", err)
		return
	}
	if removed > 0 {
		logger.Printf("🧹 Purged %d empty chat sessions", removed)
	}
}

// checkDiskUsage monitors disk usage and logs warnings.
func (c *Cleaner) checkDiskUsage() {
	var stat syscall.Statfs_t
	if err := syscall.Statfs(c.dataDir, &stat); err != nil {
		return
	}

	total := stat.Blocks * uint64(stat.Bsize)
	free := stat.Bfree * uint64(stat.Bsize)
	used := total - free
	usedPercent := float64(used) / float64(total) * 100

	if usedPercent >= c.diskError {
		logger.Printf("🔴 CRITICAL: Disk usage at %.1f%% (data dir)", usedPercent)
	} else if usedPercent >= c.diskWarn {
		logger.Printf("🟠 WARNING: Disk usage at %.1f%% (data dir)", usedPercent)
	}
}

// DiskUsage returns current disk usage stats.
func (c *Cleaner) DiskUsage() (usedBytes, totalBytes uint64, usedPercent float64, err error) {
	var stat syscall.Statfs_t
	if err = syscall.Statfs(c.dataDir, &stat); err != nil {
		return
	}

	totalBytes = stat.Blocks * uint64(stat.Bsize)
	freeBytes := stat.Bfree * uint64(stat.Bsize)
	usedBytes = totalBytes - freeBytes
	usedPercent = float64(usedBytes) / float64(totalBytes) * 100
	return
}
