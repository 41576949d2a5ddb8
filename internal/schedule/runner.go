package schedule

import (
	"context"
	"sync"
	"time"

	"github.com/mentorlabs/mentor/internal/logger"
)

// DeliveryFunc turns a due reminder into its notification
type DeliveryFunc func(ctx context.Context, reminder *Reminder) error

// Runner delivers due reminders on a one-minute tick
type Runner struct {
	store   *Store
	deliver DeliveryFunc
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewRunner creates a new reminder runner
func NewRunner(store *Store, deliver DeliveryFunc) *Runner {
	ctx, cancel := context.WithCancel(context.Background())
	return &Runner{
		store:   store,
		deliver: deliver,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start begins the delivery loop
func (r *Runner) Start() {
	r.wg.Add(1)
	go r.loop()
	logger.Info("Reminder runner started")
}

// Stop gracefully stops the runner and waits for in-flight deliveries
func (r *Runner) Stop() {
	logger.Info("Stopping reminder runner...")
	r.cancel()
	r.wg.Wait()
	logger.Info("Reminder runner stopped")
}

func (r *Runner) loop() {
	defer r.wg.Done()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	// Run immediately on start
	r.deliverDue()

	for {
		select {
		case <-r.ctx.Done():
			return
		case <-ticker.C:
			r.deliverDue()
		}
	}
}

// deliverDue finds due reminders and delivers each one
func (r *Runner) deliverDue() {
	now := time.Now()
	reminders, err := r.store.ListDue(now)
	if err != nil {
		logger.Error("Failed to list due reminders: %v", err)
		return
	}

	for _, reminder := range reminders {
		if err := r.deliver(r.ctx, reminder); err != nil {
			logger.Error("Failed to deliver reminder %s: %v", reminder.ID, err)
			continue
		}

		nextRun, err := NextRun(reminder.CronExpr, now)
		if err != nil {
			logger.Error("Failed to compute next run for reminder %s: %v", reminder.ID, err)
			continue
		}
		if err := r.store.UpdateRunTimes(reminder.ID, now, nextRun); err != nil {
			logger.Error("Failed to update run times for reminder %s: %v", reminder.ID, err)
		}
	}
}

// TriggerNow delivers a reminder immediately without touching its schedule
func (r *Runner) TriggerNow(reminder *Reminder) error {
	logger.Info("Manually triggering reminder %s (%s)", reminder.ID, reminder.Title)
	return r.deliver(r.ctx, reminder)
}
