package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

const (
	DefaultSweepSchedule = "*/5 * * * *"
	DefaultRetentionDays = 30

	// purgeInterval gates the retention purge to once a day, keyed off the
	// persisted last-purge timestamp rather than a wall-clock window.
	purgeInterval = 24 * time.Hour
)

// ReminderDispatcher is the periodic sweep: it promotes due reminders to
// sent and purges sent reminders past the retention window.
type ReminderDispatcher struct {
	reminders   ReminderStore
	maintenance MaintenanceStore
	sender      DeliverySender
	retention   time.Duration
	location    *time.Location

	runner *cron.Cron
}

func NewReminderDispatcher(reminders ReminderStore, maintenance MaintenanceStore, sender DeliverySender, retentionDays int, location *time.Location) *ReminderDispatcher {
	if retentionDays <= 0 {
		retentionDays = DefaultRetentionDays
	}
	if location == nil {
		location = time.Local
	}
	if sender == nil {
		sender = LogSender{}
	}
	return &ReminderDispatcher{
		reminders:   reminders,
		maintenance: maintenance,
		sender:      sender,
		retention:   time.Duration(retentionDays) * 24 * time.Hour,
		location:    location,
	}
}

// SweepDue delivers every unsent reminder whose due timestamp has passed and
// marks it sent. A delivery failure is isolated to its reminder: it is
// logged, collected, and the reminder stays unsent for the next sweep.
// Returns how many reminders transitioned.
func (dispatcher *ReminderDispatcher) SweepDue(ctx context.Context, now time.Time) (int, error) {
	due, err := dispatcher.reminders.ListDue(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("list due reminders: %w", err)
	}

	sent := 0
	var failures []error
	for _, reminder := range due {
		if err := dispatcher.sender.Send(ctx, reminder); err != nil {
			log.Printf("dispatch: delivery failed for reminder %d: %v", reminder.ID, err)
			failures = append(failures, fmt.Errorf("reminder %d: %w", reminder.ID, err))
			continue
		}
		changed, err := dispatcher.reminders.MarkSent(ctx, reminder.ID, now)
		if err != nil {
			log.Printf("dispatch: mark sent failed for reminder %d: %v", reminder.ID, err)
			failures = append(failures, fmt.Errorf("reminder %d: %w", reminder.ID, err))
			continue
		}
		if changed {
			sent++
		}
	}
	return sent, errors.Join(failures...)
}

// PurgeExpired removes sent reminders older than the retention window, at
// most once per purgeInterval. Returns how many reminders were purged.
func (dispatcher *ReminderDispatcher) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	lastPurge, err := dispatcher.maintenance.LastPurgeAt(ctx)
	if err != nil {
		return 0, fmt.Errorf("load last purge: %w", err)
	}
	if lastPurge != nil && now.Sub(*lastPurge) < purgeInterval {
		return 0, nil
	}

	purged, err := dispatcher.reminders.DeleteSentBefore(ctx, now.Add(-dispatcher.retention))
	if err != nil {
		return 0, fmt.Errorf("purge sent reminders: %w", err)
	}
	if err := dispatcher.maintenance.SetLastPurgeAt(ctx, now); err != nil {
		return purged, fmt.Errorf("record purge time: %w", err)
	}
	return purged, nil
}

// Start schedules recurring sweeps on the given cron expression. The context
// bounds the work done inside each sweep, not the schedule itself; use Stop
// to stop scheduling.
func (dispatcher *ReminderDispatcher) Start(ctx context.Context, schedule string) error {
	if schedule == "" {
		schedule = DefaultSweepSchedule
	}

	runner := cron.New(cron.WithLocation(dispatcher.location))
	_, err := runner.AddFunc(schedule, func() {
		dispatcher.runOnce(ctx)
	})
	if err != nil {
		return fmt.Errorf("schedule sweep: %w", err)
	}

	runner.Start()
	dispatcher.runner = runner
	return nil
}

// Stop stops scheduling new sweeps. The returned context is done once any
// in-flight sweep has finished, so callers can wait before shutting down.
func (dispatcher *ReminderDispatcher) Stop() context.Context {
	if dispatcher.runner == nil {
		done, cancel := context.WithCancel(context.Background())
		cancel()
		return done
	}
	return dispatcher.runner.Stop()
}

func (dispatcher *ReminderDispatcher) runOnce(ctx context.Context) {
	now := time.Now().In(dispatcher.location)

	sent, err := dispatcher.SweepDue(ctx, now)
	if err != nil {
		log.Printf("dispatch: sweep finished with errors: %v", err)
	}
	if sent > 0 {
		log.Printf("dispatch: sent %d reminder(s)", sent)
	}

	purged, err := dispatcher.PurgeExpired(ctx, now)
	if err != nil {
		log.Printf("dispatch: purge failed: %v", err)
	}
	if purged > 0 {
		log.Printf("dispatch: purged %d old reminder(s)", purged)
	}
}
