package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/lunara-app/lunara/internal/db"
	"github.com/lunara-app/lunara/internal/models"
)

type recordingSender struct {
	delivered []uint
	failIDs   map[uint]bool
}

func (sender *recordingSender) Send(_ context.Context, reminder models.Reminder) error {
	if sender.failIDs[reminder.ID] {
		return fmt.Errorf("delivery refused for reminder %d", reminder.ID)
	}
	sender.delivered = append(sender.delivered, reminder.ID)
	return nil
}

func seedReminder(t *testing.T, reminders *db.MemoryReminderStore, dueAt time.Time) models.Reminder {
	t.Helper()

	reminder := models.Reminder{
		SubjectID: 1,
		Category:  models.CategoryPeriodReminder,
		Title:     "Period Starting Soon",
		DueAt:     dueAt,
		Priority:  models.PriorityMedium,
		CreatedAt: dueAt.AddDate(0, 0, -7),
	}
	if err := reminders.Create(context.Background(), &reminder); err != nil {
		t.Fatalf("seed reminder: %v", err)
	}
	return reminder
}

func TestSweepDueDeliversEachReminderOnce(t *testing.T) {
	t.Parallel()

	reminders := db.NewMemoryReminderStore()
	sender := &recordingSender{}
	dispatcher := NewReminderDispatcher(reminders, db.NewMemoryMaintenanceStore(), sender, 30, time.UTC)
	ctx := context.Background()
	now := time.Date(2024, time.January, 15, 9, 5, 0, 0, time.UTC)

	seedReminder(t, reminders, now.Add(-time.Hour))
	seedReminder(t, reminders, now.Add(-5*time.Minute))
	future := seedReminder(t, reminders, now.Add(24*time.Hour))

	sent, err := dispatcher.SweepDue(ctx, now)
	if err != nil {
		t.Fatalf("first sweep: %v", err)
	}
	if sent != 2 {
		t.Fatalf("expected 2 deliveries, got %d", sent)
	}

	sent, err = dispatcher.SweepDue(ctx, now)
	if err != nil {
		t.Fatalf("second sweep: %v", err)
	}
	if sent != 0 {
		t.Fatalf("expected the second sweep to deliver nothing, got %d", sent)
	}
	if len(sender.delivered) != 2 {
		t.Fatalf("expected 2 total deliveries, got %d", len(sender.delivered))
	}

	stored, _, err := reminders.FindBySubjectAndID(ctx, 1, future.ID)
	if err != nil {
		t.Fatalf("load future reminder: %v", err)
	}
	if stored.Sent {
		t.Fatal("expected the future reminder to stay unsent")
	}
}

func TestSweepDueIsolatesDeliveryFailures(t *testing.T) {
	t.Parallel()

	reminders := db.NewMemoryReminderStore()
	dispatcher := NewReminderDispatcher(reminders, db.NewMemoryMaintenanceStore(), nil, 30, time.UTC)
	ctx := context.Background()
	now := time.Date(2024, time.January, 15, 9, 5, 0, 0, time.UTC)

	first := seedReminder(t, reminders, now.Add(-3*time.Hour))
	flaky := seedReminder(t, reminders, now.Add(-2*time.Hour))
	last := seedReminder(t, reminders, now.Add(-time.Hour))

	sender := &recordingSender{failIDs: map[uint]bool{flaky.ID: true}}
	dispatcher.sender = sender

	sent, err := dispatcher.SweepDue(ctx, now)
	if err == nil {
		t.Fatal("expected the sweep to report the failed delivery")
	}
	if sent != 2 {
		t.Fatalf("expected the other 2 reminders to be delivered, got %d", sent)
	}

	for _, id := range []uint{first.ID, last.ID} {
		stored, _, err := reminders.FindBySubjectAndID(ctx, 1, id)
		if err != nil {
			t.Fatalf("load reminder %d: %v", id, err)
		}
		if !stored.Sent {
			t.Fatalf("expected reminder %d to be sent", id)
		}
	}

	// The failed reminder stays unsent and is retried by the next sweep.
	sender.failIDs = nil
	sent, err = dispatcher.SweepDue(ctx, now.Add(5*time.Minute))
	if err != nil {
		t.Fatalf("retry sweep: %v", err)
	}
	if sent != 1 {
		t.Fatalf("expected the retry to deliver the failed reminder, got %d", sent)
	}
}

func TestPurgeExpiredRemovesOnlyOldSentReminders(t *testing.T) {
	t.Parallel()

	reminders := db.NewMemoryReminderStore()
	dispatcher := NewReminderDispatcher(reminders, db.NewMemoryMaintenanceStore(), &recordingSender{}, 30, time.UTC)
	ctx := context.Background()
	now := time.Date(2024, time.March, 15, 9, 0, 0, 0, time.UTC)

	old := seedReminder(t, reminders, now.AddDate(0, 0, -45))
	recent := seedReminder(t, reminders, now.AddDate(0, 0, -10))
	pending := seedReminder(t, reminders, now.AddDate(0, 0, -60))

	if _, err := reminders.MarkSent(ctx, old.ID, now.AddDate(0, 0, -45)); err != nil {
		t.Fatalf("mark old sent: %v", err)
	}
	if _, err := reminders.MarkSent(ctx, recent.ID, now.AddDate(0, 0, -10)); err != nil {
		t.Fatalf("mark recent sent: %v", err)
	}

	purged, err := dispatcher.PurgeExpired(ctx, now)
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if purged != 1 {
		t.Fatalf("expected 1 purged reminder, got %d", purged)
	}

	if _, found, _ := reminders.FindBySubjectAndID(ctx, 1, old.ID); found {
		t.Fatal("expected the old sent reminder to be purged")
	}
	if _, found, _ := reminders.FindBySubjectAndID(ctx, 1, recent.ID); !found {
		t.Fatal("expected the recently sent reminder to survive")
	}
	// Unsent reminders are never purged, no matter how old.
	if _, found, _ := reminders.FindBySubjectAndID(ctx, 1, pending.ID); !found {
		t.Fatal("expected the unsent reminder to survive")
	}
}

func TestPurgeExpiredRunsAtMostOncePerDay(t *testing.T) {
	t.Parallel()

	reminders := db.NewMemoryReminderStore()
	maintenance := db.NewMemoryMaintenanceStore()
	dispatcher := NewReminderDispatcher(reminders, maintenance, &recordingSender{}, 30, time.UTC)
	ctx := context.Background()
	now := time.Date(2024, time.March, 15, 9, 0, 0, 0, time.UTC)

	first := seedReminder(t, reminders, now.AddDate(0, 0, -45))
	if _, err := reminders.MarkSent(ctx, first.ID, now.AddDate(0, 0, -45)); err != nil {
		t.Fatalf("mark sent: %v", err)
	}

	purged, err := dispatcher.PurgeExpired(ctx, now)
	if err != nil {
		t.Fatalf("first purge: %v", err)
	}
	if purged != 1 {
		t.Fatalf("expected 1 purged reminder, got %d", purged)
	}

	// Another eligible reminder appears, but the guard holds until a day has
	// passed since the recorded purge.
	second := seedReminder(t, reminders, now.AddDate(0, 0, -40))
	if _, err := reminders.MarkSent(ctx, second.ID, now.AddDate(0, 0, -40)); err != nil {
		t.Fatalf("mark sent: %v", err)
	}

	purged, err = dispatcher.PurgeExpired(ctx, now.Add(6*time.Hour))
	if err != nil {
		t.Fatalf("guarded purge: %v", err)
	}
	if purged != 0 {
		t.Fatalf("expected the guard to skip the purge, got %d", purged)
	}
	if _, found, _ := reminders.FindBySubjectAndID(ctx, 1, second.ID); !found {
		t.Fatal("expected the reminder to survive the guarded purge")
	}

	purged, err = dispatcher.PurgeExpired(ctx, now.Add(25*time.Hour))
	if err != nil {
		t.Fatalf("next-day purge: %v", err)
	}
	if purged != 1 {
		t.Fatalf("expected the next-day purge to run, got %d", purged)
	}

	lastPurge, err := maintenance.LastPurgeAt(ctx)
	if err != nil {
		t.Fatalf("load last purge: %v", err)
	}
	if lastPurge == nil || !lastPurge.Equal(now.Add(25*time.Hour)) {
		t.Fatalf("expected last purge timestamp to advance, got %v", lastPurge)
	}
}

func TestPurgeExpiredSurfacesStoreErrors(t *testing.T) {
	t.Parallel()

	reminders := db.NewMemoryReminderStore()
	dispatcher := NewReminderDispatcher(reminders, failingMaintenanceStore{}, &recordingSender{}, 30, time.UTC)

	_, err := dispatcher.PurgeExpired(context.Background(), time.Now())
	if err == nil {
		t.Fatal("expected the maintenance store failure to surface")
	}
}

type failingMaintenanceStore struct{}

func (failingMaintenanceStore) LastPurgeAt(context.Context) (*time.Time, error) {
	return nil, errors.New("maintenance store unavailable")
}

func (failingMaintenanceStore) SetLastPurgeAt(context.Context, time.Time) error {
	return errors.New("maintenance store unavailable")
}

func TestStopWithoutStartReturnsDoneContext(t *testing.T) {
	t.Parallel()

	dispatcher := NewReminderDispatcher(db.NewMemoryReminderStore(), db.NewMemoryMaintenanceStore(), &recordingSender{}, 30, time.UTC)

	select {
	case <-dispatcher.Stop().Done():
	case <-time.After(time.Second):
		t.Fatal("expected Stop without Start to return a done context")
	}
}

func TestStartRejectsMalformedSchedule(t *testing.T) {
	t.Parallel()

	dispatcher := NewReminderDispatcher(db.NewMemoryReminderStore(), db.NewMemoryMaintenanceStore(), &recordingSender{}, 30, time.UTC)

	if err := dispatcher.Start(context.Background(), "not-a-schedule"); err == nil {
		t.Fatal("expected a malformed cron expression to be rejected")
	}
}
