package services

import (
	"context"
	"time"

	"github.com/lunara-app/lunara/internal/models"
)

// The store interfaces live next to their consumers; gorm-backed
// implementations are in internal/db, tests use in-memory fakes. No
// component holds process-wide mutable state.

type ProfileStore interface {
	FindBySubject(ctx context.Context, subjectID uint) (models.CycleProfile, bool, error)
	Upsert(ctx context.Context, profile *models.CycleProfile) error
}

type ReminderStore interface {
	// ListPendingBySubject returns unsent reminders due at or after now,
	// soonest first. limit <= 0 means no limit.
	ListPendingBySubject(ctx context.Context, subjectID uint, now time.Time, limit int) ([]models.Reminder, error)
	// ListDue returns unsent reminders whose due timestamp has passed.
	ListDue(ctx context.Context, now time.Time) ([]models.Reminder, error)
	// ReplaceCycleReminders atomically deletes the subject's unsent
	// reminders in the cycle categories and inserts the given batch.
	// Readers never observe the intermediate empty state.
	ReplaceCycleReminders(ctx context.Context, subjectID uint, reminders []models.Reminder) error
	Create(ctx context.Context, reminder *models.Reminder) error
	// MarkSent flips sent=false to true exactly once; a reminder already
	// sent is left untouched and reported as unchanged.
	MarkSent(ctx context.Context, id uint, sentAt time.Time) (bool, error)
	FindBySubjectAndID(ctx context.Context, subjectID uint, id uint) (models.Reminder, bool, error)
	DeleteBySubjectAndID(ctx context.Context, subjectID uint, id uint) (bool, error)
	DeleteAllBySubject(ctx context.Context, subjectID uint) error
	// DeleteSentBefore purges sent reminders whose sentAt is older than the
	// cutoff and returns how many were removed.
	DeleteSentBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type MaintenanceStore interface {
	LastPurgeAt(ctx context.Context) (*time.Time, error)
	SetLastPurgeAt(ctx context.Context, at time.Time) error
}

type InsightStore interface {
	Create(ctx context.Context, insight *models.Insight) error
	LatestBySubject(ctx context.Context, subjectID uint) (models.Insight, bool, error)
}
