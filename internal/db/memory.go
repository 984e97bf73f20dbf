package db

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/lunara-app/lunara/internal/models"
)

// In-memory store implementations. They back tests and ad-hoc tooling with
// the same interfaces the gorm repositories implement; nothing in the server
// wiring uses them.

type MemoryProfileStore struct {
	mu       sync.Mutex
	nextID   uint
	profiles map[uint]models.CycleProfile
}

func NewMemoryProfileStore() *MemoryProfileStore {
	return &MemoryProfileStore{profiles: make(map[uint]models.CycleProfile)}
}

func (store *MemoryProfileStore) FindBySubject(_ context.Context, subjectID uint) (models.CycleProfile, bool, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	profile, found := store.profiles[subjectID]
	return profile, found, nil
}

func (store *MemoryProfileStore) Upsert(_ context.Context, profile *models.CycleProfile) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	if existing, found := store.profiles[profile.SubjectID]; found {
		profile.ID = existing.ID
	} else {
		store.nextID++
		profile.ID = store.nextID
	}
	store.profiles[profile.SubjectID] = *profile
	return nil
}

type MemoryReminderStore struct {
	mu        sync.Mutex
	nextID    uint
	reminders map[uint]models.Reminder
}

func NewMemoryReminderStore() *MemoryReminderStore {
	return &MemoryReminderStore{reminders: make(map[uint]models.Reminder)}
}

func (store *MemoryReminderStore) ListPendingBySubject(_ context.Context, subjectID uint, now time.Time, limit int) ([]models.Reminder, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	matched := store.sortedWhere(func(reminder models.Reminder) bool {
		return reminder.SubjectID == subjectID && !reminder.Sent && !reminder.DueAt.Before(now)
	})
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func (store *MemoryReminderStore) ListDue(_ context.Context, now time.Time) ([]models.Reminder, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	return store.sortedWhere(func(reminder models.Reminder) bool {
		return !reminder.Sent && !reminder.DueAt.After(now)
	}), nil
}

func (store *MemoryReminderStore) ReplaceCycleReminders(_ context.Context, subjectID uint, reminders []models.Reminder) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	cycleCategories := make(map[string]bool)
	for _, category := range models.CycleCategories() {
		cycleCategories[category] = true
	}

	for id, reminder := range store.reminders {
		if reminder.SubjectID == subjectID && !reminder.Sent && cycleCategories[reminder.Category] {
			delete(store.reminders, id)
		}
	}
	for _, reminder := range reminders {
		store.nextID++
		reminder.ID = store.nextID
		reminder.SubjectID = subjectID
		store.reminders[reminder.ID] = reminder
	}
	return nil
}

func (store *MemoryReminderStore) Create(_ context.Context, reminder *models.Reminder) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	store.nextID++
	reminder.ID = store.nextID
	store.reminders[reminder.ID] = *reminder
	return nil
}

func (store *MemoryReminderStore) MarkSent(_ context.Context, id uint, sentAt time.Time) (bool, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	reminder, found := store.reminders[id]
	if !found || reminder.Sent {
		return false, nil
	}
	reminder.Sent = true
	reminder.SentAt = &sentAt
	store.reminders[id] = reminder
	return true, nil
}

func (store *MemoryReminderStore) FindBySubjectAndID(_ context.Context, subjectID uint, id uint) (models.Reminder, bool, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	reminder, found := store.reminders[id]
	if !found || reminder.SubjectID != subjectID {
		return models.Reminder{}, false, nil
	}
	return reminder, true, nil
}

func (store *MemoryReminderStore) DeleteBySubjectAndID(_ context.Context, subjectID uint, id uint) (bool, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	reminder, found := store.reminders[id]
	if !found || reminder.SubjectID != subjectID {
		return false, nil
	}
	delete(store.reminders, id)
	return true, nil
}

func (store *MemoryReminderStore) DeleteAllBySubject(_ context.Context, subjectID uint) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	for id, reminder := range store.reminders {
		if reminder.SubjectID == subjectID {
			delete(store.reminders, id)
		}
	}
	return nil
}

func (store *MemoryReminderStore) DeleteSentBefore(_ context.Context, cutoff time.Time) (int64, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	purged := int64(0)
	for id, reminder := range store.reminders {
		if reminder.Sent && reminder.SentAt != nil && reminder.SentAt.Before(cutoff) {
			delete(store.reminders, id)
			purged++
		}
	}
	return purged, nil
}

// All lists every stored reminder sorted by due time; a test convenience.
func (store *MemoryReminderStore) All() []models.Reminder {
	store.mu.Lock()
	defer store.mu.Unlock()

	return store.sortedWhere(func(models.Reminder) bool { return true })
}

func (store *MemoryReminderStore) sortedWhere(match func(models.Reminder) bool) []models.Reminder {
	matched := make([]models.Reminder, 0, len(store.reminders))
	for _, reminder := range store.reminders {
		if match(reminder) {
			matched = append(matched, reminder)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].DueAt.Equal(matched[j].DueAt) {
			return matched[i].ID < matched[j].ID
		}
		return matched[i].DueAt.Before(matched[j].DueAt)
	})
	return matched
}

type MemoryMaintenanceStore struct {
	mu          sync.Mutex
	lastPurgeAt *time.Time
}

func NewMemoryMaintenanceStore() *MemoryMaintenanceStore {
	return &MemoryMaintenanceStore{}
}

func (store *MemoryMaintenanceStore) LastPurgeAt(_ context.Context) (*time.Time, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	if store.lastPurgeAt == nil {
		return nil, nil
	}
	at := *store.lastPurgeAt
	return &at, nil
}

func (store *MemoryMaintenanceStore) SetLastPurgeAt(_ context.Context, at time.Time) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	store.lastPurgeAt = &at
	return nil
}

type MemoryInsightStore struct {
	mu       sync.Mutex
	nextID   uint
	insights []models.Insight
}

func NewMemoryInsightStore() *MemoryInsightStore {
	return &MemoryInsightStore{}
}

func (store *MemoryInsightStore) Create(_ context.Context, insight *models.Insight) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	store.nextID++
	insight.ID = store.nextID
	store.insights = append(store.insights, *insight)
	return nil
}

func (store *MemoryInsightStore) LatestBySubject(_ context.Context, subjectID uint) (models.Insight, bool, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	for i := len(store.insights) - 1; i >= 0; i-- {
		if store.insights[i].SubjectID == subjectID {
			return store.insights[i], true, nil
		}
	}
	return models.Insight{}, false, nil
}
