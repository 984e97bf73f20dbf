package db

import (
	"context"
	"time"

	"github.com/lunara-app/lunara/internal/models"
	"gorm.io/gorm"
)

type ReminderRepository struct {
	database *gorm.DB
}

func NewReminderRepository(database *gorm.DB) *ReminderRepository {
	return &ReminderRepository{database: database}
}

func (repo *ReminderRepository) ListPendingBySubject(ctx context.Context, subjectID uint, now time.Time, limit int) ([]models.Reminder, error) {
	query := repo.database.WithContext(ctx).
		Where("subject_id = ? AND sent = ? AND due_at >= ?", subjectID, false, now).
		Order("due_at ASC, id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	reminders := make([]models.Reminder, 0)
	if err := query.Find(&reminders).Error; err != nil {
		return nil, err
	}
	return reminders, nil
}

func (repo *ReminderRepository) ListDue(ctx context.Context, now time.Time) ([]models.Reminder, error) {
	reminders := make([]models.Reminder, 0)
	if err := repo.database.WithContext(ctx).
		Where("sent = ? AND due_at <= ?", false, now).
		Order("due_at ASC, id ASC").
		Find(&reminders).Error; err != nil {
		return nil, err
	}
	return reminders, nil
}

// ReplaceCycleReminders deletes the subject's unsent cycle-category
// reminders and inserts the new batch in one transaction, so concurrent
// readers never see the subject without reminders mid-regeneration.
func (repo *ReminderRepository) ReplaceCycleReminders(ctx context.Context, subjectID uint, reminders []models.Reminder) error {
	return repo.database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("subject_id = ? AND sent = ? AND category IN ?", subjectID, false, models.CycleCategories()).
			Delete(&models.Reminder{}).Error; err != nil {
			return err
		}
		if len(reminders) == 0 {
			return nil
		}
		for i := range reminders {
			reminders[i].SubjectID = subjectID
		}
		return tx.Create(&reminders).Error
	})
}

func (repo *ReminderRepository) Create(ctx context.Context, reminder *models.Reminder) error {
	return repo.database.WithContext(ctx).Create(reminder).Error
}

func (repo *ReminderRepository) MarkSent(ctx context.Context, id uint, sentAt time.Time) (bool, error) {
	result := repo.database.WithContext(ctx).
		Model(&models.Reminder{}).
		Where("id = ? AND sent = ?", id, false).
		Updates(map[string]interface{}{"sent": true, "sent_at": sentAt})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (repo *ReminderRepository) FindBySubjectAndID(ctx context.Context, subjectID uint, id uint) (models.Reminder, bool, error) {
	reminder := models.Reminder{}
	result := repo.database.WithContext(ctx).
		Where("id = ? AND subject_id = ?", id, subjectID).
		Limit(1).
		Find(&reminder)
	if result.Error != nil {
		return models.Reminder{}, false, result.Error
	}
	if result.RowsAffected == 0 {
		return models.Reminder{}, false, nil
	}
	return reminder, true, nil
}

func (repo *ReminderRepository) DeleteBySubjectAndID(ctx context.Context, subjectID uint, id uint) (bool, error) {
	result := repo.database.WithContext(ctx).
		Where("id = ? AND subject_id = ?", id, subjectID).
		Delete(&models.Reminder{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (repo *ReminderRepository) DeleteAllBySubject(ctx context.Context, subjectID uint) error {
	return repo.database.WithContext(ctx).
		Where("subject_id = ?", subjectID).
		Delete(&models.Reminder{}).Error
}

func (repo *ReminderRepository) DeleteSentBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := repo.database.WithContext(ctx).
		Where("sent = ? AND sent_at < ?", true, cutoff).
		Delete(&models.Reminder{})
	return result.RowsAffected, result.Error
}
