package db

import (
	"context"

	"github.com/lunara-app/lunara/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProfileRepository struct {
	database *gorm.DB
}

func NewProfileRepository(database *gorm.DB) *ProfileRepository {
	return &ProfileRepository{database: database}
}

func (repo *ProfileRepository) FindBySubject(ctx context.Context, subjectID uint) (models.CycleProfile, bool, error) {
	profile := models.CycleProfile{}
	result := repo.database.WithContext(ctx).
		Where("subject_id = ?", subjectID).
		Limit(1).
		Find(&profile)
	if result.Error != nil {
		return models.CycleProfile{}, false, result.Error
	}
	if result.RowsAffected == 0 {
		return models.CycleProfile{}, false, nil
	}
	return profile, true, nil
}

func (repo *ProfileRepository) Upsert(ctx context.Context, profile *models.CycleProfile) error {
	return repo.database.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "subject_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"last_period_start",
				"average_cycle_length",
				"period_duration",
				"cycle_history",
				"reminder_days",
				"notification_hour",
				"updated_at",
			}),
		}).
		Create(profile).Error
}
