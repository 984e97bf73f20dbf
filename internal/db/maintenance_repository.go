package db

import (
	"context"
	"time"

	"github.com/lunara-app/lunara/internal/models"
	"gorm.io/gorm"
)

type MaintenanceRepository struct {
	database *gorm.DB
}

func NewMaintenanceRepository(database *gorm.DB) *MaintenanceRepository {
	return &MaintenanceRepository{database: database}
}

func (repo *MaintenanceRepository) LastPurgeAt(ctx context.Context) (*time.Time, error) {
	state := models.MaintenanceState{}
	result := repo.database.WithContext(ctx).
		Order("id ASC").
		Limit(1).
		Find(&state)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return state.LastPurgeAt, nil
}

func (repo *MaintenanceRepository) SetLastPurgeAt(ctx context.Context, at time.Time) error {
	return repo.database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		state := models.MaintenanceState{}
		result := tx.Order("id ASC").Limit(1).Find(&state)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return tx.Create(&models.MaintenanceState{LastPurgeAt: &at}).Error
		}
		return tx.Model(&state).Update("last_purge_at", at).Error
	})
}
