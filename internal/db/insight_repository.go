package db

import (
	"context"

	"github.com/lunara-app/lunara/internal/models"
	"gorm.io/gorm"
)

type InsightRepository struct {
	database *gorm.DB
}

func NewInsightRepository(database *gorm.DB) *InsightRepository {
	return &InsightRepository{database: database}
}

func (repo *InsightRepository) Create(ctx context.Context, insight *models.Insight) error {
	return repo.database.WithContext(ctx).Create(insight).Error
}

func (repo *InsightRepository) LatestBySubject(ctx context.Context, subjectID uint) (models.Insight, bool, error) {
	insight := models.Insight{}
	result := repo.database.WithContext(ctx).
		Where("subject_id = ?", subjectID).
		Order("created_at DESC, id DESC").
		Limit(1).
		Find(&insight)
	if result.Error != nil {
		return models.Insight{}, false, result.Error
	}
	if result.RowsAffected == 0 {
		return models.Insight{}, false, nil
	}
	return insight, true, nil
}
