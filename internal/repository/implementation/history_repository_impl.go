package implementation

import (
	"context"

	"emotion-ai-be/internal/model"
	"emotion-ai-be/internal/repository/contract"

	"gorm.io/gorm"
)

type HistoryRepositoryImpl struct {
	db *gorm.DB
}

func NewHistoryRepository(db *gorm.DB) contract.HistoryRepository {
	return &HistoryRepositoryImpl{db: db}
}

func (r *HistoryRepositoryImpl) Create(ctx context.Context, history *model.InteractionHistory) error {
	return r.db.WithContext(ctx).Create(history).Error
}

func (r *HistoryRepositoryImpl) FindByUser(ctx context.Context, userID string, limit, offset int) ([]model.InteractionHistory, error) {
	var entries []model.InteractionHistory

	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&entries).Error

	return entries, err
}
