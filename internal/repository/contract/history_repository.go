package contract

import (
	"context"

	"emotion-ai-be/internal/model"
)

type HistoryRepository interface {
	Create(ctx context.Context, history *model.InteractionHistory) error
	FindByUser(ctx context.Context, userID string, limit, offset int) ([]model.InteractionHistory, error)
}
