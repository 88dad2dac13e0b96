package contract

import (
	"context"
	"time"

	"emotion-ai-be/internal/model"
)

// EmotionCount is one row of the grouped distribution query.
type EmotionCount struct {
	DominantEmotion string
	Count           int64
	AvgConfidence   float64
}

// DailyEmotionCount is one row of the daily trend query.
type DailyEmotionCount struct {
	Date            time.Time
	DominantEmotion string
	Count           int64
}

// DetectionTotals are the scalar aggregates over a window.
type DetectionTotals struct {
	TotalDetections int64
	UniqueUsers     int64
	AvgConfidence   float64
}

type DetectionRepository interface {
	Create(ctx context.Context, detection *model.EmotionDetection) error
	FindHistory(ctx context.Context, userID string, limit int) ([]model.EmotionDetection, error)
	Totals(ctx context.Context, since time.Time) (*DetectionTotals, error)
	Distribution(ctx context.Context, since time.Time) ([]EmotionCount, error)
	DistributionByUser(ctx context.Context, userID string, since time.Time) ([]EmotionCount, error)
	DailyTrends(ctx context.Context, since time.Time) ([]DailyEmotionCount, error)
}
