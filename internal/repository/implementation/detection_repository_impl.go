package implementation

import (
	"context"
	"time"

	"emotion-ai-be/internal/model"
	"emotion-ai-be/internal/repository/contract"

	"gorm.io/gorm"
)

type DetectionRepositoryImpl struct {
	db *gorm.DB
}

func NewDetectionRepository(db *gorm.DB) contract.DetectionRepository {
	return &DetectionRepositoryImpl{db: db}
}

func (r *DetectionRepositoryImpl) Create(ctx context.Context, detection *model.EmotionDetection) error {
	return r.db.WithContext(ctx).Create(detection).Error
}

func (r *DetectionRepositoryImpl) FindHistory(ctx context.Context, userID string, limit int) ([]model.EmotionDetection, error) {
	var detections []model.EmotionDetection

	db := r.db.WithContext(ctx).Model(&model.EmotionDetection{})
	if userID != "" {
		db = db.Where("user_id = ?", userID)
	}

	err := db.Order("detected_at DESC").
		Limit(limit).
		Find(&detections).Error

	return detections, err
}

func (r *DetectionRepositoryImpl) Totals(ctx context.Context, since time.Time) (*contract.DetectionTotals, error) {
	var totals contract.DetectionTotals

	err := r.db.WithContext(ctx).
		Model(&model.EmotionDetection{}).
		Select("COUNT(*) AS total_detections, COUNT(DISTINCT user_id) AS unique_users, COALESCE(AVG(confidence), 0) AS avg_confidence").
		Where("detected_at >= ?", since).
		Scan(&totals).Error
	if err != nil {
		return nil, err
	}

	return &totals, nil
}

func (r *DetectionRepositoryImpl) Distribution(ctx context.Context, since time.Time) ([]contract.EmotionCount, error) {
	var rows []contract.EmotionCount

	err := r.db.WithContext(ctx).
		Model(&model.EmotionDetection{}).
		Select("dominant_emotion, COUNT(*) AS count, AVG(confidence) AS avg_confidence").
		Where("detected_at >= ?", since).
		Group("dominant_emotion").
		Order("count DESC").
		Scan(&rows).Error

	return rows, err
}

func (r *DetectionRepositoryImpl) DistributionByUser(ctx context.Context, userID string, since time.Time) ([]contract.EmotionCount, error) {
	var rows []contract.EmotionCount

	err := r.db.WithContext(ctx).
		Model(&model.EmotionDetection{}).
		Select("dominant_emotion, COUNT(*) AS count, AVG(confidence) AS avg_confidence").
		Where("user_id = ? AND detected_at >= ?", userID, since).
		Group("dominant_emotion").
		Order("count DESC").
		Scan(&rows).Error

	return rows, err
}

func (r *DetectionRepositoryImpl) DailyTrends(ctx context.Context, since time.Time) ([]contract.DailyEmotionCount, error) {
	var rows []contract.DailyEmotionCount

	err := r.db.WithContext(ctx).
		Model(&model.EmotionDetection{}).
		Select("DATE(detected_at) AS date, dominant_emotion, COUNT(*) AS count").
		Where("detected_at >= ?", since).
		Group("DATE(detected_at), dominant_emotion").
		Order("date DESC, count DESC").
		Scan(&rows).Error

	return rows, err
}
