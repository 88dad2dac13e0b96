package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"emotion-ai-be/internal/constant"
	"emotion-ai-be/internal/dto"
	"emotion-ai-be/internal/pkg/logger"
	"emotion-ai-be/internal/repository/contract"
	"emotion-ai-be/pkg/detector"
)

type IDetectionService interface {
	// Detect runs one frame through the detector and schedules persistence
	// off the request path.
	Detect(ctx context.Context, image []byte, userID, sessionID, filename string) (*dto.DetectionResult, error)
	History(ctx context.Context, userID string, limit int) ([]dto.EmotionHistoryItem, error)
	Analytics(ctx context.Context, days int) (*dto.EmotionAnalytics, error)
	Stats(ctx context.Context, userID, timeframe string) (*dto.EmotionStats, error)
}

type detectionService struct {
	detector      detector.Detector
	fallback      detector.Detector
	publisher     IPublisherService
	detectionRepo contract.DetectionRepository // nil when persistence is disabled
	log           logger.ILogger
}

func NewDetectionService(
	det detector.Detector,
	publisher IPublisherService,
	detectionRepo contract.DetectionRepository,
	log logger.ILogger,
) IDetectionService {
	return &detectionService{
		detector:      det,
		fallback:      detector.NewMockDetector(),
		publisher:     publisher,
		detectionRepo: detectionRepo,
		log:           log,
	}
}

func (s *detectionService) Detect(ctx context.Context, image []byte, userID, sessionID, filename string) (*dto.DetectionResult, error) {
	detected, err := s.detector.Detect(ctx, image)
	if err != nil {
		// A dead sidecar degrades to synthetic data rather than failing the
		// caller's request.
		s.log.Warn("DetectionService", "Detector failed, serving mock result", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
		detected, err = s.fallback.Detect(ctx, image)
		if err != nil {
			return nil, fmt.Errorf("emotion detection failed: %w", err)
		}
		detected.Source = "mock_data_detector_error"
	}

	now := time.Now()
	result := &dto.DetectionResult{
		Emotion:          detected.Emotion,
		Confidence:       detected.Confidence,
		AllEmotions:      detected.AllEmotions,
		NumFaces:         detected.NumFaces,
		FaceBox:          detected.FaceBox,
		ProcessingTimeMs: detected.ProcessingTimeMs,
		Timestamp:        now.Format(time.RFC3339),
		Source:           detected.Source,
		UserID:           userID,
		SessionID:        sessionID,
		DetectionMethod:  detected.DetectionMethod,
		Filename:         filename,
	}

	if s.detectionRepo != nil {
		payload, err := json.Marshal(dto.PersistDetectionMessage{
			UserID:           userID,
			SessionID:        sessionID,
			Emotion:          detected.Emotion,
			Confidence:       detected.Confidence,
			AllEmotions:      detected.AllEmotions,
			NumFaces:         detected.NumFaces,
			FaceBox:          detected.FaceBox,
			Source:           detected.Source,
			ProcessingTimeMs: detected.ProcessingTimeMs,
			ImageSize:        fmt.Sprintf("%d bytes", len(image)),
			DetectedAt:       now,
		})
		if err == nil {
			err = s.publisher.Publish(ctx, payload)
		}
		if err != nil {
			s.log.Warn("DetectionService", "Failed to schedule persistence", map[string]interface{}{
				"user_id": userID,
				"error":   err.Error(),
			})
		} else {
			result.SavedToDatabase = true
		}
	}

	return result, nil
}

func (s *detectionService) History(ctx context.Context, userID string, limit int) ([]dto.EmotionHistoryItem, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if s.detectionRepo == nil {
		return mockHistory(userID, limit), nil
	}

	rows, err := s.detectionRepo.FindHistory(ctx, userID, limit)
	if err != nil {
		s.log.Error("DetectionService", "History query failed, serving mock data", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
		return mockHistory(userID, limit), nil
	}

	items := make([]dto.EmotionHistoryItem, 0, len(rows))
	for _, row := range rows {
		var all map[string]float64
		if len(row.AllEmotions) > 0 {
			_ = json.Unmarshal(row.AllEmotions, &all)
		}
		items = append(items, dto.EmotionHistoryItem{
			ID:          row.ID.String(),
			Emotion:     row.DominantEmotion,
			Confidence:  row.Confidence,
			AllEmotions: all,
			NumFaces:    row.NumFaces,
			Source:      row.Source,
			Timestamp:   row.DetectedAt.Format(time.RFC3339),
		})
	}
	return items, nil
}

func (s *detectionService) Analytics(ctx context.Context, days int) (*dto.EmotionAnalytics, error) {
	if days <= 0 || days > 365 {
		days = 7
	}
	if s.detectionRepo == nil {
		return mockAnalytics(days), nil
	}

	since := time.Now().AddDate(0, 0, -days)

	totals, err := s.detectionRepo.Totals(ctx, since)
	if err != nil {
		s.log.Error("DetectionService", "Analytics query failed, serving mock data", map[string]interface{}{
			"error": err.Error(),
		})
		return mockAnalytics(days), nil
	}

	distribution, err := s.detectionRepo.Distribution(ctx, since)
	if err != nil {
		return nil, err
	}
	trends, err := s.detectionRepo.DailyTrends(ctx, since)
	if err != nil {
		return nil, err
	}

	analytics := &dto.EmotionAnalytics{
		PeriodDays:      days,
		TotalDetections: totals.TotalDetections,
		UniqueUsers:     totals.UniqueUsers,
		AvgConfidence:   round3(totals.AvgConfidence),
		Source:          "database",
	}
	for _, row := range distribution {
		analytics.EmotionDistribution = append(analytics.EmotionDistribution, dto.EmotionDistributionEntry{
			Emotion:       row.DominantEmotion,
			Count:         row.Count,
			AvgConfidence: round3(row.AvgConfidence),
		})
	}
	for _, row := range trends {
		analytics.DailyTrends = append(analytics.DailyTrends, dto.DailyTrendEntry{
			Date:    row.Date.Format("2006-01-02"),
			Emotion: row.DominantEmotion,
			Count:   row.Count,
		})
	}
	return analytics, nil
}

func (s *detectionService) Stats(ctx context.Context, userID, timeframe string) (*dto.EmotionStats, error) {
	var window time.Duration
	switch timeframe {
	case "day", "daily":
		timeframe = "day"
		window = 24 * time.Hour
	case "month", "monthly":
		timeframe = "month"
		window = 30 * 24 * time.Hour
	default:
		timeframe = "week"
		window = 7 * 24 * time.Hour
	}

	end := time.Now()
	start := end.Add(-window)

	distribution := mockDistribution()
	if s.detectionRepo != nil {
		rows, err := s.detectionRepo.DistributionByUser(ctx, userID, start)
		if err != nil {
			s.log.Error("DetectionService", "Stats query failed, serving mock data", map[string]interface{}{
				"user_id": userID,
				"error":   err.Error(),
			})
		} else if len(rows) > 0 {
			var total int64
			for _, row := range rows {
				total += row.Count
			}
			distribution = make(map[string]float64, len(rows))
			for _, row := range rows {
				distribution[row.DominantEmotion] = round3(float64(row.Count) / float64(total))
			}
		}
	}

	return &dto.EmotionStats{
		UserID:              userID,
		Timeframe:           timeframe,
		PeriodStart:         start.Format(time.RFC3339),
		PeriodEnd:           end.Format(time.RFC3339),
		EmotionDistribution: distribution,
		ProductInteractions: interactionsFor(distribution),
	}, nil
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

func mockDistribution() map[string]float64 {
	return map[string]float64{
		"happy":    0.35,
		"neutral":  0.40,
		"sad":      0.10,
		"angry":    0.05,
		"surprise": 0.10,
	}
}

// interactionsFor fabricates interaction correlations until real purchase
// tracking lands. The strongest emotion gets the strongest correlation.
func interactionsFor(distribution map[string]float64) []dto.ProductInteractionStat {
	dominant, best := "neutral", 0.0
	for label, weight := range distribution {
		if weight > best || (weight == best && label < dominant) {
			dominant, best = label, weight
		}
	}

	correlated := map[string][]string{
		"happy":    {"Toys & Games", "Sports & Outdoors"},
		"sad":      {"Books", "Food & Grocery"},
		"angry":    {"Sports & Outdoors", "Health & Wellness"},
		"neutral":  {"Electronics", "Home & Kitchen"},
		"surprise": {"Jewelry", "Handmade"},
		"fear":     {"Books", "Health & Wellness"},
		"disgust":  {"Beauty & Personal Care", "Home & Kitchen"},
	}

	categories, ok := correlated[dominant]
	if !ok {
		categories = []string{"Electronics", "Clothing"}
	}

	stats := make([]dto.ProductInteractionStat, 0, len(categories))
	for i, category := range categories {
		stats = append(stats, dto.ProductInteractionStat{
			Category:               category,
			InteractionCount:       12 - 4*i,
			CorrelationWithEmotion: dominant,
		})
	}
	return stats
}

func mockHistory(userID string, limit int) []dto.EmotionHistoryItem {
	if limit > 10 {
		limit = 10
	}
	labels := constant.EmotionLabels
	now := time.Now()

	items := make([]dto.EmotionHistoryItem, 0, limit)
	for i := 0; i < limit; i++ {
		label := labels[i%len(labels)]
		items = append(items, dto.EmotionHistoryItem{
			ID:         fmt.Sprintf("mock-%s-%d", userID, i),
			Emotion:    label,
			Confidence: round3(0.6 + 0.05*float64(i%7)),
			Source:     "mock_data_database_disabled",
			Timestamp:  now.Add(-time.Duration(i) * time.Hour).Format(time.RFC3339),
		})
	}
	return items
}

func mockAnalytics(days int) *dto.EmotionAnalytics {
	analytics := &dto.EmotionAnalytics{
		PeriodDays:      days,
		TotalDetections: 128,
		UniqueUsers:     7,
		AvgConfidence:   0.74,
		Source:          "mock_data_database_disabled",
	}
	for label, share := range mockDistribution() {
		analytics.EmotionDistribution = append(analytics.EmotionDistribution, dto.EmotionDistributionEntry{
			Emotion:       label,
			Count:         int64(share * 128),
			AvgConfidence: 0.74,
		})
	}
	return analytics
}
