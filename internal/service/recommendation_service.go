package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"emotion-ai-be/internal/constant"
	"emotion-ai-be/internal/dto"
	"emotion-ai-be/internal/model"
	"emotion-ai-be/internal/pkg/logger"
	"emotion-ai-be/internal/repository/contract"
	"emotion-ai-be/pkg/agent"
	"emotion-ai-be/pkg/events"
	pktNats "emotion-ai-be/pkg/nats"

	"gorm.io/datatypes"
)

type IRecommendationService interface {
	// Predict never fails; the pipeline degrades to deterministic fallbacks.
	Predict(ctx context.Context, req *dto.PreferenceRequest) *dto.PreferenceResponse

	// Stream forwards model fragments as they arrive. A backend failure is
	// delivered as one final JSON error fragment before the channel closes.
	Stream(ctx context.Context, req *dto.PreferenceRequest) <-chan string

	ProductsForEmotion(ctx context.Context, emotion string, limit int) ([]dto.ProductRecommendation, error)
	ProductsForDistribution(ctx context.Context, emotions map[string]float64, limit int) ([]dto.ProductRecommendation, error)
}

type recommendationService struct {
	agent          *agent.Agent
	productRepo    contract.ProductRepository // nil when persistence is disabled
	historyRepo    contract.HistoryRepository // nil when persistence is disabled
	eventPublisher *pktNats.Publisher
	log            logger.ILogger
}

func NewRecommendationService(
	ag *agent.Agent,
	productRepo contract.ProductRepository,
	historyRepo contract.HistoryRepository,
	eventPublisher *pktNats.Publisher,
	log logger.ILogger,
) IRecommendationService {
	return &recommendationService{
		agent:          ag,
		productRepo:    productRepo,
		historyRepo:    historyRepo,
		eventPublisher: eventPublisher,
		log:            log,
	}
}

func (s *recommendationService) Predict(ctx context.Context, req *dto.PreferenceRequest) *dto.PreferenceResponse {
	result := s.agent.Predict(ctx, req.UserID, req.CurrentEmotion, req.PreviousInteractions, req.SessionContext)

	response := &dto.PreferenceResponse{
		UserID:                result.UserID,
		RecommendedCategories: result.RecommendedCategories,
		Reasoning:             result.Reasoning,
		ConfidenceScore:       result.ConfidenceScore,
	}

	go s.recordPrediction(req, response)

	if s.eventPublisher != nil {
		evt := events.NewPreferencePredicted(result.UserID, result.RecommendedCategories, result.ConfidenceScore)
		if err := s.eventPublisher.Publish(ctx, evt); err != nil {
			s.log.Warn("RecommendationService", "Failed to publish prediction event", map[string]interface{}{
				"user_id": result.UserID,
				"error":   err.Error(),
			})
		}
	}

	return response
}

// recordPrediction persists the interaction off the request path. Losing a
// row is acceptable; failing a prediction over bookkeeping is not.
func (s *recommendationService) recordPrediction(req *dto.PreferenceRequest, res *dto.PreferenceResponse) {
	if s.historyRepo == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	payload, err := json.Marshal(res)
	if err != nil {
		return
	}
	row := &model.InteractionHistory{
		UserID:    req.UserID,
		DataType:  "text",
		InputInfo: "preference_prediction",
		Result:    datatypes.JSON(payload),
		CreatedAt: time.Now(),
	}
	if err := s.historyRepo.Create(ctx, row); err != nil {
		s.log.Warn("RecommendationService", "Failed to record prediction", map[string]interface{}{
			"user_id": req.UserID,
			"error":   err.Error(),
		})
	}
}

func (s *recommendationService) Stream(ctx context.Context, req *dto.PreferenceRequest) <-chan string {
	return s.agent.Stream(ctx, req.UserID, req.CurrentEmotion, req.PreviousInteractions, req.SessionContext)
}

func (s *recommendationService) ProductsForEmotion(ctx context.Context, emotion string, limit int) ([]dto.ProductRecommendation, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	if s.productRepo == nil {
		return mockProducts(emotion, limit), nil
	}

	matches, err := s.productRepo.FindByEmotionScore(ctx, emotion, limit)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return mockProducts(emotion, limit), nil
	}

	recommendations := make([]dto.ProductRecommendation, 0, len(matches))
	for _, match := range matches {
		recommendations = append(recommendations, dto.ProductRecommendation{
			ID:           match.Product.ID.String(),
			Name:         match.Product.Name,
			Category:     match.Product.Category,
			Price:        match.Product.Price,
			EmotionScore: match.Score,
			Reason:       fmt.Sprintf("Strong match for your %s mood", emotion),
		})
	}
	return recommendations, nil
}

func (s *recommendationService) ProductsForDistribution(ctx context.Context, emotions map[string]float64, limit int) ([]dto.ProductRecommendation, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	if s.productRepo == nil {
		return mockProducts(dominantOf(emotions), limit), nil
	}

	vector := constant.DistributionToVector(emotions)
	products, err := s.productRepo.FindByDistribution(ctx, vector, limit)
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return mockProducts(dominantOf(emotions), limit), nil
	}

	recommendations := make([]dto.ProductRecommendation, 0, len(products))
	for _, product := range products {
		recommendations = append(recommendations, dto.ProductRecommendation{
			ID:       product.ID.String(),
			Name:     product.Name,
			Category: product.Category,
			Price:    product.Price,
			Reason:   "Closest match to your current emotional profile",
		})
	}
	return recommendations, nil
}

func dominantOf(emotions map[string]float64) string {
	dominant, best, first := "neutral", 0.0, true
	for label, weight := range emotions {
		if first || weight > best || (weight == best && label < dominant) {
			dominant, best, first = label, weight, false
		}
	}
	return dominant
}

var mockCatalog = map[string][]dto.ProductRecommendation{
	"happy": {
		{ID: "mock-1", Name: "Wireless Party Speaker", Category: "Electronics", Price: 89.99, EmotionScore: 0.9},
		{ID: "mock-2", Name: "Board Game Night Set", Category: "Toys & Games", Price: 34.50, EmotionScore: 0.85},
	},
	"sad": {
		{ID: "mock-3", Name: "Weighted Comfort Blanket", Category: "Home & Kitchen", Price: 59.00, EmotionScore: 0.88},
		{ID: "mock-4", Name: "Feel-Good Fiction Bundle", Category: "Books", Price: 24.99, EmotionScore: 0.82},
	},
	"neutral": {
		{ID: "mock-5", Name: "Smart Home Hub", Category: "Electronics", Price: 129.00, EmotionScore: 0.75},
		{ID: "mock-6", Name: "Everyday Cotton Tee", Category: "Clothing", Price: 19.99, EmotionScore: 0.7},
	},
}

func mockProducts(emotion string, limit int) []dto.ProductRecommendation {
	products, ok := mockCatalog[emotion]
	if !ok {
		products = mockCatalog["neutral"]
	}
	out := make([]dto.ProductRecommendation, 0, len(products))
	for _, p := range products {
		p.Reason = fmt.Sprintf("Popular pick for a %s mood", emotion)
		out = append(out, p)
		if len(out) == limit {
			break
		}
	}
	return out
}
