package contract

import (
	"context"

	"emotion-ai-be/internal/model"
)

// ProductMatch is a product joined with the score it matched on.
type ProductMatch struct {
	Product model.Product
	Score   float64
}

type ProductRepository interface {
	// FindByEmotionScore ranks products by their jsonb score for one emotion
	// label, strongest first, skipping entries scored 0.5 or below.
	FindByEmotionScore(ctx context.Context, emotion string, limit int) ([]ProductMatch, error)

	// FindByDistribution ranks products by cosine distance between their
	// affinity vector and the supplied distribution vector.
	FindByDistribution(ctx context.Context, vector []float32, limit int) ([]model.Product, error)

	Upsert(ctx context.Context, product *model.Product) error
	Count(ctx context.Context) (int64, error)
}
