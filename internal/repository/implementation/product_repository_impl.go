package implementation

import (
	"context"

	"emotion-ai-be/internal/model"
	"emotion-ai-be/internal/repository/contract"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProductRepositoryImpl struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) contract.ProductRepository {
	return &ProductRepositoryImpl{db: db}
}

func (r *ProductRepositoryImpl) FindByEmotionScore(ctx context.Context, emotion string, limit int) ([]contract.ProductMatch, error) {
	type row struct {
		model.Product
		EmotionScore float64
	}
	var rows []row

	err := r.db.WithContext(ctx).
		Model(&model.Product{}).
		Select("*, (emotion_scores->>?)::DECIMAL(5,3) AS emotion_score", emotion).
		Where(datatypes.JSONQuery("emotion_scores").HasKey(emotion)).
		Where("(emotion_scores->>?)::DECIMAL(5,3) > 0.5", emotion).
		Clauses(clause.OrderBy{
			Expression: gorm.Expr("(emotion_scores->>?)::DECIMAL(5,3) DESC", emotion),
		}).
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	matches := make([]contract.ProductMatch, 0, len(rows))
	for _, rw := range rows {
		matches = append(matches, contract.ProductMatch{Product: rw.Product, Score: rw.EmotionScore})
	}
	return matches, nil
}

func (r *ProductRepositoryImpl) FindByDistribution(ctx context.Context, vector []float32, limit int) ([]model.Product, error) {
	var products []model.Product

	err := r.db.WithContext(ctx).
		Model(&model.Product{}).
		Clauses(clause.OrderBy{
			Expression: gorm.Expr("affinity <=> ?", pgvector.NewVector(vector)),
		}).
		Limit(limit).
		Find(&products).Error

	return products, err
}

func (r *ProductRepositoryImpl) Upsert(ctx context.Context, product *model.Product) error {
	// Name is the natural key for seeding; repeated seeds update in place.
	var existing model.Product
	err := r.db.WithContext(ctx).Where("name = ?", product.Name).First(&existing).Error
	if err == gorm.ErrRecordNotFound {
		return r.db.WithContext(ctx).Create(product).Error
	}
	if err != nil {
		return err
	}

	product.ID = existing.ID
	return r.db.WithContext(ctx).Save(product).Error
}

func (r *ProductRepositoryImpl) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Product{}).Count(&count).Error
	return count, err
}
