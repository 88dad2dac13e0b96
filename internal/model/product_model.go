package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

// Product carries both the per-emotion score map the single-emotion lookup
// uses and a flattened affinity vector for distribution-similarity ranking.
// Vector order follows constant.EmotionLabels.
type Product struct {
	ID            uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name          string          `gorm:"type:varchar(200);not null" json:"name"`
	Category      string          `gorm:"type:varchar(100);not null;index" json:"category"`
	Subcategory   string          `gorm:"type:varchar(100)" json:"subcategory,omitempty"`
	Description   string          `gorm:"type:text" json:"description,omitempty"`
	Price         float64         `gorm:"not null" json:"price"`
	ImageURL      string          `gorm:"type:varchar(500)" json:"image_url,omitempty"`
	EmotionScores datatypes.JSON  `gorm:"type:jsonb" json:"emotion_scores"`
	Affinity      pgvector.Vector `gorm:"type:vector(7)" json:"-"`
	CreatedAt     time.Time       `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Product) TableName() string {
	return "products"
}
