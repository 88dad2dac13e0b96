package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// InteractionHistory is the generic per-user processing log: one row per
// analyzed input (image, text, ...) with the structured result attached.
type InteractionHistory struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    string         `gorm:"type:varchar(100);not null;index:idx_history_user_created,priority:1" json:"user_id"`
	DataType  string         `gorm:"type:varchar(20);not null" json:"data_type"` // image, audio, text, video
	InputInfo string         `gorm:"type:varchar(255)" json:"input_info,omitempty"`
	Result    datatypes.JSON `gorm:"type:jsonb" json:"result,omitempty"`
	CreatedAt time.Time      `gorm:"default:CURRENT_TIMESTAMP;index:idx_history_user_created,priority:2" json:"created_at"`
}

func (InteractionHistory) TableName() string {
	return "interaction_history"
}
