package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// EmotionDetection stores one detector result. Written asynchronously off the
// request path; the detect endpoints never wait on this row existing.
type EmotionDetection struct {
	ID               uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID           string         `gorm:"type:varchar(100);index:idx_detections_user_detected,priority:1" json:"user_id,omitempty"`
	SessionID        string         `gorm:"type:varchar(100);index" json:"session_id,omitempty"`
	DominantEmotion  string         `gorm:"type:varchar(20);not null;index" json:"dominant_emotion"`
	Confidence       float64        `gorm:"not null" json:"confidence"`
	AllEmotions      datatypes.JSON `gorm:"type:jsonb" json:"all_emotions"`
	NumFaces         int            `gorm:"default:1" json:"num_faces"`
	FaceBox          datatypes.JSON `gorm:"type:jsonb" json:"face_box,omitempty"`
	Source           string         `gorm:"type:varchar(50);not null" json:"source"`
	ProcessingTimeMs int            `json:"processing_time_ms"`
	ImageSize        string         `gorm:"type:varchar(50)" json:"image_size,omitempty"`
	DetectedAt       time.Time      `gorm:"not null;index:idx_detections_user_detected,priority:2" json:"detected_at"`
	CreatedAt        time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (EmotionDetection) TableName() string {
	return "emotion_detections"
}
