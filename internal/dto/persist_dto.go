package dto

import "time"

// PersistDetectionMessage is the watermill payload handed from the detect
// path to the background consumer that writes the row.
type PersistDetectionMessage struct {
	UserID           string             `json:"user_id"`
	SessionID        string             `json:"session_id"`
	Emotion          string             `json:"emotion"`
	Confidence       float64            `json:"confidence"`
	AllEmotions      map[string]float64 `json:"all_emotions"`
	NumFaces         int                `json:"num_faces"`
	FaceBox          map[string]int     `json:"face_box,omitempty"`
	Source           string             `json:"source"`
	ProcessingTimeMs int                `json:"processing_time_ms"`
	ImageSize        string             `json:"image_size,omitempty"`
	DetectedAt       time.Time          `json:"detected_at"`
}
