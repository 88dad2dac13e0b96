package detector

import (
	"context"
	"fmt"
)

// Result is one detector pass over a single frame.
type Result struct {
	Emotion          string             `json:"emotion"`
	Confidence       float64            `json:"confidence"`
	AllEmotions      map[string]float64 `json:"allEmotions"`
	NumFaces         int                `json:"num_faces"`
	FaceBox          map[string]int     `json:"face_box,omitempty"`
	ProcessingTimeMs int                `json:"processing_time_ms"`
	Source           string             `json:"source"`
	DetectionMethod  string             `json:"detection_method,omitempty"`
}

// Detector analyzes a single encoded image frame.
type Detector interface {
	Detect(ctx context.Context, image []byte) (*Result, error)
}

// New selects a backend by name: "http" proxies to the vision sidecar,
// "mock" produces synthetic distributions for development.
func New(backend, baseURL string) (Detector, error) {
	switch backend {
	case "http":
		return NewHTTPDetector(baseURL), nil
	case "mock":
		return NewMockDetector(), nil
	default:
		return nil, fmt.Errorf("unsupported detector backend: %s", backend)
	}
}
