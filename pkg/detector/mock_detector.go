package detector

import (
	"context"
	"math"
	"math/rand"
	"sync"

	"emotion-ai-be/internal/constant"
)

// MockDetector fabricates plausible distributions so the rest of the system
// can run without the vision sidecar. Results are random but normalized.
type MockDetector struct {
	mu  sync.Mutex
	rng *rand.Rand
}

var _ Detector = &MockDetector{}

func NewMockDetector() *MockDetector {
	return &MockDetector{rng: rand.New(rand.NewSource(rand.Int63()))}
}

func (d *MockDetector) Detect(_ context.Context, image []byte) (*Result, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	weights := make([]float64, len(constant.EmotionLabels))
	var total float64
	for i := range weights {
		weights[i] = d.rng.Float64()
		total += weights[i]
	}

	all := make(map[string]float64, len(constant.EmotionLabels))
	dominant, best := constant.EmotionLabels[0], 0.0
	for i, label := range constant.EmotionLabels {
		w := math.Round(weights[i]/total*1000) / 1000
		all[label] = w
		if w > best {
			dominant, best = label, w
		}
	}

	reason := "random"
	if len(image) == 0 {
		reason = "empty_frame"
	}

	return &Result{
		Emotion:     dominant,
		Confidence:  best,
		AllEmotions: all,
		NumFaces:    1,
		FaceBox: map[string]int{
			"x": 80 + d.rng.Intn(40), "y": 60 + d.rng.Intn(40),
			"w": 160, "h": 160,
		},
		ProcessingTimeMs: 1 + d.rng.Intn(4),
		Source:           "mock_data_" + reason,
		DetectionMethod:  "mock",
	}, nil
}
