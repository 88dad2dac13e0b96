package constant

// EmotionLabels is the canonical label set and ordering used everywhere an
// emotion distribution is flattened into a fixed-width vector (product
// affinity columns, detector outputs). Do not reorder.
var EmotionLabels = []string{
	"angry", "disgust", "fear", "happy", "neutral", "sad", "surprise",
}

// EmotionVectorDim is the width of affinity vectors derived from EmotionLabels.
const EmotionVectorDim = 7

// DistributionToVector flattens an emotion distribution into EmotionLabels
// order. Missing labels become 0; unknown labels are ignored.
func DistributionToVector(emotions map[string]float64) []float32 {
	vec := make([]float32, len(EmotionLabels))
	for i, label := range EmotionLabels {
		vec[i] = float32(emotions[label])
	}
	return vec
}
