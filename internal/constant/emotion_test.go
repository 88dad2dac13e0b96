package constant

import "testing"

func TestDistributionToVector(t *testing.T) {
	vec := DistributionToVector(map[string]float64{
		"happy":    0.8,
		"neutral":  0.2,
		"euphoric": 0.5, // unknown labels are dropped
	})

	if len(vec) != EmotionVectorDim {
		t.Fatalf("len(vec) = %d, want %d", len(vec), EmotionVectorDim)
	}
	if vec[3] != 0.8 { // happy
		t.Errorf("happy slot = %v, want 0.8", vec[3])
	}
	if vec[4] != 0.2 { // neutral
		t.Errorf("neutral slot = %v, want 0.2", vec[4])
	}
	for i, label := range EmotionLabels {
		if label != "happy" && label != "neutral" && vec[i] != 0 {
			t.Errorf("%s slot = %v, want 0", label, vec[i])
		}
	}
}

func TestDistributionToVectorEmpty(t *testing.T) {
	vec := DistributionToVector(nil)
	if len(vec) != EmotionVectorDim {
		t.Fatalf("len(vec) = %d, want %d", len(vec), EmotionVectorDim)
	}
	for i, v := range vec {
		if v != 0 {
			t.Errorf("slot %d = %v, want 0", i, v)
		}
	}
}
