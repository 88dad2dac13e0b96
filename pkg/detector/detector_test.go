package detector

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNewSelectsBackend(t *testing.T) {
	tests := []struct {
		backend string
		wantErr bool
	}{
		{"http", false},
		{"mock", false},
		{"grpc", true},
		{"", true},
	}
	for _, tt := range tests {
		_, err := New(tt.backend, "http://localhost:5001")
		if (err != nil) != tt.wantErr {
			t.Errorf("New(%q) error = %v, wantErr %v", tt.backend, err, tt.wantErr)
		}
	}
}

func TestMockDetectorProducesNormalizedDistribution(t *testing.T) {
	d := NewMockDetector()

	result, err := d.Detect(context.Background(), []byte("fake-jpeg"))
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}

	if len(result.AllEmotions) != 7 {
		t.Errorf("distribution has %d labels, want 7", len(result.AllEmotions))
	}

	var total float64
	for _, weight := range result.AllEmotions {
		if weight < 0 || weight > 1 {
			t.Errorf("weight %v out of [0,1]", weight)
		}
		total += weight
	}
	// Rounded per-label, so allow a small drift around 1.
	if math.Abs(total-1.0) > 0.01 {
		t.Errorf("distribution sums to %v, want ~1.0", total)
	}

	if result.AllEmotions[result.Emotion] != result.Confidence {
		t.Errorf("confidence %v does not match dominant label weight %v", result.Confidence, result.AllEmotions[result.Emotion])
	}
	if !strings.HasPrefix(result.Source, "mock_data_") {
		t.Errorf("Source = %q, want mock_data_ prefix", result.Source)
	}
	if result.NumFaces != 1 {
		t.Errorf("NumFaces = %d, want 1", result.NumFaces)
	}
}

func TestMockDetectorFlagsEmptyFrames(t *testing.T) {
	d := NewMockDetector()
	result, err := d.Detect(context.Background(), nil)
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	if result.Source != "mock_data_empty_frame" {
		t.Errorf("Source = %q, want mock_data_empty_frame", result.Source)
	}
}

func TestHTTPDetectorDecodesSidecarResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/detect" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("expected multipart body: %v", err)
		}
		json.NewEncoder(w).Encode(Result{
			Emotion:     "happy",
			Confidence:  0.91,
			AllEmotions: map[string]float64{"happy": 0.91, "neutral": 0.09},
			NumFaces:    1,
			Source:      "fer_model",
		})
	}))
	defer server.Close()

	d := NewHTTPDetector(server.URL)
	result, err := d.Detect(context.Background(), []byte("frame"))
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	if result.Emotion != "happy" || result.Confidence != 0.91 {
		t.Errorf("result = %+v", result)
	}
}

func TestHTTPDetectorSurfacesSidecarErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no face found", http.StatusUnprocessableEntity)
	}))
	defer server.Close()

	d := NewHTTPDetector(server.URL)
	if _, err := d.Detect(context.Background(), []byte("frame")); err == nil {
		t.Fatal("expected error on non-200 response")
	}
}
