package agent

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"

	"emotion-ai-be/pkg/llm"
)

type stubLogger struct{}

func (stubLogger) Debug(string, string, map[string]interface{}) {}
func (stubLogger) Info(string, string, map[string]interface{})  {}
func (stubLogger) Warn(string, string, map[string]interface{})  {}
func (stubLogger) Error(string, string, map[string]interface{}) {}
func (stubLogger) Sync() error                                  { return nil }

// stubProvider scripts the model's behavior per test case.
type stubProvider struct {
	reply        string
	err          error
	calls        int
	lastPrompt   string
	streamChunks []llm.StreamChunk
	streamErr    error
}

func (s *stubProvider) Chat(_ context.Context, _ []llm.Message, _ ...llm.Option) (string, error) {
	return s.reply, s.err
}

func (s *stubProvider) Generate(_ context.Context, prompt string, _ ...llm.Option) (string, error) {
	s.calls++
	s.lastPrompt = prompt
	return s.reply, s.err
}

func (s *stubProvider) GenerateStream(_ context.Context, prompt string, _ ...llm.Option) (<-chan llm.StreamChunk, error) {
	s.lastPrompt = prompt
	if s.streamErr != nil {
		return nil, s.streamErr
	}
	out := make(chan llm.StreamChunk, len(s.streamChunks))
	for _, chunk := range s.streamChunks {
		out <- chunk
	}
	close(out)
	return out, nil
}

type mapCache map[string]string

func (m mapCache) Get(prompt string) (string, bool) {
	v, ok := m[prompt]
	return v, ok
}

func (m mapCache) Set(prompt, reply string) { m[prompt] = reply }

func TestPredictParsesModelReply(t *testing.T) {
	provider := &stubProvider{reply: `{"recommended_categories":["Books"],"reasoning":"r"}`}
	a := NewAgent(provider, nil, stubLogger{})

	result := a.Predict(context.Background(), "u42", map[string]float64{"happy": 0.8, "neutral": 0.2}, nil, nil)

	if result.UserID != "u42" {
		t.Errorf("UserID = %q, want u42", result.UserID)
	}
	if !reflect.DeepEqual(result.RecommendedCategories, []string{"Books"}) {
		t.Errorf("RecommendedCategories = %v, want [Books]", result.RecommendedCategories)
	}
	if result.Reasoning != "r" {
		t.Errorf("Reasoning = %q, want r", result.Reasoning)
	}
	happy := 0.8
	if want := 0.9 * happy; result.ConfidenceScore != want {
		t.Errorf("ConfidenceScore = %v, want %v", result.ConfidenceScore, want)
	}
}

func TestPredictConfidenceScoring(t *testing.T) {
	reply := `{"recommended_categories":["Books"],"reasoning":"ok"}`
	// Expected scores are the exact factor*weight products; the weights are
	// kept in variables so the expectations go through the same float64
	// arithmetic as the scorer.
	happy, sad, third := 0.8, 0.5, 1.0/3.0
	tests := []struct {
		name     string
		emotions map[string]float64
		want     float64
	}{
		{"no emotions", nil, 0.5},
		{"empty map", map[string]float64{}, 0.5},
		{"neutral dominant", map[string]float64{"neutral": 1.0}, 0.7},
		{"happy dominant", map[string]float64{"happy": happy, "neutral": 0.2}, 0.9 * happy},
		{"surprise dominant", map[string]float64{"surprise": 1.0}, 0.9},
		{"sad dominant", map[string]float64{"sad": sad, "neutral": 0.1}, 0.8 * sad},
		{"angry dominant", map[string]float64{"angry": 1.0}, 0.8},
		{"non-terminating weight", map[string]float64{"neutral": third}, 0.7 * third},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAgent(&stubProvider{reply: reply}, nil, stubLogger{})
			result := a.Predict(context.Background(), "u1", tt.emotions, nil, nil)
			if result.ConfidenceScore != tt.want {
				t.Errorf("ConfidenceScore = %v, want %v", result.ConfidenceScore, tt.want)
			}
		})
	}
}

func TestPredictFallsBackOnProviderError(t *testing.T) {
	provider := &stubProvider{err: errors.New("model offline")}
	a := NewAgent(provider, nil, stubLogger{})

	result := a.Predict(context.Background(), "u1", map[string]float64{"happy": 1.0}, nil, nil)

	if !reflect.DeepEqual(result.RecommendedCategories, []string{"Electronics", "Clothing", "Home & Kitchen"}) {
		t.Errorf("RecommendedCategories = %v, want default trio", result.RecommendedCategories)
	}
	if result.Reasoning != fallbackReasoningError {
		t.Errorf("Reasoning = %q, want %q", result.Reasoning, fallbackReasoningError)
	}
	// The score stage still runs on the supplied emotions.
	if result.ConfidenceScore != 0.9 {
		t.Errorf("ConfidenceScore = %v, want 0.9", result.ConfidenceScore)
	}
}

func TestPredictFallsBackOnUnparseableReply(t *testing.T) {
	for _, reply := range []string{
		"sorry, I cannot help with that",
		`{"recommended_categories":[]}`,
		`{"recommended_categories": broken`,
	} {
		a := NewAgent(&stubProvider{reply: reply}, nil, stubLogger{})
		result := a.Predict(context.Background(), "u1", map[string]float64{"neutral": 1.0}, nil, nil)

		if !reflect.DeepEqual(result.RecommendedCategories, []string{"Electronics", "Clothing", "Home & Kitchen"}) {
			t.Errorf("reply %q: RecommendedCategories = %v, want default trio", reply, result.RecommendedCategories)
		}
		if result.Reasoning != fallbackReasoningParse {
			t.Errorf("reply %q: Reasoning = %q, want %q", reply, result.Reasoning, fallbackReasoningParse)
		}
	}
}

func TestPredictToleratesCodeFences(t *testing.T) {
	fenced := "```json\n{\"recommended_categories\":[\"Jewelry\",\"Handmade\"],\"reasoning\":\"sparkle\"}\n```"
	a := NewAgent(&stubProvider{reply: fenced}, nil, stubLogger{})

	result := a.Predict(context.Background(), "u1", map[string]float64{"surprise": 0.6}, nil, nil)

	if !reflect.DeepEqual(result.RecommendedCategories, []string{"Jewelry", "Handmade"}) {
		t.Errorf("RecommendedCategories = %v, want [Jewelry Handmade]", result.RecommendedCategories)
	}
	if result.Reasoning != "sparkle" {
		t.Errorf("Reasoning = %q, want sparkle", result.Reasoning)
	}
}

func TestPredictDoesNotMutateInput(t *testing.T) {
	provider := &stubProvider{reply: `{"recommended_categories":["Books"],"reasoning":"ok"}`}
	a := NewAgent(provider, nil, stubLogger{})

	emotions := map[string]float64{"happy": 0.8}
	a.Predict(context.Background(), "u1", emotions, nil, nil)

	if len(emotions) != 1 || emotions["happy"] != 0.8 {
		t.Errorf("input emotions mutated: %v", emotions)
	}
}

func TestPredictUsesReplyCache(t *testing.T) {
	provider := &stubProvider{reply: `{"recommended_categories":["Books"],"reasoning":"ok"}`}
	a := NewAgent(provider, mapCache{}, stubLogger{})

	emotions := map[string]float64{"happy": 0.8}
	first := a.Predict(context.Background(), "u1", emotions, nil, nil)
	second := a.Predict(context.Background(), "u1", emotions, nil, nil)

	if provider.calls != 1 {
		t.Errorf("provider called %d times, want 1 (second hit should come from cache)", provider.calls)
	}
	if !reflect.DeepEqual(first.RecommendedCategories, second.RecommendedCategories) {
		t.Errorf("cached result diverged: %v vs %v", first.RecommendedCategories, second.RecommendedCategories)
	}
}

func TestStreamForwardsFragments(t *testing.T) {
	provider := &stubProvider{streamChunks: []llm.StreamChunk{
		{Content: "Try "},
		{Content: "some "},
		{Content: "books."},
	}}
	a := NewAgent(provider, nil, stubLogger{})

	var got []string
	for fragment := range a.Stream(context.Background(), "u1", map[string]float64{"sad": 0.9}, nil, nil) {
		got = append(got, fragment)
	}

	if strings.Join(got, "") != "Try some books." {
		t.Errorf("stream = %q, want %q", strings.Join(got, ""), "Try some books.")
	}
}

func TestStreamPromptCarriesSessionContext(t *testing.T) {
	provider := &stubProvider{streamChunks: []llm.StreamChunk{{Content: "ok"}}}
	a := NewAgent(provider, nil, stubLogger{})

	sessionCtx := map[string]interface{}{"device": "mobile"}
	for range a.Stream(context.Background(), "u1", map[string]float64{"happy": 1.0}, nil, sessionCtx) {
	}

	if !strings.Contains(provider.lastPrompt, `"device":"mobile"`) {
		t.Errorf("streamed prompt missing session context: %q", provider.lastPrompt)
	}
}

func TestStreamEmitsSingleErrorFragmentOnFailure(t *testing.T) {
	tests := []struct {
		name     string
		provider *stubProvider
	}{
		{"start failure", &stubProvider{streamErr: errors.New("no connection")}},
		{"mid-stream failure", &stubProvider{streamChunks: []llm.StreamChunk{
			{Content: "partial"},
			{Err: errors.New("connection reset")},
		}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAgent(tt.provider, nil, stubLogger{})

			var fragments []string
			for fragment := range a.Stream(context.Background(), "u1", nil, nil, nil) {
				fragments = append(fragments, fragment)
			}

			if len(fragments) == 0 {
				t.Fatal("expected at least one fragment")
			}
			last := fragments[len(fragments)-1]
			var payload map[string]string
			if err := json.Unmarshal([]byte(last), &payload); err != nil {
				t.Fatalf("final fragment is not JSON: %q", last)
			}
			if payload["error"] == "" || payload["details"] == "" {
				t.Errorf("error fragment missing fields: %v", payload)
			}
		})
	}
}

func TestParseReplyRecoversEmbeddedObject(t *testing.T) {
	raw := `Here you go: {"recommended_categories":["Pet Supplies"],"reasoning":"cats"} hope that helps!`
	reply, ok := parseReply(raw)
	if !ok {
		t.Fatal("parseReply failed on embedded object")
	}
	if !reflect.DeepEqual(reply.RecommendedCategories, []string{"Pet Supplies"}) {
		t.Errorf("RecommendedCategories = %v", reply.RecommendedCategories)
	}
}
