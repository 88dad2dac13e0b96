package handler

import (
	"context"
	"encoding/base64"
	"testing"

	"emotion-ai-be/internal/dto"
	"emotion-ai-be/internal/service"
	internalWS "emotion-ai-be/internal/websocket"
	"emotion-ai-be/pkg/agent"
	"emotion-ai-be/pkg/detector"
	"emotion-ai-be/pkg/llm"
)

type nopLogger struct{}

func (nopLogger) Debug(string, string, map[string]interface{}) {}
func (nopLogger) Info(string, string, map[string]interface{})  {}
func (nopLogger) Warn(string, string, map[string]interface{})  {}
func (nopLogger) Error(string, string, map[string]interface{}) {}
func (nopLogger) Sync() error                                  { return nil }

type cannedProvider struct {
	reply string
}

func (p *cannedProvider) Chat(context.Context, []llm.Message, ...llm.Option) (string, error) {
	return p.reply, nil
}

func (p *cannedProvider) Generate(context.Context, string, ...llm.Option) (string, error) {
	return p.reply, nil
}

func (p *cannedProvider) GenerateStream(context.Context, string, ...llm.Option) (<-chan llm.StreamChunk, error) {
	out := make(chan llm.StreamChunk, 2)
	out <- llm.StreamChunk{Content: "chunk-a"}
	out <- llm.StreamChunk{Content: "chunk-b"}
	close(out)
	return out, nil
}

func newTestHandler(reply string) (*StreamHandler, *internalWS.Registry) {
	registry := internalWS.NewRegistry(nil, nopLogger{})
	detectionService := service.NewDetectionService(detector.NewMockDetector(), nil, nil, nopLogger{})
	recommendationService := service.NewRecommendationService(
		agent.NewAgent(&cannedProvider{reply: reply}, nil, nopLogger{}),
		nil, nil, nil, nopLogger{},
	)
	return NewStreamHandler(registry, detectionService, recommendationService, nopLogger{}), registry
}

func envelopesOf(t *testing.T, channel *internalWS.StubChannel) []dto.Envelope {
	t.Helper()
	raw := channel.Messages()
	envelopes := make([]dto.Envelope, 0, len(raw))
	for _, m := range raw {
		env, ok := m.(dto.Envelope)
		if !ok {
			t.Fatalf("message is %T, want dto.Envelope", m)
		}
		envelopes = append(envelopes, env)
	}
	return envelopes
}

func TestDispatchPingAnswersPong(t *testing.T) {
	h, registry := newTestHandler("{}")
	channel := internalWS.NewStubChannel()
	clientID := registry.Register(channel, "u1")

	h.dispatch(clientID, "u1", "", dto.InboundMessage{Type: dto.TypePing})

	envelopes := envelopesOf(t, channel)
	if len(envelopes) != 1 || envelopes[0].Type != dto.TypePong {
		t.Errorf("envelopes = %+v, want single pong", envelopes)
	}
}

func TestDispatchUnknownTypeAnswersError(t *testing.T) {
	h, registry := newTestHandler("{}")
	channel := internalWS.NewStubChannel()
	clientID := registry.Register(channel, "u1")

	h.dispatch(clientID, "u1", "", dto.InboundMessage{Type: "self_destruct"})

	envelopes := envelopesOf(t, channel)
	if len(envelopes) != 1 || envelopes[0].Type != dto.TypeError {
		t.Errorf("envelopes = %+v, want single error", envelopes)
	}
}

func TestDispatchDetectEmotionBroadcastsUpdate(t *testing.T) {
	h, registry := newTestHandler("{}")
	requester := internalWS.NewStubChannel()
	sibling := internalWS.NewStubChannel()
	clientID := registry.Register(requester, "u1")
	registry.Register(sibling, "u1")

	frame := base64.StdEncoding.EncodeToString([]byte("fake-jpeg"))
	h.dispatch(clientID, "u1", "s1", dto.InboundMessage{
		Type: dto.TypeDetectEmotion,
		Data: map[string]interface{}{"image": frame},
	})

	var gotDetected, gotUpdate bool
	for _, env := range envelopesOf(t, requester) {
		switch env.Type {
		case dto.TypeEmotionDetected:
			gotDetected = true
		case dto.TypeEmotionUpdate:
			gotUpdate = true
		}
	}
	if !gotDetected || !gotUpdate {
		t.Errorf("requester missing envelopes: detected=%v update=%v", gotDetected, gotUpdate)
	}

	siblingEnvelopes := envelopesOf(t, sibling)
	if len(siblingEnvelopes) != 1 || siblingEnvelopes[0].Type != dto.TypeEmotionUpdate {
		t.Errorf("sibling envelopes = %+v, want single emotion_update", siblingEnvelopes)
	}
}

func TestDispatchDetectEmotionRejectsBadPayload(t *testing.T) {
	h, registry := newTestHandler("{}")
	channel := internalWS.NewStubChannel()
	clientID := registry.Register(channel, "u1")

	h.dispatch(clientID, "u1", "", dto.InboundMessage{
		Type: dto.TypeDetectEmotion,
		Data: map[string]interface{}{"image": "not-base64!!!"},
	})

	envelopes := envelopesOf(t, channel)
	if len(envelopes) != 1 || envelopes[0].Type != dto.TypeError {
		t.Errorf("envelopes = %+v, want single error", envelopes)
	}
}

func TestDispatchGetHistoryAnswersHistory(t *testing.T) {
	h, registry := newTestHandler("{}")
	channel := internalWS.NewStubChannel()
	clientID := registry.Register(channel, "u1")

	h.dispatch(clientID, "u1", "", dto.InboundMessage{
		Type: dto.TypeGetEmotionHistory,
		Data: map[string]interface{}{"limit": float64(3)},
	})

	envelopes := envelopesOf(t, channel)
	if len(envelopes) != 1 || envelopes[0].Type != dto.TypeEmotionHistory {
		t.Errorf("envelopes = %+v, want single emotion_history", envelopes)
	}
}

func TestDispatchPredictAnswersRecommendation(t *testing.T) {
	h, registry := newTestHandler(`{"recommended_categories":["Books"],"reasoning":"r"}`)
	channel := internalWS.NewStubChannel()
	clientID := registry.Register(channel, "u1")

	happy := 0.8
	h.dispatch(clientID, "u1", "", dto.InboundMessage{
		Type: dto.TypePredictPreferences,
		Data: map[string]interface{}{
			"current_emotion": map[string]interface{}{"happy": happy, "neutral": 0.2},
		},
	})

	envelopes := envelopesOf(t, channel)
	if len(envelopes) != 1 || envelopes[0].Type != dto.TypeRecommendation {
		t.Fatalf("envelopes = %+v, want single recommendation", envelopes)
	}
	res, ok := envelopes[0].Data.(*dto.PreferenceResponse)
	if !ok {
		t.Fatalf("payload is %T, want *dto.PreferenceResponse", envelopes[0].Data)
	}
	if want := 0.9 * happy; res.ConfidenceScore != want {
		t.Errorf("ConfidenceScore = %v, want %v", res.ConfidenceScore, want)
	}
}

func TestDispatchStreamingPredictEmitsChunksThenFinal(t *testing.T) {
	h, registry := newTestHandler("unused")
	channel := internalWS.NewStubChannel()
	clientID := registry.Register(channel, "u1")

	h.dispatch(clientID, "u1", "", dto.InboundMessage{
		Type: dto.TypePredictPreferences,
		Data: map[string]interface{}{"stream": true},
	})

	envelopes := envelopesOf(t, channel)
	if len(envelopes) != 3 {
		t.Fatalf("got %d envelopes, want 2 chunks + 1 final", len(envelopes))
	}
	if envelopes[0].Type != dto.TypeRecommendationChunk || envelopes[1].Type != dto.TypeRecommendationChunk {
		t.Errorf("first envelopes = %s, %s, want recommendation_chunk", envelopes[0].Type, envelopes[1].Type)
	}
	if envelopes[2].Type != dto.TypeRecommendation {
		t.Errorf("final envelope = %s, want recommendation", envelopes[2].Type)
	}
}
