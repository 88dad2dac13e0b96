package dto

import "time"

// Envelope is the message frame delivered over the emotion stream. Every
// outbound frame carries a type discriminator, a type-specific payload and a
// timestamp.
type Envelope struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp string      `json:"timestamp"`
}

// Envelope type discriminators.
const (
	TypeConnectionEstablished = "connection_established"
	TypePing                  = "ping"
	TypePong                  = "pong"
	TypeDetectEmotion         = "detect_emotion"
	TypeEmotionDetected       = "emotion_detected"
	TypeEmotionUpdate         = "emotion_update"
	TypeGetEmotionHistory     = "get_emotion_history"
	TypeEmotionHistory        = "emotion_history"
	TypePredictPreferences    = "predict_preferences"
	TypeRecommendation        = "recommendation"
	TypeRecommendationChunk   = "recommendation_chunk"
	TypeError                 = "error"
)

// NewEnvelope stamps the frame with the current time.
func NewEnvelope(msgType string, data interface{}) Envelope {
	return Envelope{
		Type:      msgType,
		Data:      data,
		Timestamp: time.Now().Format(time.RFC3339),
	}
}

// InboundMessage is what clients send on the stream. Data stays raw until the
// handler knows the type.
type InboundMessage struct {
	Type string                 `json:"type"`
	Data map[string]interface{} `json:"data,omitempty"`
}
