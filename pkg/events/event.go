package events

import "time"

const (
	// TypeEmotionDetected is emitted after a detection has been persisted.
	TypeEmotionDetected = "EMOTION_DETECTED"
	// TypePreferencePredicted is emitted after a recommendation completes.
	TypePreferencePredicted = "PREFERENCE_PREDICTED"
)

// Event is the contract every bus message satisfies.
type Event interface {
	EventType() string
	Payload() map[string]interface{}
	Timestamp() time.Time
}

// BaseEvent is the plain implementation used by all emitters here.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string               { return e.Type }
func (e BaseEvent) Payload() map[string]interface{} { return e.Data }
func (e BaseEvent) Timestamp() time.Time            { return e.OccurredAt }

// NewEmotionDetected builds the event published when a detection result is
// stored for a user.
func NewEmotionDetected(userID, sessionID, emotion string, confidence float64) BaseEvent {
	return BaseEvent{
		Type: TypeEmotionDetected,
		Data: map[string]interface{}{
			"user_id":    userID,
			"session_id": sessionID,
			"emotion":    emotion,
			"confidence": confidence,
		},
		OccurredAt: time.Now(),
	}
}

// NewPreferencePredicted builds the event published after the recommendation
// pipeline finishes for a user.
func NewPreferencePredicted(userID string, categories []string, confidence float64) BaseEvent {
	return BaseEvent{
		Type: TypePreferencePredicted,
		Data: map[string]interface{}{
			"user_id":                userID,
			"recommended_categories": categories,
			"confidence_score":       confidence,
		},
		OccurredAt: time.Now(),
	}
}
