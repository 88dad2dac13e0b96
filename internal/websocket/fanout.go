package websocket

import (
	"context"
	"encoding/json"

	"emotion-ai-be/internal/dto"
)

// fanoutChannel is the Redis pub/sub channel carrying cross-instance frames.
const fanoutChannel = "emotion_stream_events"

type fanoutPayload struct {
	Origin       string       `json:"origin"`
	TargetUserID string       `json:"target_user_id"`
	Envelope     dto.Envelope `json:"envelope"`
}

// PublishToUser broadcasts locally and, when Redis is configured, forwards
// the envelope so sessions for the same user on other instances see it too.
func (r *Registry) PublishToUser(ctx context.Context, userID string, env dto.Envelope) {
	r.Broadcast(userID, env)

	if r.rdb == nil {
		return
	}

	payload, err := json.Marshal(fanoutPayload{
		Origin:       r.instanceID,
		TargetUserID: userID,
		Envelope:     env,
	})
	if err != nil {
		return
	}
	if err := r.rdb.Publish(ctx, fanoutChannel, payload).Err(); err != nil {
		r.logger.Warn("Registry", "Fanout publish failed", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
	}
}

// RunFanout consumes cross-instance frames until the context ends. Frames
// published by this instance are skipped; they were already delivered by
// PublishToUser.
func (r *Registry) RunFanout(ctx context.Context) {
	if r.rdb == nil {
		return
	}

	pubsub := r.rdb.Subscribe(ctx, fanoutChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var payload fanoutPayload
			if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
				r.logger.Warn("Registry", "Malformed fanout frame", map[string]interface{}{
					"error": err.Error(),
				})
				continue
			}
			if payload.Origin == r.instanceID {
				continue
			}
			r.Broadcast(payload.TargetUserID, payload.Envelope)
		}
	}
}
