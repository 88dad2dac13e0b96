package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"emotion-ai-be/internal/dto"
	"emotion-ai-be/internal/model"
	"emotion-ai-be/internal/repository/contract"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type signalingDetectionRepo struct {
	created chan *model.EmotionDetection
}

func (r *signalingDetectionRepo) Create(_ context.Context, detection *model.EmotionDetection) error {
	r.created <- detection
	return nil
}

func (r *signalingDetectionRepo) FindHistory(context.Context, string, int) ([]model.EmotionDetection, error) {
	return nil, nil
}

func (r *signalingDetectionRepo) Totals(context.Context, time.Time) (*contract.DetectionTotals, error) {
	return &contract.DetectionTotals{}, nil
}

func (r *signalingDetectionRepo) Distribution(context.Context, time.Time) ([]contract.EmotionCount, error) {
	return nil, nil
}

func (r *signalingDetectionRepo) DistributionByUser(context.Context, string, time.Time) ([]contract.EmotionCount, error) {
	return nil, nil
}

func (r *signalingDetectionRepo) DailyTrends(context.Context, time.Time) ([]contract.DailyEmotionCount, error) {
	return nil, nil
}

func TestConsumerPersistsQueuedDetections(t *testing.T) {
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	repo := &signalingDetectionRepo{created: make(chan *model.EmotionDetection, 1)}

	consumer := NewConsumerService(pubSub, "detections.test", repo, nil, stubLogger{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := consumer.Consume(ctx); err != nil {
		t.Fatalf("Consume() error = %v", err)
	}

	payload, _ := json.Marshal(dto.PersistDetectionMessage{
		UserID:      "u1",
		SessionID:   "s1",
		Emotion:     "surprise",
		Confidence:  0.77,
		AllEmotions: map[string]float64{"surprise": 0.77, "neutral": 0.23},
		NumFaces:    1,
		Source:      "fer_model",
		DetectedAt:  time.Now(),
	})
	if err := pubSub.Publish("detections.test", message.NewMessage(watermill.NewUUID(), payload)); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	select {
	case row := <-repo.created:
		if row.UserID != "u1" || row.DominantEmotion != "surprise" || row.Confidence != 0.77 {
			t.Errorf("persisted row = %+v", row)
		}
		if len(row.AllEmotions) == 0 {
			t.Error("AllEmotions jsonb should be populated")
		}
	case <-time.After(3 * time.Second):
		t.Fatal("detection was never persisted")
	}
}

func TestConsumerDropsMalformedPayloads(t *testing.T) {
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	repo := &signalingDetectionRepo{created: make(chan *model.EmotionDetection, 1)}

	consumer := NewConsumerService(pubSub, "detections.test", repo, nil, stubLogger{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := consumer.Consume(ctx); err != nil {
		t.Fatalf("Consume() error = %v", err)
	}

	if err := pubSub.Publish("detections.test", message.NewMessage(watermill.NewUUID(), []byte("not json"))); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	select {
	case row := <-repo.created:
		t.Fatalf("malformed payload was persisted: %+v", row)
	case <-time.After(300 * time.Millisecond):
		// acked and dropped, as intended
	}
}
