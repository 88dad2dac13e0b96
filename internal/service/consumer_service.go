package service

import (
	"context"
	"encoding/json"
	"time"

	"emotion-ai-be/internal/dto"
	"emotion-ai-be/internal/model"
	"emotion-ai-be/internal/pkg/logger"
	"emotion-ai-be/internal/repository/contract"
	"emotion-ai-be/pkg/events"
	pktNats "emotion-ai-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"gorm.io/datatypes"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService drains the in-process persistence queue. Detection rows are
// written here so the detect endpoints never block on the database.
type consumerService struct {
	pubSub         *gochannel.GoChannel
	topicName      string
	detectionRepo  contract.DetectionRepository
	eventPublisher *pktNats.Publisher
	log            logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	detectionRepo contract.DetectionRepository,
	eventPublisher *pktNats.Publisher,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:         pubSub,
		topicName:      topicName,
		detectionRepo:  detectionRepo,
		eventPublisher: eventPublisher,
		log:            log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PersistDetectionMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.log.Error("ConsumerService", "Failed to unmarshal persistence message", map[string]interface{}{
			"error": err.Error(),
		})
		// Malformed payloads can never succeed; ack to stop redelivery.
		msg.Ack()
		return
	}

	allEmotions, err := json.Marshal(payload.AllEmotions)
	if err != nil {
		msg.Ack()
		return
	}
	var faceBox datatypes.JSON
	if payload.FaceBox != nil {
		if raw, err := json.Marshal(payload.FaceBox); err == nil {
			faceBox = datatypes.JSON(raw)
		}
	}

	detectedAt := payload.DetectedAt
	if detectedAt.IsZero() {
		detectedAt = time.Now()
	}

	row := &model.EmotionDetection{
		UserID:           payload.UserID,
		SessionID:        payload.SessionID,
		DominantEmotion:  payload.Emotion,
		Confidence:       payload.Confidence,
		AllEmotions:      datatypes.JSON(allEmotions),
		NumFaces:         payload.NumFaces,
		FaceBox:          faceBox,
		Source:           payload.Source,
		ProcessingTimeMs: payload.ProcessingTimeMs,
		ImageSize:        payload.ImageSize,
		DetectedAt:       detectedAt,
	}

	if err := cs.detectionRepo.Create(ctx, row); err != nil {
		cs.log.Error("ConsumerService", "Failed to persist detection", map[string]interface{}{
			"user_id": payload.UserID,
			"error":   err.Error(),
		})
		msg.Nack()
		return
	}

	if cs.eventPublisher != nil {
		evt := events.NewEmotionDetected(payload.UserID, payload.SessionID, payload.Emotion, payload.Confidence)
		if err := cs.eventPublisher.Publish(ctx, evt); err != nil {
			cs.log.Warn("ConsumerService", "Failed to publish detection event", map[string]interface{}{
				"user_id": payload.UserID,
				"error":   err.Error(),
			})
		}
	}

	msg.Ack()
}
