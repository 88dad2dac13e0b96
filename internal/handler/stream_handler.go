package handler

import (
	"context"
	"encoding/base64"
	"strings"
	"time"

	"emotion-ai-be/internal/dto"
	"emotion-ai-be/internal/pkg/logger"
	"emotion-ai-be/internal/service"
	internalWS "emotion-ai-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// StreamHandler owns the realtime emotion stream: one websocket per camera
// session, multiplexed through the connection registry.
type StreamHandler struct {
	registry              *internalWS.Registry
	detectionService      service.IDetectionService
	recommendationService service.IRecommendationService
	log                   logger.ILogger
}

func NewStreamHandler(
	registry *internalWS.Registry,
	detectionService service.IDetectionService,
	recommendationService service.IRecommendationService,
	log logger.ILogger,
) *StreamHandler {
	return &StreamHandler{
		registry:              registry,
		detectionService:      detectionService,
		recommendationService: recommendationService,
		log:                   log,
	}
}

func (h *StreamHandler) RegisterRoutes(r fiber.Router) {
	r.Use("/emotions/stream", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	r.Get("/emotions/stream/:user_id", websocket.New(h.serve))
}

func (h *StreamHandler) serve(conn *websocket.Conn) {
	userID := conn.Params("user_id")
	sessionID := conn.Query("session_id")

	channel := internalWS.NewFiberChannel(conn)
	clientID := h.registry.Register(channel, userID)
	defer h.registry.Unregister(clientID, userID)

	h.registry.Send(clientID, dto.NewEnvelope(dto.TypeConnectionEstablished, fiber.Map{
		"client_id": clientID,
		"user_id":   userID,
	}))

	for {
		var msg dto.InboundMessage
		if err := conn.ReadJSON(&msg); err != nil {
			h.log.Info("StreamHandler", "Client disconnected", map[string]interface{}{
				"client_id": clientID,
				"user_id":   userID,
			})
			return
		}
		h.dispatch(clientID, userID, sessionID, msg)
	}
}

func (h *StreamHandler) dispatch(clientID, userID, sessionID string, msg dto.InboundMessage) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	switch msg.Type {
	case dto.TypePing:
		h.registry.Send(clientID, dto.NewEnvelope(dto.TypePong, nil))

	case dto.TypeDetectEmotion:
		h.handleDetect(ctx, clientID, userID, sessionID, msg.Data)

	case dto.TypeGetEmotionHistory:
		h.handleHistory(ctx, clientID, userID, msg.Data)

	case dto.TypePredictPreferences:
		h.handlePredict(ctx, clientID, userID, msg.Data)

	default:
		h.sendError(clientID, "unknown message type: "+msg.Type)
	}
}

// handleDetect runs one frame through the detector, answers the requesting
// session, and fans the update out to every session of the same user.
func (h *StreamHandler) handleDetect(ctx context.Context, clientID, userID, sessionID string, data map[string]interface{}) {
	image, ok := decodeFrame(data)
	if !ok {
		h.sendError(clientID, "detect_emotion requires a base64 image")
		return
	}

	result, err := h.detectionService.Detect(ctx, image, userID, sessionID, "stream_frame")
	if err != nil {
		h.sendError(clientID, "detection failed: "+err.Error())
		return
	}

	h.registry.Send(clientID, dto.NewEnvelope(dto.TypeEmotionDetected, result))
	h.registry.PublishToUser(ctx, userID, dto.NewEnvelope(dto.TypeEmotionUpdate, fiber.Map{
		"user_id":    userID,
		"emotion":    result.Emotion,
		"confidence": result.Confidence,
	}))
}

func (h *StreamHandler) handleHistory(ctx context.Context, clientID, userID string, data map[string]interface{}) {
	limit := 20
	if raw, ok := data["limit"].(float64); ok && raw > 0 {
		limit = int(raw)
	}

	items, err := h.detectionService.History(ctx, userID, limit)
	if err != nil {
		h.sendError(clientID, "history lookup failed: "+err.Error())
		return
	}
	h.registry.Send(clientID, dto.NewEnvelope(dto.TypeEmotionHistory, fiber.Map{
		"user_id": userID,
		"count":   len(items),
		"history": items,
	}))
}

func (h *StreamHandler) handlePredict(ctx context.Context, clientID, userID string, data map[string]interface{}) {
	req := &dto.PreferenceRequest{
		UserID:         userID,
		CurrentEmotion: toDistribution(data["current_emotion"]),
	}

	stream, _ := data["stream"].(bool)
	if !stream {
		h.registry.Send(clientID, dto.NewEnvelope(dto.TypeRecommendation, h.recommendationService.Predict(ctx, req)))
		return
	}

	var full strings.Builder
	for fragment := range h.recommendationService.Stream(ctx, req) {
		full.WriteString(fragment)
		h.registry.Send(clientID, dto.NewEnvelope(dto.TypeRecommendationChunk, fiber.Map{
			"user_id": userID,
			"content": fragment,
		}))
	}
	h.registry.Send(clientID, dto.NewEnvelope(dto.TypeRecommendation, fiber.Map{
		"user_id": userID,
		"text":    full.String(),
	}))
}

func (h *StreamHandler) sendError(clientID, message string) {
	h.registry.Send(clientID, dto.NewEnvelope(dto.TypeError, fiber.Map{"message": message}))
}

// decodeFrame accepts both raw base64 and data-URL payloads.
func decodeFrame(data map[string]interface{}) ([]byte, bool) {
	encoded, ok := data["image"].(string)
	if !ok || encoded == "" {
		return nil, false
	}
	if idx := strings.Index(encoded, ","); idx >= 0 && strings.HasPrefix(encoded, "data:") {
		encoded = encoded[idx+1:]
	}
	image, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, false
	}
	return image, true
}

func toDistribution(raw interface{}) map[string]float64 {
	entries, ok := raw.(map[string]interface{})
	if !ok {
		return nil
	}
	distribution := make(map[string]float64, len(entries))
	for label, value := range entries {
		if weight, ok := value.(float64); ok {
			distribution[label] = weight
		}
	}
	return distribution
}
