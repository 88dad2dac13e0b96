package controller

import (
	"bufio"
	"context"
	"io"
	"time"

	"emotion-ai-be/internal/dto"
	"emotion-ai-be/internal/pkg/serverutils"
	"emotion-ai-be/internal/service"
	"emotion-ai-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
)

type IEmotionController interface {
	RegisterRoutes(r fiber.Router)
	DetectEmotion(ctx *fiber.Ctx) error
	BatchDetect(ctx *fiber.Ctx) error
	PredictPreferences(ctx *fiber.Ctx) error
	StreamingRecommendations(ctx *fiber.Ctx) error
	EmotionStats(ctx *fiber.Ctx) error
	History(ctx *fiber.Ctx) error
	Analytics(ctx *fiber.Ctx) error
	RecommendationsByEmotion(ctx *fiber.Ctx) error
	RecommendationsByDistribution(ctx *fiber.Ctx) error
	ConnectionStats(ctx *fiber.Ctx) error
}

type emotionController struct {
	detectionService      service.IDetectionService
	recommendationService service.IRecommendationService
	registry              *websocket.Registry
}

func NewEmotionController(
	detectionService service.IDetectionService,
	recommendationService service.IRecommendationService,
	registry *websocket.Registry,
) IEmotionController {
	return &emotionController{
		detectionService:      detectionService,
		recommendationService: recommendationService,
		registry:              registry,
	}
}

func (c *emotionController) RegisterRoutes(r fiber.Router) {
	r.Post("/detect-emotion", c.DetectEmotion)
	r.Post("/batch-detect", c.BatchDetect)
	r.Post("/predict-preferences", c.PredictPreferences)
	r.Post("/streaming-recommendations", c.StreamingRecommendations)
	r.Get("/emotion-stats/:user_id", c.EmotionStats)

	emotions := r.Group("/emotions")
	emotions.Get("/history", c.History)
	emotions.Get("/analytics", c.Analytics)
	emotions.Get("/recommendations/:emotion", c.RecommendationsByEmotion)
	emotions.Post("/recommendations", c.RecommendationsByDistribution)
	emotions.Get("/stats", c.ConnectionStats)
}

func readUpload(ctx *fiber.Ctx, field string) ([]byte, string, error) {
	fileHeader, err := ctx.FormFile(field)
	if err != nil {
		return nil, "", fiber.NewError(fiber.StatusBadRequest, "missing image file")
	}
	file, err := fileHeader.Open()
	if err != nil {
		return nil, "", fiber.NewError(fiber.StatusBadRequest, "unreadable image file")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, "", fiber.NewError(fiber.StatusBadRequest, "unreadable image file")
	}
	if len(data) == 0 {
		return nil, "", fiber.NewError(fiber.StatusBadRequest, "empty image file")
	}
	return data, fileHeader.Filename, nil
}

func (c *emotionController) DetectEmotion(ctx *fiber.Ctx) error {
	image, filename, err := readUpload(ctx, "file")
	if err != nil {
		return err
	}

	userID := ctx.FormValue("user_id")
	sessionID := ctx.FormValue("session_id")

	result, err := c.detectionService.Detect(ctx.Context(), image, userID, sessionID, filename)
	if err != nil {
		return fiber.NewError(fiber.StatusBadGateway, err.Error())
	}
	return ctx.JSON(result)
}

func (c *emotionController) BatchDetect(ctx *fiber.Ctx) error {
	form, err := ctx.MultipartForm()
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "expected multipart form")
	}
	files := form.File["files"]
	if len(files) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "no files supplied")
	}
	if len(files) > 10 {
		return fiber.NewError(fiber.StatusBadRequest, "at most 10 files per batch")
	}

	userID := ctx.FormValue("user_id")
	sessionID := ctx.FormValue("session_id")

	results := make([]interface{}, 0, len(files))
	for _, fileHeader := range files {
		file, err := fileHeader.Open()
		if err != nil {
			results = append(results, fiber.Map{"filename": fileHeader.Filename, "error": "unreadable file"})
			continue
		}
		data, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			results = append(results, fiber.Map{"filename": fileHeader.Filename, "error": "unreadable file"})
			continue
		}

		result, err := c.detectionService.Detect(ctx.Context(), data, userID, sessionID, fileHeader.Filename)
		if err != nil {
			results = append(results, fiber.Map{"filename": fileHeader.Filename, "error": err.Error()})
			continue
		}
		results = append(results, result)
	}

	return ctx.JSON(fiber.Map{
		"count":   len(results),
		"results": results,
	})
}

func (c *emotionController) PredictPreferences(ctx *fiber.Ctx) error {
	var req dto.PreferenceRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	return ctx.JSON(c.recommendationService.Predict(ctx.Context(), &req))
}

// StreamingRecommendations writes model fragments as a chunked response. The
// request context dies with the handler, so the stream runs on its own
// deadline.
func (c *emotionController) StreamingRecommendations(ctx *fiber.Ctx) error {
	var req dto.PreferenceRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	ctx.Set(fiber.HeaderContentType, "text/plain; charset=utf-8")
	ctx.Set(fiber.HeaderCacheControl, "no-cache")

	ctx.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		streamCtx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		for fragment := range c.recommendationService.Stream(streamCtx, &req) {
			if _, err := w.WriteString(fragment); err != nil {
				return
			}
			if err := w.Flush(); err != nil {
				return
			}
		}
	}))
	return nil
}

func (c *emotionController) EmotionStats(ctx *fiber.Ctx) error {
	userID := ctx.Params("user_id")
	timeframe := ctx.Query("timeframe", "week")

	stats, err := c.detectionService.Stats(ctx.Context(), userID, timeframe)
	if err != nil {
		return err
	}
	return ctx.JSON(stats)
}

func (c *emotionController) History(ctx *fiber.Ctx) error {
	userID := ctx.Query("user_id")
	if userID == "" {
		return fiber.NewError(fiber.StatusBadRequest, "user_id is required")
	}
	limit := ctx.QueryInt("limit", 50)

	items, err := c.detectionService.History(ctx.Context(), userID, limit)
	if err != nil {
		return err
	}
	return ctx.JSON(fiber.Map{
		"user_id": userID,
		"count":   len(items),
		"history": items,
	})
}

func (c *emotionController) Analytics(ctx *fiber.Ctx) error {
	days := ctx.QueryInt("days", 7)

	analytics, err := c.detectionService.Analytics(ctx.Context(), days)
	if err != nil {
		return err
	}
	return ctx.JSON(analytics)
}

func (c *emotionController) RecommendationsByEmotion(ctx *fiber.Ctx) error {
	emotion := ctx.Params("emotion")
	limit := ctx.QueryInt("limit", 10)

	products, err := c.recommendationService.ProductsForEmotion(ctx.Context(), emotion, limit)
	if err != nil {
		return err
	}
	return ctx.JSON(fiber.Map{
		"emotion":  emotion,
		"count":    len(products),
		"products": products,
	})
}

func (c *emotionController) RecommendationsByDistribution(ctx *fiber.Ctx) error {
	var req struct {
		Emotions map[string]float64 `json:"emotions"`
		Limit    int                `json:"limit"`
	}
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if len(req.Emotions) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "emotions distribution is required")
	}

	products, err := c.recommendationService.ProductsForDistribution(ctx.Context(), req.Emotions, req.Limit)
	if err != nil {
		return err
	}
	return ctx.JSON(fiber.Map{
		"count":    len(products),
		"products": products,
	})
}

func (c *emotionController) ConnectionStats(ctx *fiber.Ctx) error {
	return ctx.JSON(c.registry.Stats())
}
