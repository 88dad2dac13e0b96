package controller

import (
	"emotion-ai-be/internal/dto"
	"emotion-ai-be/internal/pkg/serverutils"
	"emotion-ai-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IHistoryController interface {
	RegisterRoutes(r fiber.Router)
	Create(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
}

type historyController struct {
	historyService service.IHistoryService
}

func NewHistoryController(historyService service.IHistoryService) IHistoryController {
	return &historyController{historyService: historyService}
}

func (c *historyController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/history")
	h.Use(serverutils.JwtMiddleware)
	h.Post("", c.Create)
	h.Get("/:user_id", c.List)
}

func (c *historyController) Create(ctx *fiber.Ctx) error {
	var req dto.HistoryCreateRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	// The token owns the row regardless of what the body claims.
	if userID, ok := ctx.Locals("user_id").(string); ok && userID != "" {
		req.UserID = userID
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.historyService.Create(ctx.Context(), &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("History recorded", res))
}

func (c *historyController) List(ctx *fiber.Ctx) error {
	userID := ctx.Params("user_id")
	// A token only reads its own history.
	if tokenUser, _ := ctx.Locals("user_id").(string); tokenUser != "" && tokenUser != userID {
		return fiber.ErrForbidden
	}
	limit := ctx.QueryInt("limit", 20)
	offset := ctx.QueryInt("offset", 0)

	items, err := c.historyService.List(ctx.Context(), userID, limit, offset)
	if err != nil {
		return err
	}
	return ctx.JSON(fiber.Map{
		"user_id": userID,
		"count":   len(items),
		"items":   items,
	})
}
