package controller

import (
	"emotion-ai-be/internal/pkg/serverutils"

	"github.com/gofiber/fiber/v2"
)

type IUserController interface {
	RegisterRoutes(r fiber.Router)
	Me(ctx *fiber.Ctx) error
}

type userController struct{}

func NewUserController() IUserController {
	return &userController{}
}

func (c *userController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/users")
	h.Use(serverutils.JwtMiddleware)
	h.Get("/me", c.Me)
}

func (c *userController) Me(ctx *fiber.Ctx) error {
	return ctx.JSON(fiber.Map{
		"user_id":  ctx.Locals("user_id"),
		"username": ctx.Locals("username"),
	})
}
