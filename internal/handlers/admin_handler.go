package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/diftofficial/systemAplikaciaGYM/internal/services"
)

type AdminHandler struct {
	points pointsService
}

type pointsService interface {
	GrantPoints(ctx context.Context, email string, delta int64) (int64, error)
}

func NewAdminHandler(points *services.PointsService) *AdminHandler {
	return &AdminHandler{points: points}
}

type grantPointsRequest struct {
	Email  string `json:"email"`
	Points int64  `json:"points"`
}

func (h *AdminHandler) GrantPoints(c *fiber.Ctx) error {
	var req grantPointsRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	balance, err := h.points.GrantPoints(c.Context(), req.Email, req.Points)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(fiber.Map{"email": req.Email, "points": balance})
}
