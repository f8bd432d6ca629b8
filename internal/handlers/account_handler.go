package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/diftofficial/systemAplikaciaGYM/internal/middleware"
	"github.com/diftofficial/systemAplikaciaGYM/internal/models"
	"github.com/diftofficial/systemAplikaciaGYM/internal/services"
)

type AccountHandler struct {
	service accountApplicationService
}

type accountApplicationService interface {
	Register(ctx context.Context, uid string, input services.RegisterInput) (*models.Account, error)
	GetAccount(ctx context.Context, uid string) (*models.Account, error)
}

func NewAccountHandler(service *services.AccountService) *AccountHandler {
	return &AccountHandler{service: service}
}

type registerRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

func (h *AccountHandler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	account, err := h.service.Register(c.Context(), middleware.UserID(c), services.RegisterInput{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	})
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(account)
}

func (h *AccountHandler) Me(c *fiber.Ctx) error {
	account, err := h.service.GetAccount(c.Context(), middleware.UserID(c))
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(account)
}
