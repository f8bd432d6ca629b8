package handlers

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/diftofficial/systemAplikaciaGYM/internal/middleware"
	"github.com/diftofficial/systemAplikaciaGYM/internal/models"
	"github.com/diftofficial/systemAplikaciaGYM/internal/services"
)

type SessionHandler struct {
	service sessionApplicationService
	joins   joinService
	now     func() time.Time
}

type sessionApplicationService interface {
	CreateSession(ctx context.Context, actorID string, role models.Role, input services.CreateSessionInput) (*models.Session, error)
	ListUpcoming(ctx context.Context, now time.Time) ([]models.SessionListing, error)
	ListParticipants(ctx context.Context, sessionID string) ([]models.Participant, error)
}

type joinService interface {
	Join(ctx context.Context, sessionID, userID string) (*models.JoinResult, error)
}

func NewSessionHandler(service *services.SessionService, joins *services.JoinCoordinator) *SessionHandler {
	return &SessionHandler{service: service, joins: joins, now: time.Now}
}

type createSessionRequest struct {
	TrainerID     string `json:"trainer_id"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	ScheduledAt   string `json:"scheduled_at"`
	Capacity      int64  `json:"capacity"`
	PriceInPoints int64  `json:"price_in_points"`
}

func (h *SessionHandler) ListSessions(c *fiber.Ctx) error {
	listings, err := h.service.ListUpcoming(c.Context(), h.now())
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(fiber.Map{"sessions": listings})
}

func (h *SessionHandler) CreateSession(c *fiber.Ctx) error {
	var req createSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	scheduledAt, err := time.Parse(time.RFC3339, strings.TrimSpace(req.ScheduledAt))
	if err != nil {
		return badRequest(c, "scheduled_at must be a valid RFC3339 timestamp")
	}

	session, err := h.service.CreateSession(c.Context(), middleware.UserID(c), middleware.Role(c), services.CreateSessionInput{
		TrainerID:     req.TrainerID,
		Title:         req.Title,
		Description:   req.Description,
		ScheduledAt:   scheduledAt,
		Capacity:      req.Capacity,
		PriceInPoints: req.PriceInPoints,
	})
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(session)
}

func (h *SessionHandler) ListParticipants(c *fiber.Ctx) error {
	participants, err := h.service.ListParticipants(c.Context(), c.Params("id"))
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(fiber.Map{"participants": participants})
}

func (h *SessionHandler) JoinSession(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	result, err := h.joins.Join(c.Context(), c.Params("id"), userID)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(result)
}
