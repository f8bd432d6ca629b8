package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/diftofficial/systemAplikaciaGYM/internal/docstore"
	"github.com/diftofficial/systemAplikaciaGYM/internal/models"
	"github.com/diftofficial/systemAplikaciaGYM/internal/notify"
	"github.com/diftofficial/systemAplikaciaGYM/internal/repository"
)

const unknownTrainer = "Unknown trainer"

type SessionService struct {
	users       *repository.UserRepository
	sessions    *repository.SessionRepository
	memberships *repository.MembershipRepository
	notifier    notify.Notifier
	now         func() time.Time
	log         zerolog.Logger
}

func NewSessionService(store docstore.Store, notifier notify.Notifier, logger zerolog.Logger) *SessionService {
	return &SessionService{
		users:       repository.NewUserRepository(store),
		sessions:    repository.NewSessionRepository(store),
		memberships: repository.NewMembershipRepository(store),
		notifier:    notifier,
		now:         time.Now,
		log:         logger.With().Str("component", "sessions").Logger(),
	}
}

type CreateSessionInput struct {
	// TrainerID is honoured only for admins; trainers always create their own sessions.
	TrainerID     string
	Title         string
	Description   string
	ScheduledAt   time.Time
	Capacity      int64
	PriceInPoints int64
}

func (s *SessionService) CreateSession(
	ctx context.Context,
	actorID string,
	role models.Role,
	input CreateSessionInput,
) (*models.Session, error) {
	if role != models.RoleTrainer && role != models.RoleAdmin {
		return nil, ErrForbidden
	}

	trainerID := strings.TrimSpace(actorID)
	if role == models.RoleAdmin && strings.TrimSpace(input.TrainerID) != "" {
		trainerID = strings.TrimSpace(input.TrainerID)
	}
	title := strings.TrimSpace(input.Title)

	switch {
	case trainerID == "":
		return nil, fmt.Errorf("%w: trainer is required", ErrInvalidInput)
	case title == "":
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	case input.Capacity <= 0:
		return nil, fmt.Errorf("%w: capacity must be positive", ErrInvalidInput)
	case input.PriceInPoints < 0:
		return nil, fmt.Errorf("%w: price cannot be negative", ErrInvalidInput)
	case input.ScheduledAt.IsZero():
		return nil, fmt.Errorf("%w: date and time are required", ErrInvalidInput)
	}

	session, err := s.sessions.Create(ctx, repository.CreateSessionInput{
		TrainerID:     trainerID,
		ScheduledAt:   input.ScheduledAt,
		Capacity:      input.Capacity,
		PriceInPoints: input.PriceInPoints,
		Title:         title,
		Description:   strings.TrimSpace(input.Description),
	})
	if err != nil {
		return nil, storeError("create session", err)
	}

	s.log.Info().
		Str("session_id", session.ID).
		Str("trainer_id", trainerID).
		Time("scheduled_at", session.ScheduledAt).
		Msg("session created")

	notify.Async(ctx, s.notifier, notify.SessionEvent(session.ID, 0, s.now()))
	return session, nil
}

// ListUpcoming returns sessions starting at or after now, earliest first,
// with the trainer's name and email attached.
func (s *SessionService) ListUpcoming(ctx context.Context, now time.Time) ([]models.SessionListing, error) {
	sessions, err := s.sessions.ListUpcoming(ctx, now)
	if err != nil {
		return nil, storeError("list sessions", err)
	}

	trainers := make(map[string]*models.Account)
	listings := make([]models.SessionListing, 0, len(sessions))
	for _, session := range sessions {
		listing := models.SessionListing{Session: session, TrainerName: unknownTrainer}

		trainer, seen := trainers[session.TrainerID]
		if !seen && session.TrainerID != "" {
			trainer, err = s.users.GetByID(ctx, session.TrainerID)
			if err != nil && !isNotFound(err) {
				return nil, storeError("read trainer", err)
			}
			trainers[session.TrainerID] = trainer
		}
		if trainer != nil {
			listing.TrainerName = trainer.Name
			listing.TrainerEmail = trainer.Email
		}
		listings = append(listings, listing)
	}
	return listings, nil
}

func (s *SessionService) ListParticipants(ctx context.Context, sessionID string) ([]models.Participant, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, fmt.Errorf("%w: session id is required", ErrInvalidInput)
	}
	if _, err := s.sessions.GetByID(ctx, sessionID); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, storeError("read session", err)
	}

	memberships, err := s.memberships.ListBySessionID(ctx, sessionID)
	if err != nil {
		return nil, storeError("list participants", err)
	}

	participants := make([]models.Participant, 0, len(memberships))
	for _, membership := range memberships {
		participant := models.Participant{UserID: membership.UserID, Email: membership.UserID}
		account, err := s.users.GetByID(ctx, membership.UserID)
		switch {
		case err == nil:
			if account.Email != "" {
				participant.Email = account.Email
			}
		case !isNotFound(err):
			return nil, storeError("read participant", err)
		}
		participants = append(participants, participant)
	}
	return participants, nil
}
