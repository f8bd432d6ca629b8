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

// JoinCoordinator enrolls a user into a session while charging the session
// price. Every join is one conditional commit over the account balance, the
// session participant count and the membership record.
type JoinCoordinator struct {
	store       docstore.Store
	users       *repository.UserRepository
	sessions    *repository.SessionRepository
	memberships *repository.MembershipRepository
	notifier    notify.Notifier
	maxAttempts int
	now         func() time.Time
	log         zerolog.Logger
}

func NewJoinCoordinator(
	store docstore.Store,
	notifier notify.Notifier,
	maxAttempts int,
	logger zerolog.Logger,
) *JoinCoordinator {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &JoinCoordinator{
		store:       store,
		users:       repository.NewUserRepository(store),
		sessions:    repository.NewSessionRepository(store),
		memberships: repository.NewMembershipRepository(store),
		notifier:    notifier,
		maxAttempts: maxAttempts,
		now:         time.Now,
		log:         logger.With().Str("component", "join").Logger(),
	}
}

func (c *JoinCoordinator) Join(ctx context.Context, sessionID, userID string) (*models.JoinResult, error) {
	sessionID = strings.TrimSpace(sessionID)
	userID = strings.TrimSpace(userID)
	if sessionID == "" || userID == "" {
		return nil, fmt.Errorf("%w: session id and user id are required", ErrInvalidInput)
	}

	result, attempts, err := retryOptimistic(c.log, "join", c.maxAttempts, func() (*models.JoinResult, error) {
		return c.attempt(ctx, sessionID, userID)
	})
	if err != nil {
		return nil, err
	}
	result.Attempts = attempts

	c.log.Info().
		Str("session_id", sessionID).
		Str("user_id", userID).
		Int64("points", result.Points).
		Int64("participants", result.ParticipantsCount).
		Int("attempts", attempts).
		Msg("user joined session")

	at := c.now()
	notify.Async(ctx, c.notifier,
		notify.BalanceEvent(userID, result.Points, at),
		notify.SessionEvent(sessionID, result.ParticipantsCount, at),
	)
	return result, nil
}

func (c *JoinCoordinator) attempt(ctx context.Context, sessionID, userID string) (*models.JoinResult, error) {
	account, err := c.users.GetByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, docstore.ErrNotFound) {
			return nil, storeError("read account", err)
		}
		account = &models.Account{ID: userID}
	}

	session, err := c.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, storeError("read session", err)
	}

	joined, err := c.memberships.Exists(ctx, sessionID, userID)
	if err != nil {
		return nil, storeError("read membership", err)
	}
	if joined {
		return nil, ErrAlreadyJoined
	}

	if account.Points < session.PriceInPoints {
		return nil, fmt.Errorf("%w: balance %d, price %d", ErrInsufficientFunds, account.Points, session.PriceInPoints)
	}
	if session.Full() {
		return nil, fmt.Errorf("%w: %d of %d places taken", ErrCapacityExceeded, session.ParticipantsCount, session.Capacity)
	}

	newBalance := account.Points - session.PriceInPoints
	newCount := session.ParticipantsCount + 1

	writes := []docstore.Write{
		repository.CreateMembership(sessionID, userID, c.now()),
		repository.SetParticipantsCount(sessionID, newCount),
	}
	preconditions := []docstore.Precondition{
		repository.ParticipantsUnchanged(session),
		repository.MembershipAbsent(sessionID, userID),
	}
	if session.PriceInPoints > 0 {
		writes = append(writes, repository.SetPoints(userID, newBalance))
		preconditions = append(preconditions, repository.PointsUnchanged(account))
	}

	if err := c.store.Commit(ctx, writes, preconditions); err != nil {
		return nil, staleOrStoreError("commit join", err)
	}

	return &models.JoinResult{
		SessionID:         sessionID,
		UserID:            userID,
		Points:            newBalance,
		ParticipantsCount: newCount,
	}, nil
}
