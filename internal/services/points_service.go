package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/diftofficial/systemAplikaciaGYM/internal/docstore"
	"github.com/diftofficial/systemAplikaciaGYM/internal/models"
	"github.com/diftofficial/systemAplikaciaGYM/internal/notify"
	"github.com/diftofficial/systemAplikaciaGYM/internal/repository"
)

// PointsService credits accounts on behalf of administrators.
type PointsService struct {
	store       docstore.Store
	users       *repository.UserRepository
	notifier    notify.Notifier
	maxAttempts int
	now         func() time.Time
	log         zerolog.Logger
}

func NewPointsService(
	store docstore.Store,
	notifier notify.Notifier,
	maxAttempts int,
	logger zerolog.Logger,
) *PointsService {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &PointsService{
		store:       store,
		users:       repository.NewUserRepository(store),
		notifier:    notifier,
		maxAttempts: maxAttempts,
		now:         time.Now,
		log:         logger.With().Str("component", "points").Logger(),
	}
}

// GrantPoints adds delta to the balance of the account registered under
// email and returns the new balance.
func (s *PointsService) GrantPoints(ctx context.Context, email string, delta int64) (int64, error) {
	email = normalizeEmail(email)
	if email == "" {
		return 0, fmt.Errorf("%w: email is required", ErrInvalidInput)
	}
	if delta <= 0 {
		return 0, fmt.Errorf("%w: points must be positive", ErrInvalidInput)
	}

	var accountID string
	balance, attempts, err := retryOptimistic(s.log, "grant points", s.maxAttempts, func() (int64, error) {
		account, err := s.findAccount(ctx, email)
		if err != nil {
			return 0, err
		}
		accountID = account.ID

		if account.Points > math.MaxInt64-delta {
			return 0, fmt.Errorf("%w: balance would overflow", ErrInvalidInput)
		}
		newBalance := account.Points + delta

		err = s.store.Commit(ctx,
			[]docstore.Write{repository.SetPoints(account.ID, newBalance)},
			[]docstore.Precondition{repository.PointsUnchanged(account)},
		)
		if err != nil {
			return 0, staleOrStoreError("commit grant", err)
		}
		return newBalance, nil
	})
	if err != nil {
		return 0, err
	}

	s.log.Info().
		Str("user_id", accountID).
		Int64("delta", delta).
		Int64("points", balance).
		Int("attempts", attempts).
		Msg("points granted")

	notify.Async(ctx, s.notifier, notify.BalanceEvent(accountID, balance, s.now()))
	return balance, nil
}

func (s *PointsService) findAccount(ctx context.Context, email string) (*models.Account, error) {
	accounts, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, storeError("find account by email", err)
	}
	switch len(accounts) {
	case 0:
		return nil, ErrAccountNotFound
	case 1:
		return &accounts[0], nil
	default:
		return nil, fmt.Errorf("%w: email matches %d accounts", ErrAccountNotFound, len(accounts))
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func isNotFound(err error) bool {
	return errors.Is(err, docstore.ErrNotFound)
}

func isConflict(err error) bool {
	return errors.Is(err, docstore.ErrConflict)
}
