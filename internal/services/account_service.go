package services

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"github.com/rs/zerolog"

	"github.com/diftofficial/systemAplikaciaGYM/internal/docstore"
	"github.com/diftofficial/systemAplikaciaGYM/internal/models"
	"github.com/diftofficial/systemAplikaciaGYM/internal/repository"
)

type RegisterInput struct {
	Name  string
	Email string
	Phone string
}

type AccountService struct {
	users *repository.UserRepository
	log   zerolog.Logger
}

func NewAccountService(store docstore.Store, logger zerolog.Logger) *AccountService {
	return &AccountService{
		users: repository.NewUserRepository(store),
		log:   logger.With().Str("component", "accounts").Logger(),
	}
}

// Register creates the account document for an authenticated identity.
// New accounts always start as plain users with an empty balance.
func (s *AccountService) Register(ctx context.Context, uid string, input RegisterInput) (*models.Account, error) {
	uid = strings.TrimSpace(uid)
	name := strings.TrimSpace(input.Name)
	email := normalizeEmail(input.Email)
	if uid == "" || name == "" || email == "" {
		return nil, fmt.Errorf("%w: name and email are required", ErrInvalidInput)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("%w: malformed email", ErrInvalidInput)
	}

	account := &models.Account{
		ID:             uid,
		Name:           name,
		Email:          email,
		Phone:          strings.TrimSpace(input.Phone),
		Role:           models.RoleUser,
		Points:         0,
		PointsRecorded: true,
	}
	if err := s.users.CreateUser(ctx, account); err != nil {
		if isConflict(err) {
			return nil, ErrAccountExists
		}
		return nil, storeError("create account", err)
	}

	s.log.Info().Str("user_id", uid).Msg("account registered")
	return account, nil
}

func (s *AccountService) GetAccount(ctx context.Context, uid string) (*models.Account, error) {
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	account, err := s.users.GetByID(ctx, uid)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrAccountNotFound
		}
		return nil, storeError("read account", err)
	}
	return account, nil
}
