package service

import (
	"context"
	"fmt"

	"bitcoin-wallet-ledger/internal/core/domain"
	"bitcoin-wallet-ledger/internal/core/ports"
	"bitcoin-wallet-ledger/pkg/apperror"

	"github.com/rs/zerolog"
)

// UserServiceImpl implements ports.UserService.
type UserServiceImpl struct {
	userRepo ports.UserRepository
	keyGen   ports.KeyGenerator
	log      zerolog.Logger
}

// NewUserService creates a new UserServiceImpl.
func NewUserService(userRepo ports.UserRepository, keyGen ports.KeyGenerator, log zerolog.Logger) *UserServiceImpl {
	return &UserServiceImpl{
		userRepo: userRepo,
		keyGen:   keyGen,
		log:      log,
	}
}

// Register creates a new user and issues its API key. The plaintext key
// is returned exactly once; afterwards it can only be matched, never
// read back.
func (s *UserServiceImpl) Register(ctx context.Context) (*ports.RegistrationResult, error) {
	apiKey, err := s.keyGen.Generate()
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("generate api key: %w", err))
	}

	user := domain.NewUser(apiKey)
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, apperror.ErrPersistence(fmt.Errorf("create user: %w", err))
	}

	s.log.Info().
		Str("user_id", user.ID.String()).
		Msg("user registered")

	return &ports.RegistrationResult{
		UserID: user.ID,
		APIKey: apiKey,
	}, nil
}

// Authenticate resolves an API key to its user. Malformed and unknown
// keys fail identically so the response does not leak which keys exist.
func (s *UserServiceImpl) Authenticate(ctx context.Context, apiKey string) (*domain.User, error) {
	if !s.keyGen.ValidFormat(apiKey) {
		return nil, apperror.ErrInvalidAPIKey()
	}

	user, err := s.userRepo.GetByAPIKey(ctx, apiKey)
	if err != nil {
		return nil, apperror.ErrPersistence(fmt.Errorf("lookup api key: %w", err))
	}
	if user == nil {
		return nil, apperror.ErrInvalidAPIKey()
	}
	return user, nil
}
