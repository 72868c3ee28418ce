package service

import (
	"context"
	"net/mail"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/spivot-hq/spivot/backend-go/internal/domain"
	"github.com/spivot-hq/spivot/backend-go/internal/repository"
)

// UserService registers business owners. Registration is keyed by email, so
// registering the same address again updates the profile.
type UserService struct {
	users repository.UserRepository
}

func NewUserService(users repository.UserRepository) *UserService {
	return &UserService{users: users}
}

func (s *UserService) Register(ctx context.Context, user *domain.User) error {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	user.Name = strings.TrimSpace(user.Name)
	user.BusinessName = strings.TrimSpace(user.BusinessName)

	if addr, err := mail.ParseAddress(user.Email); err != nil || addr.Address != user.Email {
		return domain.InvalidInput("email", "must be a valid address, got %q", user.Email)
	}
	if !user.BusinessType.Valid() {
		return domain.InvalidInput("business_type", "is required")
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		return err
	}
	log.Info().Int64("user_id", user.ID).Str("business_type", user.BusinessType.String()).Msg("user registered")
	return nil
}

func (s *UserService) Get(ctx context.Context, id int64) (*domain.User, error) {
	return s.users.GetUser(ctx, id)
}
