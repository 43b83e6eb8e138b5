package services

import (
	"context"
	"strings"

	"github.com/jaaberaziz-code/gitolink-sub001/pkg/core/domain"
	"github.com/jaaberaziz-code/gitolink-sub001/pkg/ports"
)

type UserService struct {
	repo ports.UserRepository
}

func NewUserService(repo ports.UserRepository) *UserService {
	return &UserService{repo: repo}
}

// Login registers the user on first sight and returns it.
func (s *UserService) Login(ctx context.Context, email, displayName string) (*domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, domain.Invalid("email", "a verified email is required")
	}
	user, err := s.repo.UpsertUser(ctx, email, strings.TrimSpace(displayName))
	if err != nil {
		return nil, domain.Storage(err)
	}
	return user, nil
}

func (s *UserService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return nil, domain.Storage(err)
	}
	if user == nil {
		return nil, domain.NotFound("user not found")
	}
	return user, nil
}
