package core

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// UserService serves the account/profile read and update surface.
type UserService struct {
	repo Repository
}

func NewUserService(repo Repository) *UserService {
	return &UserService{repo: repo}
}

func (s *UserService) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.repo.FindUserByID(ctx, id)
}

func (s *UserService) GetProfile(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	return s.repo.FindProfile(ctx, userID)
}

// UpdateProfile upserts the profile for an existing account.
func (s *UserService) UpdateProfile(ctx context.Context, profile *Profile) (*Profile, error) {
	if _, err := s.repo.FindUserByID(ctx, profile.UserID); err != nil {
		return nil, err
	}

	if err := s.repo.UpsertProfile(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to upsert profile: %w", err)
	}

	return s.repo.FindProfile(ctx, profile.UserID)
}
