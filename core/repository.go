package core

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEmail = errors.New("email already in use")
)

type Repository interface {
	// User operations

	FindUserByID(ctx context.Context, id uuid.UUID) (*User, error)

	FindUserByEmail(ctx context.Context, email string) (*User, error)

	CreateUser(ctx context.Context, user *User) error

	// Profile operations

	FindProfile(ctx context.Context, userID uuid.UUID) (*Profile, error)

	UpsertProfile(ctx context.Context, profile *Profile) error
}
