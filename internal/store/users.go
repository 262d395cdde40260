package store

import (
	"context"

	"github.com/google/uuid"

	"bookline/internal/domain"
)

type UserRepository interface {
	// CreateWithProfile inserts the user and its profile in one transaction.
	// A duplicate email yields ErrDuplicateEmail.
	CreateWithProfile(ctx context.Context, user domain.User, profile domain.Profile) (domain.User, domain.Profile, error)
	ByEmail(ctx context.Context, email string) (domain.User, error)
	ByID(ctx context.Context, id uuid.UUID) (domain.User, error)
	ProfileByUserID(ctx context.Context, userID uuid.UUID) (domain.Profile, error)
	UpdateEmail(ctx context.Context, userID uuid.UUID, email string) error
	UpdateProfile(ctx context.Context, profile domain.Profile) error
}
