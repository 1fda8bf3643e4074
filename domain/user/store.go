package user

import (
	"context"

	"github.com/google/uuid"
)

// UserStore defines persistence for users.
type UserStore interface {
	// Save persists a user, returning it with its persistence key set.
	Save(ctx context.Context, u User) (User, error)

	// GetByEmail returns a user by normalized email.
	GetByEmail(ctx context.Context, email string) (User, error)

	// GetByUUID returns a user by public identifier.
	GetByUUID(ctx context.Context, id uuid.UUID) (User, error)

	// ExistsByEmail checks whether a user with the email exists.
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}
