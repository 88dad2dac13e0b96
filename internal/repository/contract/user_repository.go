package contract

import (
	"context"

	"emotion-ai-be/internal/model"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	// FindByUsername returns (nil, nil) when no user exists.
	FindByUsername(ctx context.Context, username string) (*model.User, error)
}
