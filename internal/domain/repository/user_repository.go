package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/sokoni/eventpos-api/internal/domain/entity"
)

// UserRepository defines the interface for user persistence
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	// GetByID retrieves a user, or (nil, nil) if absent
	GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	// GetByEmail retrieves a user by email, or (nil, nil) if absent
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
}
