package users

import (
	"context"

	"github.com/alivecn/funarcade/internal/server/models"
)

// Repository persists accounts. Implementations map store-level "no row" and
// unique-violation conditions to common.ErrorNotFound / common.ErrorAlreadyExists.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	// UpdateProfile changes avatar and/or active skin; nil pointers leave the
	// stored value untouched. Username and the admin flag are not updatable.
	UpdateProfile(ctx context.Context, id string, avatar, activeSkin *string) (*models.User, error)
	Delete(ctx context.Context, id string) error
}
