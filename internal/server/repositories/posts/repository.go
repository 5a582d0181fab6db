package posts

import (
	"context"

	"github.com/alivecn/funarcade/internal/server/models"
)

// Repository persists posts with their embedded comments. Reads populate the
// author reference with the owning account's username.
type Repository interface {
	Create(ctx context.Context, post *models.Post) (*models.Post, error)
	GetByID(ctx context.Context, id string) (*models.Post, error)
	// List returns all posts, newest first.
	List(ctx context.Context) ([]*models.Post, error)
	Update(ctx context.Context, id, title, content string) error
	Delete(ctx context.Context, id string) error
	// AppendComment adds a comment to the stored comment array in a single
	// statement, so concurrent appends to the same post cannot overwrite
	// each other.
	AppendComment(ctx context.Context, id string, comment models.Comment) error
}
