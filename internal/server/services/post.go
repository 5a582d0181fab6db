package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/alivecn/funarcade/internal/common"
	"github.com/alivecn/funarcade/internal/server/auth"
	"github.com/alivecn/funarcade/internal/server/models"
	"github.com/alivecn/funarcade/internal/server/repositories/repomanager"
)

type PostService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewPostService(db *sql.DB, m repomanager.RepositoryManager) *PostService {
	return &PostService{db: db, repomanager: m}
}

// canMutate reports whether the acting identity may change the post: the
// author always can, admins can regardless of authorship.
func canMutate(claims *auth.Claims, post *models.Post) bool {
	return claims.UserID == post.Author.ID || claims.IsAdmin
}

func (s *PostService) List(ctx context.Context) ([]*models.Post, error) {
	return s.repomanager.Posts(s.db).List(ctx)
}

func (s *PostService) Get(ctx context.Context, id string) (*models.Post, error) {
	return s.repomanager.Posts(s.db).GetByID(ctx, id)
}

func (s *PostService) Create(ctx context.Context, claims *auth.Claims, title, content string) (*models.Post, error) {

	if title == "" || content == "" {
		return nil, fmt.Errorf("%w: title and content are required", common.ErrorValidation)
	}

	post := &models.Post{
		Title:   title,
		Content: content,
		Author:  models.PostAuthor{ID: claims.UserID, Username: claims.Username},
	}

	post, err := s.repomanager.Posts(s.db).Create(ctx, post)
	if err != nil {
		return nil, fmt.Errorf("error creating post: %w", err)
	}

	return post, nil
}

func (s *PostService) Update(ctx context.Context, claims *auth.Claims, id, title, content string) (*models.Post, error) {

	if title == "" || content == "" {
		return nil, fmt.Errorf("%w: title and content are required", common.ErrorValidation)
	}

	repo := s.repomanager.Posts(s.db)

	post, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !canMutate(claims, post) {
		return nil, common.ErrorForbidden
	}

	if err := repo.Update(ctx, id, title, content); err != nil {
		return nil, err
	}

	return repo.GetByID(ctx, id)
}

func (s *PostService) Delete(ctx context.Context, claims *auth.Claims, id string) error {

	repo := s.repomanager.Posts(s.db)

	post, err := repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if !canMutate(claims, post) {
		return common.ErrorForbidden
	}

	return repo.Delete(ctx, id)
}

// AddComment appends a comment authored by the acting identity's username.
// Comments are append-only; there is no edit or delete.
func (s *PostService) AddComment(ctx context.Context, claims *auth.Claims, id, content string) (*models.Post, error) {

	if content == "" {
		return nil, fmt.Errorf("%w: content is required", common.ErrorValidation)
	}

	repo := s.repomanager.Posts(s.db)

	comment := models.Comment{
		Content:   content,
		Author:    claims.Username,
		CreatedAt: time.Now().UTC(),
	}

	if err := repo.AppendComment(ctx, id, comment); err != nil {
		return nil, err
	}

	return repo.GetByID(ctx, id)
}
