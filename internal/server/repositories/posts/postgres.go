package posts

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/alivecn/funarcade/internal/common"
	"github.com/alivecn/funarcade/internal/dbx"
	"github.com/alivecn/funarcade/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

// invalidTextRepresentation is raised when a path parameter is not a valid
// uuid. Such ids cannot reference any post, so they read as "not found".
const invalidTextRepresentation = "22P02"

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, post *models.Post) (*models.Post, error) {

	query :=
		`INSERT INTO posts (title, content, author_id)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query, post.Title, post.Content, post.Author.ID).
		Scan(&post.ID, &post.CreatedAt)

	if err != nil {
		return nil, mapPgError(err)
	}

	post.Comments = []models.Comment{}
	return post, nil
}

const selectPost = `
	SELECT p.id, p.title, p.content, p.author_id, u.username, p.comments, p.created_at
	FROM posts p
	JOIN users u ON u.id = p.author_id`

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	row := r.db.QueryRowContext(ctx, selectPost+` WHERE p.id = $1`, id)

	post, err := scanPost(row.Scan)
	if err != nil {
		return nil, mapPgError(err)
	}
	return post, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]*models.Post, error) {
	rows, err := r.db.QueryContext(ctx, selectPost+` ORDER BY p.created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []*models.Post{}
	for rows.Next() {
		post, err := scanPost(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) Update(ctx context.Context, id, title, content string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE posts SET title = $2, content = $3 WHERE id = $1`, id, title, content)
	if err != nil {
		return mapPgError(err)
	}
	return requireOneRow(res)
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return mapPgError(err)
	}
	return requireOneRow(res)
}

func (r *PostgresRepository) AppendComment(ctx context.Context, id string, comment models.Comment) error {
	encoded, err := json.Marshal(comment)
	if err != nil {
		return fmt.Errorf("marshal comment: %w", err)
	}

	// Single-statement append: two writers appending concurrently both land,
	// in whichever order the store serializes them.
	res, err := r.db.ExecContext(ctx,
		`UPDATE posts SET comments = comments || $2::jsonb WHERE id = $1`, id, encoded)
	if err != nil {
		return mapPgError(err)
	}
	return requireOneRow(res)
}

func scanPost(scan func(dest ...any) error) (*models.Post, error) {
	post := &models.Post{}
	var comments []byte

	err := scan(&post.ID, &post.Title, &post.Content, &post.Author.ID, &post.Author.Username,
		&comments, &post.CreatedAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(comments, &post.Comments); err != nil {
		return nil, fmt.Errorf("unmarshal comments: %w", err)
	}

	return post, nil
}

func requireOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func mapPgError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return common.ErrorNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == invalidTextRepresentation {
		return common.ErrorNotFound
	}
	return fmt.Errorf("db error: %w", err)
}
