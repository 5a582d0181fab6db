package users

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

// uniqueViolation is the PostgreSQL error code raised when an insert loses a
// uniqueness race that the pre-insert check missed.
const uniqueViolation = "23505"

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {

	skins, err := json.Marshal(user.PurchasedSkins)
	if err != nil {
		return nil, fmt.Errorf("marshal purchased skins: %w", err)
	}

	query :=
		`INSERT INTO users (username, password_hash, is_admin, wallet, avatar, active_skin, purchased_skins)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at
		 `

	err = r.db.QueryRowContext(ctx, query,
		user.Username, user.PasswordHash, user.IsAdmin, user.Wallet, user.Avatar, user.ActiveSkin, skins).
		Scan(&user.ID, &user.CreatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := selectUser + ` WHERE username = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, username))
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := selectUser + ` WHERE id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) UpdateProfile(ctx context.Context, id string, avatar, activeSkin *string) (*models.User, error) {
	query :=
		`UPDATE users
		 SET avatar = COALESCE($2, avatar), active_skin = COALESCE($3, active_skin)
		 WHERE id = $1
		 RETURNING id, username, password_hash, is_admin, wallet, avatar, active_skin, purchased_skins, created_at
		 `

	return r.scanOne(r.db.QueryRowContext(ctx, query, id, avatar, activeSkin))
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

const selectUser = `SELECT id, username, password_hash, is_admin, wallet, avatar, active_skin, purchased_skins, created_at FROM users`

func (r *PostgresRepository) scanOne(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	var skins []byte

	err := row.Scan(&user.ID, &user.Username, &user.PasswordHash, &user.IsAdmin,
		&user.Wallet, &user.Avatar, &user.ActiveSkin, &skins, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if err := json.Unmarshal(skins, &user.PurchasedSkins); err != nil {
		return nil, fmt.Errorf("unmarshal purchased skins: %w", err)
	}

	return user, nil
}
