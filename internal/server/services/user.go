package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/alivecn/funarcade/internal/common"
	"github.com/alivecn/funarcade/internal/dbx"
	"github.com/alivecn/funarcade/internal/server/auth"
	"github.com/alivecn/funarcade/internal/server/config"
	"github.com/alivecn/funarcade/internal/server/models"
	"github.com/alivecn/funarcade/internal/server/repositories/repomanager"
)

const (
	defaultAvatar    = "/avatars/default.png"
	defaultSkin      = "default"
	adminUsername    = "admin"
	adminAvatar      = "/avatars/avatar1.jpg"
	adminStartWallet = 10000
)

type UserService struct {
	db                    *sql.DB
	repomanager           repomanager.RepositoryManager
	jwtSecret             []byte
	tokenValidityDuration time.Duration
	adminPassword         string
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *UserService {
	return &UserService{
		db:                    db,
		repomanager:           m,
		jwtSecret:             []byte(cfg.SecretKey),
		tokenValidityDuration: cfg.TokenValidityDuration,
		adminPassword:         cfg.AdminPassword,
	}
}

func (s *UserService) Register(ctx context.Context, username, password string) (*models.User, error) {

	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", common.ErrorValidation)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user := &models.User{
		Username:       username,
		PasswordHash:   hash,
		Avatar:         defaultAvatar,
		ActiveSkin:     defaultSkin,
		PurchasedSkins: []string{defaultSkin},
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		// The unique index still backstops this check if two registrations
		// race past it.
		if _, err := repo.GetByUsername(ctx, username); err == nil {
			return common.ErrorAlreadyExists
		} else if !errors.Is(err, common.ErrorNotFound) {
			return fmt.Errorf("error checking username: %w", err)
		}

		user, err = repo.Create(ctx, user)
		if err != nil {
			if errors.Is(err, common.ErrorAlreadyExists) {
				return common.ErrorAlreadyExists
			}
			return fmt.Errorf("error creating user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return user, nil
}

// VerifyCredentials looks the account up and checks the password against the
// stored bcrypt hash.
func (s *UserService) VerifyCredentials(ctx context.Context, username, password string) (*models.User, error) {

	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("error searching user: %w", err)
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, common.ErrorUnauthorized
	}

	return user, nil
}

func (s *UserService) Login(ctx context.Context, username, password string) (string, *models.User, error) {

	user, err := s.VerifyCredentials(ctx, username, password)
	if err != nil {
		return "", nil, err
	}

	token, err := auth.GenerateToken(user.ID, user.Username, user.IsAdmin, s.jwtSecret, s.tokenValidityDuration)
	if err != nil {
		return "", nil, fmt.Errorf("error generating token: %w", err)
	}

	return token, user, nil
}

// BootstrapAdmin seeds the admin account on first start. Subsequent starts
// find the account and do nothing, so a changed admin password in the config
// never rewrites an existing account.
func (s *UserService) BootstrapAdmin(ctx context.Context) error {

	hash, err := auth.HashPassword(s.adminPassword)
	if err != nil {
		return fmt.Errorf("error hashing admin password: %w", err)
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		_, err := repo.GetByUsername(ctx, adminUsername)
		if err == nil {
			return nil
		}
		if !errors.Is(err, common.ErrorNotFound) {
			return fmt.Errorf("error checking admin account: %w", err)
		}

		admin := &models.User{
			Username:       adminUsername,
			PasswordHash:   hash,
			IsAdmin:        true,
			Wallet:         adminStartWallet,
			Avatar:         adminAvatar,
			ActiveSkin:     defaultSkin,
			PurchasedSkins: []string{defaultSkin},
		}

		if _, err := repo.Create(ctx, admin); err != nil {
			// Lost a race with another instance seeding the same account.
			if errors.Is(err, common.ErrorAlreadyExists) {
				return nil
			}
			return fmt.Errorf("error creating admin account: %w", err)
		}

		return nil
	})
}

func (s *UserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	return s.repomanager.Users(s.db).GetByID(ctx, id)
}

// UpdateProfile changes avatar and/or active skin. Nil fields are left as
// stored; username and the admin flag cannot be changed here.
func (s *UserService) UpdateProfile(ctx context.Context, id string, avatar, activeSkin *string) (*models.User, error) {
	return s.repomanager.Users(s.db).UpdateProfile(ctx, id, avatar, activeSkin)
}

// Delete removes the account. Posts authored by the account are removed with
// it by the store's cascade.
func (s *UserService) Delete(ctx context.Context, id string) error {
	return s.repomanager.Users(s.db).Delete(ctx, id)
}
