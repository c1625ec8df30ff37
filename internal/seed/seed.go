package seed

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	appModels "github.com/derick/campusqr/internal/app/models"
	appRepos "github.com/derick/campusqr/internal/app/repositories"
	"github.com/derick/campusqr/internal/pkg/apperrors"
	"github.com/derick/campusqr/internal/pkg/auth"
)

// Default admin credentials created on first boot. The password must be
// changed after the first login; it exists so a fresh install is not
// locked out of its own user administration.
const (
	defaultAdminUsername = "admin"
	defaultAdminEmail    = "admin@campus.local"
	defaultAdminPassword = "admin123456"
)

// CreateDefaultData creates the default admin account if no account
// with that username exists yet. Runs after migrations on every boot.
func CreateDefaultData(ctx context.Context, dbPool *pgxpool.Pool, lgr zerolog.Logger) error {
	userRepo := appRepos.NewUserRepository(dbPool)

	_, err := userRepo.GetByUsername(ctx, defaultAdminUsername)
	if err == nil {
		return nil
	}
	if !errors.Is(err, apperrors.ErrUserNotFound) {
		lgr.Error().Err(err).Msg("Error checking for default admin account")
		return err
	}

	hash, err := auth.HashPassword(defaultAdminPassword)
	if err != nil {
		return err
	}

	admin := &appModels.User{
		Username: defaultAdminUsername,
		Email:    defaultAdminEmail,
		Password: hash,
		Role:     appModels.RoleAdmin,
		Active:   true,
	}

	if err := userRepo.Create(ctx, admin); err != nil {
		if errors.Is(err, apperrors.ErrUsernameExists) {
			// Another instance won the race; nothing to do
			return nil
		}
		lgr.Error().Err(err).Msg("Error creating default admin account")
		return err
	}

	lgr.Warn().Str("username", defaultAdminUsername).Msg("Default admin account created, change its password")
	return nil
}
