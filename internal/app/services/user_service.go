package services

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/derick/campusqr/internal/app/models"
	"github.com/derick/campusqr/internal/app/models/dto"
	"github.com/derick/campusqr/internal/app/repositories"
	"github.com/derick/campusqr/internal/pkg/apperrors"
	"github.com/derick/campusqr/internal/pkg/auth"
)

// UserService handles staff account administration
type UserService struct {
	userRepo *repositories.UserRepository
	logger   zerolog.Logger
}

// NewUserService creates a new UserService
func NewUserService(userRepo *repositories.UserRepository, logger zerolog.Logger) *UserService {
	return &UserService{
		userRepo: userRepo,
		logger:   logger,
	}
}

// GetAllUsers retrieves staff accounts with pagination
func (s *UserService) GetAllUsers(ctx context.Context, page, pageSize int) ([]models.User, int64, error) {
	return s.userRepo.GetAll(ctx, page, pageSize)
}

// GetUserByID retrieves a single staff account
func (s *UserService) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// CreateUser creates a staff account with a hashed password
func (s *UserService) CreateUser(ctx context.Context, req dto.CreateUserRequest) (*models.User, error) {
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username: req.Username,
		Email:    req.Email,
		Password: hash,
		Role:     models.RoleType(req.Role),
		Active:   true,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info().Str("username", user.Username).Str("role", req.Role).Msg("Staff account created")
	return user, nil
}

// UpdateUser updates a staff account. An empty password leaves the
// current one in place.
func (s *UserService) UpdateUser(ctx context.Context, id int64, req dto.UpdateUserRequest) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	user.Username = req.Username
	user.Email = req.Email
	user.Role = models.RoleType(req.Role)
	if req.Active != nil {
		user.Active = *req.Active
	}
	if req.Password != "" {
		if len(req.Password) < 8 {
			return nil, apperrors.NewValidationError("password must be at least 8 characters long")
		}
		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			return nil, err
		}
		user.Password = hash
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// DeleteUser removes a staff account. The caller cannot remove itself;
// the last working admin disappearing mid-shift locks everyone out.
func (s *UserService) DeleteUser(ctx context.Context, id, callerID int64) error {
	if id == callerID {
		return apperrors.NewValidationError("cannot delete your own account")
	}

	if err := s.userRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info().Int64("userId", id).Int64("deletedBy", callerID).Msg("Staff account deleted")
	return nil
}

// GetUserStats aggregates staff account counts
func (s *UserService) GetUserStats(ctx context.Context) (*dto.UserStatsResponse, error) {
	return s.userRepo.GetStats(ctx)
}
