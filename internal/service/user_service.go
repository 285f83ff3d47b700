package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/caliberhq/question-bank/internal/models"
	"github.com/caliberhq/question-bank/internal/repository"
)

type UserService interface {
	GetOrCreate(ctx context.Context, userID string, email *string) (*models.User, error)
	GetByUserID(ctx context.Context, userID string) (*models.User, error)
	List(ctx context.Context, page, limit int) ([]models.User, int, error)
	UpdateProfile(ctx context.Context, userID string, req *models.UpdateProfileRequest) (*models.User, error)
	UpdatePreferences(ctx context.Context, userID string, req *models.UpdatePreferencesRequest) (*models.User, error)
	CompleteOnboarding(ctx context.Context, userID string, req *models.OnboardingRequest) (*models.User, error)
	UpdateRoles(ctx context.Context, actor *models.User, targetUserID string, req *models.UpdateRolesRequest) (*models.User, error)
}

type userService struct {
	userRepo repository.UserRepository
	logger   zerolog.Logger
}

func NewUserService(userRepo repository.UserRepository, logger zerolog.Logger) UserService {
	return &userService{
		userRepo: userRepo,
		logger:   logger,
	}
}

func (s *userService) GetOrCreate(ctx context.Context, userID string, email *string) (*models.User, error) {
	user, err := s.userRepo.GetOrCreate(ctx, userID, email)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create user: %w", err)
	}

	return user, nil
}

func (s *userService) GetByUserID(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.userRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	return user, nil
}

func (s *userService) List(ctx context.Context, page, limit int) ([]models.User, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	offset := (page - 1) * limit

	users, total, err := s.userRepo.GetAll(ctx, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}

	return users, total, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID string, req *models.UpdateProfileRequest) (*models.User, error) {
	user, err := s.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	firstName := strings.TrimSpace(req.FirstName)
	lastName := strings.TrimSpace(req.LastName)
	if firstName == "" || lastName == "" {
		return nil, fmt.Errorf("%w: first and last name must be non-blank", ErrValidation)
	}

	user.FirstName = &firstName
	user.LastName = &lastName

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	s.logger.Info().Str("user_id", userID).Msg("Profile updated")
	return user, nil
}

func (s *userService) UpdatePreferences(ctx context.Context, userID string, req *models.UpdatePreferencesRequest) (*models.User, error) {
	user, err := s.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.IconShape != nil {
		user.IconShape = *req.IconShape
	}
	if req.IconColor != nil {
		user.IconColor = *req.IconColor
	}
	if req.Initials != nil {
		initials := strings.ToUpper(strings.TrimSpace(*req.Initials))
		if initials == "" {
			user.Initials = nil
		} else {
			user.Initials = &initials
		}
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update preferences: %w", err)
	}

	return user, nil
}

func (s *userService) CompleteOnboarding(ctx context.Context, userID string, req *models.OnboardingRequest) (*models.User, error) {
	user, err := s.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.ProfileComplete() {
		return nil, ErrProfileCompleted
	}

	firstName := strings.TrimSpace(req.FirstName)
	lastName := strings.TrimSpace(req.LastName)
	if firstName == "" || lastName == "" {
		return nil, fmt.Errorf("%w: first and last name must be non-blank", ErrValidation)
	}

	user.FirstName = &firstName
	user.LastName = &lastName

	// Requesting the instructor role never grants it directly. The account
	// is flagged pending until an admin approves it.
	if req.Teacher {
		user.Pending = true
		user.Teacher = false
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to complete onboarding: %w", err)
	}

	s.logger.Info().
		Str("user_id", userID).
		Bool("requested_teacher", req.Teacher).
		Msg("Onboarding completed")

	return user, nil
}

func (s *userService) UpdateRoles(ctx context.Context, actor *models.User, targetUserID string, req *models.UpdateRolesRequest) (*models.User, error) {
	if actor == nil || !actor.Admin {
		return nil, ErrNotAdmin
	}

	// The target may not have signed in yet; create the row so role grants
	// apply on first login.
	user, err := s.userRepo.GetOrCreate(ctx, targetUserID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get target user: %w", err)
	}

	if req.Admin != nil {
		user.Admin = *req.Admin
	}
	if req.Teacher != nil {
		user.Teacher = *req.Teacher
		if *req.Teacher {
			user.Pending = false
		}
	}
	if req.Pending != nil {
		user.Pending = *req.Pending
		if *req.Pending {
			user.Teacher = false
		}
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update roles: %w", err)
	}

	s.logger.Info().
		Str("actor", actor.UserID).
		Str("target", targetUserID).
		Bool("admin", user.Admin).
		Bool("teacher", user.Teacher).
		Bool("pending", user.Pending).
		Msg("User roles updated")

	return user, nil
}
