package user

import (
	"context"
	"time"

	"github.com/tripdeck/tripdeck/internal/api/models"
)

// Service provides user profile operations.
type Service struct {
	repo Repository
}

// NewService creates a new user service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// GetMe retrieves the user's account summary.
func (s *Service) GetMe(ctx context.Context, userID string) (*models.Me, error) {
	user, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toAPIMe(user), nil
}

// UpdateMe updates the user's account settings.
func (s *Service) UpdateMe(ctx context.Context, userID string, input *models.MeInput) (*models.Me, error) {
	user, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	if fieldErrors := validateMeInput(input); len(fieldErrors) > 0 {
		return nil, &ValidationError{Errors: fieldErrors}
	}

	if input.DisplayName != nil {
		user.DisplayName = *input.DisplayName
	}
	if input.Locale != nil {
		user.Locale = *input.Locale
	}
	if input.HomeCity != nil {
		if *input.HomeCity == "" {
			user.HomeCity = nil
		} else {
			user.HomeCity = input.HomeCity
		}
	}
	user.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	return toAPIMe(user), nil
}

// DeleteUser deletes a user and all associated data.
func (s *Service) DeleteUser(ctx context.Context, userID string) error {
	return s.repo.Delete(ctx, userID)
}

func validateMeInput(input *models.MeInput) []models.FieldError {
	var errs []models.FieldError

	if input.DisplayName != nil {
		if *input.DisplayName == "" {
			errs = append(errs, models.FieldError{Field: "displayName", Message: "cannot be empty"})
		} else if len(*input.DisplayName) > MaxDisplayNameLength {
			errs = append(errs, models.FieldError{Field: "displayName", Message: "must be at most 80 characters"})
		}
	}

	if input.HomeCity != nil && len(*input.HomeCity) > MaxHomeCityLength {
		errs = append(errs, models.FieldError{Field: "homeCity", Message: "must be at most 120 characters"})
	}

	return errs
}

func toAPIMe(user *User) *models.Me {
	return &models.Me{
		UserID:      user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Locale:      user.Locale,
		HomeCity:    user.HomeCity,
		CreatedAt:   models.Timestamp(user.CreatedAt),
	}
}

// ValidationError represents validation errors.
type ValidationError struct {
	Errors []models.FieldError
}

func (e *ValidationError) Error() string {
	return "validation failed"
}
