package crm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"folio/internal/config"
	"folio/internal/domain"
	models "folio/internal/domain/models/crm"
	crmRepo "folio/internal/domain/repositories/crm"
	crmSvc "folio/internal/domain/services/crm"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// userService implements the UserService interface
type userService struct {
	userRepo crmRepo.UserRepository
	logger   *slog.Logger
}

// NewUserService creates a new user service
func NewUserService(userRepo crmRepo.UserRepository, logger *slog.Logger) crmSvc.UserService {
	return &userService{userRepo: userRepo, logger: logger}
}

// GetProfile returns the caller's profile, creating it from the token
// identity on first access
func (s *userService) GetProfile(ctx context.Context, identity crmSvc.Identity) (*models.User, error) {
	if identity.UserID == "" {
		return nil, domain.ErrUnauthorized
	}

	user, err := s.userRepo.GetByID(ctx, identity.UserID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	now := time.Now()
	user = &models.User{
		ID:        identity.UserID,
		Email:     identity.Email,
		Name:      emptyToNil(&identity.Name),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.userRepo.Upsert(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user profile created", "id", user.ID)
	return user, nil
}

// UpdateProfile changes name and business name; an empty string clears a field
func (s *userService) UpdateProfile(ctx context.Context, userID string, req *crmSvc.UpdateProfileRequest) (*models.User, error) {
	err := validation.ValidateStruct(req,
		validation.Field(&req.Name, validation.Length(0, config.MaxClientNameLength)),
		validation.Field(&req.BusinessName, validation.Length(0, config.MaxClientNameLength)),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: no profile for user %s", domain.ErrUnauthorized, userID)
		}
		return nil, err
	}

	if req.Name != nil {
		user.Name = emptyToNil(req.Name)
	}
	if req.BusinessName != nil {
		user.BusinessName = emptyToNil(req.BusinessName)
	}
	user.UpdatedAt = time.Now()

	if err := s.userRepo.Upsert(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user profile updated", "id", user.ID, "has_business_name", strings.TrimSpace(deref(user.BusinessName)) != "")
	return user, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
