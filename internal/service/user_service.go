package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/TravisChandler1/ewaede/internal/models"
	appErrors "github.com/TravisChandler1/ewaede/pkg/errors"
)

type userProfileRepository interface {
	FindByUserID(ctx context.Context, userID string) (*models.UserProfile, error)
	Create(ctx context.Context, profile *models.UserProfile) error
	Update(ctx context.Context, profile *models.UserProfile) error
	Deactivate(ctx context.Context, userID string) error
	List(ctx context.Context, filter models.ProfileFilter) ([]models.UserProfile, int, error)
}

type userAccountRepository interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
	RevokeUserRefreshTokens(ctx context.Context, userID string) error
}

// UpdateProfileRequest is the self-service profile payload. Role is absent on
// purpose: the teacher role is only reachable through an approved
// application.
type UpdateProfileRequest struct {
	FullName           string  `json:"full_name" validate:"required"`
	LearningLevel      *string `json:"learning_level,omitempty"`
	TeachingPreference *string `json:"teaching_preference,omitempty"`
	PhoneNumber        *string `json:"phone_number,omitempty"`
	Bio                *string `json:"bio,omitempty"`
	AvatarURL          *string `json:"avatar_url,omitempty" validate:"omitempty,url"`
}

// AdminUpdateUserRequest is the admin back-office payload for a user. Role is
// absent: it moves only through application approval.
type AdminUpdateUserRequest struct {
	FullName      *string `json:"full_name,omitempty"`
	LearningLevel *string `json:"learning_level,omitempty"`
	Bio           *string `json:"bio,omitempty"`
	IsActive      *bool   `json:"is_active,omitempty"`
}

// UserService covers profile self-service and the admin user back office.
type UserService struct {
	profiles  userProfileRepository
	accounts  userAccountRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewUserService constructs a UserService instance.
func NewUserService(profiles userProfileRepository, accounts userAccountRepository, validate *validator.Validate, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &UserService{profiles: profiles, accounts: accounts, validator: validate, logger: logger}
}

// GetProfile returns the caller's profile, or nil when none exists yet.
func (s *UserService) GetProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	profile, err := s.profiles.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load profile")
	}
	return profile, nil
}

// UpsertProfile creates or updates the caller's profile. The role field is
// never written here; a missing profile is created as a student.
func (s *UserService) UpsertProfile(ctx context.Context, userID, email string, req UpdateProfileRequest) (*models.UserProfile, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid profile payload")
	}

	profile, err := s.profiles.FindByUserID(ctx, userID)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load profile")
		}
		profile = &models.UserProfile{
			UserID:   userID,
			Email:    email,
			Role:     models.RoleStudent,
			IsActive: true,
		}
		applyProfileUpdate(profile, req)
		if err := s.profiles.Create(ctx, profile); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create profile")
		}
		s.audit(ctx, userID, models.AuditActionProfileUpdate, userID, nil, map[string]interface{}{"created": true})
		return profile, nil
	}

	applyProfileUpdate(profile, req)
	if err := s.profiles.Update(ctx, profile); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update profile")
	}
	s.audit(ctx, userID, models.AuditActionProfileUpdate, userID, nil, map[string]interface{}{"created": false})
	return profile, nil
}

func applyProfileUpdate(profile *models.UserProfile, req UpdateProfileRequest) {
	profile.FullName = req.FullName
	profile.LearningLevel = req.LearningLevel
	profile.TeachingPreference = req.TeachingPreference
	profile.PhoneNumber = req.PhoneNumber
	profile.Bio = req.Bio
	profile.AvatarURL = req.AvatarURL
}

// List returns profiles for the admin back office.
func (s *UserService) List(ctx context.Context, filter models.ProfileFilter) ([]models.UserProfile, int, error) {
	profiles, total, err := s.profiles.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list users")
	}
	return profiles, total, nil
}

// Get returns a single profile for the admin back office.
func (s *UserService) Get(ctx context.Context, userID string) (*models.UserProfile, error) {
	profile, err := s.profiles.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	return profile, nil
}

// AdminUpdate applies admin edits to a user's profile. Role is intentionally
// not editable here.
func (s *UserService) AdminUpdate(ctx context.Context, adminID, targetID string, req AdminUpdateUserRequest) (*models.UserProfile, error) {
	profile, err := s.Get(ctx, targetID)
	if err != nil {
		return nil, err
	}

	if req.IsActive != nil && !*req.IsActive && adminID == targetID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "you cannot deactivate your own account")
	}

	oldValues := profileAuditValues(profile)

	if req.FullName != nil {
		profile.FullName = *req.FullName
	}
	if req.LearningLevel != nil {
		profile.LearningLevel = req.LearningLevel
	}
	if req.Bio != nil {
		profile.Bio = req.Bio
	}
	deactivated := req.IsActive != nil && !*req.IsActive && profile.IsActive
	if req.IsActive != nil {
		profile.IsActive = *req.IsActive
	}

	if err := s.profiles.Update(ctx, profile); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update user")
	}
	if deactivated {
		s.revokeSessions(ctx, targetID)
	}

	s.audit(ctx, adminID, models.AuditActionUserUpdate, targetID, oldValues, profileAuditValues(profile))
	return profile, nil
}

// Deactivate soft deletes a user. An admin cannot deactivate themselves, and
// the profile row is retained.
func (s *UserService) Deactivate(ctx context.Context, adminID, targetID string) error {
	if adminID == targetID {
		return appErrors.Clone(appErrors.ErrForbidden, "you cannot deactivate your own account")
	}

	profile, err := s.Get(ctx, targetID)
	if err != nil {
		return err
	}

	if err := s.profiles.Deactivate(ctx, targetID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate user")
	}
	s.revokeSessions(ctx, targetID)

	s.audit(ctx, adminID, models.AuditActionUserDeactivate, targetID,
		map[string]interface{}{"is_active": profile.IsActive},
		map[string]interface{}{"is_active": false})
	return nil
}

// revokeSessions cuts the refresh-token chain so a deactivated account cannot
// outlive its current access token.
func (s *UserService) revokeSessions(ctx context.Context, userID string) {
	if err := s.accounts.RevokeUserRefreshTokens(ctx, userID); err != nil {
		s.logger.Warn("failed to revoke refresh tokens", zap.String("user_id", userID), zap.Error(err))
	}
}

func (s *UserService) audit(ctx context.Context, userID, action, resourceID string, oldValues, newValues map[string]interface{}) {
	var oldBody []byte
	if oldValues != nil {
		oldBody, _ = json.Marshal(oldValues)
	}
	newBody, _ := json.Marshal(newValues)
	if err := s.accounts.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     &userID,
		Action:     action,
		Resource:   "user",
		ResourceID: &resourceID,
		OldValues:  oldBody,
		NewValues:  newBody,
	}); err != nil {
		s.logger.Warn("failed to record user audit log", zap.Error(err))
	}
}

func profileAuditValues(profile *models.UserProfile) map[string]interface{} {
	return map[string]interface{}{
		"full_name":      profile.FullName,
		"learning_level": profile.LearningLevel,
		"bio":            profile.Bio,
		"is_active":      profile.IsActive,
	}
}
