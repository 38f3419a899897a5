package services

import (
	"context"
	"errors"
	"time"

	"favr_backend/internal/auth"
	"favr_backend/internal/email"
	"favr_backend/internal/logger"
	"favr_backend/internal/models"
	"favr_backend/internal/repositories"
	"favr_backend/internal/services/dto"
	"favr_backend/pkg/apperrors"

	"github.com/google/uuid"
)

const refreshTokenTTL = 30 * 24 * time.Hour

type AuthService struct {
	users    repositories.UserRepository
	profiles repositories.ProfileRepository
	mailer   email.Provider
}

func NewAuthService(
	users repositories.UserRepository,
	profiles repositories.ProfileRepository,
	mailer email.Provider,
) *AuthService {
	return &AuthService{users: users, profiles: profiles, mailer: mailer}
}

// Register creates the user and their profile, then sends the verification
// email. The email is best-effort: signup succeeds even if the mailer is down,
// and the token can be re-sent later.
func (s *AuthService) Register(ctx context.Context, req dto.RegisterRequest) (*dto.LoginResponse, error) {
	if err := auth.ValidatePassword(req.Password); err != nil {
		return nil, apperrors.ErrWeakPassword
	}

	if _, err := s.users.FindByEmail(req.Email); err == nil {
		return nil, apperrors.ErrEmailAlreadyExists
	} else if !errors.Is(err, repositories.ErrUserNotFound) {
		return nil, err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:             req.Email,
		PasswordHash:      hash,
		Status:            models.UserStatusPending,
		VerificationToken: uuid.NewString(),
	}
	if err := s.users.Create(user); err != nil {
		return nil, err
	}

	// Race-safe upsert: a duplicate signup attempt converges on one profile.
	_, err = s.profiles.EnsureForUser(&models.Profile{
		UserID:      user.ID,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		return nil, err
	}

	if err := s.mailer.SendVerification(user.Email, user.VerificationToken); err != nil {
		logger.CtxWarn(ctx, "verification email failed, signup continues",
			"user_id", user.ID, "error", err)
	}

	return s.issueTokens(user.ID)
}

func (s *AuthService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.users.FindByEmail(req.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		return nil, apperrors.ErrInvalidCredentials
	}
	if user.Status == models.UserStatusSuspended {
		return nil, apperrors.ErrInvalidCredentials
	}

	return s.issueTokens(user.ID)
}

// Refresh rotates the refresh token: the presented token is consumed and a new
// pair is issued.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error) {
	stored, err := s.users.FindRefreshToken(refreshToken)
	if err != nil {
		return nil, apperrors.ErrInvalidToken
	}
	if time.Now().After(stored.ExpiresAt) {
		_ = s.users.DeleteRefreshToken(refreshToken)
		return nil, apperrors.ErrInvalidToken
	}

	if err := s.users.DeleteRefreshToken(refreshToken); err != nil {
		return nil, err
	}
	return s.issueTokens(stored.UserID)
}

// Logout revokes every refresh token the user holds.
func (s *AuthService) Logout(ctx context.Context, userID string) error {
	return s.users.DeleteUserRefreshTokens(userID)
}

func (s *AuthService) issueTokens(userID string) (*dto.LoginResponse, error) {
	access, err := auth.GenerateToken(userID)
	if err != nil {
		return nil, err
	}

	refresh := &models.RefreshToken{
		UserID:    userID,
		Token:     uuid.NewString(),
		ExpiresAt: time.Now().Add(refreshTokenTTL),
	}
	if err := s.users.CreateRefreshToken(refresh); err != nil {
		return nil, err
	}

	return &dto.LoginResponse{
		UserID:       userID,
		AccessToken:  access,
		RefreshToken: refresh.Token,
	}, nil
}
