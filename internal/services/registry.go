package services

import (
	"context"
	"errors"
	"time"

	"favr_backend/internal/config"
	"favr_backend/internal/email"
	"favr_backend/internal/feed"
	"favr_backend/internal/repositories"
	"favr_backend/internal/retry"
	"favr_backend/internal/verification"
	"favr_backend/pkg/apperrors"

	"gorm.io/gorm"
)

// ServiceContainer wires repositories into services once at startup; handlers
// pull what they need from here.
type ServiceContainer struct {
	Auth         *AuthService
	Verification *VerificationService
	Profile      *ProfileService
	Task         *TaskService
	Claim        *ClaimService
	Match        *MatchService
	Message      *MessageService

	Users repositories.UserRepository
	Tasks repositories.TaskRepository
}

func NewServiceContainer(
	db *gorm.DB,
	mailer email.Provider,
	otp verification.OTPProvider,
	identity verification.IdentityProvider,
	publisher feed.Publisher,
) *ServiceContainer {
	users := repositories.NewUserRepository(db)
	profiles := repositories.NewProfileRepository(db)
	tasks := repositories.NewTaskRepository(db)
	matches := repositories.NewMatchRepository(db)
	events := repositories.NewVerificationRepository(db)
	messages := repositories.NewMessageRepository(db)

	retryCfg := retryConfigFromApp(config.GetConfig())

	verificationSvc := NewVerificationService(users, profiles, events, matches, otp, identity)

	return &ServiceContainer{
		Auth:         NewAuthService(users, profiles, mailer),
		Verification: verificationSvc,
		Profile:      NewProfileService(profiles, users, verificationSvc),
		Task:         NewTaskService(tasks, matches, profiles, events, publisher),
		Claim:        NewClaimService(tasks, events, messages, publisher, retryCfg),
		Match:        NewMatchService(matches, profiles, events, publisher),
		Message:      NewMessageService(messages, matches, events, publisher),

		Users: users,
		Tasks: tasks,
	}
}

// mapNotFound lifts repository not-found sentinels into the typed 404 error
// so a miss never surfaces as a system failure. Errors of any other shape
// pass through unchanged.
func mapNotFound(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, repositories.ErrTaskNotFound),
		errors.Is(err, repositories.ErrMatchNotFound),
		errors.Is(err, repositories.ErrProfileNotFound),
		errors.Is(err, repositories.ErrUserNotFound):
		return apperrors.ErrNotFound(err)
	}
	return err
}

// boundCall caps a call to the store or an external collaborator so a dead
// connection fails the request instead of hanging it.
func boundCall(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, config.GetConfig().CallTimeout())
}

func retryConfigFromApp(cfg *config.Config) retry.Config {
	out := retry.DefaultConfig()
	if cfg.Retry.MaxAttempts > 0 {
		out.MaxAttempts = cfg.Retry.MaxAttempts
	}
	if cfg.Retry.InitialDelayMs > 0 {
		out.InitialDelay = time.Duration(cfg.Retry.InitialDelayMs) * time.Millisecond
	}
	if cfg.Retry.Multiplier > 0 {
		out.Multiplier = cfg.Retry.Multiplier
	}
	if cfg.Retry.MaxDelayMs > 0 {
		out.MaxDelay = time.Duration(cfg.Retry.MaxDelayMs) * time.Millisecond
	}
	return out
}
