package handlers

import (
	"favr_backend/internal/services"
	"favr_backend/internal/validator"
)

// AppHandlers holds every HTTP handler of the application.
type AppHandlers struct {
	AuthHandler         *AuthHandler
	VerificationHandler *VerificationHandler
	ProfileHandler      *ProfileHandler
	TaskHandler         *TaskHandler
	MatchHandler        *MatchHandler
}

func NewAppHandlers(container *services.ServiceContainer, v *validator.Validator) *AppHandlers {
	base := NewBaseHandler(v)

	return &AppHandlers{
		AuthHandler:         NewAuthHandler(base, container.Auth),
		VerificationHandler: NewVerificationHandler(base, container.Verification),
		ProfileHandler:      NewProfileHandler(base, container.Profile),
		TaskHandler:         NewTaskHandler(base, container.Task, container.Claim),
		MatchHandler:        NewMatchHandler(base, container.Match, container.Message),
	}
}
