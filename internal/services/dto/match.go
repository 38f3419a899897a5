package dto

import (
	"time"

	"favr_backend/internal/models"
)

type AdvanceMatchRequest struct {
	Status string `json:"status" validate:"required,oneof=accepted arrived completed cancelled"`
}

type MatchResponse struct {
	ID        string             `json:"id"`
	TaskID    string             `json:"task_id"`
	HelperID  string             `json:"helper_id"`
	Status    models.MatchStatus `json:"status"`
	Task      *TaskResponse      `json:"task,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
}
