package dto

import (
	"time"

	"favr_backend/internal/models"
)

type CreateTaskRequest struct {
	Title        string     `json:"title" validate:"required,min=3,max=120"`
	Description  string     `json:"description" validate:"max=2000"`
	Category     string     `json:"category" validate:"required"`
	Urgency      string     `json:"urgency" validate:"omitempty,oneof=urgent normal flexible"`
	WindowStart  *time.Time `json:"window_start"`
	WindowEnd    *time.Time `json:"window_end"`
	EffortLevel  string     `json:"effort_level" validate:"omitempty,oneof=light moderate heavy"`
	PeopleNeeded int        `json:"people_needed" validate:"omitempty,min=1,max=10"`
	CreditReward int        `json:"credit_reward" validate:"omitempty,min=0,max=100"`
	Lat          float64    `json:"lat" validate:"omitempty,latitude"`
	Lng          float64    `json:"lng" validate:"omitempty,longitude"`
}

type ListTasksRequest struct {
	Category string `form:"category" json:"category"`
	Urgency  string `form:"urgency" json:"urgency" validate:"omitempty,oneof=urgent normal flexible"`
	// Nearby restricts results to the caller's search radius and skills.
	Nearby bool `form:"nearby" json:"nearby"`
	Page   int  `form:"page" json:"page"`
	Limit  int  `form:"limit" json:"limit" validate:"omitempty,min=1,max=100"`
}

type TaskResponse struct {
	ID           string             `json:"id"`
	OwnerID      string             `json:"owner_id"`
	Title        string             `json:"title"`
	Description  string             `json:"description"`
	Category     string             `json:"category"`
	Urgency      models.TaskUrgency `json:"urgency"`
	Status       models.TaskStatus  `json:"status"`
	HelperID     *string            `json:"helper_id,omitempty"`
	WindowStart  *time.Time         `json:"window_start,omitempty"`
	WindowEnd    *time.Time         `json:"window_end,omitempty"`
	EffortLevel  string             `json:"effort_level,omitempty"`
	PeopleNeeded int                `json:"people_needed"`
	CreditReward int                `json:"credit_reward"`
	Lat          float64            `json:"lat"`
	Lng          float64            `json:"lng"`
	DistanceKm   *float64           `json:"distance_km,omitempty"`
	CreatedAt    time.Time          `json:"created_at"`
}
