package dto

import "favr_backend/internal/models"

type UpdateProfileRequest struct {
	DisplayName    *string  `json:"display_name" validate:"omitempty,min=2,max=60"`
	Neighbourhood  *string  `json:"neighbourhood" validate:"omitempty,max=120"`
	Lat            *float64 `json:"lat" validate:"omitempty,latitude"`
	Lng            *float64 `json:"lng" validate:"omitempty,longitude"`
	SearchRadiusKm *float64 `json:"search_radius_km" validate:"omitempty,min=0.5,max=50"`
	Skills         []string `json:"skills" validate:"omitempty,max=20"`
	Availability   *string  `json:"availability" validate:"omitempty,oneof=now later this-week"`
	PhotosCount    *int     `json:"photos_count" validate:"omitempty,min=0,max=20"`
}

type ProfileResponse struct {
	UserID           string              `json:"user_id"`
	DisplayName      string              `json:"display_name"`
	Neighbourhood    string              `json:"neighbourhood,omitempty"`
	Lat              float64             `json:"lat"`
	Lng              float64             `json:"lng"`
	SearchRadiusKm   float64             `json:"search_radius_km"`
	Skills           []string            `json:"skills"`
	Availability     models.Availability `json:"availability"`
	Credits          int                 `json:"credits"`
	TasksCompleted   int                 `json:"tasks_completed"`
	ReliabilityScore float64             `json:"reliability_score"`
	TrustTier        models.TrustTier    `json:"trust_tier"`
}
