package dto

import "time"

type SendMessageRequest struct {
	Content string `json:"content" validate:"required,min=1,max=2000"`
}

type MessageResponse struct {
	ID        string    `json:"id"`
	MatchID   string    `json:"match_id"`
	SenderID  string    `json:"sender_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
