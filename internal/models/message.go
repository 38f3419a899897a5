package models

import "time"

// Message is one chat line within a match. Append-only.
type Message struct {
	ID        string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	MatchID   string `gorm:"type:uuid;not null;index"`
	SenderID  string `gorm:"type:uuid;not null;index"`
	Content   string `gorm:"type:text;not null"`
	CreatedAt time.Time
}
