package models

import (
	"time"

	"gorm.io/datatypes"
)

// VerificationEvent is an immutable fact: verification of Type succeeded for
// UserID at CreatedAt. At most one event per (user, type); inserts are
// deduplicated with ON CONFLICT DO NOTHING.
type VerificationEvent struct {
	ID        string           `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID    string           `gorm:"type:uuid;not null;index:idx_verification_user_type,unique,priority:1"`
	Type      VerificationType `gorm:"type:varchar(30);not null;index:idx_verification_user_type,unique,priority:2"`
	Metadata  datatypes.JSON   `gorm:"type:jsonb"`
	CreatedAt time.Time        `gorm:"default:now()"`
}

// Endorsement is the vouch behind an 'endorsement' verification event. One
// per (endorser, endorsee) pair, tied to a completed match.
type Endorsement struct {
	BaseModel
	EndorserID string  `gorm:"type:uuid;not null;index:idx_endorsement_pair,unique,priority:1"`
	EndorseeID string  `gorm:"type:uuid;not null;index:idx_endorsement_pair,unique,priority:2"`
	MatchID    string  `gorm:"type:uuid;not null"`
	Score      float64 `gorm:"not null"` // 1..5, feeds the reliability score
	Comment    string
}
