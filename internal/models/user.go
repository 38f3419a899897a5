package models

import "time"

type User struct {
	BaseModel
	Email             string     `gorm:"uniqueIndex;not null"`
	PasswordHash      string     `gorm:"not null"`
	Status            UserStatus `gorm:"type:varchar(20);default:'pending'"`
	VerificationToken string
	// MFASecret holds the TOTP secret between enroll and the first
	// successful verify; only after verify does mfa_enabled get recorded.
	MFASecret string

	// Relations
	Profile       *Profile            `gorm:"foreignKey:UserID"`
	RefreshTokens []RefreshToken      `gorm:"foreignKey:UserID"`
	Verifications []VerificationEvent `gorm:"foreignKey:UserID"`
}

type RefreshToken struct {
	BaseModel
	UserID    string    `gorm:"not null;index"`
	Token     string    `gorm:"not null;uniqueIndex"`
	ExpiresAt time.Time `gorm:"not null"`
}
