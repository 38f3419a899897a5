package models

type UserStatus string
type TaskStatus string
type MatchStatus string
type TaskUrgency string
type Availability string
type TrustTier string
type VerificationType string

const (
	UserStatusPending   UserStatus = "pending"
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"

	TaskStatusOpen       TaskStatus = "open"
	TaskStatusMatched    TaskStatus = "matched"
	TaskStatusInProgress TaskStatus = "in-progress"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusCancelled  TaskStatus = "cancelled"

	MatchStatusPending   MatchStatus = "pending"
	MatchStatusAccepted  MatchStatus = "accepted"
	MatchStatusArrived   MatchStatus = "arrived"
	MatchStatusCompleted MatchStatus = "completed"
	MatchStatusCancelled MatchStatus = "cancelled"

	TaskUrgencyUrgent   TaskUrgency = "urgent"
	TaskUrgencyNormal   TaskUrgency = "normal"
	TaskUrgencyFlexible TaskUrgency = "flexible"

	AvailabilityNow      Availability = "now"
	AvailabilityLater    Availability = "later"
	AvailabilityThisWeek Availability = "this-week"

	Tier0 TrustTier = "tier_0"
	Tier1 TrustTier = "tier_1"
	Tier2 TrustTier = "tier_2"

	VerificationEmail          VerificationType = "email"
	VerificationPhoneSMS       VerificationType = "phone_sms"
	VerificationPhoneWhatsApp  VerificationType = "phone_whatsapp"
	VerificationSocialGoogle   VerificationType = "social_google"
	VerificationSocialApple    VerificationType = "social_apple"
	VerificationPhotosComplete VerificationType = "photos_complete"
	VerificationEndorsement    VerificationType = "endorsement"
	VerificationMFAEnabled     VerificationType = "mfa_enabled"
)
