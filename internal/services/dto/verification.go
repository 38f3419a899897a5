package dto

import "favr_backend/internal/models"

type ConfirmEmailRequest struct {
	Token string `json:"token" validate:"required"`
}

type PhoneSendRequest struct {
	Phone   string `json:"phone" validate:"required,e164"`
	Channel string `json:"channel" validate:"required,oneof=sms whatsapp"`
}

type PhoneVerifyRequest struct {
	Phone   string `json:"phone" validate:"required,e164"`
	Channel string `json:"channel" validate:"required,oneof=sms whatsapp"`
	Code    string `json:"code" validate:"required,len=6"`
}

type SocialConnectRequest struct {
	Provider string `json:"provider" validate:"required,oneof=google apple"`
	IDToken  string `json:"id_token" validate:"required"`
}

type MFAEnrollResponse struct {
	Secret string `json:"secret"`
	URL    string `json:"url"` // otpauth:// provisioning URL
}

type MFAVerifyRequest struct {
	Code string `json:"code" validate:"required,len=6"`
}

type EndorseRequest struct {
	Score   float64 `json:"score" validate:"required,min=1,max=5"`
	Comment string  `json:"comment" validate:"max=500"`
}

type VerificationStatusResponse struct {
	Tier     models.TrustTier `json:"tier"`
	Verified []string         `json:"verified"`
	// MissingForNextTier collapses each OR-group to one representative.
	MissingForNextTier []string `json:"missing_for_next_tier"`
}
