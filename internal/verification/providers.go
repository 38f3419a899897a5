package verification

import "context"

// PhoneChannel selects the OTP transport.
type PhoneChannel string

const (
	ChannelSMS      PhoneChannel = "sms"
	ChannelWhatsApp PhoneChannel = "whatsapp"
)

// OTPProvider dispatches and checks one-time codes. The core consumes only
// the boolean outcome; the SMS/WhatsApp gateway lives behind this interface.
type OTPProvider interface {
	SendCode(ctx context.Context, phone string, channel PhoneChannel) error
	VerifyCode(ctx context.Context, phone string, code string) (bool, error)
}

// IdentityProvider checks a social sign-in token (Google / Apple) and returns
// the provider-side subject on success.
type IdentityProvider interface {
	VerifyToken(ctx context.Context, provider string, idToken string) (subject string, err error)
}
