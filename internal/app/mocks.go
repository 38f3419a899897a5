package app

import (
	"context"

	"favr_backend/internal/email"
	"favr_backend/internal/logger"
	"favr_backend/internal/verification"
)

// Mock providers used until the real gateways are configured, and in local
// development.

type MockEmailProvider struct{}

func (m *MockEmailProvider) Send(e *email.Email) error { return nil }
func (m *MockEmailProvider) SendVerification(to string, token string) error {
	logger.Info("[mock email] verification token issued", "to", to, "token", token)
	return nil
}
func (m *MockEmailProvider) Close() error { return nil }

// MockOTPProvider accepts the fixed code 000000 for any phone number.
type MockOTPProvider struct{}

func (m *MockOTPProvider) SendCode(ctx context.Context, phone string, channel verification.PhoneChannel) error {
	logger.Info("[mock otp] code dispatched", "phone", phone, "channel", string(channel))
	return nil
}

func (m *MockOTPProvider) VerifyCode(ctx context.Context, phone string, code string) (bool, error) {
	return code == "000000", nil
}

// MockIdentityProvider trusts every token and echoes it as the subject.
type MockIdentityProvider struct{}

func (m *MockIdentityProvider) VerifyToken(ctx context.Context, provider string, idToken string) (string, error) {
	logger.Info("[mock identity] token accepted", "provider", provider)
	return "mock-subject:" + idToken, nil
}
