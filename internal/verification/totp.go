package verification

import (
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const totpIssuer = "favr"

// EnrollTOTP generates a fresh TOTP secret for the account. The caller stores
// the secret provisionally; mfa_enabled is recorded only after the first
// successful VerifyTOTP.
func EnrollTOTP(accountEmail string) (*otp.Key, error) {
	return totp.Generate(totp.GenerateOpts{
		Issuer:      totpIssuer,
		AccountName: accountEmail,
	})
}

// VerifyTOTP checks a 6-digit code against the stored secret.
func VerifyTOTP(code, secret string) bool {
	return totp.Validate(code, secret)
}
