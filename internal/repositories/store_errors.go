package repositories

import (
	"errors"
	"strings"

	"favr_backend/pkg/apperrors"

	"gorm.io/gorm"
)

var transientPatterns = []string{
	"connection refused",
	"connection reset",
	"broken pipe",
	"bad connection",
	"timeout",
	"timed out",
	"temporary failure",
	"unexpected eof",
}

// wrapStoreError classifies a driver error at the store boundary. Misses stay
// gorm.ErrRecordNotFound for the service layer; network-class failures become
// transient (retryable); constraint violations and policy denials become
// fatal (never retried).
func wrapStoreError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return err // already classified upstream
	}

	msg := strings.ToLower(err.Error())
	for _, p := range transientPatterns {
		if strings.Contains(msg, p) {
			return apperrors.ErrTransientStore(err)
		}
	}
	// A duplicate key means the row already exists (a racing writer got there
	// first), which is a business outcome rather than a broken store.
	if strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint") {
		return apperrors.ErrAlreadyExists(err)
	}
	if strings.Contains(msg, "violates") || strings.Contains(msg, "constraint") ||
		strings.Contains(msg, "row-level security") {
		return apperrors.ErrFatalStore(err)
	}
	return err
}
