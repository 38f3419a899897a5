package apperrors

import (
	"fmt"
	"net/http"
)

// Factories and predefined variables for the favour-marketplace domain.

// ErrNotFound converts a repository miss (gorm.ErrRecordNotFound etc.) into
// a 404 AppError.
func ErrNotFound(err error) *AppError {
	return Wrap(err, CodeNotFound, "resource", "Resource not found", http.StatusNotFound)
}

func ErrAlreadyExists(err error) *AppError {
	return Wrap(err, CodeAlreadyExists, "resource", "Resource already exists", http.StatusConflict)
}

// ErrInvalidTransition names both states of a rejected state-machine step.
func ErrInvalidTransition(entity, from, to string) *AppError {
	return New(
		CodeStateConflict,
		entity,
		fmt.Sprintf("Transition from '%s' to '%s' is not allowed", from, to),
		http.StatusConflict,
	)
}

// ErrTransientStore marks a network/timeout class store failure. Callers may
// retry it; the original error stays wrapped for logging.
func ErrTransientStore(err error) *AppError {
	return Wrap(err, CodeTransientStore, "store", "Temporary store failure, please try again", http.StatusServiceUnavailable)
}

// ErrFatalStore marks a constraint violation or policy denial that retrying
// cannot fix.
func ErrFatalStore(err error) *AppError {
	return Wrap(err, CodeFatalStore, "store", "Store rejected the operation", http.StatusInternalServerError)
}

// ErrTierInsufficient is the TrustGate denial. Details carry the missing
// verification types so the client can point the user at the next step.
func ErrTierInsufficient(action string, missing []string) *AppError {
	return New(
		CodeTierInsufficient,
		"trust",
		fmt.Sprintf("Verify your account to %s", action),
		http.StatusForbidden,
	).WithDetails(map[string]interface{}{"missing_verifications": missing})
}

// --- Claims ---

// ErrTaskAlreadyMatched is a final outcome, not a failure: another helper won
// the claim. Never retried.
var ErrTaskAlreadyMatched = New(
	CodeAlreadyMatched,
	"claim",
	"This task is no longer available",
	http.StatusConflict,
)

// ErrTaskUnavailable - the task is not open for claims (cancelled, completed
// or already in progress).
var ErrTaskUnavailable = New(
	CodeStateConflict,
	"claim",
	"This task is not open for claims",
	http.StatusConflict,
)

// ErrOwnTaskClaim - owners cannot claim their own tasks.
var ErrOwnTaskClaim = New(
	CodeInvalidOperation,
	"claim",
	"You cannot claim your own task",
	http.StatusBadRequest,
)

// --- Tasks & Matches ---

var ErrNotTaskOwner = New(
	CodeForbidden,
	"task",
	"Only the task owner may perform this operation",
	http.StatusForbidden,
)

var ErrNotMatchParticipant = New(
	CodeForbidden,
	"match",
	"You are not a participant of this match",
	http.StatusForbidden,
)

var ErrNotMatchHelper = New(
	CodeForbidden,
	"match",
	"Only the helper may advance this match",
	http.StatusForbidden,
)

// --- Auth & Users ---

var ErrEmailAlreadyExists = New(
	CodeAlreadyExists,
	"auth",
	"Email already in use",
	http.StatusConflict,
)

var ErrInvalidCredentials = New(
	CodeInvalidCredentials,
	"auth",
	"Invalid email or password",
	http.StatusUnauthorized,
)

var ErrInvalidToken = New(
	CodeInvalidToken,
	"auth",
	"Invalid or expired token",
	http.StatusUnauthorized,
)

var ErrWeakPassword = New(
	CodeValidationFailed,
	"validation",
	"Password is too weak. Minimum 8 characters required.",
	http.StatusBadRequest,
)

// --- Verification ---

var ErrVerificationFailed = New(
	CodeInvalidOperation,
	"verification",
	"Verification check did not pass",
	http.StatusBadRequest,
)

var ErrSelfEndorsement = New(
	CodeInvalidOperation,
	"verification",
	"You cannot endorse yourself",
	http.StatusBadRequest,
)

var ErrEndorsementNotEarned = New(
	CodeInvalidOperation,
	"verification",
	"Endorsements require a completed task together",
	http.StatusBadRequest,
)
