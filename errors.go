package compass

import (
	"github.com/goliatone/go-errors"
)

const (
	textCodeSessionInvalid        = "SESSION_INVALID"
	textCodeForbidden             = "FORBIDDEN"
	textCodeJustificationRequired = "JUSTIFICATION_REQUIRED"
	textCodeInvalidStatus         = "INVALID_STATUS_VALUE"
	textCodeDuplicateName         = "DUPLICATE_NAME"
	textCodeNotFound              = "NOT_FOUND"
)

// ErrUnauthorized is returned for 401 responses and invalid sessions. Any
// authenticated call surfacing this error clears the session.
var ErrUnauthorized = errors.New("authentication required", errors.CategoryAuth).
	WithTextCode(textCodeSessionInvalid).
	WithCode(errors.CodeUnauthorized)

// ErrForbidden is returned when the acting user lacks the required
// capability (e.g. non superuser touching a controlled status field).
var ErrForbidden = errors.New("operation requires administrator", errors.CategoryAuthz).
	WithTextCode(textCodeForbidden).
	WithCode(errors.CodeForbidden)

// ErrJustificationRequired is returned when a tracked status field changes
// without a justification. Caught locally by forms; never a retryable
// server failure.
var ErrJustificationRequired = errors.New("status change requires a justification", errors.CategoryValidation).
	WithTextCode(textCodeJustificationRequired).
	WithCode(errors.CodeBadRequest)

// ErrInvalidStatusValue is returned when a value is outside the field's
// enumeration.
var ErrInvalidStatusValue = errors.New("value is not a member of the status enumeration", errors.CategoryValidation).
	WithTextCode(textCodeInvalidStatus).
	WithCode(errors.CodeBadRequest)

// ErrNotFound is returned when a catalog object does not exist.
var ErrNotFound = errors.New("object not found", errors.CategoryNotFound).
	WithTextCode(textCodeNotFound).
	WithCode(errors.CodeNotFound)

// ErrDuplicateName is returned for unique-name conflicts (solutions,
// categories, groups, tags, assets).
var ErrDuplicateName = errors.New("name already in use", errors.CategoryConflict).
	WithTextCode(textCodeDuplicateName).
	WithCode(errors.CodeConflict)

// IsUnauthorized reports whether err represents an invalid session (401).
func IsUnauthorized(err error) bool {
	if err == nil {
		return false
	}
	var rich *errors.Error
	if errors.As(err, &rich) {
		return rich.Category == errors.CategoryAuth
	}
	return false
}

// IsValidation reports whether err was rejected locally or by the server as
// invalid input (not retryable without correction).
func IsValidation(err error) bool {
	if err == nil {
		return false
	}
	var rich *errors.Error
	if errors.As(err, &rich) {
		return rich.Category == errors.CategoryValidation || rich.Category == errors.CategoryBadInput
	}
	return false
}

// IsRetryable reports whether err is a transient network/server failure:
// state should be preserved so the caller can retry.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var rich *errors.Error
	if errors.As(err, &rich) {
		switch rich.Category {
		case errors.CategoryAuth, errors.CategoryAuthz,
			errors.CategoryValidation, errors.CategoryBadInput,
			errors.CategoryNotFound, errors.CategoryConflict:
			return false
		}
		return true
	}
	// Unclassified errors (transport failures) are treated as transient.
	return true
}
