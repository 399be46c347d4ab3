package models

import "errors"

// Stable upstream failure categories. Callers distinguish these with
// errors.Is so the front-end can render an appropriate message; anything else
// is a generic upstream failure.
var (
	// ErrMissingAPIKey indicates the provider was constructed without a credential.
	ErrMissingAPIKey = errors.New("api key is not configured")

	// ErrAuthentication indicates the upstream rejected the credential.
	ErrAuthentication = errors.New("authentication with completion service failed")

	// ErrQuotaExceeded indicates the upstream rate or usage limit was hit.
	ErrQuotaExceeded = errors.New("completion service quota exceeded")

	// ErrEmptyReply indicates the upstream returned no usable text.
	ErrEmptyReply = errors.New("completion service returned no reply")
)

// CategoryForStatus maps an upstream HTTP status to a category error, or nil
// for statuses with no dedicated category.
func CategoryForStatus(status int) error {
	switch status {
	case 401, 403:
		return ErrAuthentication
	case 429:
		return ErrQuotaExceeded
	default:
		return nil
	}
}
