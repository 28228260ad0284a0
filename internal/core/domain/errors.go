package domain

import "errors"

var (
	ErrRoleNotFound    = errors.New("role not found")
	ErrBouquetNotFound = errors.New("bouquet not found")
	ErrProfileNotFound = errors.New("profile not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrRecordNotFound  = errors.New("record not found")

	ErrReferenced         = errors.New("still referenced by one or more profiles")
	ErrDuplicate          = errors.New("already exists")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrQuotaExceeded      = errors.New("bouquet limit reached")
	ErrForbidden          = errors.New("access forbidden")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidToken       = errors.New("invalid or expired token")

	// ErrIntegrity marks stored data that references a registry row which no
	// longer exists. It is a server fault, never a client lookup miss.
	ErrIntegrity = errors.New("registry integrity violation")
)

// ValidationError reports a malformed definition or input. It is surfaced to
// the caller as-is and never silently corrected.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Reason
	}
	return "validation failed: " + e.Field + ": " + e.Reason
}

// IsValidation reports whether err wraps a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsNotFound reports whether err is one of the registry or profile lookups
// that found nothing.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrRoleNotFound) ||
		errors.Is(err, ErrBouquetNotFound) ||
		errors.Is(err, ErrProfileNotFound) ||
		errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrRecordNotFound)
}
