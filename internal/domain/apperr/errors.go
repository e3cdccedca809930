// Package apperr holds the error categories shared by services and adapters.
package apperr

import "errors"

var (
	ErrValidation  = errors.New("validation error")
	ErrNotFound    = errors.New("not found")
	ErrDuplicate   = errors.New("duplicate action")
	ErrForbidden   = errors.New("forbidden")
	ErrNotApproved = errors.New("profile is not approved")
	ErrRateLimited = errors.New("rate limited")
)

// RetryAfterError is a rate-limit rejection that knows when to try again.
type RetryAfterError struct {
	Seconds int64
}

func (e RetryAfterError) Error() string {
	return "rate limited"
}

func (e RetryAfterError) Unwrap() error {
	return ErrRateLimited
}

// RetryAfter returns the wait carried by err, or zero.
func RetryAfter(err error) int64 {
	var ra RetryAfterError
	if errors.As(err, &ra) {
		if ra.Seconds <= 0 {
			return 1
		}
		return ra.Seconds
	}
	return 0
}
