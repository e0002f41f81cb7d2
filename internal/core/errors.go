package core

import (
	"errors"
	"fmt"
)

// Error kinds. Every public operation returns a tagged, recoverable error;
// nothing in this package aborts the process.
var (
	ErrValidation   = errors.New("validation")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
	ErrRateLimited  = errors.New("rate limited")
)

// Rejection carries a user-facing reason while staying matchable with
// errors.Is against one of the kinds above.
type Rejection struct {
	Kind   error
	Reason string
}

func (r *Rejection) Error() string { return r.Reason }
func (r *Rejection) Unwrap() error { return r.Kind }

func rejectf(kind error, format string, args ...any) error {
	return &Rejection{Kind: kind, Reason: fmt.Sprintf(format, args...)}
}

func Validationf(format string, args ...any) error {
	return rejectf(ErrValidation, format, args...)
}

func Conflictf(format string, args ...any) error {
	return rejectf(ErrConflict, format, args...)
}

func Unauthorizedf(format string, args ...any) error {
	return rejectf(ErrUnauthorized, format, args...)
}

func NotFoundf(format string, args ...any) error {
	return rejectf(ErrNotFound, format, args...)
}

func RateLimitedf(format string, args ...any) error {
	return rejectf(ErrRateLimited, format, args...)
}

// Reason extracts the user-facing reason string for surfacing to the
// originating connection.
func Reason(err error) string {
	var r *Rejection
	if errors.As(err, &r) {
		return r.Reason
	}
	return err.Error()
}
