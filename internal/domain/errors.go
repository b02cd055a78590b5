package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrRateLimited  = errors.New("rate limited")
	ErrUnauthorized = errors.New("unauthorized")

	ErrEmptyAddress     = errors.New("wallet address is required")
	ErrInvalidAddress   = errors.New("invalid wallet address format")
	ErrInvalidDateRange = errors.New("invalid date range")
	ErrNoSearch         = errors.New("no active search")
	ErrBusy             = errors.New("another request is in flight")
	ErrInvalidTab       = errors.New("unknown tab")
	ErrNotPaginated     = errors.New("tab has no further pages")
)

// ValidationError reports user input rejected before any network call.
type ValidationError struct {
	Field string
	Value string
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("%s %q: %v", e.Field, e.Value, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// IsValidation reports whether err is a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
