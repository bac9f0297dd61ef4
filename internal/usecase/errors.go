package usecase

type ErrNotFound string

func (e ErrNotFound) Error() string { return string(e) + " not found" }

type ErrConflict string

func (e ErrConflict) Error() string { return string(e) }

type ErrBadRequest string

func (e ErrBadRequest) Error() string { return string(e) }

type ErrUnauthorized string

func (e ErrUnauthorized) Error() string { return string(e) }

// ErrNotConfigured marks an operation that cannot run because a required
// secret or setting is absent. Verification is never silently skipped.
type ErrNotConfigured string

func (e ErrNotConfigured) Error() string { return string(e) + " not configured" }

// ErrUnavailable marks a retryable upstream failure; the order is left
// untouched and the caller may try again.
type ErrUnavailable string

func (e ErrUnavailable) Error() string { return string(e) }
