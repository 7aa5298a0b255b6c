package repository

import "errors"

// Sentinel kinds for scoring store errors.
var (
	ErrNotFound         = errors.New("user not found")
	ErrDuplicateSignIn  = errors.New("already signed in today")
	ErrInvalidAward     = errors.New("invalid award")
	ErrInvalidLimit     = errors.New("invalid limit")
	ErrStoreUnavailable = errors.New("store unavailable")
)
