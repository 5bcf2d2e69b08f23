package domain

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrAlreadyFinalized = errors.New("already finalized")
	ErrProviderFailure  = errors.New("provider failure")
)
