package account

import "errors"

// Domain errors returned by the service and by every Repository backend.
var (
	ErrNotFound       = errors.New("player not found")
	ErrBadCredentials = errors.New("player name and pin code do not match")
	ErrNameTaken      = errors.New("player name already taken")
	ErrInvalidName    = errors.New("invalid player name")
	ErrInvalidBet     = errors.New("invalid bet amount")

	// ErrUnverified means the store could not say whether a name is free.
	ErrUnverified = errors.New("player record could not be checked")
)
