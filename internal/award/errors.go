package award

import "errors"

// Business-rule failures detected inside an award transaction. All of them
// abort the transaction; none leave partial writes behind.
var (
	ErrNotFound           = errors.New("not found")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrAlreadyLogged      = errors.New("entry already logged for this date")
	ErrAlreadyCompleted   = errors.New("milestone already completed")
	ErrAlreadyRedeemed    = errors.New("reward already redeemed")
	ErrInsufficientPoints = errors.New("insufficient points")
	ErrInvalidArgument    = errors.New("invalid argument")
)
