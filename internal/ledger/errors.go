package ledger

import "errors"

// Sentinel errors for every way a ledger operation can be refused. Callers
// match with errors.Is; the message carries the offending entity/value.
var (
	ErrNotFound        = errors.New("record not found")
	ErrInvalidQuantity = errors.New("invalid quantity")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidDate     = errors.New("invalid date")
	ErrInvalidEdit     = errors.New("invalid edit")
)
