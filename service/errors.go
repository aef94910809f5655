package service

import "errors"

// Domain rejection reasons. All are expected, request-scoped conditions; the
// HTTP layer maps them to status codes with errors.Is. None leave partial
// state behind: validation and lookup failures happen before any mutation,
// and mutations run inside a unit of work.
var (
	// ErrInvalidAmount indicates a bet amount that is not a positive number
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrInvalidOption indicates a chosen option outside home_win/draw/away_win
	ErrInvalidOption = errors.New("invalid chosen option")

	// ErrInvalidOdds indicates event odds that are missing or not above 1.0
	ErrInvalidOdds = errors.New("all odds must be greater than 1.0")

	// ErrInvalidResult indicates a final result outside the outcome vocabulary
	ErrInvalidResult = errors.New("invalid final result")

	// ErrInsufficientBalance indicates the stake exceeds the user's balance
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrEventClosed indicates a placement against an event no longer open
	ErrEventClosed = errors.New("event is closed")

	// ErrEventAlreadyClosed indicates a close of an event already closed;
	// the final result is declared exactly once and never overwritten
	ErrEventAlreadyClosed = errors.New("event already closed")

	// ErrEventNotResolvable indicates settlement of an event without a final result
	ErrEventNotResolvable = errors.New("event has no final result")

	// ErrEventNotOpen indicates a destructive admin operation on a closed event
	ErrEventNotOpen = errors.New("event is not open")

	// ErrEventHasBets indicates a delete of an event holding staked bets;
	// the stakes are debited money and the event must be closed instead
	ErrEventHasBets = errors.New("event has bets placed against it")

	// ErrUserNotFound / ErrEventNotFound / ErrBetNotFound are lookup failures
	ErrUserNotFound  = errors.New("user not found")
	ErrEventNotFound = errors.New("event not found")
	ErrBetNotFound   = errors.New("bet not found")

	// ErrUsernameTaken indicates a registration against an existing username
	ErrUsernameTaken = errors.New("username already exists")

	// ErrInvalidCredentials indicates a failed login; deliberately does not
	// distinguish unknown user from wrong password
	ErrInvalidCredentials = errors.New("invalid credentials")
)
