package sequence

import "errors"

var (
	ErrSessionFull   = errors.New("session is full")
	ErrCardNotInHand = errors.New("card not in hand")
	ErrHandIndex     = errors.New("hand index out of range")
	ErrOutOfBoard    = errors.New("coordinate outside the board")
	ErrCellOccupied  = errors.New("cell already occupied")
	ErrCellEmpty     = errors.New("cell has no peg to remove")
	ErrCardMismatch  = errors.New("card does not match the board cell")
	ErrUnknownPlayer = errors.New("player not found")
)

// ConfigurationError reports a ruleset that cannot produce a consistent board
// or deck. It is raised while building a session and never by player input.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Reason
}
