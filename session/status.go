package session

import (
	"errors"
	"fmt"
)

type Status int

const (
	AcceptingConnections Status = iota
	Playing
	Finished
)

func (s Status) String() string {
	switch s {
	case AcceptingConnections:
		return "ACCEPTING_CONNECTIONS"
	case Playing:
		return "PLAYING"
	case Finished:
		return "FINISHED"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

var (
	ErrNotAccepting    = errors.New("server not accepting connections")
	ErrGameStarted     = errors.New("game previously started")
	ErrNotPlaying      = errors.New("game is not being played")
	ErrNotYourTurn     = errors.New("not your turn")
	ErrNotLoggedIn     = errors.New("login required")
	ErrAlreadyLoggedIn = errors.New("already logged in")
	ErrStopped         = errors.New("session stopped")
)

// WaitNotEnoughPlayers is the reason sent when a start is requested below the
// minimum number of players.
const WaitNotEnoughPlayers = "Not enough players"
