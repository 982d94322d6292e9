package communication

import (
	"github.com/luca-patrignani/sequence/domain/sequence"
)

// Message is any value carried on the wire. Type is the value of the "type"
// field of its JSON encoding.
type Message interface {
	Type() string
}

// Request is a message sent by a client to the server. The set is closed: only
// the types of this package implement it.
type Request interface {
	Message
	request()
}

// Event is a message sent by the server to one or more clients.
type Event interface {
	Message
	event()
}

const (
	TypeLogin         = "login"
	TypeRequestStart  = "request_start"
	TypePlayCard      = "play_card"
	TypeDiscardCard   = "discard_card"
	TypeChat          = "chat"
	TypeBye           = "bye"
	TypeLogged        = "logged"
	TypeGameStarted   = "game_started"
	TypeCardDealt     = "card_dealt"
	TypeCardPlayed    = "card_played"
	TypeDiscardedCard = "discarded_card"
	TypeTurnStart     = "turn_start"
	TypeGameOver      = "game_over"
	TypeError         = "error"
	TypeWait          = "wait"
)

type Login struct {
	Name string `json:"name" validate:"max=64"`
}

type RequestStart struct{}

type PlayCard struct {
	X             int           `json:"x" validate:"min=0"`
	Y             int           `json:"y" validate:"min=0"`
	CardCode      sequence.Code `json:"card_code" validate:"required,max=8"`
	HandCardIndex int           `json:"hand_card_index" validate:"min=0"`
}

type DiscardCard struct {
	HandIndex int `json:"hand_index" validate:"min=0"`
}

type Chat struct {
	Text string `json:"text" validate:"required,max=512"`
}

type Bye struct{}

func (Login) Type() string        { return TypeLogin }
func (RequestStart) Type() string { return TypeRequestStart }
func (PlayCard) Type() string     { return TypePlayCard }
func (DiscardCard) Type() string  { return TypeDiscardCard }
func (Chat) Type() string         { return TypeChat }
func (Bye) Type() string          { return TypeBye }

func (Login) request()        {}
func (RequestStart) request() {}
func (PlayCard) request()     {}
func (DiscardCard) request()  {}
func (Chat) request()         {}
func (Bye) request()          {}

type Logged struct {
	ID   sequence.PlayerID `json:"id"`
	Name string            `json:"name"`
}

type GameStarted struct {
	CardAssignment map[string]sequence.Code     `json:"card_assignment"`
	IDToName       map[sequence.PlayerID]string `json:"id_to_name"`
	IDSequence     []sequence.PlayerID          `json:"id_sequence"`
}

// CardDealt is sent only to the player receiving the card.
type CardDealt struct {
	CardCode sequence.Code `json:"card_code"`
}

type CardPlayed struct {
	ID           sequence.PlayerID `json:"id"`
	X            int               `json:"x"`
	Y            int               `json:"y"`
	HandCardCode sequence.Code     `json:"hand_card_code"`
}

type DiscardedCard struct {
	ID       sequence.PlayerID `json:"id"`
	CardCode sequence.Code     `json:"card_code"`
}

type TurnStart struct {
	TurnNumber int               `json:"turn_number"`
	ID         sequence.PlayerID `json:"id"`
}

type GameOver struct {
	WinningID sequence.PlayerID `json:"winning_id"`
}

type Error struct {
	Msg string `json:"msg"`
}

type Wait struct {
	Reason string `json:"reason"`
}

// ChatRelay is a chat line forwarded to every connection, tagged with its author.
type ChatRelay struct {
	ID   sequence.PlayerID `json:"id"`
	Name string            `json:"name"`
	Text string            `json:"text"`
}

func (Logged) Type() string        { return TypeLogged }
func (GameStarted) Type() string   { return TypeGameStarted }
func (CardDealt) Type() string     { return TypeCardDealt }
func (CardPlayed) Type() string    { return TypeCardPlayed }
func (DiscardedCard) Type() string { return TypeDiscardedCard }
func (TurnStart) Type() string     { return TypeTurnStart }
func (GameOver) Type() string      { return TypeGameOver }
func (Error) Type() string         { return TypeError }
func (Wait) Type() string          { return TypeWait }
func (ChatRelay) Type() string     { return TypeChat }

func (Logged) event()        {}
func (GameStarted) event()   {}
func (CardDealt) event()     {}
func (CardPlayed) event()    {}
func (DiscardedCard) event() {}
func (TurnStart) event()     {}
func (GameOver) event()      {}
func (Error) event()         {}
func (Wait) event()          {}
func (ChatRelay) event()     {}

// NewError builds the error event sent to a client whose request was refused.
func NewError(err error) Error {
	return Error{Msg: "ERROR: " + err.Error()}
}
