package communication

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var (
	ErrUnknownType    = errors.New("unknown message type")
	ErrInvalidMessage = errors.New("invalid message")
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type envelope struct {
	Type string `json:"type"`
}

// Encode renders m as a single JSON object carrying its "type" field.
func Encode(m Message) ([]byte, error) {
	body, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	head, err := json.Marshal(envelope{Type: m.Type()})
	if err != nil {
		return nil, err
	}
	body = bytes.TrimSpace(body)
	if len(body) < 2 || body[0] != '{' {
		return nil, fmt.Errorf("%w: %s does not encode to an object", ErrInvalidMessage, m.Type())
	}
	if string(body) == "{}" {
		return head, nil
	}
	out := make([]byte, 0, len(head)+len(body))
	out = append(out, head[:len(head)-1]...)
	out = append(out, ',')
	return append(out, body[1:]...), nil
}

// MustEncode is Encode for messages built by this program, which always encode.
func MustEncode(m Message) []byte {
	b, err := Encode(m)
	if err != nil {
		panic(err)
	}
	return b
}

func newRequest(t string) (Request, bool) {
	switch t {
	case TypeLogin:
		return &Login{}, true
	case TypeRequestStart:
		return &RequestStart{}, true
	case TypePlayCard:
		return &PlayCard{}, true
	case TypeDiscardCard:
		return &DiscardCard{}, true
	case TypeChat:
		return &Chat{}, true
	case TypeBye:
		return &Bye{}, true
	}
	return nil, false
}

func newEvent(t string) (Event, bool) {
	switch t {
	case TypeLogged:
		return &Logged{}, true
	case TypeGameStarted:
		return &GameStarted{}, true
	case TypeCardDealt:
		return &CardDealt{}, true
	case TypeCardPlayed:
		return &CardPlayed{}, true
	case TypeDiscardedCard:
		return &DiscardedCard{}, true
	case TypeTurnStart:
		return &TurnStart{}, true
	case TypeGameOver:
		return &GameOver{}, true
	case TypeError:
		return &Error{}, true
	case TypeWait:
		return &Wait{}, true
	case TypeChat:
		return &ChatRelay{}, true
	}
	return nil, false
}

// DecodeRequest parses and validates a client message. The returned value is
// one of the request types of this package, by value.
func DecodeRequest(data []byte) (Request, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	req, ok := newRequest(env.Type)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, env.Type)
	}
	if err := json.Unmarshal(data, req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	return deref(req).(Request), nil
}

// DecodeEvent parses a server message.
func DecodeEvent(data []byte) (Event, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	ev, ok := newEvent(env.Type)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, env.Type)
	}
	if err := json.Unmarshal(data, ev); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	return deref(ev).(Event), nil
}

func deref(m Message) Message {
	switch v := m.(type) {
	case *Login:
		return *v
	case *RequestStart:
		return *v
	case *PlayCard:
		return *v
	case *DiscardCard:
		return *v
	case *Chat:
		return *v
	case *Bye:
		return *v
	case *Logged:
		return *v
	case *GameStarted:
		return *v
	case *CardDealt:
		return *v
	case *CardPlayed:
		return *v
	case *DiscardedCard:
		return *v
	case *TurnStart:
		return *v
	case *GameOver:
		return *v
	case *Error:
		return *v
	case *Wait:
		return *v
	case *ChatRelay:
		return *v
	}
	return m
}
