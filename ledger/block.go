package ledger

import "encoding/json"

// Block is one accepted mutation of a session.
type Block struct {
	Index     int      `json:"index"`
	Timestamp int64    `json:"timestamp"`
	PrevHash  string   `json:"prev_hash"`
	Hash      string   `json:"hash"`
	Action    Action   `json:"action"`
	Metadata  Metadata `json:"metadata"`
	Signature []byte   `json:"signature"`
}

// Action describes what happened. Payload is the JSON form of the message that
// caused the mutation.
type Action struct {
	Kind     string          `json:"kind"`
	PlayerID int             `json:"player_id"`
	Payload  json.RawMessage `json:"payload,omitempty"`
}

type Metadata struct {
	SessionID string            `json:"session_id"`
	Turn      int               `json:"turn"`
	Extra     map[string]string `json:"extra,omitempty"`
}

// NewAction marshals payload into an Action.
func NewAction(kind string, playerID int, payload any) (Action, error) {
	a := Action{Kind: kind, PlayerID: playerID}
	if payload == nil {
		return a, nil
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return Action{}, err
	}
	a.Payload = b
	return a, nil
}
