package sequence

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

// Sanitize strips every markup element from a display string.
func Sanitize(s string) string {
	return strict.Sanitize(s)
}

// Player is a registered participant and the cards it holds.
type Player struct {
	ID    PlayerID
	Name  string
	Hand  []Code
	Dealt []Code // every card ever dealt, in order
}

// Card returns the card at index i of the hand.
func (p *Player) Card(i int) (Code, error) {
	if i < 0 || i >= len(p.Hand) {
		return "", fmt.Errorf("%w: %d of %d", ErrHandIndex, i, len(p.Hand))
	}
	return p.Hand[i], nil
}

// Registry owns the players of a session. It is not safe for concurrent use;
// the session controller serializes every access.
type Registry struct {
	max     int
	lastID  PlayerID
	players map[PlayerID]*Player
}

func NewRegistry(maxPlayers int) *Registry {
	return &Registry{
		max:     maxPlayers,
		players: make(map[PlayerID]*Player),
	}
}

// Register adds a player with the next free id. An empty name becomes
// "Player #<id>".
func (r *Registry) Register(name string) (*Player, error) {
	if len(r.players) >= r.max {
		return nil, ErrSessionFull
	}
	r.lastID++
	id := r.lastID
	name = Sanitize(name)
	if name == "" {
		name = "Player #" + strconv.Itoa(int(id))
	}
	p := &Player{ID: id, Name: name}
	r.players[id] = p
	return p, nil
}

func (r *Registry) Get(id PlayerID) (*Player, error) {
	p, ok := r.players[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownPlayer, id)
	}
	return p, nil
}

func (r *Registry) Remove(id PlayerID) {
	delete(r.players, id)
}

func (r *Registry) Len() int {
	return len(r.players)
}

// IDs returns the registered ids in ascending order.
func (r *Registry) IDs() []PlayerID {
	ids := make([]PlayerID, 0, len(r.players))
	for id := range r.players {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func (r *Registry) Names() map[PlayerID]string {
	names := make(map[PlayerID]string, len(r.players))
	for id, p := range r.players {
		names[id] = p.Name
	}
	return names
}

// Deal gives code to p.
func (r *Registry) Deal(p *Player, code Code) {
	p.Hand = append(p.Hand, code)
	p.Dealt = append(p.Dealt, code)
}

// Discard removes the first occurrence of code from the hand of p and returns
// its index.
func (r *Registry) Discard(p *Player, code Code) (int, error) {
	i := slices.Index(p.Hand, code)
	if i < 0 {
		return -1, fmt.Errorf("%w: %s", ErrCardNotInHand, code)
	}
	p.Hand = slices.Delete(p.Hand, i, i+1)
	return i, nil
}

// DiscardAt removes the card at index i of the hand of p and returns it.
func (r *Registry) DiscardAt(p *Player, i int) (Code, error) {
	code, err := p.Card(i)
	if err != nil {
		return "", err
	}
	p.Hand = slices.Delete(p.Hand, i, i+1)
	return code, nil
}
