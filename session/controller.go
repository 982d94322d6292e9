package session

import (
	"context"
	"crypto/cipher"
	"log/slog"

	"github.com/google/uuid"

	"github.com/luca-patrignani/sequence/communication"
	"github.com/luca-patrignani/sequence/domain/deck"
	"github.com/luca-patrignani/sequence/domain/sequence"
	"github.com/luca-patrignani/sequence/ledger"
	"github.com/luca-patrignani/sequence/network"
)

const inboxSize = 256

// Controller runs one game. It implements network.Handler.
type Controller struct {
	id      uuid.UUID
	rules   sequence.Ruleset
	logger  *slog.Logger
	stream  cipher.Stream
	journal *ledger.Journal

	inbox   chan func()
	stopped chan struct{}

	status   Status
	game     *sequence.Game
	registry *sequence.Registry
	deck     *deck.Circular[sequence.Code]
	order    []sequence.PlayerID
	turn     int
	winner   sequence.PlayerID

	members  map[uint64]*member
	byPlayer map[sequence.PlayerID]*member
}

// member is a connection attached to the session and, after login, its player.
type member struct {
	conn   network.Conn
	player *sequence.Player
}

// New builds a session for rules. The ruleset, the board layout and the deal
// deck are checked here; a failure is a *sequence.ConfigurationError.
func New(rules sequence.Ruleset, opts ...option) (*Controller, error) {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		o = opt(o)
	}
	if o.stream == nil {
		o.stream = deck.RandomStream()
	}
	if err := rules.Validate(); err != nil {
		return nil, err
	}

	var assignment sequence.Assignment
	var err error
	if o.assignment != nil {
		assignment, err = sequence.NewAssignment(rules, o.assignment)
	} else {
		assignment, err = rules.RandomAssignment(o.stream)
	}
	if err != nil {
		return nil, err
	}

	dealCards := o.dealDeck
	if dealCards == nil {
		dealCards, err = rules.ShuffledDealDeck(o.stream)
		if err != nil {
			return nil, err
		}
	}
	dealDeck, err := deck.NewCircular(dealCards)
	if err != nil {
		return nil, &sequence.ConfigurationError{Reason: err.Error()}
	}

	id := uuid.New()
	journal, err := ledger.NewJournal(id.String(), o.signer)
	if err != nil {
		return nil, err
	}

	return &Controller{
		id:       id,
		rules:    rules,
		logger:   o.logger.With("session", id.String()),
		stream:   o.stream,
		journal:  journal,
		inbox:    make(chan func(), inboxSize),
		stopped:  make(chan struct{}),
		status:   AcceptingConnections,
		game:     sequence.NewGame(rules, assignment),
		registry: sequence.NewRegistry(rules.MaxPlayers),
		deck:     dealDeck,
		members:  make(map[uint64]*member),
		byPlayer: make(map[sequence.PlayerID]*member),
	}, nil
}

func (c *Controller) ID() uuid.UUID {
	return c.id
}

func (c *Controller) Rules() sequence.Ruleset {
	return c.rules
}

// Journal is the log of every mutation accepted so far.
func (c *Controller) Journal() *ledger.Journal {
	return c.journal
}

// Run processes connection events until ctx is cancelled.
func (c *Controller) Run(ctx context.Context) error {
	defer close(c.stopped)
	c.logger.Info("session ready", "min_players", c.rules.MinPlayers, "max_players", c.rules.MaxPlayers)
	for {
		select {
		case f := <-c.inbox:
			f()
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Done is closed when Run returns.
func (c *Controller) Done() <-chan struct{} {
	return c.stopped
}

// enqueue hands f to the Run goroutine. It reports false once Run returned.
func (c *Controller) enqueue(f func()) bool {
	select {
	case <-c.stopped:
		return false
	default:
	}
	select {
	case c.inbox <- f:
		return true
	case <-c.stopped:
		return false
	}
}

func (c *Controller) Connect(conn network.Conn) {
	c.enqueue(func() {
		c.members[conn.ID()] = &member{conn: conn}
		c.logger.Debug("connection attached", "conn", conn.ID(), "remote", conn.RemoteAddr())
	})
}

func (c *Controller) Receive(conn network.Conn, msg []byte) {
	req, err := communication.DecodeRequest(msg)
	c.enqueue(func() {
		m, ok := c.members[conn.ID()]
		if !ok {
			return
		}
		if err != nil {
			c.reject(m, err)
			return
		}
		c.dispatch(m, req)
	})
}

func (c *Controller) Disconnect(conn network.Conn) {
	c.enqueue(func() {
		c.detach(conn.ID())
	})
}

// Snapshot is a copy of the state of the session.
type Snapshot struct {
	SessionID string
	Status    Status
	Turn      int
	Order     []sequence.PlayerID
	Active    sequence.PlayerID // zero unless playing
	Winner    sequence.PlayerID // zero unless finished
	Names     map[sequence.PlayerID]string
	Hands     map[sequence.PlayerID][]sequence.Code
	Pegs      map[sequence.Coordinate]sequence.PlayerID
	Board     map[string]sequence.Code
	Dealt     int
}

// Snapshot copies the state of the session. It is served by the Run goroutine
// after every event queued before the call.
func (c *Controller) Snapshot(ctx context.Context) (Snapshot, error) {
	result := make(chan Snapshot, 1)
	if !c.enqueue(func() { result <- c.snapshot() }) {
		return Snapshot{}, ErrStopped
	}
	select {
	case s := <-result:
		return s, nil
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	case <-c.stopped:
		return Snapshot{}, ErrStopped
	}
}

func (c *Controller) snapshot() Snapshot {
	s := Snapshot{
		SessionID: c.id.String(),
		Status:    c.status,
		Turn:      c.turn,
		Order:     append([]sequence.PlayerID(nil), c.order...),
		Winner:    c.winner,
		Names:     c.registry.Names(),
		Hands:     make(map[sequence.PlayerID][]sequence.Code),
		Pegs:      c.game.Pegs(),
		Board:     c.game.Assignment().Wire(),
		Dealt:     c.deck.Dealt(),
	}
	if c.status == Playing {
		s.Active = c.active()
	}
	for _, id := range c.registry.IDs() {
		p, err := c.registry.Get(id)
		if err != nil {
			continue
		}
		s.Hands[id] = append([]sequence.Code(nil), p.Hand...)
	}
	return s
}
