package client

import (
	"bufio"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"slices"
	"sync"
	"time"

	"github.com/luca-patrignani/sequence/communication"
	"github.com/luca-patrignani/sequence/domain/sequence"
)

var (
	ErrNotStarted = errors.New("game not started")
	ErrHandIndex  = errors.New("no card at hand index")
)

// Client is a connection to a Sequence server.
type Client struct {
	conn   net.Conn
	logger *slog.Logger
	rules  sequence.Ruleset

	writeMu sync.Mutex

	mu             sync.Mutex
	state          State
	pendingDiscard int

	events    chan communication.Event
	closing   chan struct{}
	closeOnce sync.Once
	done      chan struct{}
	err       error
}

// Dial connects to the server at addr and starts reading its events.
func Dial(ctx context.Context, addr string, opts ...Option) (*Client, error) {
	o := options{
		logger:      slog.Default(),
		rules:       sequence.DefaultRuleset(),
		dialTimeout: 10 * time.Second,
		eventBuffer: 64,
	}
	for _, opt := range opts {
		o = opt(o)
	}
	dialer := &net.Dialer{Timeout: o.dialTimeout}
	var conn net.Conn
	var err error
	if o.tlsConfig != nil {
		conn, err = (&tls.Dialer{NetDialer: dialer, Config: o.tlsConfig}).DialContext(ctx, "tcp", addr)
	} else {
		conn, err = dialer.DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		return nil, err
	}
	c := &Client{
		conn:           conn,
		logger:         o.logger.With("server", addr),
		rules:          o.rules,
		pendingDiscard: -1,
		events:         make(chan communication.Event, o.eventBuffer),
		closing:        make(chan struct{}),
		done:           make(chan struct{}),
	}
	go c.readLoop()
	return c, nil
}

// Events delivers every event after it was applied to the mirror. It is
// closed when the connection ends. The mirror stops advancing while the
// channel is full.
func (c *Client) Events() <-chan communication.Event {
	return c.events
}

// Done is closed when the connection ends; Err then tells why.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Err returns nil while the connection is alive and after a clean close.
func (c *Client) Err() error {
	select {
	case <-c.done:
		return c.err
	default:
		return nil
	}
}

// State returns a copy of the mirror.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.closing)
		err = c.conn.Close()
	})
	return err
}

func (c *Client) Login(name string) error {
	return c.send(communication.Login{Name: name})
}

func (c *Client) RequestStart() error {
	return c.send(communication.RequestStart{})
}

// Play plays the card at hand index i on cell (x, y).
func (c *Client) Play(i, x, y int) error {
	c.mu.Lock()
	if c.state.Game == nil {
		c.mu.Unlock()
		return ErrNotStarted
	}
	if i < 0 || i >= len(c.state.Hand) {
		c.mu.Unlock()
		return fmt.Errorf("%w %d", ErrHandIndex, i)
	}
	code := c.state.Hand[i]
	c.mu.Unlock()
	return c.send(communication.PlayCard{X: x, Y: y, CardCode: code, HandCardIndex: i})
}

// Discard throws away the card at hand index i.
func (c *Client) Discard(i int) error {
	c.mu.Lock()
	if i < 0 || i >= len(c.state.Hand) {
		c.mu.Unlock()
		return fmt.Errorf("%w %d", ErrHandIndex, i)
	}
	c.pendingDiscard = i
	c.mu.Unlock()
	return c.send(communication.DiscardCard{HandIndex: i})
}

func (c *Client) Chat(text string) error {
	return c.send(communication.Chat{Text: text})
}

// Bye tells the server the client is leaving. The server closes the
// connection.
func (c *Client) Bye() error {
	return c.send(communication.Bye{})
}

func (c *Client) send(req communication.Request) error {
	b, err := communication.Encode(req)
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if _, err := c.conn.Write(append(b, '\n')); err != nil {
		return fmt.Errorf("sending %s: %w", req.Type(), err)
	}
	return nil
}

func (c *Client) readLoop() {
	defer close(c.events)
	defer close(c.done)
	dec := json.NewDecoder(bufio.NewReader(c.conn))
	for {
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
				c.err = err
			}
			return
		}
		ev, err := communication.DecodeEvent(raw)
		if err != nil {
			c.logger.Warn("ignoring server message", "err", err)
			continue
		}
		c.apply(ev)
		select {
		case c.events <- ev:
		case <-c.closing:
			return
		}
	}
}

// apply updates the mirror with ev.
func (c *Client) apply(ev communication.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := &c.state
	switch e := ev.(type) {
	case communication.Logged:
		s.ID = e.ID
		s.Name = e.Name
	case communication.GameStarted:
		assignment, err := sequence.AssignmentFromWire(c.rules, e.CardAssignment)
		if err != nil {
			c.logger.Error("unusable board layout", "err", err)
			return
		}
		s.Game = sequence.NewGame(c.rules, assignment)
		s.Names = e.IDToName
		s.Order = e.IDSequence
		s.Started = true
	case communication.CardDealt:
		s.Hand = append(s.Hand, e.CardCode)
	case communication.CardPlayed:
		if s.Game == nil {
			return
		}
		at := sequence.Coordinate{X: e.X, Y: e.Y}
		if e.HandCardCode == c.rules.JokerRemove {
			s.Game.Remove(at)
		} else {
			s.Game.Place(at, e.ID)
		}
		if e.ID == s.ID {
			s.Hand = removeFirst(s.Hand, e.HandCardCode)
		}
	case communication.DiscardedCard:
		if e.ID != s.ID {
			return
		}
		if i := c.pendingDiscard; i >= 0 && i < len(s.Hand) && s.Hand[i] == e.CardCode {
			s.Hand = slices.Delete(s.Hand, i, i+1)
		} else {
			s.Hand = removeFirst(s.Hand, e.CardCode)
		}
		c.pendingDiscard = -1
	case communication.TurnStart:
		s.Turn = e.TurnNumber
		s.Active = e.ID
	case communication.GameOver:
		s.Winner = e.WinningID
		s.Over = true
	}
}

func removeFirst(hand []sequence.Code, code sequence.Code) []sequence.Code {
	if i := slices.Index(hand, code); i >= 0 {
		return slices.Delete(hand, i, i+1)
	}
	return hand
}
