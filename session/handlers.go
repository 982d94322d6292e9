package session

import (
	"fmt"
	"strconv"

	"github.com/luca-patrignani/sequence/communication"
	"github.com/luca-patrignani/sequence/domain/deck"
	"github.com/luca-patrignani/sequence/domain/sequence"
	"github.com/luca-patrignani/sequence/ledger"
)

func (c *Controller) dispatch(m *member, req communication.Request) {
	switch r := req.(type) {
	case communication.Login:
		c.login(m, r)
	case communication.RequestStart:
		c.requestStart(m)
	case communication.PlayCard:
		c.playCard(m, r)
	case communication.DiscardCard:
		c.discardCard(m, r)
	case communication.Chat:
		c.chat(m, r)
	case communication.Bye:
		c.bye(m)
	default:
		c.reject(m, fmt.Errorf("%w: %s", communication.ErrUnknownType, req.Type()))
	}
}

func (c *Controller) login(m *member, r communication.Login) {
	if c.status != AcceptingConnections {
		c.reject(m, ErrNotAccepting)
		return
	}
	if m.player != nil {
		c.reject(m, ErrAlreadyLoggedIn)
		return
	}
	p, err := c.registry.Register(r.Name)
	if err != nil {
		c.reject(m, err)
		return
	}
	m.player = p
	c.byPlayer[p.ID] = m
	c.send(m, communication.Logged{ID: p.ID, Name: p.Name})
	c.record("login", p.ID, communication.Logged{ID: p.ID, Name: p.Name}, nil)
	c.logger.Info("player logged in", "player", p.ID, "name", p.Name, "players", c.registry.Len())

	if c.registry.Len() == c.rules.MaxPlayers {
		c.begin()
	}
}

func (c *Controller) requestStart(m *member) {
	if c.status != AcceptingConnections {
		c.reject(m, ErrGameStarted)
		return
	}
	if m.player == nil {
		c.reject(m, ErrNotLoggedIn)
		return
	}
	if c.registry.Len() < c.rules.MinPlayers {
		c.send(m, communication.Wait{Reason: WaitNotEnoughPlayers})
		return
	}
	c.begin()
}

// begin moves the session to PLAYING: it fixes the turn sequence, announces
// the board and deals every hand.
func (c *Controller) begin() {
	ids := c.registry.IDs()
	c.order = make([]sequence.PlayerID, len(ids))
	for i, j := range deck.Permutation(len(ids), c.stream) {
		c.order[i] = ids[j]
	}
	c.status = Playing
	c.turn = 0

	c.broadcast(communication.GameStarted{
		CardAssignment: c.game.Assignment().Wire(),
		IDToName:       c.registry.Names(),
		IDSequence:     c.order,
	})
	for round := 0; round < c.rules.CardsInHand; round++ {
		for _, id := range c.order {
			p, err := c.registry.Get(id)
			if err != nil {
				c.logger.Error("player vanished while dealing", "player", id, "err", err)
				continue
			}
			c.deal(p)
		}
	}
	c.record("game_started", 0, communication.GameStarted{IDSequence: c.order}, nil)
	c.logger.Info("game started", "order", fmt.Sprint(c.order))
	c.broadcast(communication.TurnStart{TurnNumber: c.turn, ID: c.active()})
}

// checkTurn returns the player of m if it may act now.
func (c *Controller) checkTurn(m *member) (*sequence.Player, error) {
	if c.status != Playing {
		return nil, ErrNotPlaying
	}
	if m.player == nil {
		return nil, ErrNotLoggedIn
	}
	if active := c.active(); m.player.ID != active {
		return nil, fmt.Errorf("%w: player %d is playing", ErrNotYourTurn, active)
	}
	return m.player, nil
}

func (c *Controller) playCard(m *member, r communication.PlayCard) {
	p, err := c.checkTurn(m)
	if err != nil {
		c.reject(m, err)
		return
	}
	held, err := p.Card(r.HandCardIndex)
	if err != nil {
		c.reject(m, err)
		return
	}
	if held != r.CardCode {
		c.reject(m, fmt.Errorf("%w: index %d holds %s, not %s", sequence.ErrCardNotInHand, r.HandCardIndex, held, r.CardCode))
		return
	}
	at := sequence.Coordinate{X: r.X, Y: r.Y}
	placed, err := c.game.ApplyPlay(r.CardCode, at, p.ID)
	if err != nil {
		c.reject(m, err)
		return
	}
	if _, err := c.registry.Discard(p, r.CardCode); err != nil {
		// The card was checked above; a failure here is a bug.
		c.logger.Error("discarding played card", "player", p.ID, "err", err)
	}
	c.broadcast(communication.CardPlayed{ID: p.ID, X: r.X, Y: r.Y, HandCardCode: r.CardCode})
	dealt := c.deal(p)
	c.record("play_card", p.ID, r, map[string]string{
		"placed": strconv.FormatBool(placed),
		"dealt":  string(dealt),
	})
	c.logger.Info("card played", "player", p.ID, "card", c.rules.Describe(r.CardCode), "cell", at.String(), "placed", placed)

	if placed {
		if winner, ok := c.game.WinningOwner(r.X, r.Y); ok {
			c.finish(winner)
			return
		}
	}
	c.advance()
}

func (c *Controller) discardCard(m *member, r communication.DiscardCard) {
	p, err := c.checkTurn(m)
	if err != nil {
		c.reject(m, err)
		return
	}
	code, err := c.registry.DiscardAt(p, r.HandIndex)
	if err != nil {
		c.reject(m, err)
		return
	}
	c.broadcast(communication.DiscardedCard{ID: p.ID, CardCode: code})
	dealt := c.deal(p)
	c.record("discard_card", p.ID, communication.DiscardedCard{ID: p.ID, CardCode: code}, map[string]string{
		"dealt": string(dealt),
	})
	c.logger.Info("card discarded", "player", p.ID, "card", c.rules.Describe(code))
	c.advance()
}

func (c *Controller) chat(m *member, r communication.Chat) {
	if m.player == nil {
		c.reject(m, ErrNotLoggedIn)
		return
	}
	text := sequence.Sanitize(r.Text)
	if text == "" {
		return
	}
	b := communication.MustEncode(communication.ChatRelay{ID: m.player.ID, Name: m.player.Name, Text: text})
	for _, other := range c.members {
		if err := other.conn.Send(b); err != nil {
			c.logger.Debug("send failed", "conn", other.conn.ID(), "type", communication.TypeChat, "err", err)
		}
	}
}

func (c *Controller) bye(m *member) {
	c.detach(m.conn.ID())
	if err := m.conn.Close(); err != nil {
		c.logger.Debug("closing connection", "conn", m.conn.ID(), "err", err)
	}
}

// detach forgets a connection. Before the game starts its player leaves the
// registry; afterwards the seat is kept and the game waits for it.
func (c *Controller) detach(connID uint64) {
	m, ok := c.members[connID]
	if !ok {
		return
	}
	delete(c.members, connID)
	if m.player == nil {
		return
	}
	delete(c.byPlayer, m.player.ID)
	if c.status == AcceptingConnections {
		c.registry.Remove(m.player.ID)
		c.record("leave", m.player.ID, nil, nil)
		c.logger.Info("player left", "player", m.player.ID, "players", c.registry.Len())
		return
	}
	c.logger.Warn("player disconnected", "player", m.player.ID, "status", c.status.String())
}

func (c *Controller) active() sequence.PlayerID {
	return c.order[c.turn%len(c.order)]
}

func (c *Controller) advance() {
	c.turn++
	c.broadcast(communication.TurnStart{TurnNumber: c.turn, ID: c.active()})
}

func (c *Controller) finish(winner sequence.PlayerID) {
	c.status = Finished
	c.winner = winner
	c.broadcast(communication.GameOver{WinningID: winner})
	c.record("game_over", winner, communication.GameOver{WinningID: winner}, nil)
	c.logger.Info("game over", "winner", winner, "turn", c.turn)
}

// deal gives the next card of the deck to p and tells its connection.
func (c *Controller) deal(p *sequence.Player) sequence.Code {
	code := c.deck.Draw()
	c.registry.Deal(p, code)
	if m, ok := c.byPlayer[p.ID]; ok {
		c.send(m, communication.CardDealt{CardCode: code})
	}
	return code
}

func (c *Controller) send(m *member, ev communication.Event) {
	if err := m.conn.Send(communication.MustEncode(ev)); err != nil {
		c.logger.Debug("send failed", "conn", m.conn.ID(), "type", ev.Type(), "err", err)
	}
}

// broadcast sends ev to every logged-in connection.
func (c *Controller) broadcast(ev communication.Event) {
	b := communication.MustEncode(ev)
	for _, m := range c.byPlayer {
		if err := m.conn.Send(b); err != nil {
			c.logger.Debug("send failed", "conn", m.conn.ID(), "type", ev.Type(), "err", err)
		}
	}
}

func (c *Controller) reject(m *member, err error) {
	c.logger.Debug("request rejected", "conn", m.conn.ID(), "err", err)
	c.send(m, communication.NewError(err))
}

func (c *Controller) record(kind string, player sequence.PlayerID, payload any, extra map[string]string) {
	action, err := ledger.NewAction(kind, int(player), payload)
	if err != nil {
		c.logger.Error("journal action", "kind", kind, "err", err)
		return
	}
	if _, err := c.journal.Append(action, c.turn, extra); err != nil {
		c.logger.Error("journal append", "kind", kind, "err", err)
	}
}
