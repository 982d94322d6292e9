package client

import (
	"log/slog"
	"slices"
	"testing"

	"github.com/luca-patrignani/sequence/communication"
	"github.com/luca-patrignani/sequence/domain/sequence"
)

func mirror(t *testing.T) *Client {
	t.Helper()
	rules := sequence.DefaultRuleset()
	codes, err := rules.BoardDeck()
	if err != nil {
		t.Fatal(err)
	}
	a, err := sequence.NewAssignment(rules, codes)
	if err != nil {
		t.Fatal(err)
	}
	c := &Client{logger: slog.Default(), rules: rules, pendingDiscard: -1}
	c.apply(communication.Logged{ID: 1, Name: "Ann"})
	c.apply(communication.GameStarted{
		CardAssignment: a.Wire(),
		IDToName:       map[sequence.PlayerID]string{1: "Ann", 2: "Bob"},
		IDSequence:     []sequence.PlayerID{1, 2},
	})
	return c
}

func TestApplyRemoveJoker(t *testing.T) {
	c := mirror(t)
	at := sequence.Coordinate{X: 2, Y: 2}
	c.apply(communication.CardPlayed{ID: 2, X: 2, Y: 2, HandCardCode: "j1"})
	if id, ok := c.State().Game.Occupant(at); !ok || id != 2 {
		t.Fatal("place joker not mirrored")
	}
	c.apply(communication.CardPlayed{ID: 1, X: 2, Y: 2, HandCardCode: "j2"})
	if _, ok := c.State().Game.Occupant(at); ok {
		t.Fatal("remove joker not mirrored")
	}
}

func TestApplyHand(t *testing.T) {
	c := mirror(t)
	for _, code := range []sequence.Code{"h2", "s3", "h2", "dK"} {
		c.apply(communication.CardDealt{CardCode: code})
	}
	c.pendingDiscard = 2
	c.apply(communication.DiscardedCard{ID: 1, CardCode: "h2"})
	if got := c.State().Hand; !slices.Equal(got, []sequence.Code{"h2", "s3", "dK"}) {
		t.Fatalf("discard at index not mirrored: %v", got)
	}
	c.apply(communication.CardPlayed{ID: 2, X: 0, Y: 1, HandCardCode: "s3"})
	if got := c.State().Hand; len(got) != 3 {
		t.Fatalf("another player's play changed the hand: %v", got)
	}
	c.apply(communication.CardPlayed{ID: 1, X: 0, Y: 1, HandCardCode: "s3"})
	if got := c.State().Hand; !slices.Equal(got, []sequence.Code{"h2", "dK"}) {
		t.Fatalf("play not mirrored: %v", got)
	}
}

func TestApplyTurnsAndGameOver(t *testing.T) {
	c := mirror(t)
	c.apply(communication.TurnStart{TurnNumber: 0, ID: 1})
	if !c.State().MyTurn() {
		t.Fatal("expected my turn")
	}
	c.apply(communication.TurnStart{TurnNumber: 1, ID: 2})
	if c.State().MyTurn() {
		t.Fatal("not my turn")
	}
	c.apply(communication.GameOver{WinningID: 2})
	s := c.State()
	if !s.Over || s.Winner != 2 || s.MyTurn() {
		t.Fatalf("unexpected state %+v", s)
	}
}

func TestStateIsACopy(t *testing.T) {
	c := mirror(t)
	c.apply(communication.CardDealt{CardCode: "h2"})
	s := c.State()
	s.Hand[0] = "cA"
	s.Game.Place(sequence.Coordinate{X: 5, Y: 5}, 9)
	again := c.State()
	if again.Hand[0] != "h2" {
		t.Fatal("hand shared with the mirror")
	}
	if _, ok := again.Game.Occupant(sequence.Coordinate{X: 5, Y: 5}); ok {
		t.Fatal("board shared with the mirror")
	}
}
