package client

import (
	"context"
	"crypto/tls"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/luca-patrignani/sequence/communication"
	"github.com/luca-patrignani/sequence/domain/sequence"
	"github.com/luca-patrignani/sequence/network"
	"github.com/luca-patrignani/sequence/session"
)

// riggedBoard is the default board deck with h7 moved to (3, 4).
func riggedBoard(t *testing.T, rules sequence.Ruleset) []sequence.Code {
	t.Helper()
	codes, err := rules.BoardDeck()
	if err != nil {
		t.Fatal(err)
	}
	target := 4*rules.Columns + 3
	i := slices.Index(codes, "h7")
	codes[i], codes[target] = codes[target], codes[i]
	return codes
}

// startSession serves a two-player session on an ephemeral port. With
// secure set it serves TLS and returns the certificate to trust.
func startSession(t *testing.T, secure bool) (string, []byte) {
	t.Helper()
	rules := sequence.DefaultRuleset()
	ctrl, err := session.New(rules,
		session.WithAssignment(riggedBoard(t, rules)),
		session.WithDealDeck([]sequence.Code{"h7"}),
	)
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	listeners, addresses := network.CreateListeners(1)
	var server *network.Server
	var certPEM []byte
	if secure {
		var cert tls.Certificate
		cert, certPEM, err = network.GenerateSelfSignedCert(addresses[0])
		if err != nil {
			t.Fatal(err)
		}
		server = network.NewServer(listeners[0], ctrl, network.WithCertificate(cert))
	} else {
		server = network.NewServer(listeners[0], ctrl)
	}
	fatal := make(chan error, 2)
	go func() {
		fatal <- ctrl.Run(ctx)
	}()
	go func() {
		fatal <- server.Serve()
	}()
	t.Cleanup(func() {
		if err := server.Close(); err != nil {
			t.Error(err)
		}
		cancel()
		for i := 0; i < 2; i++ {
			if err := <-fatal; err != nil && !errors.Is(err, context.Canceled) {
				t.Error(err)
			}
		}
	})
	return addresses[0], certPEM
}

func dial(t *testing.T, addr string, opts ...Option) *Client {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	c, err := Dial(ctx, addr, opts...)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

// waitFor discards events until one of type T arrives.
func waitFor[T communication.Event](t *testing.T, c *Client) T {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case ev, ok := <-c.Events():
			if !ok {
				t.Fatalf("connection closed while waiting: %v", c.Err())
			}
			if v, ok := ev.(T); ok {
				return v
			}
		case <-timeout:
			var zero T
			t.Fatalf("timeout waiting for %s", zero.Type())
		}
	}
}

func login(t *testing.T, c *Client, name string) communication.Logged {
	t.Helper()
	if err := c.Login(name); err != nil {
		t.Fatal(err)
	}
	return waitFor[communication.Logged](t, c)
}

func startGame(t *testing.T, addr string) (ann, bob *Client) {
	t.Helper()
	ann = dial(t, addr)
	bob = dial(t, addr)
	login(t, ann, "Ann")
	login(t, bob, "Bob")
	if err := bob.RequestStart(); err != nil {
		t.Fatal(err)
	}
	waitFor[communication.TurnStart](t, ann)
	waitFor[communication.TurnStart](t, bob)
	return ann, bob
}

func TestGameMirror(t *testing.T) {
	addr, _ := startSession(t, false)
	ann, bob := startGame(t, addr)

	for _, c := range []*Client{ann, bob} {
		s := c.State()
		if !s.Started || s.Game == nil {
			t.Fatal("game not mirrored")
		}
		if len(s.Hand) != 6 {
			t.Fatalf("expected 6 cards, got %v", s.Hand)
		}
		if code, _ := s.Game.CardAt(sequence.Coordinate{X: 3, Y: 4}); code != "h7" {
			t.Fatalf("expected h7 on (3, 4), got %s", code)
		}
		if s.Names[1] != "Ann" || s.Names[2] != "Bob" {
			t.Fatalf("unexpected names %v", s.Names)
		}
		if len(s.Order) != 2 || s.Active != s.Order[0] || s.Turn != 0 {
			t.Fatalf("unexpected turn state %+v", s)
		}
	}

	first, second := ann, bob
	if ann.State().Active != ann.State().ID {
		first, second = bob, ann
	}
	if !first.State().MyTurn() || second.State().MyTurn() {
		t.Fatal("exactly one client holds the turn")
	}
	if got := first.State().Playable(0); len(got) != 2 {
		t.Fatalf("expected two h7 cells, got %v", got)
	}

	if err := first.Play(0, 3, 4); err != nil {
		t.Fatal(err)
	}
	for _, c := range []*Client{first, second} {
		played := waitFor[communication.CardPlayed](t, c)
		if played.X != 3 || played.Y != 4 || played.ID != first.State().ID {
			t.Fatalf("unexpected card_played %#v", played)
		}
		turn := waitFor[communication.TurnStart](t, c)
		if turn.TurnNumber != 1 {
			t.Fatalf("expected turn 1, got %d", turn.TurnNumber)
		}
		s := c.State()
		if id, ok := s.Game.Occupant(sequence.Coordinate{X: 3, Y: 4}); !ok || id != first.State().ID {
			t.Fatal("peg not mirrored")
		}
	}
	if n := len(first.State().Hand); n != 6 {
		t.Fatalf("hand not refilled: %d cards", n)
	}
	if got := second.State().Playable(0); len(got) != 1 {
		t.Fatalf("expected one h7 cell left, got %v", got)
	}

	if err := second.Discard(2); err != nil {
		t.Fatal(err)
	}
	discarded := waitFor[communication.DiscardedCard](t, first)
	if discarded.ID != second.State().ID || discarded.CardCode != "h7" {
		t.Fatalf("unexpected discarded_card %#v", discarded)
	}
	waitFor[communication.TurnStart](t, second)
	if n := len(second.State().Hand); n != 6 {
		t.Fatalf("hand not refilled: %d cards", n)
	}
	if turn := waitFor[communication.TurnStart](t, first); turn.TurnNumber != 2 {
		t.Fatalf("expected turn 2, got %d", turn.TurnNumber)
	}
	if !first.State().MyTurn() {
		t.Fatal("turn did not come back")
	}
}

func TestRejectedPlay(t *testing.T) {
	addr, _ := startSession(t, false)
	ann, bob := startGame(t, addr)
	waiting := ann
	if ann.State().MyTurn() {
		waiting = bob
	}
	if err := waiting.Play(0, 3, 4); err != nil {
		t.Fatal(err)
	}
	e := waitFor[communication.Error](t, waiting)
	if !strings.HasPrefix(e.Msg, "ERROR: ") {
		t.Fatalf("unexpected error %q", e.Msg)
	}
	if _, ok := waiting.State().Game.Occupant(sequence.Coordinate{X: 3, Y: 4}); ok {
		t.Fatal("a rejected play must not touch the mirror")
	}
}

func TestChatAndBye(t *testing.T) {
	addr, _ := startSession(t, false)
	ann := dial(t, addr)
	bob := dial(t, addr)
	login(t, ann, "Ann")
	login(t, bob, "Bob")

	if err := ann.Chat("hello <b>Bob</b>"); err != nil {
		t.Fatal(err)
	}
	relay := waitFor[communication.ChatRelay](t, bob)
	if relay.Text != "hello Bob" || relay.Name != "Ann" {
		t.Fatalf("unexpected relay %#v", relay)
	}

	if err := bob.Bye(); err != nil {
		t.Fatal(err)
	}
	select {
	case <-bob.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("server did not close the connection")
	}
	if err := bob.Err(); err != nil {
		t.Fatal(err)
	}
}

func TestPlayBeforeStart(t *testing.T) {
	addr, _ := startSession(t, false)
	c := dial(t, addr)
	if err := c.Play(0, 0, 0); !errors.Is(err, ErrNotStarted) {
		t.Fatalf("expected ErrNotStarted, got %v", err)
	}
	if err := c.Discard(0); !errors.Is(err, ErrHandIndex) {
		t.Fatalf("expected ErrHandIndex, got %v", err)
	}
}

func TestTLS(t *testing.T) {
	addr, certPEM := startSession(t, true)
	config, err := network.ClientTLSConfig(certPEM)
	if err != nil {
		t.Fatal(err)
	}
	c := dial(t, addr, WithTLS(config), WithLogger(slog.Default()))
	if got := login(t, c, "Ann"); got.ID != 1 {
		t.Fatalf("expected id 1, got %d", got.ID)
	}
}
