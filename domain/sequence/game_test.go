package sequence

import (
	"errors"
	"testing"
)

func newTestGame(t *testing.T) *Game {
	t.Helper()
	r := DefaultRuleset()
	a, err := r.RandomAssignment(nil)
	if err != nil {
		t.Fatal(err)
	}
	return NewGame(r, a)
}

func line(g *Game, id PlayerID, start Coordinate, dir Coordinate, n int) {
	for i := 0; i < n; i++ {
		g.Place(Coordinate{X: start.X + i*dir.X, Y: start.Y + i*dir.Y}, id)
	}
}

func TestWinningOwner(t *testing.T) {
	tests := []struct {
		name  string
		start Coordinate
		dir   Coordinate
		n     int
		probe Coordinate
		win   bool
	}{
		{"five horizontal", Coordinate{2, 3}, Coordinate{1, 0}, 5, Coordinate{2, 3}, true},
		{"five horizontal other end", Coordinate{2, 3}, Coordinate{1, 0}, 5, Coordinate{6, 3}, true},
		{"five vertical", Coordinate{5, 1}, Coordinate{0, 1}, 5, Coordinate{5, 3}, true},
		{"five diagonal", Coordinate{1, 1}, Coordinate{1, 1}, 5, Coordinate{5, 5}, true},
		{"four horizontal no corner", Coordinate{2, 3}, Coordinate{1, 0}, 4, Coordinate{5, 3}, false},
		{"four on edge no corner", Coordinate{2, 0}, Coordinate{1, 0}, 4, Coordinate{2, 0}, false},
		{"four horizontal from corner", Coordinate{0, 0}, Coordinate{1, 0}, 4, Coordinate{3, 0}, true},
		{"four horizontal into corner", Coordinate{7, 7}, Coordinate{1, 0}, 4, Coordinate{7, 7}, true},
		{"four vertical into corner", Coordinate{10, 4}, Coordinate{0, 1}, 4, Coordinate{10, 4}, true},
		{"four vertical from corner", Coordinate{0, 0}, Coordinate{0, 1}, 4, Coordinate{0, 2}, true},
		{"four diagonal from corner", Coordinate{0, 0}, Coordinate{1, 1}, 4, Coordinate{3, 3}, true},
		{"four anti-diagonal into corner", Coordinate{7, 3}, Coordinate{1, -1}, 4, Coordinate{7, 3}, true},
		{"four anti-diagonal bottom corner", Coordinate{0, 7}, Coordinate{1, -1}, 4, Coordinate{2, 5}, true},
		{"three at corner", Coordinate{0, 0}, Coordinate{1, 0}, 3, Coordinate{2, 0}, false},
		{"four diagonal off corner", Coordinate{1, 0}, Coordinate{1, 1}, 4, Coordinate{4, 3}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestGame(t)
			line(g, 1, tt.start, tt.dir, tt.n)
			id, ok := g.WinningOwner(tt.probe.X, tt.probe.Y)
			if ok != tt.win {
				t.Fatalf("expected win=%v, got %v", tt.win, ok)
			}
			if ok && id != 1 {
				t.Fatalf("expected owner 1, got %d", id)
			}
		})
	}
}

func TestWinningOwnerInterrupted(t *testing.T) {
	g := newTestGame(t)
	line(g, 1, Coordinate{0, 4}, Coordinate{1, 0}, 6)
	g.Place(Coordinate{2, 4}, 2)
	if _, ok := g.WinningOwner(0, 4); ok {
		t.Fatal("a foreign peg must break the run")
	}
	if id, ok := g.WinningOwner(2, 4); ok {
		t.Fatalf("player %d should not win with a single peg", id)
	}
	g.Remove(Coordinate{2, 4})
	if _, ok := g.WinningOwner(0, 4); ok {
		t.Fatal("an empty cell must break the run")
	}
	if _, ok := g.WinningOwner(9, 9); ok {
		t.Fatal("off-board cells never win")
	}
}

func TestWinningOwnerEmptyCell(t *testing.T) {
	g := newTestGame(t)
	if _, ok := g.WinningOwner(4, 4); ok {
		t.Fatal("empty cell cannot win")
	}
}

func TestApplyPlay(t *testing.T) {
	g := newTestGame(t)
	r := g.Rules()
	c := Coordinate{3, 4}
	code, err := g.CardAt(c)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := g.ApplyPlay(r.JokerRemove, c, 1); !errors.Is(err, ErrCellEmpty) {
		t.Fatalf("expected ErrCellEmpty, got %v", err)
	}
	wrong := Code("h2")
	if code == wrong {
		wrong = "s3"
	}
	if _, err := g.ApplyPlay(wrong, c, 1); !errors.Is(err, ErrCardMismatch) {
		t.Fatalf("expected ErrCardMismatch, got %v", err)
	}
	placed, err := g.ApplyPlay(code, c, 1)
	if err != nil || !placed {
		t.Fatalf("expected a placement, got %v %v", placed, err)
	}
	if id, ok := g.Occupant(c); !ok || id != 1 {
		t.Fatalf("expected peg of player 1 on %s", c)
	}
	if _, err := g.ApplyPlay(code, c, 2); !errors.Is(err, ErrCellOccupied) {
		t.Fatalf("expected ErrCellOccupied, got %v", err)
	}
	if _, err := g.ApplyPlay(r.JokerPlace, c, 2); !errors.Is(err, ErrCellOccupied) {
		t.Fatalf("expected ErrCellOccupied, got %v", err)
	}
	placed, err = g.ApplyPlay(r.JokerRemove, c, 2)
	if err != nil || placed {
		t.Fatalf("expected a removal, got %v %v", placed, err)
	}
	if g.Contains(c) {
		t.Fatal("peg was not removed")
	}
	placed, err = g.ApplyPlay(r.JokerPlace, c, 2)
	if err != nil || !placed {
		t.Fatalf("expected the place joker to work anywhere: %v", err)
	}
	if _, err := g.ApplyPlay(r.JokerPlace, Coordinate{11, 0}, 2); !errors.Is(err, ErrOutOfBoard) {
		t.Fatalf("expected ErrOutOfBoard, got %v", err)
	}
}

func TestPegsIsCopy(t *testing.T) {
	g := newTestGame(t)
	g.Place(Coordinate{1, 1}, 1)
	pegs := g.Pegs()
	delete(pegs, Coordinate{1, 1})
	if !g.Contains(Coordinate{1, 1}) {
		t.Fatal("Pegs must return a copy")
	}
}
