package sequence

import "fmt"

// PlayerID identifies a player for the lifetime of a session.
type PlayerID int

// Game is the board of a running match: the fixed card assignment and the pegs
// placed on it. The server keeps the authoritative copy; clients replay the
// broadcast plays on their own mirror.
type Game struct {
	rules      Ruleset
	assignment Assignment
	pegs       map[Coordinate]PlayerID
}

func NewGame(rules Ruleset, assignment Assignment) *Game {
	return &Game{
		rules:      rules,
		assignment: assignment,
		pegs:       make(map[Coordinate]PlayerID),
	}
}

func (g *Game) Rules() Ruleset {
	return g.rules
}

func (g *Game) Assignment() Assignment {
	return g.assignment
}

// CardAt returns the card printed on c.
func (g *Game) CardAt(c Coordinate) (Code, error) {
	if !g.rules.InBoard(c) {
		return "", fmt.Errorf("%w: %s", ErrOutOfBoard, c)
	}
	return g.assignment.At(c), nil
}

// Occupant returns the owner of the peg on c, if any.
func (g *Game) Occupant(c Coordinate) (PlayerID, bool) {
	id, ok := g.pegs[c]
	return id, ok
}

func (g *Game) Contains(c Coordinate) bool {
	_, ok := g.pegs[c]
	return ok
}

func (g *Game) Place(c Coordinate, id PlayerID) {
	g.pegs[c] = id
}

func (g *Game) Remove(c Coordinate) {
	delete(g.pegs, c)
}

// Pegs returns a copy of the peg map.
func (g *Game) Pegs() map[Coordinate]PlayerID {
	out := make(map[Coordinate]PlayerID, len(g.pegs))
	for c, id := range g.pegs {
		out[c] = id
	}
	return out
}

// CheckPlay reports whether code may be played on c given the current pegs.
// It does not look at hands or turns.
func (g *Game) CheckPlay(code Code, c Coordinate) error {
	if !g.rules.InBoard(c) {
		return fmt.Errorf("%w: %s", ErrOutOfBoard, c)
	}
	occupied := g.Contains(c)
	switch code {
	case g.rules.JokerRemove:
		if !occupied {
			return fmt.Errorf("%w: %s", ErrCellEmpty, c)
		}
	case g.rules.JokerPlace:
		if occupied {
			return fmt.Errorf("%w: %s", ErrCellOccupied, c)
		}
	default:
		if g.assignment.At(c) != code {
			return fmt.Errorf("%w: %s is not on %s", ErrCardMismatch, code, c)
		}
		if occupied {
			return fmt.Errorf("%w: %s", ErrCellOccupied, c)
		}
	}
	return nil
}

// ApplyPlay validates and applies code on c for id. It reports whether a peg
// was placed; false means the remove joker cleared the cell.
func (g *Game) ApplyPlay(code Code, c Coordinate, id PlayerID) (bool, error) {
	if err := g.CheckPlay(code, c); err != nil {
		return false, err
	}
	if code == g.rules.JokerRemove {
		g.Remove(c)
		return false, nil
	}
	g.Place(c, id)
	return true, nil
}

// axes lists the scan directions: vertical, horizontal, then the two diagonals.
var axes = [4]Coordinate{
	{X: 0, Y: 1},
	{X: 1, Y: 0},
	{X: 1, Y: 1},
	{X: 1, Y: -1},
}

// WinningOwner reports the owner of the peg on (x, y) if that peg is part of a
// winning line. The cell must be occupied; an empty cell never wins.
func (g *Game) WinningOwner(x, y int) (PlayerID, bool) {
	origin := Coordinate{X: x, Y: y}
	owner, ok := g.pegs[origin]
	if !ok {
		return 0, false
	}
	for _, dir := range axes {
		fwd, fwdEnd := g.scan(origin, dir, owner)
		back, backEnd := g.scan(origin, Coordinate{X: -dir.X, Y: -dir.Y}, owner)
		run := fwd + back + 1
		if run >= g.rules.WinLine {
			return owner, true
		}
		if run >= g.rules.CornerWinLine && (g.rules.IsCorner(fwdEnd) || g.rules.IsCorner(backEnd)) {
			return owner, true
		}
	}
	return 0, false
}

// scan walks from origin along dir while the cells belong to owner. It returns
// the number of cells walked and the last owned cell reached.
func (g *Game) scan(origin, dir Coordinate, owner PlayerID) (int, Coordinate) {
	count := 0
	last := origin
	for {
		next := Coordinate{X: last.X + dir.X, Y: last.Y + dir.Y}
		if !g.rules.InBoard(next) {
			return count, last
		}
		if id, ok := g.pegs[next]; !ok || id != owner {
			return count, last
		}
		count++
		last = next
	}
}
