package sequence

import (
	"fmt"
	"strconv"
	"strings"
)

// Coordinate addresses a board cell. X is the column and Y the row, both
// zero-based from the top-left corner.
type Coordinate struct {
	X int
	Y int
}

// Key is the "x_y" form used as the key of the card assignment on the wire.
func (c Coordinate) Key() string {
	return strconv.Itoa(c.X) + "_" + strconv.Itoa(c.Y)
}

func (c Coordinate) String() string {
	return fmt.Sprintf("(%d, %d)", c.X, c.Y)
}

// ParseKey is the inverse of Coordinate.Key.
func ParseKey(key string) (Coordinate, error) {
	xs, ys, ok := strings.Cut(key, "_")
	if !ok {
		return Coordinate{}, fmt.Errorf("malformed cell key %q", key)
	}
	x, err := strconv.Atoi(xs)
	if err != nil {
		return Coordinate{}, fmt.Errorf("malformed cell key %q: %w", key, err)
	}
	y, err := strconv.Atoi(ys)
	if err != nil {
		return Coordinate{}, fmt.Errorf("malformed cell key %q: %w", key, err)
	}
	return Coordinate{X: x, Y: y}, nil
}

// Assignment maps every board cell to the card printed on it. It is fixed for
// the lifetime of a game.
type Assignment struct {
	columns int
	cells   []Code // row-major
}

// NewAssignment lays codes on the board of r in row-major order. The number of
// codes must equal the number of cells.
func NewAssignment(r Ruleset, codes []Code) (Assignment, error) {
	if len(codes) != r.Rows*r.Columns {
		return Assignment{}, &ConfigurationError{
			Reason: fmt.Sprintf("assignment needs %d cards, got %d", r.Rows*r.Columns, len(codes)),
		}
	}
	cells := make([]Code, len(codes))
	copy(cells, codes)
	return Assignment{columns: r.Columns, cells: cells}, nil
}

// AssignmentFromWire rebuilds an assignment from its "x_y" keyed form. Every
// cell of the board must be present exactly once.
func AssignmentFromWire(r Ruleset, wire map[string]Code) (Assignment, error) {
	if len(wire) != r.Rows*r.Columns {
		return Assignment{}, &ConfigurationError{
			Reason: fmt.Sprintf("assignment needs %d cells, got %d", r.Rows*r.Columns, len(wire)),
		}
	}
	cells := make([]Code, r.Rows*r.Columns)
	for key, code := range wire {
		c, err := ParseKey(key)
		if err != nil {
			return Assignment{}, err
		}
		if !r.InBoard(c) {
			return Assignment{}, fmt.Errorf("%w: %s", ErrOutOfBoard, c)
		}
		cells[c.Y*r.Columns+c.X] = code
	}
	return Assignment{columns: r.Columns, cells: cells}, nil
}

// At returns the card printed on c. The coordinate must lie on the board.
func (a Assignment) At(c Coordinate) Code {
	return a.cells[c.Y*a.columns+c.X]
}

// Len is the number of cells.
func (a Assignment) Len() int {
	return len(a.cells)
}

// Wire returns the assignment keyed by Coordinate.Key.
func (a Assignment) Wire() map[string]Code {
	wire := make(map[string]Code, len(a.cells))
	for i, code := range a.cells {
		wire[Coordinate{X: i % a.columns, Y: i / a.columns}.Key()] = code
	}
	return wire
}

// Codes returns a copy of the cells in row-major order.
func (a Assignment) Codes() []Code {
	out := make([]Code, len(a.cells))
	copy(out, a.cells)
	return out
}
