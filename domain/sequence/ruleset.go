package sequence

import (
	"crypto/cipher"
	"fmt"

	"github.com/luca-patrignani/sequence/domain/deck"
)

// Ruleset holds the board geometry, deck composition and player bounds of a game.
// It is a plain value: copies are independent and nothing mutates it after
// construction.
type Ruleset struct {
	Rows    int
	Columns int

	Suits      []string
	SuitMin    int
	SuitMax    int
	Faces      []string
	BoardDecks int // copies of the suited deck laid on the board

	JokerPlace  Code
	JokerRemove Code
	JokerCopies int // copies of each joker in the deal deck

	MinPlayers  int
	MaxPlayers  int
	CardsInHand int

	WinLine       int
	CornerWinLine int
}

// DefaultRuleset is the 8x11 board with ranks 2..9, Q, K, A in four suits.
func DefaultRuleset() Ruleset {
	return Ruleset{
		Rows:          8,
		Columns:       11,
		Suits:         []string{"h", "s", "d", "c"},
		SuitMin:       2,
		SuitMax:       9,
		Faces:         []string{"Q", "K", "A"},
		BoardDecks:    2,
		JokerPlace:    "j1",
		JokerRemove:   "j2",
		JokerCopies:   4,
		MinPlayers:    2,
		MaxPlayers:    3,
		CardsInHand:   6,
		WinLine:       5,
		CornerWinLine: 4,
	}
}

// Validate checks that the ruleset describes a playable game. Every failure is
// a *ConfigurationError.
func (r Ruleset) Validate() error {
	switch {
	case r.Rows <= 0 || r.Columns <= 0:
		return &ConfigurationError{Reason: fmt.Sprintf("board must have positive size, got %dx%d", r.Rows, r.Columns)}
	case len(r.Suits) == 0 || r.SuitMin > r.SuitMax:
		return &ConfigurationError{Reason: "empty suit range"}
	case r.JokerPlace == "" || r.JokerRemove == "" || r.JokerPlace == r.JokerRemove:
		return &ConfigurationError{Reason: "place and remove jokers must be distinct codes"}
	case r.MinPlayers < 1 || r.MaxPlayers < r.MinPlayers:
		return &ConfigurationError{Reason: fmt.Sprintf("invalid player bounds [%d, %d]", r.MinPlayers, r.MaxPlayers)}
	case r.CardsInHand < 1:
		return &ConfigurationError{Reason: "players must hold at least one card"}
	case r.CornerWinLine < 1 || r.WinLine < r.CornerWinLine:
		return &ConfigurationError{Reason: fmt.Sprintf("invalid winning lines %d/%d", r.WinLine, r.CornerWinLine)}
	}
	_, err := r.BoardDeck()
	return err
}

// BoardDeck lists the codes laid on the board, BoardDecks times each suit with
// its ranks followed by the faces. The length must match the number of cells.
func (r Ruleset) BoardDeck() ([]Code, error) {
	codes := make([]Code, 0, r.Rows*r.Columns)
	for n := 0; n < r.BoardDecks; n++ {
		for _, suit := range r.Suits {
			for rank := r.SuitMin; rank <= r.SuitMax; rank++ {
				codes = append(codes, Code(fmt.Sprintf("%s%d", suit, rank)))
			}
			for _, face := range r.Faces {
				codes = append(codes, Code(suit+face))
			}
		}
	}
	if len(codes) != r.Rows*r.Columns {
		return nil, &ConfigurationError{
			Reason: fmt.Sprintf("board deck has %d cards but the board has %d cells", len(codes), r.Rows*r.Columns),
		}
	}
	return codes, nil
}

// DealDeck lists the unshuffled cards dealt to players: the board deck plus
// JokerCopies copies of each joker.
func (r Ruleset) DealDeck() ([]Code, error) {
	codes, err := r.BoardDeck()
	if err != nil {
		return nil, err
	}
	for i := 0; i < r.JokerCopies; i++ {
		codes = append(codes, r.JokerPlace, r.JokerRemove)
	}
	return codes, nil
}

// ShuffledDealDeck returns DealDeck shuffled with stream.
func (r Ruleset) ShuffledDealDeck(stream cipher.Stream) ([]Code, error) {
	codes, err := r.DealDeck()
	if err != nil {
		return nil, err
	}
	deck.Shuffle(codes, stream)
	return codes, nil
}

// RandomAssignment shuffles the board deck and lays it on the board in
// row-major order.
func (r Ruleset) RandomAssignment(stream cipher.Stream) (Assignment, error) {
	codes, err := r.BoardDeck()
	if err != nil {
		return Assignment{}, err
	}
	deck.Shuffle(codes, stream)
	return NewAssignment(r, codes)
}

// InBoard reports whether c lies on the board.
func (r Ruleset) InBoard(c Coordinate) bool {
	return c.X >= 0 && c.X < r.Columns && c.Y >= 0 && c.Y < r.Rows
}

// IsCorner reports whether c is one of the four corner cells.
func (r Ruleset) IsCorner(c Coordinate) bool {
	return (c.X == 0 || c.X == r.Columns-1) && (c.Y == 0 || c.Y == r.Rows-1)
}

// IsJoker reports whether code is one of the two wildcards.
func (r Ruleset) IsJoker(code Code) bool {
	return code == r.JokerPlace || code == r.JokerRemove
}
