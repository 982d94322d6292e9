// Package deck provides the card supply primitives shared by the game domain:
// an unbiased shuffle driven by a cryptographic stream and a circular deck
// that never runs out.
package deck

import "fmt"

// Circular is a deck whose cursor wraps around instead of exhausting the cards.
// Drawing past the end starts again from the first card, so the supply is
// logically infinite and a card can come up more than once in a long game.
type Circular[T any] struct {
	cards  []T
	cursor int
}

// NewCircular wraps cards in a circular deck. The slice is copied.
func NewCircular[T any](cards []T) (*Circular[T], error) {
	if len(cards) == 0 {
		return nil, fmt.Errorf("deck must contain at least one card")
	}
	c := make([]T, len(cards))
	copy(c, cards)
	return &Circular[T]{cards: c}, nil
}

// Draw returns the card under the cursor and advances it.
func (d *Circular[T]) Draw() T {
	card := d.cards[d.cursor%len(d.cards)]
	d.cursor++
	return card
}

// Dealt is the number of cards drawn so far, wraps included.
func (d *Circular[T]) Dealt() int {
	return d.cursor
}

// Len is the physical size of the deck.
func (d *Circular[T]) Len() int {
	return len(d.cards)
}

// Cards returns a copy of the deck in draw order.
func (d *Circular[T]) Cards() []T {
	out := make([]T, len(d.cards))
	copy(out, d.cards)
	return out
}
