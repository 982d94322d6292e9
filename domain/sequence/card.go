package sequence

import (
	"strconv"

	"github.com/paulhankin/poker"
)

// Code is the wire name of a card: a suit letter followed by a rank ("h7", "sQ")
// or one of the joker codes of the ruleset.
type Code string

var suitByLetter = map[byte]poker.Suit{
	'c': poker.Club,
	'd': poker.Diamond,
	'h': poker.Heart,
	's': poker.Spade,
}

var rankByFace = map[string]poker.Rank{
	"A": 1,
	"J": 11,
	"Q": 12,
	"K": 13,
}

// Suited converts a suited code to a standard playing card. Jokers and
// malformed codes report false.
func (c Code) Suited() (poker.Card, bool) {
	var none poker.Card
	if len(c) < 2 {
		return none, false
	}
	suit, ok := suitByLetter[c[0]]
	if !ok {
		return none, false
	}
	rest := string(c[1:])
	rank, ok := rankByFace[rest]
	if !ok {
		n, err := strconv.Atoi(rest)
		if err != nil || n < 2 || n > 10 {
			return none, false
		}
		rank = poker.Rank(n)
	}
	card, err := poker.MakeCard(suit, rank)
	if err != nil {
		return none, false
	}
	return card, true
}

// Describe renders a card for humans. Jokers are spelled out, suited cards use
// the standard short notation and unknown codes are returned unchanged.
func (r Ruleset) Describe(c Code) string {
	switch c {
	case r.JokerPlace:
		return "Joker (place)"
	case r.JokerRemove:
		return "Joker (remove)"
	}
	if card, ok := c.Suited(); ok {
		return card.String()
	}
	return string(c)
}
