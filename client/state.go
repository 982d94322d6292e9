package client

import (
	"maps"
	"slices"

	"github.com/luca-patrignani/sequence/domain/sequence"
)

// State is a copy of what the client knows about the game.
type State struct {
	ID      sequence.PlayerID
	Name    string
	Names   map[sequence.PlayerID]string
	Order   []sequence.PlayerID
	Started bool
	Turn    int
	Active  sequence.PlayerID
	Hand    []sequence.Code
	Winner  sequence.PlayerID
	Over    bool
	// Game is nil until the game started.
	Game *sequence.Game
}

// MyTurn reports whether the client may play now.
func (s State) MyTurn() bool {
	return s.Started && !s.Over && s.ID != 0 && s.Active == s.ID
}

func (s State) clone() State {
	c := s
	c.Names = maps.Clone(s.Names)
	c.Order = slices.Clone(s.Order)
	c.Hand = slices.Clone(s.Hand)
	if s.Game != nil {
		g := sequence.NewGame(s.Game.Rules(), s.Game.Assignment())
		for at, id := range s.Game.Pegs() {
			g.Place(at, id)
		}
		c.Game = g
	}
	return c
}

// Playable returns the cells where the card at hand index i can be played,
// in row-major order.
func (s State) Playable(i int) []sequence.Coordinate {
	if s.Game == nil || i < 0 || i >= len(s.Hand) {
		return nil
	}
	rules := s.Game.Rules()
	var cells []sequence.Coordinate
	for y := 0; y < rules.Rows; y++ {
		for x := 0; x < rules.Columns; x++ {
			at := sequence.Coordinate{X: x, Y: y}
			if s.Game.CheckPlay(s.Hand[i], at) == nil {
				cells = append(cells, at)
			}
		}
	}
	return cells
}

// Dead reports whether the card at hand index i has no legal cell left.
func (s State) Dead(i int) bool {
	return s.Game != nil && i >= 0 && i < len(s.Hand) && len(s.Playable(i)) == 0
}
