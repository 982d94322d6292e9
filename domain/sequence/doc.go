// Package sequence implements the domain logic of the Sequence board-and-card
// game: the ruleset, the board-card layout, the peg map with win detection and
// the registry of players and their hands.
//
// # Core Types
//
// Ruleset: the immutable geometry and deck configuration of a game. It replaces
// global constants and is validated once when a session is built.
//
// Assignment: the fixed mapping from every board cell to a card code.
//
// Game: the peg map on top of an Assignment. The same value type backs the
// authoritative server state and the read-only mirror kept by clients.
//
// Registry: the players of a session, their names and their hands.
//
// # Winning
//
// A peg wins when it completes a contiguous line of the owner's pegs along one
// of the four axes (vertical, horizontal and the two diagonals). Five pegs always
// win; four pegs win when one end of the line sits on a corner cell of the board.
package sequence
