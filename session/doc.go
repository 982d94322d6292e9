// Package session implements the authoritative controller of one Sequence
// game.
//
// A Controller owns every piece of mutable state of the game: the peg map,
// the hands, the deal deck and its cursor, the turn sequence and the turn
// counter. All of it is touched only by the goroutine running Controller.Run.
// Transports hand connection events to the controller through the
// network.Handler methods, which enqueue work for that goroutine; this makes
// "check turn, check hand, check cell, mutate, broadcast" atomic with respect
// to every other request.
//
// The controller moves through three states:
//
//	ACCEPTING_CONNECTIONS -> PLAYING -> FINISHED
//
// The game starts when the maximum number of players has logged in, or when a
// logged-in player asks for it and the minimum is met. It finishes when a
// placed peg completes a winning line.
package session
