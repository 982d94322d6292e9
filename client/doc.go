// Package client is a reference client for the Sequence server.
//
// A Client speaks the JSON line protocol over TCP (optionally TLS) and keeps
// a read-only mirror of the game built from the events it receives: the board
// layout, the pegs, its own hand and whose turn it is. The mirror is never
// authoritative; the server validates every request.
package client
