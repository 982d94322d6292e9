package session

import (
	"crypto/cipher"
	"log/slog"

	"github.com/luca-patrignani/sequence/domain/sequence"
	"github.com/luca-patrignani/sequence/ledger"
)

type options struct {
	logger     *slog.Logger
	stream     cipher.Stream
	assignment []sequence.Code
	dealDeck   []sequence.Code
	signer     *ledger.Signer
}

type option func(options) options

func WithLogger(logger *slog.Logger) option {
	return func(o options) options {
		o.logger = logger
		return o
	}
}

// WithRandomStream sets the source of every shuffle of the session.
func WithRandomStream(stream cipher.Stream) option {
	return func(o options) options {
		o.stream = stream
		return o
	}
}

// WithAssignment lays codes on the board in row-major order instead of a
// random layout.
func WithAssignment(codes []sequence.Code) option {
	return func(o options) options {
		o.assignment = codes
		return o
	}
}

// WithDealDeck deals codes in the given order instead of a shuffled deal deck.
func WithDealDeck(codes []sequence.Code) option {
	return func(o options) options {
		o.dealDeck = codes
		return o
	}
}

// WithSigner signs the session journal with signer instead of a fresh key.
func WithSigner(signer *ledger.Signer) option {
	return func(o options) options {
		o.signer = signer
		return o
	}
}
