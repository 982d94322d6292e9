package client

import (
	"crypto/tls"
	"log/slog"
	"time"

	"github.com/luca-patrignani/sequence/domain/sequence"
)

type options struct {
	logger      *slog.Logger
	tlsConfig   *tls.Config
	rules       sequence.Ruleset
	dialTimeout time.Duration
	eventBuffer int
}

// Option configures Dial.
type Option func(options) options

func WithLogger(logger *slog.Logger) Option {
	return func(o options) options {
		o.logger = logger
		return o
	}
}

// WithTLS dials the server over TLS.
func WithTLS(config *tls.Config) Option {
	return func(o options) options {
		o.tlsConfig = config
		return o
	}
}

// WithRuleset sets the rules the server plays with. Defaults to
// sequence.DefaultRuleset.
func WithRuleset(rules sequence.Ruleset) Option {
	return func(o options) options {
		o.rules = rules
		return o
	}
}

func WithDialTimeout(d time.Duration) Option {
	return func(o options) options {
		o.dialTimeout = d
		return o
	}
}

// WithEventBuffer sets the capacity of the Events channel.
func WithEventBuffer(n int) Option {
	return func(o options) options {
		o.eventBuffer = n
		return o
	}
}
