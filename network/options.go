package network

import (
	"crypto/tls"
	"log/slog"
	"time"
)

const (
	defaultSendBuffer = 64
	writeTimeout      = 10 * time.Second
)

type options struct {
	logger     *slog.Logger
	sendBuffer int
	tlsConfig  *tls.Config
}

// Option configures a Server or a Gateway.
type Option func(options) options

func buildOptions(opts []Option) options {
	o := options{
		logger:     slog.Default(),
		sendBuffer: defaultSendBuffer,
	}
	for _, opt := range opts {
		o = opt(o)
	}
	return o
}

func WithLogger(logger *slog.Logger) Option {
	return func(o options) options {
		o.logger = logger
		return o
	}
}

// WithSendBuffer sets how many outbound messages a connection may queue before
// it is dropped.
func WithSendBuffer(n int) Option {
	return func(o options) options {
		o.sendBuffer = n
		return o
	}
}

// WithCertificate serves TLS with cert.
func WithCertificate(cert tls.Certificate) Option {
	return func(o options) options {
		if o.tlsConfig == nil {
			o.tlsConfig = &tls.Config{}
		}
		o.tlsConfig.Certificates = append(o.tlsConfig.Certificates, cert)
		return o
	}
}
