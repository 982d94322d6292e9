package network

import (
	"errors"
	"sync"
	"sync/atomic"
)

var (
	ErrClosed       = errors.New("connection closed")
	ErrSlowConsumer = errors.New("send queue full")
)

// Conn is a client connection as seen by a Handler.
type Conn interface {
	// ID is unique among the connections of the process.
	ID() uint64
	RemoteAddr() string
	// Send queues msg without blocking. A full queue closes the connection
	// and returns ErrSlowConsumer.
	Send(msg []byte) error
	Close() error
}

// Handler receives the events of every connection. Receive is called from the
// reading goroutine of the connection, one message at a time.
type Handler interface {
	Connect(c Conn)
	Receive(c Conn, msg []byte)
	Disconnect(c Conn)
}

var lastConnID atomic.Uint64

func nextConnID() uint64 {
	return lastConnID.Add(1)
}

// outbox is the send queue shared by the transports.
type outbox struct {
	queue  chan []byte
	closed chan struct{}
	once   sync.Once
}

func newOutbox(size int) *outbox {
	if size < 1 {
		size = 1
	}
	return &outbox{
		queue:  make(chan []byte, size),
		closed: make(chan struct{}),
	}
}

// push queues msg. It reports ErrSlowConsumer when the queue is full; the
// caller closes the connection.
func (o *outbox) push(msg []byte) error {
	select {
	case <-o.closed:
		return ErrClosed
	default:
	}
	select {
	case o.queue <- msg:
		return nil
	case <-o.closed:
		return ErrClosed
	default:
		return ErrSlowConsumer
	}
}

// close reports whether this call closed the outbox.
func (o *outbox) close() bool {
	first := false
	o.once.Do(func() {
		close(o.closed)
		first = true
	})
	return first
}

func (o *outbox) done() <-chan struct{} {
	return o.closed
}
