package network

import (
	"bufio"
	"crypto/tls"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"
)

// Server accepts TCP connections and frames them as newline-delimited JSON.
type Server struct {
	listener net.Listener
	handler  Handler
	opts     options

	mu     sync.Mutex
	conns  map[uint64]*tcpConn
	wg     sync.WaitGroup
	closed atomic.Bool
}

// NewServer serves handler on l. Call Serve to start accepting.
func NewServer(l net.Listener, handler Handler, opts ...Option) *Server {
	o := buildOptions(opts)
	if o.tlsConfig != nil {
		l = tls.NewListener(l, o.tlsConfig)
	}
	return &Server{
		listener: l,
		handler:  handler,
		opts:     o,
		conns:    make(map[uint64]*tcpConn),
	}
}

func (s *Server) Addr() string {
	return s.listener.Addr().String()
}

// Serve accepts connections until Close is called. It returns nil after Close.
func (s *Server) Serve() error {
	for {
		c, err := s.listener.Accept()
		if err != nil {
			if s.closed.Load() || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}
		conn := &tcpConn{
			id:     nextConnID(),
			conn:   c,
			out:    newOutbox(s.opts.sendBuffer),
			logger: s.opts.logger,
		}
		s.mu.Lock()
		s.conns[conn.id] = conn
		s.mu.Unlock()

		s.opts.logger.Debug("connection accepted", "conn", conn.id, "remote", conn.RemoteAddr())
		s.handler.Connect(conn)
		s.wg.Add(2)
		go func() {
			defer s.wg.Done()
			conn.writeLoop()
		}()
		go func() {
			defer s.wg.Done()
			conn.readLoop(s.handler)
			s.mu.Lock()
			delete(s.conns, conn.id)
			s.mu.Unlock()
		}()
	}
}

// Close stops accepting, closes every connection and waits for their
// goroutines to return.
func (s *Server) Close() error {
	s.closed.Store(true)
	err := s.listener.Close()
	s.mu.Lock()
	for _, c := range s.conns {
		err = errors.Join(err, c.Close())
	}
	s.mu.Unlock()
	s.wg.Wait()
	if errors.Is(err, net.ErrClosed) {
		return nil
	}
	return err
}

type tcpConn struct {
	id     uint64
	conn   net.Conn
	out    *outbox
	logger *slog.Logger
}

func (c *tcpConn) ID() uint64 {
	return c.id
}

func (c *tcpConn) RemoteAddr() string {
	return c.conn.RemoteAddr().String()
}

func (c *tcpConn) Send(msg []byte) error {
	err := c.out.push(msg)
	if errors.Is(err, ErrSlowConsumer) {
		c.logger.Warn("dropping slow connection", "conn", c.id)
		_ = c.Close()
	}
	return err
}

func (c *tcpConn) Close() error {
	if !c.out.close() {
		return nil
	}
	return c.conn.Close()
}

func (c *tcpConn) readLoop(h Handler) {
	defer func() {
		_ = c.Close()
		h.Disconnect(c)
	}()
	dec := json.NewDecoder(bufio.NewReader(c.conn))
	for {
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
				c.logger.Debug("closing connection", "conn", c.id, "err", err)
			}
			return
		}
		h.Receive(c, raw)
	}
}

func (c *tcpConn) writeLoop() {
	w := bufio.NewWriter(c.conn)
	for {
		select {
		case msg := <-c.out.queue:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if _, err := w.Write(msg); err != nil {
				_ = c.Close()
				return
			}
			if err := w.WriteByte('\n'); err != nil {
				_ = c.Close()
				return
			}
			if len(c.out.queue) == 0 {
				if err := w.Flush(); err != nil {
					_ = c.Close()
					return
				}
			}
		case <-c.out.done():
			return
		}
	}
}

// CreateListeners opens n listeners on ephemeral localhost ports.
func CreateListeners(n int) (map[int]net.Listener, map[int]string) {
	listeners := make(map[int]net.Listener)
	addresses := make(map[int]string)
	for i := 0; i < n; i++ {
		l, err := net.Listen("tcp", "localhost:0")
		if err != nil {
			panic(err)
		}
		listeners[i] = l
		addresses[i] = l.Addr().String()
	}
	return listeners, addresses
}
