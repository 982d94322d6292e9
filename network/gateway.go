package network

import (
	"context"
	"crypto/tls"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	pongWait   = 60 * time.Second
	pingPeriod = 20 * time.Second
)

// Gateway exposes a Handler over WebSocket at /ws, with a liveness probe at
// /healthz.
type Gateway struct {
	handler  Handler
	opts     options
	upgrader websocket.Upgrader
	server   *http.Server

	mu    sync.Mutex
	conns map[uint64]*wsConn
	wg    sync.WaitGroup
}

func NewGateway(handler Handler, opts ...Option) *Gateway {
	g := &Gateway{
		handler: handler,
		opts:    buildOptions(opts),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		conns: make(map[uint64]*wsConn),
	}
	mux := http.NewServeMux()
	g.Routes(mux)
	g.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 15 * time.Second,
		TLSConfig:         g.opts.tlsConfig,
	}
	return g
}

// Routes mounts the gateway on mux.
func (g *Gateway) Routes(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", g.handleWS)
}

// Serve accepts HTTP connections on l until Close. It returns nil after Close.
func (g *Gateway) Serve(l net.Listener) error {
	if g.opts.tlsConfig != nil {
		l = tls.NewListener(l, g.opts.tlsConfig)
	}
	err := g.server.Serve(l)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (g *Gateway) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := g.server.Shutdown(ctx)
	g.mu.Lock()
	for _, c := range g.conns {
		err = errors.Join(err, c.Close())
	}
	g.mu.Unlock()
	g.wg.Wait()
	return err
}

func (g *Gateway) handleWS(w http.ResponseWriter, r *http.Request) {
	ws, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.opts.logger.Warn("websocket upgrade failed", "err", err)
		return
	}
	c := &wsConn{
		id:     nextConnID(),
		conn:   ws,
		out:    newOutbox(g.opts.sendBuffer),
		logger: g.opts.logger,
	}
	g.mu.Lock()
	g.conns[c.id] = c
	g.mu.Unlock()
	g.opts.logger.Debug("websocket accepted", "conn", c.id, "remote", c.RemoteAddr())
	g.handler.Connect(c)
	g.wg.Add(2)
	go func() {
		defer g.wg.Done()
		c.writePump()
	}()
	go func() {
		defer g.wg.Done()
		c.readPump(g.handler)
		g.mu.Lock()
		delete(g.conns, c.id)
		g.mu.Unlock()
	}()
}

type wsConn struct {
	id     uint64
	conn   *websocket.Conn
	out    *outbox
	logger *slog.Logger
}

func (c *wsConn) ID() uint64 {
	return c.id
}

func (c *wsConn) RemoteAddr() string {
	return c.conn.RemoteAddr().String()
}

func (c *wsConn) Send(msg []byte) error {
	err := c.out.push(msg)
	if errors.Is(err, ErrSlowConsumer) {
		c.logger.Warn("dropping slow connection", "conn", c.id)
		_ = c.Close()
	}
	return err
}

func (c *wsConn) Close() error {
	if !c.out.close() {
		return nil
	}
	return c.conn.Close()
}

func (c *wsConn) readPump(h Handler) {
	defer func() {
		_ = c.Close()
		h.Disconnect(c)
	}()

	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		kind, message, err := c.conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.logger.Debug("websocket read failed", "conn", c.id, "err", err)
			}
			return
		}
		if kind != websocket.TextMessage {
			continue
		}
		h.Receive(c, message)
	}
}

func (c *wsConn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case msg := <-c.out.queue:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				_ = c.Close()
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				_ = c.Close()
				return
			}
		case <-c.out.done():
			return
		}
	}
}
