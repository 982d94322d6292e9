package discovery

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net"
	"sync"
	"time"
)

const (
	multicastIpAddress = "239.0.0.1"
	keyLength          = 8
	maxPacket          = 1024
)

// Discover announces a payload on a UDP multicast group and listens for the
// payloads of other instances. Configure Info, Port and
// IntervalBetweenAnnouncements before calling Start; a nil Info only listens.
type Discover struct {
	Info                         []byte
	Port                         uint16
	IntervalBetweenAnnouncements time.Duration
	Logger                       *slog.Logger
	Entries                      chan Entry

	conn      *net.UDPConn
	sendConn  *net.UDPConn
	key       []byte
	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// Entry is a single announcement received from another instance.
type Entry struct {
	Info []byte
	From *net.UDPAddr
	Time time.Time
}

// Start joins the multicast group and starts the listening and announcing
// goroutines. On success, entries are delivered on Entries.
func (d *Discover) Start() error {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.IntervalBetweenAnnouncements <= 0 {
		d.IntervalBetweenAnnouncements = time.Second
	}
	if len(d.Info) > maxPacket-keyLength {
		return fmt.Errorf("announcement of %d bytes exceeds %d", len(d.Info), maxPacket-keyLength)
	}
	d.Entries = make(chan Entry, 10)
	d.done = make(chan struct{})
	d.key = []byte(fmt.Sprintf("%08x", rand.Uint32()))
	addr, err := net.ResolveUDPAddr("udp", fmt.Sprintf("%s:%d", multicastIpAddress, d.Port))
	if err != nil {
		return err
	}
	d.conn, err = net.ListenMulticastUDP("udp", nil, addr)
	if err != nil {
		return err
	}
	if d.Info != nil {
		d.sendConn, err = net.DialUDP("udp", nil, addr)
		if err != nil {
			return errors.Join(err, d.conn.Close())
		}
		d.startDialer()
	}
	d.startListener()
	return nil
}

// Close stops both goroutines and closes the UDP connections. Entries is
// closed once the listener returned.
func (d *Discover) Close() error {
	var err error
	d.closeOnce.Do(func() {
		close(d.done)
		err = d.conn.Close()
		if d.sendConn != nil {
			err = errors.Join(err, d.sendConn.Close())
		}
		d.wg.Wait()
	})
	return err
}

func (d *Discover) startListener() {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer close(d.Entries)
		buffer := make([]byte, maxPacket)
		for {
			n, from, err := d.conn.ReadFromUDP(buffer)
			if err != nil {
				if !errors.Is(err, net.ErrClosed) {
					d.Logger.Error("discovery listener stopped", "err", err)
				}
				return
			}
			if n < keyLength || bytes.Equal(buffer[:keyLength], d.key) {
				continue
			}
			entry := Entry{
				Info: bytes.Clone(buffer[keyLength:n]),
				From: from,
				Time: time.Now(),
			}
			select {
			case d.Entries <- entry:
			case <-d.done:
				return
			}
		}
	}()
}

func (d *Discover) startDialer() {
	packet := append(bytes.Clone(d.key), d.Info...)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ticker := time.NewTicker(d.IntervalBetweenAnnouncements)
		defer ticker.Stop()
		for {
			if _, err := d.sendConn.Write(packet); err != nil {
				if errors.Is(err, net.ErrClosed) {
					return
				}
				d.Logger.Warn("discovery announcement failed", "err", err)
			}
			select {
			case <-ticker.C:
			case <-d.done:
				return
			}
		}
	}()
}
