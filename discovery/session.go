package discovery

import (
	"encoding/json"
	"net"
	"time"
)

// DefaultPort is the UDP port sessions are announced on.
const DefaultPort uint16 = 53550

// Session is the announcement of a hosted game.
type Session struct {
	ID      string `json:"session_id"`
	Name    string `json:"name"`
	Address string `json:"address"`
}

// Announce starts announcing s on port every interval. Close the returned
// Discover to stop.
func Announce(s Session, port uint16, interval time.Duration) (*Discover, error) {
	info, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	d := &Discover{
		Info:                         info,
		Port:                         port,
		IntervalBetweenAnnouncements: interval,
	}
	if err := d.Start(); err != nil {
		return nil, err
	}
	return d, nil
}

// Browser lists the sessions announced on the local network.
type Browser struct {
	Sessions chan Session
	discover *Discover
}

// Browse listens for announcements on port. Every session is delivered once
// on Sessions.
func Browse(port uint16) (*Browser, error) {
	d := &Discover{Port: port}
	if err := d.Start(); err != nil {
		return nil, err
	}
	b := &Browser{
		Sessions: make(chan Session),
		discover: d,
	}
	go func() {
		defer close(b.Sessions)
		seen := map[string]struct{}{}
		for entry := range d.Entries {
			var s Session
			if err := json.Unmarshal(entry.Info, &s); err != nil {
				d.Logger.Debug("ignoring announcement", "from", entry.From.String(), "err", err)
				continue
			}
			if _, ok := seen[s.ID]; ok || s.ID == "" {
				continue
			}
			seen[s.ID] = struct{}{}
			select {
			case b.Sessions <- s:
			case <-d.done:
				return
			}
		}
	}()
	return b, nil
}

func (b *Browser) Close() error {
	return b.discover.Close()
}

// LocalIP returns the first non-loopback IPv4 address of the host, or
// "localhost" when there is none.
func LocalIP() string {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return "localhost"
	}
	for _, addr := range addrs {
		ipNet, ok := addr.(*net.IPNet)
		if !ok || ipNet.IP.IsLoopback() {
			continue
		}
		if ip := ipNet.IP.To4(); ip != nil {
			return ip.String()
		}
	}
	return "localhost"
}
