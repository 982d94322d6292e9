// Package discovery provides a lightweight UDP multicast-based announcement of
// hosted game sessions.
//
// A server announces itself with Announce, and clients list the sessions of
// the local network with Browse:
//
//	d, err := discovery.Announce(discovery.Session{
//		ID:      id,
//		Name:    "Friday game",
//		Address: discovery.LocalIP() + ":9999",
//	}, discovery.DefaultPort, time.Second)
//	if err != nil {
//		return err
//	}
//	defer d.Close()
//
// Behavior:
//   - Announcements are sent via UDP multicast to 239.0.0.1 on the given port.
//   - Each instance uses a random 8-byte key to identify its own packets and filter them out.
//   - Discovered entries are delivered on the Entries channel, closed by Close.
package discovery
