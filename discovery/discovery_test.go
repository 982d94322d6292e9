package discovery

import (
	"fmt"
	"testing"
	"time"
)

func startOrSkip(t *testing.T, d *Discover) {
	t.Helper()
	if err := d.Start(); err != nil {
		t.Skipf("multicast unavailable: %v", err)
	}
}

func TestDiscover(t *testing.T) {
	n := 4
	nodes := make([]*Discover, n)
	for i := range n {
		nodes[i] = &Discover{
			Info:                         []byte(fmt.Sprint(i)),
			IntervalBetweenAnnouncements: 100 * time.Millisecond,
			Port:                         53552,
		}
		startOrSkip(t, nodes[i])
	}
	fatal := make(chan error)
	for i, d := range nodes {
		go func() {
			set := make(map[string]struct{})
			timeout := time.After(10 * time.Second)
			for len(set) < n-1 {
				select {
				case entry := <-d.Entries:
					if string(entry.Info) == fmt.Sprint(i) {
						fatal <- fmt.Errorf("node %d received its own announcement", i)
						return
					}
					set[string(entry.Info)] = struct{}{}
				case <-timeout:
					fatal <- fmt.Errorf("node %d found only %v", i, set)
					return
				}
			}
			fatal <- nil
		}()
	}
	for range n {
		if err := <-fatal; err != nil {
			t.Fatal(err)
		}
	}
	for _, d := range nodes {
		if err := d.Close(); err != nil {
			t.Fatal(err)
		}
	}
}

func TestClose(t *testing.T) {
	d := &Discover{Info: []byte("x"), Port: 53553}
	startOrSkip(t, d)
	time.Sleep(200 * time.Millisecond)
	if err := d.Close(); err != nil {
		t.Fatal(err)
	}
	if err := d.Close(); err != nil {
		t.Fatalf("second Close should be a no-op: %v", err)
	}
	for range d.Entries {
	}
}

func TestBrowseSessions(t *testing.T) {
	b, err := Browse(53554)
	if err != nil {
		t.Skipf("multicast unavailable: %v", err)
	}
	defer b.Close()
	want := Session{ID: "0b7f", Name: "Friday game", Address: "127.0.0.1:9999"}
	a, err := Announce(want, 53554, 100*time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()

	select {
	case got := <-b.Sessions:
		if got != want {
			t.Fatalf("expected %+v, got %+v", want, got)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("session not discovered")
	}
	select {
	case dup := <-b.Sessions:
		t.Fatalf("session delivered twice: %+v", dup)
	case <-time.After(500 * time.Millisecond):
	}
}

func TestAnnouncementTooLarge(t *testing.T) {
	d := &Discover{Info: make([]byte, maxPacket), Port: 53555}
	if err := d.Start(); err == nil {
		_ = d.Close()
		t.Fatal("expected an error for an oversized announcement")
	}
}

func TestLocalIP(t *testing.T) {
	if LocalIP() == "" {
		t.Fatal("LocalIP must never be empty")
	}
}
