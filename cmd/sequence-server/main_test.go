package main

import (
	"net"
	"testing"

	"github.com/luca-patrignani/sequence/domain/sequence"
	"github.com/luca-patrignani/sequence/session"
)

func TestSubnetOfListener(t *testing.T) {
	l, err := net.ListenTCP("tcp", &net.TCPAddr{
		IP:   net.ParseIP("127.0.0.1"),
		Port: 0,
	})
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer l.Close()

	ipnet, err := subnetOfListener(l)
	if err != nil {
		t.Fatalf("subnetOfListener error: %v", err)
	}
	if !ipnet.Contains(net.ParseIP("127.0.0.1")) {
		t.Fatalf("expected subnet %s to contain 127.0.0.1", ipnet.String())
	}
}

func TestSubnetOfUnspecifiedListener(t *testing.T) {
	l, err := net.ListenTCP("tcp", &net.TCPAddr{})
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer l.Close()
	if _, err := subnetOfListener(l); err == nil {
		t.Fatal("expected an error for an unspecified address")
	}
}

func TestSummaryTable(t *testing.T) {
	s := session.Snapshot{
		Status: session.Finished,
		Order:  []sequence.PlayerID{2, 1},
		Winner: 1,
		Names:  map[sequence.PlayerID]string{1: "Ann", 2: "Bob"},
		Hands: map[sequence.PlayerID][]sequence.Code{
			1: {"h2", "h3"},
			2: {"s4"},
		},
		Pegs: map[sequence.Coordinate]sequence.PlayerID{
			{X: 0, Y: 0}: 1,
			{X: 1, Y: 0}: 1,
			{X: 5, Y: 5}: 2,
		},
	}
	data := summaryTable(s)
	if len(data) != 3 {
		t.Fatalf("expected a header and two rows, got %v", data)
	}
	if data[1][1] != "Bob" || data[2][1] != "Ann" {
		t.Fatalf("rows not in turn order: %v", data)
	}
	if data[2][2] != "2" || data[2][3] != "2" || data[1][2] != "1" {
		t.Fatalf("unexpected counts: %v", data)
	}
	if data[2][4] == "" {
		t.Fatal("winner not marked")
	}
}

func TestSummaryTableBeforeStart(t *testing.T) {
	s := session.Snapshot{
		Status: session.AcceptingConnections,
		Names:  map[sequence.PlayerID]string{3: "Cid", 1: "Ann"},
	}
	data := summaryTable(s)
	if len(data) != 3 || data[1][0] != "1" || data[2][0] != "3" {
		t.Fatalf("expected rows by id, got %v", data)
	}
}
