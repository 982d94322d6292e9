package sequence

import (
	"errors"
	"strings"
	"testing"
)

func TestRegister(t *testing.T) {
	r := NewRegistry(3)
	ann, err := r.Register("Ann")
	if err != nil {
		t.Fatal(err)
	}
	anon, err := r.Register("")
	if err != nil {
		t.Fatal(err)
	}
	evil, err := r.Register("<script>alert(1)</script>Eve")
	if err != nil {
		t.Fatal(err)
	}
	if ann.ID != 1 || anon.ID != 2 || evil.ID != 3 {
		t.Fatalf("ids must be monotonic from 1: %d %d %d", ann.ID, anon.ID, evil.ID)
	}
	if anon.Name != "Player #2" {
		t.Fatalf("unexpected default name %q", anon.Name)
	}
	if strings.Contains(evil.Name, "<") {
		t.Fatalf("name not sanitized: %q", evil.Name)
	}
	if _, err := r.Register("Dan"); !errors.Is(err, ErrSessionFull) {
		t.Fatalf("expected ErrSessionFull, got %v", err)
	}

	r.Remove(anon.ID)
	dan, err := r.Register("Dan")
	if err != nil {
		t.Fatal(err)
	}
	if dan.ID != 4 {
		t.Fatalf("ids must never be reused, got %d", dan.ID)
	}
	ids := r.IDs()
	if len(ids) != 3 || ids[0] != 1 || ids[1] != 3 || ids[2] != 4 {
		t.Fatalf("unexpected ids %v", ids)
	}
	if r.Names()[1] != "Ann" {
		t.Fatalf("unexpected names %v", r.Names())
	}
	if _, err := r.Get(2); !errors.Is(err, ErrUnknownPlayer) {
		t.Fatalf("expected ErrUnknownPlayer, got %v", err)
	}
}

func TestDealDiscard(t *testing.T) {
	r := NewRegistry(2)
	p, _ := r.Register("Ann")
	for _, c := range []Code{"h2", "sQ", "h2", "j1"} {
		r.Deal(p, c)
	}
	i, err := r.Discard(p, "h2")
	if err != nil {
		t.Fatal(err)
	}
	if i != 0 {
		t.Fatalf("expected the first occurrence, got %d", i)
	}
	if len(p.Hand) != 3 || p.Hand[1] != "h2" {
		t.Fatalf("unexpected hand %v", p.Hand)
	}
	if len(p.Dealt) != 4 {
		t.Fatalf("dealt log must keep every card, got %v", p.Dealt)
	}
	if _, err := r.Discard(p, "cA"); !errors.Is(err, ErrCardNotInHand) {
		t.Fatalf("expected ErrCardNotInHand, got %v", err)
	}
	code, err := r.DiscardAt(p, 2)
	if err != nil {
		t.Fatal(err)
	}
	if code != "j1" || len(p.Hand) != 2 {
		t.Fatalf("unexpected discard %s, hand %v", code, p.Hand)
	}
	if _, err := r.DiscardAt(p, 5); !errors.Is(err, ErrHandIndex) {
		t.Fatalf("expected ErrHandIndex, got %v", err)
	}
	if _, err := p.Card(-1); !errors.Is(err, ErrHandIndex) {
		t.Fatalf("expected ErrHandIndex, got %v", err)
	}
}
