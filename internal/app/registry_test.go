package app

import (
	"testing"
)

func TestRegistry_GetOrCreate(t *testing.T) {
	reg := NewRegistry(20, 100)
	a := reg.GetOrCreate("r1")
	b := reg.GetOrCreate("r1")
	if a != b {
		t.Fatalf("expected the same room instance")
	}
	if _, ok := reg.Find("r2"); ok {
		t.Fatalf("Find must not create rooms")
	}
}

func TestRegistry_ReverseLookup(t *testing.T) {
	reg := NewRegistry(20, 100)
	reg.GetOrCreate("r1")
	reg.BindRoom("c1", "r1")

	id, room, ok := reg.RoomOf("c1")
	if !ok || id != "r1" || room == nil {
		t.Fatalf("expected c1 bound to r1, got %q ok=%v", id, ok)
	}

	reg.ClearRoom("c1")
	if _, _, ok := reg.RoomOf("c1"); ok {
		t.Fatalf("expected no binding after ClearRoom")
	}
}

func TestRegistry_BindRoomClearsWaiting(t *testing.T) {
	reg := NewRegistry(20, 100)
	reg.GetOrCreate("r1")

	reg.BindWaiting("c1", "r1")
	if _, ok := reg.WaitingRoomOf("c1"); !ok {
		t.Fatalf("expected waiting entry")
	}
	reg.BindRoom("c1", "r1")
	if _, ok := reg.WaitingRoomOf("c1"); ok {
		t.Fatalf("a role holder must not also be waiting")
	}
}

func TestRegistry_RemoveIfAbandoned(t *testing.T) {
	reg := NewRegistry(20, 100)
	room := reg.GetOrCreate("r1")

	if !reg.RemoveIfAbandoned("r1") {
		t.Fatalf("empty, unreferenced room must be removed")
	}

	room = reg.GetOrCreate("r1")
	if err := room.ClaimStreamer("s", "sam"); err != nil {
		t.Fatalf("claim: %v", err)
	}
	if reg.RemoveIfAbandoned("r1") {
		t.Fatalf("room with a streamer must survive")
	}

	room.ReleaseStreamer("s")
	reg.BindWaiting("w", "r1")
	if reg.RemoveIfAbandoned("r1") {
		t.Fatalf("room with a waiting connection must survive")
	}

	reg.ClearRoom("w")
	if !reg.RemoveIfAbandoned("r1") {
		t.Fatalf("fully abandoned room must be removed")
	}
}

func TestRegistry_Signal(t *testing.T) {
	reg := NewRegistry(20, 100)
	sig := &fakeSignal{}
	reg.BindSignal("c1", "alice", sig, nil)

	got, ok := reg.Signal("c1")
	if !ok || got != sig {
		t.Fatalf("expected bound signal endpoint")
	}
	if reg.NameOf("c1") != "alice" {
		t.Fatalf("expected bound name")
	}

	reg.Unbind("c1")
	if _, ok := reg.Signal("c1"); ok {
		t.Fatalf("expected no endpoint after unbind")
	}
}
