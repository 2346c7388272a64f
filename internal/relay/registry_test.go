package relay

import (
	"errors"
	"testing"

	"github.com/dkeye/Mesh/internal/domain"
)

func TestRegistryJoinAndResolve(t *testing.T) {
	reg := NewRegistry()
	c := &fakeConn{name: "alice"}

	m, err := reg.Join(c, "r1", "alice")
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if m.Room != "r1" || m.Username != "alice" {
		t.Fatalf("unexpected member: %+v", m)
	}
	if m.ID == "" {
		t.Fatal("member id not assigned")
	}

	got, ok := reg.Resolve(c)
	if !ok || got != m {
		t.Fatalf("resolve returned %+v, %v", got, ok)
	}
}

func TestRegistryRejoinReported(t *testing.T) {
	reg := NewRegistry()
	c := &fakeConn{name: "alice"}

	if _, err := reg.Join(c, "r1", "alice"); err != nil {
		t.Fatalf("join: %v", err)
	}
	if _, err := reg.Join(c, "r2", "other"); !errors.Is(err, ErrAlreadyJoined) {
		t.Fatalf("expected ErrAlreadyJoined, got %v", err)
	}
	// Original membership must be untouched.
	m, _ := reg.Resolve(c)
	if m.Room != "r1" || m.Username != "alice" {
		t.Fatalf("membership mutated by re-join: %+v", m)
	}
}

func TestRegistryDuplicateUsername(t *testing.T) {
	reg := NewRegistry()
	if _, err := reg.Join(&fakeConn{name: "a"}, "r1", "alice"); err != nil {
		t.Fatalf("join: %v", err)
	}
	if _, err := reg.Join(&fakeConn{name: "b"}, "r1", "alice"); !errors.Is(err, ErrNameTaken) {
		t.Fatalf("expected ErrNameTaken, got %v", err)
	}
	// Same name in another room is fine.
	if _, err := reg.Join(&fakeConn{name: "c"}, "r2", "alice"); err != nil {
		t.Fatalf("join in second room: %v", err)
	}
}

func TestRegistryLeaveIdempotent(t *testing.T) {
	reg := NewRegistry()
	c := &fakeConn{name: "alice"}
	reg.Join(c, "r1", "alice")

	if _, ok := reg.Leave(c); !ok {
		t.Fatal("first leave should report removal")
	}
	if _, ok := reg.Leave(c); ok {
		t.Fatal("second leave must be a no-op")
	}
	if _, ok := reg.Resolve(c); ok {
		t.Fatal("member still resolvable after leave")
	}
	if _, ok := reg.Lookup("r1", "alice"); ok {
		t.Fatal("member still in room after leave")
	}
}

// Live membership always equals joins minus leaves and disconnects,
// independent of ordering among non-conflicting events.
func TestRegistryMembershipSet(t *testing.T) {
	reg := NewRegistry()
	conns := map[string]*fakeConn{}
	for _, name := range []string{"alice", "bob", "carol", "dave"} {
		c := &fakeConn{name: name}
		conns[name] = c
		if _, err := reg.Join(c, "r1", name); err != nil {
			t.Fatalf("join %s: %v", name, err)
		}
	}
	reg.Leave(conns["bob"])
	reg.Leave(conns["dave"])
	reg.Leave(conns["dave"]) // double disconnect

	want := map[string]bool{"alice": true, "carol": true}
	got := reg.Roster("r1", "")
	if len(got) != len(want) {
		t.Fatalf("roster %v, want members of %v", got, want)
	}
	for _, name := range got {
		if !want[name] {
			t.Fatalf("unexpected member %q in roster %v", name, got)
		}
	}
}

func TestRegistryRoomsSnapshot(t *testing.T) {
	reg := NewRegistry()
	reg.Join(&fakeConn{name: "a"}, "r1", "alice")
	reg.Join(&fakeConn{name: "b"}, "r1", "bob")
	reg.Join(&fakeConn{name: "c"}, "r2", "carol")

	counts := map[domain.RoomName]int{}
	for _, info := range reg.Rooms() {
		counts[info.Name] = info.MemberCount
	}
	if counts["r1"] != 2 || counts["r2"] != 1 {
		t.Fatalf("unexpected room counts: %v", counts)
	}
}
