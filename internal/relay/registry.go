package relay

import (
	"errors"

	"github.com/dkeye/Mesh/internal/domain"
	"github.com/rs/zerolog/log"
)

var (
	ErrAlreadyJoined = errors.New("connection already joined")
	ErrNameTaken     = errors.New("username already taken in room")
)

// Registry maps live connections to members and rooms to their
// membership sets. It is confined to the hub goroutine: every mutation
// and every fan-out snapshot happens inside one event step, so no
// locking is needed here.
type Registry struct {
	members map[Conn]*domain.Member
	rooms   map[domain.RoomName]map[string]Conn // username -> conn
}

func NewRegistry() *Registry {
	return &Registry{
		members: make(map[Conn]*domain.Member),
		rooms:   make(map[domain.RoomName]map[string]Conn),
	}
}

// Join registers the connection as a member of room. Joining twice on
// the same connection is a no-op reported as ErrAlreadyJoined; the
// existing membership is untouched.
func (r *Registry) Join(c Conn, room domain.RoomName, username string) (*domain.Member, error) {
	if _, ok := r.members[c]; ok {
		return nil, ErrAlreadyJoined
	}
	m, err := domain.NewMember(room, username)
	if err != nil {
		return nil, err
	}
	if _, ok := r.rooms[room][username]; ok {
		return nil, ErrNameTaken
	}
	if r.rooms[room] == nil {
		r.rooms[room] = make(map[string]Conn)
	}
	r.members[c] = m
	r.rooms[room][username] = c
	log.Info().Str("module", "relay.registry").Str("room", string(room)).Str("username", username).Msg("member joined")
	return m, nil
}

// Leave removes the member bound to c, if any. Safe to call twice; the
// second call reports false and does nothing.
func (r *Registry) Leave(c Conn) (*domain.Member, bool) {
	m, ok := r.members[c]
	if !ok {
		return nil, false
	}
	delete(r.members, c)
	delete(r.rooms[m.Room], m.Username)
	if len(r.rooms[m.Room]) == 0 {
		delete(r.rooms, m.Room)
	}
	log.Info().Str("module", "relay.registry").Str("room", string(m.Room)).Str("username", m.Username).Msg("member left")
	return m, true
}

// Resolve returns the member registered for c, used by the relay to
// stamp outgoing messages and scope fan-outs.
func (r *Registry) Resolve(c Conn) (*domain.Member, bool) {
	m, ok := r.members[c]
	return m, ok
}

// Lookup finds the connection of a named member within room.
func (r *Registry) Lookup(room domain.RoomName, username string) (Conn, bool) {
	c, ok := r.rooms[room][username]
	return c, ok
}

// Peers snapshots the connections of every member of room except the
// named one.
func (r *Registry) Peers(room domain.RoomName, except string) []Conn {
	set := r.rooms[room]
	out := make([]Conn, 0, len(set))
	for username, c := range set {
		if username == except {
			continue
		}
		out = append(out, c)
	}
	return out
}

// Roster lists the usernames currently in room, except the named one.
func (r *Registry) Roster(room domain.RoomName, except string) []string {
	set := r.rooms[room]
	out := make([]string, 0, len(set))
	for username := range set {
		if username == except {
			continue
		}
		out = append(out, username)
	}
	return out
}

type RoomInfo struct {
	Name        domain.RoomName `json:"name"`
	MemberCount int             `json:"member_count"`
}

func (r *Registry) Rooms() []RoomInfo {
	out := make([]RoomInfo, 0, len(r.rooms))
	for name, set := range r.rooms {
		out = append(out, RoomInfo{Name: name, MemberCount: len(set)})
	}
	return out
}
