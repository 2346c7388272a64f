package relay

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/dkeye/Mesh/internal/domain"
	"github.com/rs/zerolog/log"
)

// Conn is the transport endpoint of one signaling connection.
// Owned by the adapter; the adapter must Close() it.
type Conn interface {
	TrySend(data []byte) error
	Close()
}

type frame struct {
	conn Conn
	data []byte
}

// Hub is the room-scoped signaling relay. A single goroutine consumes
// all inbound traffic, so mutating a room's membership and fanning out
// over it happen as one atomic step: a racing join or leave is never
// delivered a message for an event it raced with.
type Hub struct {
	reg     *Registry
	limiter *JoinLimiter
	inbound chan frame
	detach  chan Conn
	queries chan chan []RoomInfo
	done    chan struct{}
}

func NewHub(reg *Registry, limiter *JoinLimiter) *Hub {
	return &Hub{
		reg:     reg,
		limiter: limiter,
		inbound: make(chan frame, 256),
		detach:  make(chan Conn, 64),
		queries: make(chan chan []RoomInfo),
		done:    make(chan struct{}),
	}
}

// Run processes events until ctx is canceled. Must be called exactly
// once; Dispatch and Detach unblock permanently after it returns.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	log.Info().Str("module", "relay.hub").Msg("hub started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "relay.hub").Msg("hub stopped")
			return
		case f := <-h.inbound:
			h.handleFrame(f.conn, f.data)
		case c := <-h.detach:
			h.handleDetach(c)
		case q := <-h.queries:
			q <- h.reg.Rooms()
		}
	}
}

// Dispatch hands one raw inbound message to the hub.
func (h *Hub) Dispatch(c Conn, data []byte) {
	select {
	case h.inbound <- frame{conn: c, data: data}:
	case <-h.done:
	}
}

// Detach reports that the connection is gone. The member's removal is
// handled exactly like an explicit leave.
func (h *Hub) Detach(c Conn) {
	select {
	case h.detach <- c:
	case <-h.done:
	}
}

// Rooms snapshots the live rooms for the HTTP API.
func (h *Hub) Rooms() []RoomInfo {
	q := make(chan []RoomInfo, 1)
	select {
	case h.queries <- q:
		return <-q
	case <-h.done:
		return nil
	}
}

func (h *Hub) handleFrame(c Conn, data []byte) {
	var msg domain.Message
	if err := json.Unmarshal(data, &msg); err != nil {
		// Malformed payloads are logged and ignored; the connection
		// stays open.
		log.Error().Err(err).Str("module", "relay.hub").Msg("malformed message")
		return
	}

	if msg.Kind == domain.KindJoin {
		h.handleJoin(c, msg)
		return
	}

	sender, ok := h.reg.Resolve(c)
	if !ok {
		log.Debug().Str("module", "relay.hub").Str("kind", string(msg.Kind)).Msg("message from unregistered connection dropped")
		return
	}

	switch {
	case msg.Kind == domain.KindLeave:
		h.removeMember(c)
	case msg.Kind.Targeted():
		h.relayTargeted(sender, msg)
	case msg.Kind.RoomScoped():
		h.relayBroadcast(sender, msg)
	default:
		log.Debug().Str("module", "relay.hub").Str("kind", string(msg.Kind)).Msg("unrecognized kind dropped")
	}
}

func (h *Hub) handleJoin(c Conn, msg domain.Message) {
	if !h.limiter.Allow(c) {
		log.Warn().Str("module", "relay.hub").Str("username", msg.Username).Msg("join rate limited")
		return
	}

	m, err := h.reg.Join(c, msg.Room, msg.Username)
	switch {
	case errors.Is(err, ErrAlreadyJoined):
		// Re-join on a live connection must not duplicate the
		// membership or re-notify the room.
		return
	case err != nil:
		h.send(c, domain.Message{Kind: domain.KindError, Error: err.Error()})
		return
	}

	h.send(c, domain.Message{
		Kind:    domain.KindRoster,
		Room:    m.Room,
		Members: h.reg.Roster(m.Room, m.Username),
	})

	ready := domain.Message{Kind: domain.KindReady, From: m.Username, Room: m.Room}
	for _, peer := range h.reg.Peers(m.Room, m.Username) {
		h.send(peer, ready)
	}
}

func (h *Hub) handleDetach(c Conn) {
	h.removeMember(c)
	h.limiter.Forget(c)
	c.Close()
}

// removeMember releases the membership slot and broadcasts the leave.
// Registry.Leave is idempotent, so an explicit leave racing a
// connection loss still produces exactly one broadcast.
func (h *Hub) removeMember(c Conn) {
	m, ok := h.reg.Leave(c)
	if !ok {
		return
	}
	gone := domain.Message{Kind: domain.KindLeave, From: m.Username, Room: m.Room}
	for _, peer := range h.reg.Peers(m.Room, m.Username) {
		h.send(peer, gone)
	}
}

func (h *Hub) relayTargeted(sender *domain.Member, msg domain.Message) {
	if msg.To == "" {
		log.Warn().Str("module", "relay.hub").Str("kind", string(msg.Kind)).Str("from", sender.Username).Msg("targeted kind without target dropped")
		return
	}
	target, ok := h.reg.Lookup(sender.Room, msg.To)
	if !ok {
		log.Warn().Str("module", "relay.hub").Str("kind", string(msg.Kind)).Str("from", sender.Username).Str("to", msg.To).Msg("unknown target dropped")
		return
	}
	h.send(target, stamp(sender, msg))
}

func (h *Hub) relayBroadcast(sender *domain.Member, msg domain.Message) {
	stamped := stamp(sender, msg)
	for _, peer := range h.reg.Peers(sender.Room, sender.Username) {
		h.send(peer, stamped)
	}
}

// stamp overwrites identity fields with the registered sender; nothing
// the sender wrote there survives.
func stamp(sender *domain.Member, msg domain.Message) domain.Message {
	msg.From = sender.Username
	msg.Room = sender.Room
	msg.Username = ""
	msg.Members = nil
	msg.Error = ""
	return msg
}

func (h *Hub) send(c Conn, msg domain.Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Error().Err(err).Str("module", "relay.hub").Msg("marshal outbound")
		return
	}
	if err := c.TrySend(data); err != nil {
		log.Warn().Err(err).Str("module", "relay.hub").Str("kind", string(msg.Kind)).Msg("send dropped")
	}
}
