package domain

import "encoding/json"

// Kind discriminates signaling messages on the wire.
type Kind string

const (
	KindJoin      Kind = "join"
	KindReady     Kind = "ready"
	KindOffer     Kind = "offer"
	KindAnswer    Kind = "answer"
	KindCandidate Kind = "candidate"
	KindChat      Kind = "chat"
	KindTyping    Kind = "typing"
	KindReaction  Kind = "reaction"
	KindRaise     Kind = "raise"
	KindLeave     Kind = "leave"

	// Relay-originated kinds, never accepted from clients.
	KindRoster Kind = "roster"
	KindError  Kind = "error"
)

// Targeted reports whether the kind is delivered to a single named
// member rather than fanned out to the room.
func (k Kind) Targeted() bool {
	switch k {
	case KindOffer, KindAnswer, KindCandidate:
		return true
	}
	return false
}

// RoomScoped reports whether the kind is fanned out to every other
// member of the sender's room.
func (k Kind) RoomScoped() bool {
	switch k {
	case KindChat, KindTyping, KindReaction, KindRaise, KindLeave:
		return true
	}
	return false
}

// Message is the one envelope shared by every signaling exchange.
// Which payload fields are set depends on Kind. The relay overwrites
// From and Room with the sender's registered identity; both are
// untrusted on input.
type Message struct {
	Kind Kind     `json:"kind"`
	Room RoomName `json:"room,omitempty"`
	From string   `json:"from,omitempty"`
	To   string   `json:"to,omitempty"`

	// Username is only meaningful on join.
	Username string `json:"username,omitempty"`

	// Description and Candidate are opaque to the relay; only the
	// client unpacks them into transport types.
	Description json.RawMessage `json:"sessionDescription,omitempty"`
	Candidate   json.RawMessage `json:"pathDescriptor,omitempty"`

	Text   string `json:"message,omitempty"`
	Emoji  string `json:"emoji,omitempty"`
	Raised bool   `json:"raised,omitempty"`

	// Members carries the current roster, sent to a joiner.
	Members []string `json:"members,omitempty"`

	Error string `json:"error,omitempty"`
}
