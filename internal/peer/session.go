package peer

import (
	"time"

	"github.com/pion/webrtc/v4"
)

// State of the negotiation with one remote member.
type State int

const (
	StateIdle State = iota
	StateOfferSent
	StateOfferReceived
	StateStable
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateOfferSent:
		return "offer_sent"
	case StateOfferReceived:
		return "offer_received"
	case StateStable:
		return "stable"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

// PeerSession is the local half of one mesh edge: negotiation state,
// the outgoing senders and the transport handle for a single remote.
// At most one exists per remote; a new one is only created after the
// previous one is fully closed.
type PeerSession struct {
	remote  string
	state   State
	tr      Transport
	senders []Sender

	// accepted flips when the remote description is applied; from then
	// on path descriptors bypass the buffer.
	accepted bool

	// epoch invalidates timers and transport callbacks that outlive
	// the session they were armed for.
	epoch    uint64
	deadline *time.Timer
}

func (s *PeerSession) Remote() string { return s.remote }
func (s *PeerSession) State() State   { return s.state }

func (s *PeerSession) senderByKind(kind webrtc.RTPCodecType) Sender {
	for _, snd := range s.senders {
		if t := snd.Track(); t != nil && t.Kind() == kind {
			return snd
		}
	}
	return nil
}

func (s *PeerSession) stopDeadline() {
	if s.deadline != nil {
		s.deadline.Stop()
		s.deadline = nil
	}
}
