// Package peer drives the client side of the mesh: one negotiation
// state machine per remote member, candidate buffering and in-place
// track swap for screen sharing.
package peer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Mesh/internal/domain"
	"github.com/dkeye/Mesh/internal/media"
)

var (
	ErrSignalingClosed = errors.New("signaling connection closed")
	ErrAlreadySharing  = errors.New("screen share already active")
	ErrNotSharing      = errors.New("screen share not active")
)

// SignalSender sends one message toward the relay. Implementations
// must be safe for concurrent use.
type SignalSender interface {
	Send(domain.Message) error
}

type Config struct {
	Username string
	Room     domain.RoomName
	RTC      webrtc.Configuration

	// NegotiationTimeout bounds the wait from a sent offer to the
	// matching answer; expiry closes the pending session.
	NegotiationTimeout time.Duration
}

// Callbacks notify UI collaborators. All are optional. OnPeerTrack
// fires on the transport's goroutine; the rest fire on the event loop.
type Callbacks struct {
	OnPeerTrack  func(remote string, track *webrtc.TrackRemote)
	OnPeerClosed func(remote string, reason string)
	OnChat       func(from, text string)
	OnTyping     func(from string)
	OnReaction   func(from, emoji string)
	OnRaise      func(from string, raised bool)
}

// Client owns the session table for one local member. Every state
// transition, whatever its origin (inbound message, timer expiry,
// transport closure, swap command), is funneled through one sequential
// event loop, so no two transitions for the same remote interleave.
type Client struct {
	cfg          Config
	signal       SignalSender
	capture      media.Capture
	newTransport TransportFactory
	cb           Callbacks

	events   chan event
	done     chan struct{}
	sessions map[string]*PeerSession
	buf      *CandidateBuffer
	epochs   map[string]uint64

	camera media.Source
	screen media.Source
}

type event any

type deadlineEvent struct {
	remote string
	epoch  uint64
}

type closedEvent struct {
	remote string
	epoch  uint64
}

type swapEvent struct {
	source  media.Source
	restore bool
	done    chan error
}

func NewClient(cfg Config, signal SignalSender, capture media.Capture, factory TransportFactory, cb Callbacks) *Client {
	if cfg.NegotiationTimeout <= 0 {
		cfg.NegotiationTimeout = 30 * time.Second
	}
	return &Client{
		cfg:          cfg,
		signal:       signal,
		capture:      capture,
		newTransport: factory,
		cb:           cb,
		events:       make(chan event, 64),
		done:         make(chan struct{}),
		sessions:     make(map[string]*PeerSession),
		buf:          NewCandidateBuffer(),
		epochs:       make(map[string]uint64),
	}
}

// Join acquires the camera and announces the member to the room.
// A capture denial aborts before any state changes.
func (c *Client) Join(ctx context.Context) error {
	src, err := c.capture.Camera(ctx)
	if err != nil {
		return fmt.Errorf("camera capture: %w", err)
	}
	c.camera = src
	return c.signal.Send(domain.Message{
		Kind:     domain.KindJoin,
		Room:     c.cfg.Room,
		Username: c.cfg.Username,
	})
}

// Run consumes signaling messages and internal events until ctx is
// canceled or the signaling channel closes. Sessions do not survive a
// signaling drop: the relay has already broadcast our departure, so
// remote peers have torn us down; everything is closed here and a
// reconnect starts from a fresh join.
func (c *Client) Run(ctx context.Context, incoming <-chan domain.Message) error {
	defer close(c.done)
	for {
		select {
		case <-ctx.Done():
			c.shutdown("context canceled")
			return ctx.Err()
		case msg, ok := <-incoming:
			if !ok {
				c.shutdown("signaling lost")
				return ErrSignalingClosed
			}
			c.handleMessage(msg)
		case ev := <-c.events:
			c.handleEvent(ev)
		}
	}
}

func (c *Client) post(ev event) bool {
	select {
	case c.events <- ev:
		return true
	case <-c.done:
		return false
	}
}

func (c *Client) handleMessage(msg domain.Message) {
	switch msg.Kind {
	case domain.KindRoster:
		// Existing members initiate toward us on their ready notice;
		// nothing to start from our side.
		log.Info().Str("module", "peer").Strs("members", msg.Members).Msg("joined room")
	case domain.KindReady:
		c.handleReady(msg.From)
	case domain.KindOffer:
		c.handleOffer(msg)
	case domain.KindAnswer:
		c.handleAnswer(msg)
	case domain.KindCandidate:
		c.handleCandidate(msg)
	case domain.KindLeave:
		c.handleLeave(msg.From)
	case domain.KindChat:
		if c.cb.OnChat != nil {
			c.cb.OnChat(msg.From, msg.Text)
		}
	case domain.KindTyping:
		if c.cb.OnTyping != nil {
			c.cb.OnTyping(msg.From)
		}
	case domain.KindReaction:
		if c.cb.OnReaction != nil {
			c.cb.OnReaction(msg.From, msg.Emoji)
		}
	case domain.KindRaise:
		if c.cb.OnRaise != nil {
			c.cb.OnRaise(msg.From, msg.Raised)
		}
	case domain.KindError:
		log.Warn().Str("module", "peer").Str("error", msg.Error).Msg("relay rejected a message")
	default:
		log.Debug().Str("module", "peer").Str("kind", string(msg.Kind)).Msg("unhandled kind")
	}
}

func (c *Client) handleEvent(ev event) {
	switch ev := ev.(type) {
	case deadlineEvent:
		sess := c.sessions[ev.remote]
		if sess == nil || sess.epoch != ev.epoch || sess.state == StateStable {
			return
		}
		log.Warn().Str("module", "peer").Str("remote", ev.remote).Str("state", sess.state.String()).Msg("negotiation timed out")
		c.closeSession(sess, "negotiation timeout", true)
	case closedEvent:
		sess := c.sessions[ev.remote]
		if sess == nil || sess.epoch != ev.epoch {
			return
		}
		c.closeSession(sess, "transport closed", true)
	case swapEvent:
		c.handleSwap(ev)
	}
}

// Session reports the negotiation state toward remote, for observers.
func (c *Client) Session(remote string) (State, bool) {
	if s, ok := c.sessions[remote]; ok {
		return s.state, true
	}
	return StateClosed, false
}

// SendChat, SendTyping, SendReaction and SetRaised ride the same
// envelope and relay rules as negotiation traffic; the relay stamps
// the sender identity.
func (c *Client) SendChat(text string) error {
	return c.signal.Send(domain.Message{Kind: domain.KindChat, Text: text})
}

func (c *Client) SendTyping() error {
	return c.signal.Send(domain.Message{Kind: domain.KindTyping})
}

func (c *Client) SendReaction(emoji string) error {
	return c.signal.Send(domain.Message{Kind: domain.KindReaction, Emoji: emoji})
}

func (c *Client) SetRaised(raised bool) error {
	return c.signal.Send(domain.Message{Kind: domain.KindRaise, Raised: raised})
}

// Leave announces departure; the relay broadcasts it and each peer
// tears our sessions down. Local teardown follows when the socket
// closes.
func (c *Client) Leave() error {
	return c.signal.Send(domain.Message{Kind: domain.KindLeave})
}

func (c *Client) shutdown(reason string) {
	for _, sess := range c.sessions {
		c.closeSession(sess, reason, true)
	}
	if c.screen != nil {
		_ = c.screen.Close()
		c.screen = nil
	}
	if c.camera != nil {
		_ = c.camera.Close()
		c.camera = nil
	}
	log.Info().Str("module", "peer").Str("reason", reason).Msg("client shut down")
}
