package peer

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Mesh/internal/domain"
	"github.com/dkeye/Mesh/internal/media"
)

// handleReady runs the initiator path: the member that receives the
// ready notice initiates toward the newcomer. That single rule assigns
// exactly one initiator per ordered pair.
func (c *Client) handleReady(remote string) {
	if remote == "" || remote == c.cfg.Username {
		return
	}
	if _, ok := c.sessions[remote]; ok {
		log.Debug().Str("module", "peer").Str("remote", remote).Msg("ready for known session ignored")
		return
	}
	sess, err := c.newSession(remote)
	if err != nil {
		log.Error().Err(err).Str("module", "peer").Str("remote", remote).Msg("initiate failed")
		return
	}
	offer, err := sess.tr.CreateOffer()
	if err != nil {
		log.Error().Err(err).Str("module", "peer").Str("remote", remote).Msg("create offer")
		c.closeSession(sess, "offer failed", false)
		return
	}
	if err := c.sendDescription(domain.KindOffer, remote, offer); err != nil {
		log.Error().Err(err).Str("module", "peer").Str("remote", remote).Msg("send offer")
		c.closeSession(sess, "signaling send failed", false)
		return
	}
	sess.state = StateOfferSent
	c.armDeadline(sess)
	log.Info().Str("module", "peer").Str("remote", remote).Msg("offer sent")
}

func (c *Client) handleOffer(msg domain.Message) {
	remote := msg.From
	if sess, ok := c.sessions[remote]; ok {
		switch sess.state {
		case StateOfferSent:
			// Glare: both sides initiated. The offer from the
			// lexicographically smaller username wins on both sides,
			// so exactly one session survives.
			if c.cfg.Username < remote {
				log.Info().Str("module", "peer").Str("remote", remote).Msg("glare: local offer wins, remote offer dropped")
				return
			}
			log.Info().Str("module", "peer").Str("remote", remote).Msg("glare: remote offer wins, answering as responder")
			c.closeSession(sess, "glare", false)
		case StateIdle:
			// Stale shell with no negotiation underway; replace it.
			c.closeSession(sess, "replaced by incoming offer", false)
		default:
			log.Warn().Str("module", "peer").Str("remote", remote).Str("state", sess.state.String()).Msg("unexpected offer dropped")
			return
		}
	}

	var desc webrtc.SessionDescription
	if err := json.Unmarshal(msg.Description, &desc); err != nil {
		log.Error().Err(err).Str("module", "peer").Str("remote", remote).Msg("malformed offer")
		return
	}

	sess, err := c.newSession(remote)
	if err != nil {
		log.Error().Err(err).Str("module", "peer").Str("remote", remote).Msg("responder session failed")
		return
	}
	if err := sess.tr.SetRemoteDescription(desc); err != nil {
		log.Error().Err(err).Str("module", "peer").Str("remote", remote).Msg("apply offer")
		c.closeSession(sess, "remote description rejected", false)
		return
	}
	sess.state = StateOfferReceived
	c.acceptRemote(sess)

	answer, err := sess.tr.CreateAnswer()
	if err != nil {
		log.Error().Err(err).Str("module", "peer").Str("remote", remote).Msg("create answer")
		c.closeSession(sess, "answer failed", true)
		return
	}
	if err := c.sendDescription(domain.KindAnswer, remote, answer); err != nil {
		log.Error().Err(err).Str("module", "peer").Str("remote", remote).Msg("send answer")
		c.closeSession(sess, "signaling send failed", true)
		return
	}
	sess.state = StateStable
	log.Info().Str("module", "peer").Str("remote", remote).Msg("answered, session stable")
}

func (c *Client) handleAnswer(msg domain.Message) {
	sess := c.sessions[msg.From]
	if sess == nil || sess.state != StateOfferSent {
		// Nonexistent or already-stable session: dropped, not fatal.
		log.Warn().Str("module", "peer").Str("remote", msg.From).Msg("answer without pending offer dropped")
		return
	}
	var desc webrtc.SessionDescription
	if err := json.Unmarshal(msg.Description, &desc); err != nil {
		log.Error().Err(err).Str("module", "peer").Str("remote", msg.From).Msg("malformed answer")
		return
	}
	if err := sess.tr.SetRemoteDescription(desc); err != nil {
		log.Error().Err(err).Str("module", "peer").Str("remote", msg.From).Msg("apply answer")
		c.closeSession(sess, "remote description rejected", true)
		return
	}
	c.acceptRemote(sess)
	sess.state = StateStable
	sess.stopDeadline()
	log.Info().Str("module", "peer").Str("remote", msg.From).Msg("answer applied, session stable")
}

func (c *Client) handleCandidate(msg domain.Message) {
	var ci webrtc.ICECandidateInit
	if err := json.Unmarshal(msg.Candidate, &ci); err != nil {
		log.Error().Err(err).Str("module", "peer").Str("remote", msg.From).Msg("malformed candidate")
		return
	}
	sess := c.sessions[msg.From]
	if sess == nil || !sess.accepted {
		// Early candidates are buffered, never dropped.
		c.buf.Enqueue(msg.From, ci)
		return
	}
	if err := sess.tr.AddICECandidate(ci); err != nil {
		// Best effort: a rejected descriptor does not close the session.
		log.Warn().Err(err).Str("module", "peer").Str("remote", msg.From).Msg("candidate rejected")
	}
}

func (c *Client) handleLeave(remote string) {
	sess := c.sessions[remote]
	if sess == nil {
		c.buf.Discard(remote)
		return
	}
	c.closeSession(sess, "member left", true)
}

// acceptRemote marks the remote description applied and drains the
// candidate buffer, in arrival order, exactly once.
func (c *Client) acceptRemote(sess *PeerSession) {
	sess.accepted = true
	for _, ci := range c.buf.Flush(sess.remote) {
		if err := sess.tr.AddICECandidate(ci); err != nil {
			log.Warn().Err(err).Str("module", "peer").Str("remote", sess.remote).Msg("buffered candidate rejected")
		}
	}
}

func (c *Client) newSession(remote string) (*PeerSession, error) {
	tr, err := c.newTransport(c.cfg.RTC)
	if err != nil {
		return nil, fmt.Errorf("new transport: %w", err)
	}
	c.epochs[remote]++
	sess := &PeerSession{remote: remote, state: StateIdle, tr: tr, epoch: c.epochs[remote]}

	for _, track := range c.outgoing().Tracks() {
		sender, err := tr.AddTrack(track)
		if err != nil {
			_ = tr.Close()
			return nil, fmt.Errorf("add track: %w", err)
		}
		sess.senders = append(sess.senders, sender)
	}

	epoch := sess.epoch
	tr.OnICECandidate(func(ci webrtc.ICECandidateInit) {
		data, err := json.Marshal(ci)
		if err != nil {
			log.Error().Err(err).Str("module", "peer").Msg("marshal candidate")
			return
		}
		if err := c.signal.Send(domain.Message{Kind: domain.KindCandidate, To: remote, Candidate: data}); err != nil {
			log.Warn().Err(err).Str("module", "peer").Str("remote", remote).Msg("send candidate")
		}
	})
	tr.OnTrack(func(track *webrtc.TrackRemote, _ *webrtc.RTPReceiver) {
		if c.cb.OnPeerTrack != nil {
			c.cb.OnPeerTrack(remote, track)
		}
	})
	tr.OnClosed(func() {
		c.post(closedEvent{remote: remote, epoch: epoch})
	})

	c.sessions[remote] = sess
	return sess, nil
}

// outgoing is the source new sessions attach: the screen while a share
// is active, the camera otherwise.
func (c *Client) outgoing() media.Source {
	if c.screen != nil {
		return c.screen
	}
	return c.camera
}

// closeSession tears one session down and discards its buffered
// candidates. The table check makes it idempotent, so the removal is
// signaled to observers at most once.
func (c *Client) closeSession(sess *PeerSession, reason string, notify bool) {
	if c.sessions[sess.remote] != sess {
		return
	}
	delete(c.sessions, sess.remote)
	c.epochs[sess.remote]++
	sess.stopDeadline()
	sess.state = StateClosed
	c.buf.Discard(sess.remote)
	if err := sess.tr.Close(); err != nil {
		log.Warn().Err(err).Str("module", "peer").Str("remote", sess.remote).Msg("transport close")
	}
	log.Info().Str("module", "peer").Str("remote", sess.remote).Str("reason", reason).Msg("session closed")
	if notify && c.cb.OnPeerClosed != nil {
		c.cb.OnPeerClosed(sess.remote, reason)
	}
}

func (c *Client) armDeadline(sess *PeerSession) {
	remote, epoch := sess.remote, sess.epoch
	sess.deadline = time.AfterFunc(c.cfg.NegotiationTimeout, func() {
		c.post(deadlineEvent{remote: remote, epoch: epoch})
	})
}

func (c *Client) sendDescription(kind domain.Kind, remote string, desc webrtc.SessionDescription) error {
	data, err := json.Marshal(desc)
	if err != nil {
		return err
	}
	return c.signal.Send(domain.Message{Kind: kind, To: remote, Description: data})
}
