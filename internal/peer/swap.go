package peer

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Mesh/internal/media"
)

// StartScreenShare acquires the display capture and repoints every
// session's matching-kind senders at it in place, with no new
// offer/answer round-trip and no disturbance to transport state.
// Acquisition happens before any sender is touched: a denial aborts
// with no partial swap across peers. Must not be called from the
// event loop's own callbacks.
func (c *Client) StartScreenShare(ctx context.Context) error {
	src, err := c.capture.Screen(ctx)
	if err != nil {
		return fmt.Errorf("screen capture: %w", err)
	}
	done := make(chan error, 1)
	if !c.post(swapEvent{source: src, done: done}) {
		_ = src.Close()
		return ErrSignalingClosed
	}
	return <-done
}

// StopScreenShare swaps every session back to the camera tracks and
// releases the screen source.
func (c *Client) StopScreenShare() error {
	done := make(chan error, 1)
	if !c.post(swapEvent{restore: true, done: done}) {
		return ErrSignalingClosed
	}
	return <-done
}

// Sharing reports whether a screen share is active.
func (c *Client) Sharing() bool { return c.screen != nil }

func (c *Client) handleSwap(ev swapEvent) {
	if ev.restore {
		if c.screen == nil {
			ev.done <- ErrNotSharing
			return
		}
		c.replaceAll(c.camera)
		_ = c.screen.Close()
		c.screen = nil
		log.Info().Str("module", "peer").Msg("screen share stopped")
		ev.done <- nil
		return
	}

	if c.screen != nil {
		_ = ev.source.Close()
		ev.done <- ErrAlreadySharing
		return
	}
	c.replaceAll(ev.source)
	c.screen = ev.source
	log.Info().Str("module", "peer").Msg("screen share started")
	ev.done <- nil
}

// replaceAll repoints each session's senders at the matching-kind
// tracks of src. Replacement is per-peer and non-transactional: one
// session's failure must not abort or roll back the others. Senders
// with no matching kind are untouched.
func (c *Client) replaceAll(src media.Source) {
	tracks := src.Tracks()
	for _, sess := range c.sessions {
		for _, track := range tracks {
			sender := sess.senderByKind(track.Kind())
			if sender == nil {
				continue
			}
			if err := sender.ReplaceTrack(track); err != nil {
				log.Warn().Err(err).Str("module", "peer").Str("remote", sess.remote).Str("kind", track.Kind().String()).Msg("track replace failed")
			}
		}
	}
}
