package media

import (
	"context"
	"fmt"

	"github.com/pion/webrtc/v4"
)

// StaticCapture produces sample-fed opus/VP8 track pairs so the client
// can run headless. A real deployment feeds these tracks from a device
// pipeline; the negotiation core does not care.
type StaticCapture struct{}

func (StaticCapture) Camera(_ context.Context) (Source, error) { return newStaticSource("camera") }
func (StaticCapture) Screen(_ context.Context) (Source, error) { return newStaticSource("screen") }

type staticSource struct {
	tracks []webrtc.TrackLocal
}

func newStaticSource(streamID string) (Source, error) {
	audio, err := webrtc.NewTrackLocalStaticSample(
		webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeOpus},
		"audio-"+streamID, streamID,
	)
	if err != nil {
		return nil, fmt.Errorf("audio track: %w", err)
	}
	video, err := webrtc.NewTrackLocalStaticSample(
		webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeVP8},
		"video-"+streamID, streamID,
	)
	if err != nil {
		return nil, fmt.Errorf("video track: %w", err)
	}
	return &staticSource{tracks: []webrtc.TrackLocal{audio, video}}, nil
}

func (s *staticSource) Tracks() []webrtc.TrackLocal { return s.tracks }
func (s *staticSource) Close() error                { return nil }
