// Package media is the capture collaborator boundary: the mesh core
// orchestrates sources of local tracks but implements no capture.
package media

import (
	"context"

	"github.com/pion/webrtc/v4"
)

// Source is one acquired capture stream: a set of local tracks shared
// read-only across every peer session.
type Source interface {
	Tracks() []webrtc.TrackLocal
	Close() error
}

// Capture acquires local media. Acquisition may suspend for a
// user-controlled duration (permission prompts), hence the context.
type Capture interface {
	Camera(ctx context.Context) (Source, error)
	Screen(ctx context.Context) (Source, error)
}
