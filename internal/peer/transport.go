package peer

import "github.com/pion/webrtc/v4"

// Sender is one outgoing track binding on a session. Satisfied by
// *webrtc.RTPSender.
type Sender interface {
	Track() webrtc.TrackLocal
	ReplaceTrack(track webrtc.TrackLocal) error
}

// Transport is the per-remote session capability the negotiation core
// consumes: produce and accept descriptions, exchange path
// descriptors, carry tracks. The core orchestrates calls into it and
// implements none of the underlying media transport.
type Transport interface {
	AddTrack(track webrtc.TrackLocal) (Sender, error)
	CreateOffer() (webrtc.SessionDescription, error)
	CreateAnswer() (webrtc.SessionDescription, error)
	SetRemoteDescription(desc webrtc.SessionDescription) error
	AddICECandidate(c webrtc.ICECandidateInit) error
	OnICECandidate(fn func(webrtc.ICECandidateInit))
	OnTrack(fn func(track *webrtc.TrackRemote, receiver *webrtc.RTPReceiver))
	OnClosed(fn func())
	Close() error
}

// TransportFactory creates the transport for one new peer session.
type TransportFactory func(cfg webrtc.Configuration) (Transport, error)
