package peer

import (
	"errors"
	"testing"

	"github.com/pion/webrtc/v4"
	"go.uber.org/mock/gomock"

	"github.com/dkeye/Mesh/internal/domain"
	"github.com/dkeye/Mesh/internal/media/mockmedia"
)

type fakeSignal struct {
	sent []domain.Message
	fail bool
}

func (f *fakeSignal) Send(m domain.Message) error {
	if f.fail {
		return errors.New("signaling down")
	}
	f.sent = append(f.sent, m)
	return nil
}

func (f *fakeSignal) byKind(k domain.Kind) []domain.Message {
	var out []domain.Message
	for _, m := range f.sent {
		if m.Kind == k {
			out = append(out, m)
		}
	}
	return out
}

type fakeSender struct {
	track    webrtc.TrackLocal
	fail     bool
	replaced int
}

func (s *fakeSender) Track() webrtc.TrackLocal { return s.track }

func (s *fakeSender) ReplaceTrack(t webrtc.TrackLocal) error {
	if s.fail {
		return errors.New("sender closed")
	}
	s.track = t
	s.replaced++
	return nil
}

type fakeTransport struct {
	senders    []*fakeSender
	remoteDesc *webrtc.SessionDescription
	candidates []webrtc.ICECandidateInit
	closed     bool

	failRemote     bool
	rejectNextCand bool

	onICE    func(webrtc.ICECandidateInit)
	onTrack  func(*webrtc.TrackRemote, *webrtc.RTPReceiver)
	onClosed func()
}

func (f *fakeTransport) AddTrack(track webrtc.TrackLocal) (Sender, error) {
	s := &fakeSender{track: track}
	f.senders = append(f.senders, s)
	return s, nil
}

func (f *fakeTransport) CreateOffer() (webrtc.SessionDescription, error) {
	return webrtc.SessionDescription{Type: webrtc.SDPTypeOffer, SDP: "v=0 offer"}, nil
}

func (f *fakeTransport) CreateAnswer() (webrtc.SessionDescription, error) {
	return webrtc.SessionDescription{Type: webrtc.SDPTypeAnswer, SDP: "v=0 answer"}, nil
}

func (f *fakeTransport) SetRemoteDescription(desc webrtc.SessionDescription) error {
	if f.failRemote {
		return errors.New("bad description")
	}
	f.remoteDesc = &desc
	return nil
}

func (f *fakeTransport) AddICECandidate(c webrtc.ICECandidateInit) error {
	if f.rejectNextCand {
		f.rejectNextCand = false
		return errors.New("candidate rejected")
	}
	f.candidates = append(f.candidates, c)
	return nil
}

func (f *fakeTransport) OnICECandidate(fn func(webrtc.ICECandidateInit)) { f.onICE = fn }

func (f *fakeTransport) OnTrack(fn func(*webrtc.TrackRemote, *webrtc.RTPReceiver)) { f.onTrack = fn }

func (f *fakeTransport) OnClosed(fn func()) { f.onClosed = fn }

func (f *fakeTransport) Close() error {
	f.closed = true
	return nil
}

// transportLog hands out fake transports and remembers them in
// creation order.
type transportLog struct {
	created []*fakeTransport
}

func (l *transportLog) factory(_ webrtc.Configuration) (Transport, error) {
	tr := &fakeTransport{}
	l.created = append(l.created, tr)
	return tr, nil
}

func (l *transportLog) last(t *testing.T) *fakeTransport {
	t.Helper()
	if len(l.created) == 0 {
		t.Fatal("no transport was created")
	}
	return l.created[len(l.created)-1]
}

func audioVideoTracks(t *testing.T, streamID string) []webrtc.TrackLocal {
	t.Helper()
	audio, err := webrtc.NewTrackLocalStaticSample(
		webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeOpus}, "audio-"+streamID, streamID)
	if err != nil {
		t.Fatalf("audio track: %v", err)
	}
	video, err := webrtc.NewTrackLocalStaticSample(
		webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeVP8}, "video-"+streamID, streamID)
	if err != nil {
		t.Fatalf("video track: %v", err)
	}
	return []webrtc.TrackLocal{audio, video}
}

func videoOnlyTrack(t *testing.T, streamID string) []webrtc.TrackLocal {
	t.Helper()
	video, err := webrtc.NewTrackLocalStaticSample(
		webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeVP8}, "video-"+streamID, streamID)
	if err != nil {
		t.Fatalf("video track: %v", err)
	}
	return []webrtc.TrackLocal{video}
}

func mockSource(ctrl *gomock.Controller, tracks []webrtc.TrackLocal) *mockmedia.MockSource {
	src := mockmedia.NewMockSource(ctrl)
	src.EXPECT().Tracks().Return(tracks).AnyTimes()
	src.EXPECT().Close().Return(nil).AnyTimes()
	return src
}

// testClient wires a client with fakes and a mocked camera already
// acquired, plus counters for the removal callback.
type testClient struct {
	c      *Client
	signal *fakeSignal
	trs    *transportLog
	gone   map[string]int
}

func newTestClient(t *testing.T, username string) *testClient {
	t.Helper()
	ctrl := gomock.NewController(t)
	tc := &testClient{
		signal: &fakeSignal{},
		trs:    &transportLog{},
		gone:   map[string]int{},
	}
	cb := Callbacks{
		OnPeerClosed: func(remote, _ string) { tc.gone[remote]++ },
	}
	tc.c = NewClient(Config{Username: username, Room: "r1"}, tc.signal, mockmedia.NewMockCapture(ctrl), tc.trs.factory, cb)
	tc.c.camera = mockSource(ctrl, audioVideoTracks(t, "camera"))
	return tc
}
