package peer

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/mock/gomock"

	"github.com/dkeye/Mesh/internal/domain"
	"github.com/dkeye/Mesh/internal/media/mockmedia"
)

func (tc *testClient) swap(t *testing.T, ev swapEvent) error {
	t.Helper()
	ev.done = make(chan error, 1)
	tc.c.handleSwap(ev)
	return <-ev.done
}

func TestScreenDenialTouchesNoSender(t *testing.T) {
	tc := newTestClient(t, "alice")
	tc.c.handleMessage(domain.Message{Kind: domain.KindReady, From: "bob"})
	tr := tc.trs.last(t)

	ctrl := gomock.NewController(t)
	capture := mockmedia.NewMockCapture(ctrl)
	capture.EXPECT().Screen(gomock.Any()).Return(nil, errors.New("permission denied"))
	tc.c.capture = capture

	if err := tc.c.StartScreenShare(context.Background()); err == nil {
		t.Fatal("denied capture must surface an error")
	}
	if tc.c.Sharing() {
		t.Fatal("denied capture must not activate sharing")
	}
	for _, s := range tr.senders {
		if s.replaced != 0 {
			t.Fatal("denied capture must not touch any sender")
		}
	}
}

func TestScreenShareReplacesMatchingKindsOnly(t *testing.T) {
	tc := newTestClient(t, "alice")
	tc.c.handleMessage(domain.Message{Kind: domain.KindReady, From: "bob"})
	tr := tc.trs.last(t)

	ctrl := gomock.NewController(t)
	screen := mockSource(ctrl, videoOnlyTrack(t, "screen"))

	if err := tc.swap(t, swapEvent{source: screen}); err != nil {
		t.Fatalf("swap failed: %v", err)
	}
	if !tc.c.Sharing() {
		t.Fatal("sharing not active after swap")
	}

	var videoSwapped, audioTouched bool
	for _, s := range tr.senders {
		switch s.Track().ID() {
		case "video-screen":
			videoSwapped = true
		case "audio-camera":
			if s.replaced != 0 {
				audioTouched = true
			}
		}
	}
	if !videoSwapped {
		t.Fatal("video sender still carries the camera track")
	}
	if audioTouched {
		t.Fatal("audio sender must be untouched by a video-only source")
	}
}

func TestScreenShareFailureIsPerPeer(t *testing.T) {
	tc := newTestClient(t, "alice")
	tc.c.handleMessage(domain.Message{Kind: domain.KindReady, From: "bob"})
	bobTr := tc.trs.last(t)
	tc.c.handleMessage(domain.Message{Kind: domain.KindReady, From: "carol"})
	carolTr := tc.trs.last(t)

	for _, s := range bobTr.senders {
		s.fail = true
	}

	ctrl := gomock.NewController(t)
	screen := mockSource(ctrl, videoOnlyTrack(t, "screen"))
	if err := tc.swap(t, swapEvent{source: screen}); err != nil {
		t.Fatalf("one peer's failure must not fail the swap: %v", err)
	}

	var carolSwapped bool
	for _, s := range carolTr.senders {
		if s.Track().ID() == "video-screen" {
			carolSwapped = true
		}
	}
	if !carolSwapped {
		t.Fatal("healthy peer was not swapped")
	}
	if _, ok := tc.c.Session("bob"); !ok {
		t.Fatal("replace failure must not close the session")
	}
}

func TestDoubleShareRejected(t *testing.T) {
	tc := newTestClient(t, "alice")
	ctrl := gomock.NewController(t)

	first := mockSource(ctrl, videoOnlyTrack(t, "screen"))
	if err := tc.swap(t, swapEvent{source: first}); err != nil {
		t.Fatalf("first swap failed: %v", err)
	}

	second := mockmedia.NewMockSource(ctrl)
	second.EXPECT().Close().Return(nil).Times(1)
	if err := tc.swap(t, swapEvent{source: second}); !errors.Is(err, ErrAlreadySharing) {
		t.Fatalf("second swap returned %v, want ErrAlreadySharing", err)
	}
	if tc.c.screen != first {
		t.Fatal("active share must survive a rejected second swap")
	}
}

func TestStopRestoresCameraAndReleasesScreen(t *testing.T) {
	tc := newTestClient(t, "alice")
	tc.c.handleMessage(domain.Message{Kind: domain.KindReady, From: "bob"})
	tr := tc.trs.last(t)

	ctrl := gomock.NewController(t)
	screen := mockmedia.NewMockSource(ctrl)
	screen.EXPECT().Tracks().Return(videoOnlyTrack(t, "screen")).AnyTimes()
	screen.EXPECT().Close().Return(nil).Times(1)

	if err := tc.swap(t, swapEvent{source: screen}); err != nil {
		t.Fatalf("start swap failed: %v", err)
	}
	if err := tc.swap(t, swapEvent{restore: true}); err != nil {
		t.Fatalf("restore swap failed: %v", err)
	}

	if tc.c.Sharing() {
		t.Fatal("sharing still reported active after stop")
	}
	var videoBack bool
	for _, s := range tr.senders {
		if s.Track().ID() == "video-camera" {
			videoBack = true
		}
	}
	if !videoBack {
		t.Fatal("video sender was not restored to the camera track")
	}
}

func TestStopWithoutActiveShare(t *testing.T) {
	tc := newTestClient(t, "alice")
	if err := tc.swap(t, swapEvent{restore: true}); !errors.Is(err, ErrNotSharing) {
		t.Fatalf("restore returned %v, want ErrNotSharing", err)
	}
}

func TestSessionCreatedWhileSharingAttachesScreenTracks(t *testing.T) {
	tc := newTestClient(t, "alice")
	ctrl := gomock.NewController(t)
	screen := mockSource(ctrl, videoOnlyTrack(t, "screen"))
	if err := tc.swap(t, swapEvent{source: screen}); err != nil {
		t.Fatalf("swap failed: %v", err)
	}

	tc.c.handleMessage(domain.Message{Kind: domain.KindReady, From: "bob"})
	tr := tc.trs.last(t)

	if len(tr.senders) != 1 || tr.senders[0].Track().ID() != "video-screen" {
		t.Fatal("late joiner must receive the active screen track")
	}
}
