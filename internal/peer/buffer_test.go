package peer

import (
	"fmt"
	"testing"

	"github.com/pion/webrtc/v4"
)

func TestBufferPreservesArrivalOrder(t *testing.T) {
	b := NewCandidateBuffer()
	for i := 0; i < 5; i++ {
		b.Enqueue("bob", webrtc.ICECandidateInit{Candidate: fmt.Sprintf("candidate:%d", i)})
	}
	b.Enqueue("carol", webrtc.ICECandidateInit{Candidate: "candidate:other"})

	got := b.Flush("bob")
	if len(got) != 5 {
		t.Fatalf("flushed %d candidates, want 5", len(got))
	}
	for i, ci := range got {
		if want := fmt.Sprintf("candidate:%d", i); ci.Candidate != want {
			t.Fatalf("candidate %d = %q, want %q", i, ci.Candidate, want)
		}
	}
	if b.Len("carol") != 1 {
		t.Fatal("flush touched another remote's queue")
	}
}

func TestBufferFlushIsOneShot(t *testing.T) {
	b := NewCandidateBuffer()
	b.Enqueue("bob", webrtc.ICECandidateInit{Candidate: "candidate:1"})

	if got := b.Flush("bob"); len(got) != 1 {
		t.Fatalf("first flush: %d", len(got))
	}
	if got := b.Flush("bob"); len(got) != 0 {
		t.Fatalf("second flush must be empty, got %d", len(got))
	}
	if b.Len("bob") != 0 {
		t.Fatal("queue survived flush")
	}
}

func TestBufferDiscard(t *testing.T) {
	b := NewCandidateBuffer()
	b.Enqueue("bob", webrtc.ICECandidateInit{Candidate: "candidate:1"})
	b.Discard("bob")
	if got := b.Flush("bob"); len(got) != 0 {
		t.Fatalf("discarded queue still flushed %d", len(got))
	}
}
