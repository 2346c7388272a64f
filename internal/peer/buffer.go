package peer

import "github.com/pion/webrtc/v4"

// CandidateBuffer holds path descriptors that arrive before the
// session for their remote has accepted a remote description.
type CandidateBuffer struct {
	queues map[string][]webrtc.ICECandidateInit
}

func NewCandidateBuffer() *CandidateBuffer {
	return &CandidateBuffer{queues: make(map[string][]webrtc.ICECandidateInit)}
}

// Enqueue appends to remote's queue, preserving arrival order.
func (b *CandidateBuffer) Enqueue(remote string, c webrtc.ICECandidateInit) {
	b.queues[remote] = append(b.queues[remote], c)
}

// Flush returns the queued descriptors in arrival order and deletes
// the queue; a second flush for the same remote yields nothing.
func (b *CandidateBuffer) Flush(remote string) []webrtc.ICECandidateInit {
	q := b.queues[remote]
	delete(b.queues, remote)
	return q
}

// Discard drops remote's queue without applying it.
func (b *CandidateBuffer) Discard(remote string) {
	delete(b.queues, remote)
}

func (b *CandidateBuffer) Len(remote string) int {
	return len(b.queues[remote])
}
