package testutil

import "sync"

// Recorder is a message sink that keeps every message it receives.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type Recorder struct {
	mu   sync.Mutex
	msgs []string
}

// Broadcast records msg.
func (r *Recorder) Broadcast(msg []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, string(msg))
}

// Messages returns a copy of the messages received so far.
func (r *Recorder) Messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.msgs...)
}

// Len returns the number of messages received so far.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.msgs)
}

// Reset discards every recorded message.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = nil
}
