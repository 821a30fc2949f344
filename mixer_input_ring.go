// mixer_input_ring.go - double-buffered variable-length stereo capture

package mixer

import "sync"

// InputRing is the double-buffered stereo capture ring. Producers append
// via PushFrames under a dedicated lock; the engine swaps the write/read
// halves at period start under the same lock. Grow uses copy-then-release:
// no reader may hold a pointer across a swap.
type InputRing struct {
	mu         sync.Mutex
	buffers    [2][]Frame2
	fill       [2]int
	writeIndex int
	readIndex  int
}

// NewInputRing creates an input ring with an initial per-half capacity.
func NewInputRing(initialCapacity int) *InputRing {
	if initialCapacity < 1 {
		initialCapacity = 1
	}
	return &InputRing{
		buffers:    [2][]Frame2{make([]Frame2, initialCapacity), make([]Frame2, initialCapacity)},
		writeIndex: 0,
		readIndex:  1,
	}
}

// PushFrames appends n frames to the current write half, growing its
// backing storage to max(2*size, fill+n) on overflow.
func (r *InputRing) PushFrames(frames []Frame2) {
	r.mu.Lock()
	defer r.mu.Unlock()

	w := r.writeIndex
	need := r.fill[w] + len(frames)
	if need > len(r.buffers[w]) {
		newCap := len(r.buffers[w]) * 2
		if newCap < need {
			newCap = need
		}
		grown := make([]Frame2, newCap)
		copy(grown, r.buffers[w][:r.fill[w]])
		r.buffers[w] = grown
	}
	copy(r.buffers[w][r.fill[w]:need], frames)
	r.fill[w] = need
}

// Swap exchanges the write and read halves and zeroes the new write
// half's fill count. Called at period start, before the engine takes its
// global lock; it holds the input-ring lock that PushFrames also uses.
func (r *InputRing) Swap() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.writeIndex, r.readIndex = r.readIndex, r.writeIndex
	r.fill[r.writeIndex] = 0
}

// ReadFrames returns the frames captured in the current read half, in
// append order.
func (r *InputRing) ReadFrames() []Frame2 {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := r.fill[r.readIndex]
	out := make([]Frame2, n)
	copy(out, r.buffers[r.readIndex][:n])
	return out
}
