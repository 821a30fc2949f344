// mixer_buffer_pool.go - fixed ring of surround output buffers

package mixer

import "fmt"

// SurroundBuffer is one period's worth of FrameN samples.
type SurroundBuffer struct {
	layout ChannelLayout
	frames []FrameN
	store  *AlignedBuffer[float32]
}

// NewSurroundBuffer allocates a zeroed, aligned surround buffer of n
// frames in the given layout.
func NewSurroundBuffer(layout ChannelLayout, n int) *SurroundBuffer {
	store := NewAlignedBuffer[float32](n * layout.Lanes)
	flat := store.Acquire()
	frames := make([]FrameN, n)
	for i := range frames {
		frames[i] = flat[i*layout.Lanes : (i+1)*layout.Lanes]
	}
	return &SurroundBuffer{layout: layout, frames: frames, store: store}
}

// Frames returns the buffer's frame slice.
func (b *SurroundBuffer) Frames() []FrameN { return b.frames }

// Len reports the frame count.
func (b *SurroundBuffer) Len() int { return len(b.frames) }

// Clear zeroes every sample in the buffer.
func (b *SurroundBuffer) Clear() {
	for _, fr := range b.frames {
		for i := range fr {
			fr[i] = 0
		}
	}
}

// Release frees the buffer's backing allocation.
func (b *SurroundBuffer) Release() {
	if b.store != nil {
		b.store.Release()
		b.store = nil
	}
	b.frames = nil
}

// BufferPool is a fixed ring of pool_depth surround buffers. One is the
// read_buffer, one the write_buffer, both advanced modulo pool_depth each
// period; pool_depth standardises on the allocated pool size (no buffer
// in the ring is ever permanently unused).
type BufferPool struct {
	buffers    []*SurroundBuffer
	readIndex  int
	writeIndex int
}

// NewBufferPool allocates depth surround buffers of framesPerPeriod
// frames each in the given layout. depth must be >= MinPoolDepth.
// Allocation failure is fatal: the realtime path cannot degrade, so
// construction fails outright rather than returning a partially usable
// pool.
func NewBufferPool(depth int, framesPerPeriod int, layout ChannelLayout) (*BufferPool, error) {
	if depth < MinPoolDepth {
		return nil, fmt.Errorf("mixer: pool depth %d below minimum %d", depth, MinPoolDepth)
	}
	if framesPerPeriod < MinFramesPerPeriod {
		return nil, fmt.Errorf("mixer: frames per period %d below minimum %d", framesPerPeriod, MinFramesPerPeriod)
	}
	bp := &BufferPool{
		buffers:    make([]*SurroundBuffer, depth),
		readIndex:  0,
		writeIndex: 1 % depth,
	}
	for i := range bp.buffers {
		bp.buffers[i] = NewSurroundBuffer(layout, framesPerPeriod)
	}
	return bp, nil
}

// Depth returns the pool's allocated size.
func (bp *BufferPool) Depth() int { return len(bp.buffers) }

// Rotate advances write_buffer and read_buffer modulo pool_depth, and
// clears the newly chosen write buffer. Must be called with the engine's
// global lock held.
func (bp *BufferPool) Rotate() {
	depth := len(bp.buffers)
	bp.writeIndex = (bp.writeIndex + 1) % depth
	bp.readIndex = (bp.readIndex + 1) % depth
	bp.buffers[bp.writeIndex].Clear()
}

// WriteBuffer returns the current write buffer.
func (bp *BufferPool) WriteBuffer() *SurroundBuffer { return bp.buffers[bp.writeIndex] }

// ReadBuffer returns the current read buffer. Frozen until the next
// Rotate call.
func (bp *BufferPool) ReadBuffer() *SurroundBuffer { return bp.buffers[bp.readIndex] }

// Release frees every buffer in the pool.
func (bp *BufferPool) Release() {
	for _, b := range bp.buffers {
		b.Release()
	}
	bp.buffers = nil
}
