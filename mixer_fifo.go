// mixer_fifo.go - fifo output and oversampled rendering via arl/blip
//
// Oversampling usage grounded on arl-nestor/hw/apu/mixer.go's
// blip.NewBuffer/SetRates/AddDelta/EndFrame/ReadSamples pattern, adapted
// from per-channel delta synthesis (NES APU) to delta-encoding the
// already-mixed master stereo output for band-limited upsampling.

package mixer

import (
	"sync"

	"github.com/arl/blip"
)

// Fifo is an unbounded queue of surround buffers, written by the engine
// (or FifoWriter) and drained by a downstream consumer. A nil write
// is the sentinel marking end of stream.
type Fifo struct {
	mu      sync.Mutex
	cond    *sync.Cond
	items   []*SurroundBuffer
	closed  bool
}

// NewFifo creates an empty fifo.
func NewFifo() *Fifo {
	f := &Fifo{}
	f.cond = sync.NewCond(&f.mu)
	return f
}

// Write enqueues buf. A nil buf is the end-of-stream sentinel.
func (f *Fifo) Write(buf *SurroundBuffer) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.items = append(f.items, buf)
	if buf == nil {
		f.closed = true
	}
	f.cond.Signal()
}

// Read blocks until an item is available, returning (buf, true), or
// (nil, false) once the sentinel has been read and drained.
func (f *Fifo) Read() (*SurroundBuffer, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for len(f.items) == 0 {
		f.cond.Wait()
	}
	item := f.items[0]
	f.items = f.items[1:]
	if item == nil {
		return nil, false
	}
	return item, true
}

// OversampledWriter wraps a pair of blip band-limited synthesis buffers
// (one per stereo lane) to upsample already-mixed master output by
// QualitySettings.SampleRateMultiplier without introducing aliasing.
// Mono/stereo output only; FX-channel routing is unaffected since this
// runs strictly after Stage 4 (master mix).
type OversampledWriter struct {
	left  *blip.Buffer
	right *blip.Buffer

	baseRate   float64
	outputRate float64

	prevLeft  int16
	prevRight int16
}

// NewOversampledWriter creates an oversampler for the given base
// (engine) sample rate and quality settings. A multiplier of 1 makes
// this a passthrough.
func NewOversampledWriter(baseRate int, qs QualitySettings, framesPerPeriod int) *OversampledWriter {
	outRate := float64(baseRate) * qs.SampleRateMultiplier
	w := &OversampledWriter{
		left:       blip.NewBuffer(framesPerPeriod * 8),
		right:      blip.NewBuffer(framesPerPeriod * 8),
		baseRate:   float64(baseRate),
		outputRate: outRate,
	}
	w.left.SetRates(w.baseRate, w.outputRate)
	w.right.SetRates(w.baseRate, w.outputRate)
	return w
}

// Process feeds one period's worth of master-mixed stereo frames through
// the oversampler and returns the produced samples for each lane.
func (w *OversampledWriter) Process(frames []FrameN) (left, right []int16) {
	for i, fr := range frames {
		if len(fr) < 2 {
			continue
		}
		l := float32ToInt16(fr[0])
		r := float32ToInt16(fr[1])

		if l != w.prevLeft {
			w.left.AddDelta(uint64(i), int32(l)-int32(w.prevLeft))
			w.prevLeft = l
		}
		if r != w.prevRight {
			w.right.AddDelta(uint64(i), int32(r)-int32(w.prevRight))
			w.prevRight = r
		}
	}

	w.left.EndFrame(len(frames))
	w.right.EndFrame(len(frames))

	outLen := len(frames) * 8 // generous upper bound for multiplier <= 8
	outBuf := make([]int16, outLen*2)
	n := w.left.ReadSamples(outBuf, outLen, blip.Stereo)
	left = make([]int16, n)
	right = make([]int16, n)
	for i := 0; i < n; i++ {
		left[i] = outBuf[i*2]
	}
	n2 := w.right.ReadSamples(outBuf[1:], outLen, blip.Stereo)
	for i := 0; i < n2 && i < n; i++ {
		right[i] = outBuf[i*2+1]
	}
	return left, right
}

func float32ToInt16(v float32) int16 {
	if v > 1 {
		v = 1
	}
	if v < -1 {
		v = -1
	}
	return int16(v * 32767)
}

func int16ToFloat32(v int16) float32 {
	return float32(v) / 32767
}

// FifoWriter loops calling RenderNextBuffer, copies the result into a
// freshly allocated surround buffer (optionally oversampled), and writes
// it to the fifo. Calling Finish sets a flag checked at the top of the
// loop; the last period in flight still completes before the sentinel is
// written.
type FifoWriter struct {
	mixer  *Mixer
	fifo   *Fifo
	oversample *OversampledWriter

	mu      sync.Mutex
	finish  bool
	doneCh  chan struct{}
}

// NewFifoWriter creates a writer pumping engine's output into fifo. If qs
// specifies a multiplier > 1, output is oversampled through
// OversampledWriter before being queued; callers that want raw frames
// should pass DefaultQualitySettings().
func NewFifoWriter(m *Mixer, fifo *Fifo, qs QualitySettings) *FifoWriter {
	fw := &FifoWriter{mixer: m, fifo: fifo, doneCh: make(chan struct{})}
	if qs.SampleRateMultiplier > 1 {
		fw.oversample = NewOversampledWriter(m.SampleRate(), qs, m.FramesPerPeriod())
	}
	return fw
}

// Run drives the writer loop. Intended to run on its own goroutine.
func (fw *FifoWriter) Run() {
	defer close(fw.doneCh)
	defer fw.fifo.Write(nil)

	for {
		fw.mu.Lock()
		done := fw.finish
		fw.mu.Unlock()
		if done {
			return
		}

		buf := fw.mixer.RenderNextBuffer()

		var out *SurroundBuffer
		if fw.oversample != nil {
			left, right := fw.oversample.Process(buf.Frames())
			out = NewSurroundBuffer(StereoLayout, len(left))
			for i, fr := range out.Frames() {
				fr[0] = int16ToFloat32(left[i])
				if i < len(right) {
					fr[1] = int16ToFloat32(right[i])
				}
			}
		} else {
			out = NewSurroundBuffer(StereoLayout, buf.Len())
			outFrames := out.Frames()
			for i, fr := range buf.Frames() {
				copy(outFrames[i], fr)
			}
		}
		fw.fifo.Write(out)
	}
}

// Finish requests the writer loop stop after its current period.
func (fw *FifoWriter) Finish() {
	fw.mu.Lock()
	fw.finish = true
	fw.mu.Unlock()
}

// Wait blocks until Run has returned.
func (fw *FifoWriter) Wait() { <-fw.doneCh }
