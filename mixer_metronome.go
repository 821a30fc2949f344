// mixer_metronome.go - synthesized one-shot metronome click

package mixer

import "math"

// DefaultTicksPerTact matches spec.md's quarter-tact metronome cadence
// reference; a tact here is subdivided into quarters for click spacing.
const DefaultTicksPerTact = 192

// metronomeClickFrames returns a procedurally synthesized decaying sine
// burst at freqHz, sampleRate samples/sec, lengths. This is not a decoded
// audio asset: Non-goals exclude file I/O, and no legitimate embeddable
// click sample could be produced without running an encoder, so the click
// is synthesized in code instead (see DESIGN.md).
func metronomeClickFrames(freqHz float64, sampleRate int, lengthSeconds float64) []Frame2 {
	n := int(float64(sampleRate) * lengthSeconds)
	if n < 1 {
		n = 1
	}
	frames := make([]Frame2, n)
	decay := 1.0 / (lengthSeconds * float64(sampleRate) / 4)
	for i := 0; i < n; i++ {
		t := float64(i) / float64(sampleRate)
		envelope := math.Exp(-decay * float64(i))
		s := float32(math.Sin(2*math.Pi*freqHz*t) * envelope * 0.5)
		frames[i] = Frame2{s, s}
	}
	return frames
}

// MetronomeHandle is a one-shot play-handle for the metronome click. It
// is never affinity-bound and reports Done() once its burst has been
// fully delivered.
type MetronomeHandle struct {
	port            *AudioPort
	samples         []Frame2
	offset          int64
	cursor          int
	vol             ChannelVolume
	framesPerPeriod int
}

// NewMetronomeHandle creates a one-shot click handle targeting port,
// starting at the given global frame offset.
func NewMetronomeHandle(port *AudioPort, sampleRate int, globalOffset int64, framesPerPeriod int) *MetronomeHandle {
	return &MetronomeHandle{
		port:            port,
		samples:         metronomeClickFrames(1000, sampleRate, 0.05),
		offset:          globalOffset,
		vol:             UnityVolume,
		framesPerPeriod: framesPerPeriod,
	}
}

func (h *MetronomeHandle) Play(scratch []Frame2) {
	remaining := h.samples[h.cursor:]
	n := len(remaining)
	if n > len(scratch) {
		n = len(scratch)
	}
	copy(scratch[:n], remaining[:n])
	BufferToPort(scratch[:n], int(h.offset)+h.cursor, h.vol, h.port, h.framesPerPeriod)
	h.cursor += n
}

func (h *MetronomeHandle) Done() bool                 { return h.cursor >= len(h.samples) }
func (h *MetronomeHandle) Type() HandleType            { return SamplePlayHandle }
func (h *MetronomeHandle) AffinityMatters() bool       { return false }
func (h *MetronomeHandle) Affinity() ThreadID          { return EngineThreadID }
func (h *MetronomeHandle) IsFromTrack(track TrackID) bool { return false }
