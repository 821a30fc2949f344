//go:build !headless

// mixer_device_oto.go - oto/v3 audio output backend
//
// Adapted from audio_backend_oto.go's OtoPlayer: there Read() pulled
// float32 samples from a SoundChip's ring buffer one at a time; here it
// pulls whole interleaved stereo frames from the Mixer's current
// read-buffer, re-reading RenderNextBuffer as the buffer is exhausted.

package mixer

import (
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/ebitengine/oto/v3"
)

func init() {
	registerAudioBackend("oto", func(sampleRate int) (AudioDevice, bool) {
		dev, err := NewOtoAudioDevice(sampleRate)
		if err != nil {
			return nil, false
		}
		return dev, true
	})
}

// OtoAudioDevice drives the mixer from an oto/v3 playback callback.
type OtoAudioDevice struct {
	ctx    *oto.Context
	player *oto.Player

	engine  atomic.Pointer[Mixer]
	cursor  []Frame2
	pos     int

	mu         sync.Mutex
	started    bool
	sampleRate int
}

// NewOtoAudioDevice opens an oto/v3 context at sampleRate, stereo,
// float32 little-endian.
func NewOtoAudioDevice(sampleRate int) (*OtoAudioDevice, error) {
	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 2,
		Format:       oto.FormatFloat32LE,
		BufferSize:   4,
	}
	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, err
	}
	<-ready

	dev := &OtoAudioDevice{ctx: ctx, sampleRate: sampleRate}
	dev.player = ctx.NewPlayer(dev)
	return dev, nil
}

// Read implements io.Reader for the oto player callback, pulling frames
// from the mixer's current read-buffer, rendering a new period whenever
// the cursor runs out.
func (d *OtoAudioDevice) Read(p []byte) (int, error) {
	m := d.engine.Load()
	if m == nil {
		for i := range p {
			p[i] = 0
		}
		return len(p), nil
	}

	needFrames := len(p) / 8 // 2 channels * 4 bytes
	out := make([]float32, 0, needFrames*2)

	for len(out) < needFrames*2 {
		if d.pos >= len(d.cursor) {
			buf := m.RenderNextBuffer()
			d.cursor = frameNToFrame2(buf.Frames())
			d.pos = 0
			if len(d.cursor) == 0 {
				break
			}
		}
		fr := d.cursor[d.pos]
		out = append(out, fr[0], fr[1])
		d.pos++
	}

	for len(out) < needFrames*2 {
		out = append(out, 0, 0)
	}

	if len(out) == 0 {
		for i := range p {
			p[i] = 0
		}
		return len(p), nil
	}

	n := len(out) * 4
	if n > len(p) {
		n = len(p)
	}
	copy(p, (*[1 << 30]byte)(unsafe.Pointer(&out[0]))[:n])
	return len(p), nil
}

func frameNToFrame2(frames []FrameN) []Frame2 {
	out := make([]Frame2, len(frames))
	for i, fr := range frames {
		if len(fr) >= 2 {
			out[i] = Frame2{fr[0], fr[1]}
		}
	}
	return out
}

func (d *OtoAudioDevice) StartProcessing(engine *Mixer) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.engine.Store(engine)
	if !d.started {
		d.player.Play()
		d.started = true
	}
	return nil
}

func (d *OtoAudioDevice) StopProcessing() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started {
		d.player.Pause()
		d.started = false
	}
}

func (d *OtoAudioDevice) SampleRate() int { return d.sampleRate }

func (d *OtoAudioDevice) ApplyQualitySettings(qs QualitySettings) error { return nil }

func (d *OtoAudioDevice) Name() string { return "oto" }
