// mixer_engine_test.go - period engine scenarios S1, S2, S5 and invariant 3

package mixer

import "testing"

func newTestMixer(t *testing.T) *Mixer {
	cfg := NewMemConfigStore()
	cfg.SetInt("mixer.framesperaudiobuffer", DefaultFramesPerPeriod)
	fx := NewBusFxMixer(1, DefaultFramesPerPeriod)
	m, err := NewMixer(cfg, fx)
	if err != nil {
		t.Fatalf("NewMixer failed: %v", err)
	}
	return m
}

// TestRenderNextBuffer_Silence covers S1: with no play-handles and no
// ports, one period's output is all zeros.
func TestRenderNextBuffer_Silence(t *testing.T) {
	m := newTestMixer(t)
	buf := m.RenderNextBuffer()
	for i, fr := range buf.Frames() {
		for c, v := range fr {
			if v != 0 {
				t.Fatalf("frame %d channel %d not silent: %v", i, c, v)
			}
		}
	}
}

// constantHandle writes a fixed stereo value for every frame of one period.
type constantHandle struct {
	port  *AudioPort
	value float32
	done  bool
	fpp   int
}

func (h *constantHandle) Play(scratch []Frame2) {
	if h.done {
		return
	}
	for i := range scratch {
		scratch[i] = Frame2{h.value, h.value}
	}
	BufferToPort(scratch, 0, UnityVolume, h.port, h.fpp)
	h.done = true
}
func (h *constantHandle) Done() bool                 { return h.done }
func (h *constantHandle) Type() HandleType           { return SamplePlayHandle }
func (h *constantHandle) AffinityMatters() bool      { return false }
func (h *constantHandle) Affinity() ThreadID         { return EngineThreadID }
func (h *constantHandle) IsFromTrack(TrackID) bool   { return false }

// TestRenderNextBuffer_SingleVoice covers S2: one play-handle writing
// 0.25 into a single port routed to channel 1, with an identity
// pass-through FxMixer, must appear unchanged at the master output. The
// read buffer trails the write buffer by one period, so the period that
// renders the voice is returned by the following RenderNextBuffer call.
func TestRenderNextBuffer_SingleVoice(t *testing.T) {
	cfg := NewMemConfigStore()
	fx := NewBusFxMixer(1, DefaultFramesPerPeriod)
	fx.SetChannelGain(1, 1)
	m, err := NewMixer(cfg, fx)
	if err != nil {
		t.Fatalf("NewMixer failed: %v", err)
	}

	port := m.AddAudioPort(FxChannelID(1))
	h := &constantHandle{port: port, value: 0.25, fpp: m.FramesPerPeriod()}
	m.AddPlayHandle(h)

	m.RenderNextBuffer()
	buf := m.RenderNextBuffer()
	for i, fr := range buf.Frames() {
		if fr[0] != 0.25 || fr[1] != 0.25 {
			t.Fatalf("frame %d = %v, want [0.25 0.25]", i, fr)
		}
	}
}

// TestRenderNextBuffer_ReadBufferRotates covers invariant 3: the read
// buffer address changes every period when pool_depth >= 2.
func TestRenderNextBuffer_ReadBufferRotates(t *testing.T) {
	m := newTestMixer(t)
	first := m.RenderNextBuffer()
	second := m.RenderNextBuffer()
	if first == second {
		t.Fatal("read buffer did not rotate between periods")
	}
}

type foreverHandle struct {
	kind HandleType
	done bool
}

func (h *foreverHandle) Play(scratch []Frame2)    {}
func (h *foreverHandle) Done() bool               { return h.done }
func (h *foreverHandle) Type() HandleType         { return h.kind }
func (h *foreverHandle) AffinityMatters() bool    { return false }
func (h *foreverHandle) Affinity() ThreadID       { return EngineThreadID }
func (h *foreverHandle) IsFromTrack(TrackID) bool { return false }

// TestClear_PreservesInstruments covers S5: after Clear and one period,
// the instrument handle remains and the note handle is gone.
func TestClear_PreservesInstruments(t *testing.T) {
	m := newTestMixer(t)
	instrument := &foreverHandle{kind: InstrumentPlayHandle}
	note := &foreverHandle{kind: NotePlayHandle}
	m.AddPlayHandle(instrument)
	m.AddPlayHandle(note)

	m.Clear()
	m.RenderNextBuffer()

	if m.ActiveVoices() != 1 {
		t.Fatalf("expected 1 active voice after Clear, got %d", m.ActiveVoices())
	}
}

// TestCriticalXRuns_RequiresRealtimeMode ensures a high cpu_load alone is
// not sufficient; the transport must also be out of ModeStopped.
func TestCriticalXRuns_RequiresRealtimeMode(t *testing.T) {
	m := newTestMixer(t)
	m.cpuLoad = 99
	if m.CriticalXRuns() {
		t.Fatal("expected no critical xrun while transport is stopped")
	}
	m.Transport().SetPlayMode(ModePlaySong)
	if !m.CriticalXRuns() {
		t.Fatal("expected critical xrun once cpu_load >= 99 and transport is running")
	}
}
