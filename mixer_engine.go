// mixer_engine.go - the period engine, grounded directly on mixer.cpp's
// renderNextBuffer(): metronome -> input swap -> lock -> deferred-delete
// drain -> pool rotation -> prepareMasterMix -> song.processNextBuffer ->
// Stage 1 -> cull done handles -> Stage 2 -> Stage 3 -> masterMix ->
// unlock -> emit event -> LFO tick -> CPU-load EMA -> return read buffer.

package mixer

import (
	"fmt"
	"math"
	"sync"
	"time"
	"unsafe"
)

// Mixer is the process-wide engine value. Per DESIGN NOTES §9 it is
// passed by reference to every collaborator that needs it rather than
// reached through package state.
type Mixer struct {
	// lock is the engine's global mutex. Per the decided Open Question on
	// the C++ original's recursive lock (DESIGN NOTES §9 preference b),
	// this is a plain, non-reentrant mutex: Song.ProcessNextBuffer and any
	// other callback invoked from inside RenderNextBuffer runs with this
	// lock already held and must never call back into a Mixer method that
	// itself locks it (use the *Locked helpers instead).
	lock sync.Mutex

	framesPerPeriod int
	sampleRate      int
	masterGain      float32
	cpuLoad         float64

	qualitySettings QualitySettings

	audioDevice    AudioDevice
	oldAudioDevice AudioDevice
	midiClient     MidiClient

	playHandles *PlayHandleList
	audioPorts  []*AudioPort
	fxMixer     FxMixer

	bufferPool *BufferPool
	inputRing  *InputRing
	workers    *WorkerPool

	events *EventBus

	transport *Transport
	song      *Song
	pianoRoll *PianoRoll

	lastMetronomeTick int64
	periodCounter     int64

	processing bool
}

// NewMixer constructs a mixer. Buffer-pool allocation failure is fatal to
// construction per spec.md §7 (the realtime path cannot degrade).
func NewMixer(cfg ConfigStore, fxMixer FxMixer) (*Mixer, error) {
	framesPerPeriod := NormalizeFramesPerPeriod(cfg)
	sampleRate := NormalizeSampleRate(cfg)

	pool, err := NewBufferPool(DefaultPoolDepth, framesPerPeriod, StereoLayout)
	if err != nil {
		return nil, fmt.Errorf("mixer: construction failed: %w", err)
	}

	transport := NewTransport()
	m := &Mixer{
		framesPerPeriod: framesPerPeriod,
		sampleRate:      sampleRate,
		masterGain:      1,
		qualitySettings: DefaultQualitySettings(),
		playHandles:     NewPlayHandleList(),
		fxMixer:         fxMixer,
		bufferPool:      pool,
		inputRing:       NewInputRing(framesPerPeriod * 4),
		workers:         NewWorkerPool(framesPerPeriod),
		events:          NewEventBus(8),
		transport:       transport,
		song:            NewSong(transport),
		pianoRoll:       NewPianoRoll(),
		midiClient:      NewDummyMidiClient(),
	}
	return m, nil
}

// FramesPerPeriod returns the immutable (except via ChangeQuality) block size.
func (m *Mixer) FramesPerPeriod() int { return m.framesPerPeriod }

// SampleRate returns the processing sample rate.
func (m *Mixer) SampleRate() int { return m.sampleRate }

// CPULoad returns the smoothed 0..100 CPU load percentage.
func (m *Mixer) CPULoad() float64 {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.cpuLoad
}

// CriticalXRuns reports true when cpu_load >= 99 and the song is in a
// realtime play mode.
func (m *Mixer) CriticalXRuns() bool {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.cpuLoad >= 99 && m.transport.PlayMode() != ModeStopped
}

// ActiveVoices reports the current number of live play-handles.
func (m *Mixer) ActiveVoices() int {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.playHandles.Len()
}

// Transport, Song, PianoRoll, Events expose the engine's collaborators.
func (m *Mixer) Transport() *Transport { return m.transport }
func (m *Mixer) Song() *Song           { return m.song }
func (m *Mixer) PianoRoll() *PianoRoll { return m.pianoRoll }
func (m *Mixer) Events() *EventBus     { return m.events }

// AddAudioPort creates and registers a new audio port routed to
// fxChannel, returning it.
func (m *Mixer) AddAudioPort(fxChannel FxChannelID) *AudioPort {
	m.lock.Lock()
	defer m.lock.Unlock()
	p := NewAudioPort(m.framesPerPeriod, fxChannel)
	m.audioPorts = append(m.audioPorts, p)
	return p
}

// AddPlayHandle registers a new handle, taking the global lock itself.
// Not safe to call from inside RenderNextBuffer's callback path; use
// addPlayHandleLocked there instead.
func (m *Mixer) AddPlayHandle(h PlayHandle) {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.addPlayHandleLocked(h)
}

// addPlayHandleLocked registers h, assuming the caller already holds
// m.lock (e.g. Song.ProcessNextBuffer during RenderNextBuffer).
func (m *Mixer) addPlayHandleLocked(h PlayHandle) {
	m.playHandles.Add(h)
}

// RemovePlayHandle removes h via the deferred-removal protocol (spec.md
// §4.7). currentThread identifies the caller for affinity comparison.
func (m *Mixer) RemovePlayHandle(e *handleEntry, currentThread ThreadID) {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.playHandles.RemovePlayHandle(e, currentThread)
}

// RemovePlayHandles removes every handle belonging to track, immediately.
func (m *Mixer) RemovePlayHandles(track TrackID) {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.playHandles.RemovePlayHandles(track)
}

// Clear defers every non-instrument handle for removal on the next
// period boundary (spec.md §4.7).
func (m *Mixer) Clear() {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.playHandles.Clear()
}

// PushInputFrames appends frames to the input capture ring.
func (m *Mixer) PushInputFrames(frames []Frame2) {
	m.inputRing.PushFrames(frames)
}

// StartProcessing marks the engine ready to render periods. needsFifo
// is accepted for symmetry with spec.md §4.8's set_audio_device
// signature; this engine does not itself own the fifo goroutine (see
// FifoWriter), so it is informational only here.
func (m *Mixer) StartProcessing(needsFifo ...bool) {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.processing = true
}

// StopProcessing marks the engine as not currently rendering periods.
func (m *Mixer) StopProcessing() {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.processing = false
}

// SetAudioDevice swaps in dev, retaining the previous device in
// oldAudioDevice for RestoreAudioDevice. A nil dev falls back to
// TryAudioDevices. Spec.md §4.8.
func (m *Mixer) SetAudioDevice(dev AudioDevice, preferredName string) error {
	m.StopProcessing()
	if m.audioDevice != nil {
		m.audioDevice.StopProcessing()
	}
	m.oldAudioDevice = m.audioDevice
	if dev == nil {
		dev, _ = TryAudioDevices(preferredName, m.sampleRate)
	}
	m.audioDevice = dev
	m.StartProcessing()
	return dev.StartProcessing(m)
}

// RestoreAudioDevice reinstalls the device saved by the last
// SetAudioDevice call, if any.
func (m *Mixer) RestoreAudioDevice() error {
	if m.oldAudioDevice == nil {
		return nil
	}
	m.StopProcessing()
	if m.audioDevice != nil {
		m.audioDevice.StopProcessing()
	}
	m.audioDevice = m.oldAudioDevice
	m.oldAudioDevice = nil
	m.StartProcessing()
	return m.audioDevice.StartProcessing(m)
}

// RenderNextBuffer performs one period and returns the current
// read-buffer. The returned buffer is valid until the next call.
func (m *Mixer) RenderNextBuffer() *SurroundBuffer {
	start := time.Now()

	// 1. Metronome: one-shot click on a quarter-tact boundary while
	// recording in pattern mode.
	m.maybeInjectMetronome()

	// 2. Input swap.
	m.inputRing.Swap()

	// 3. Global lock: all subsequent steps hold it.
	m.lock.Lock()

	// 4. Deferred deletion.
	m.playHandles.DrainDeferred()

	// 5. Pool rotation.
	m.bufferPool.Rotate()

	// 6. Mix prep.
	m.fxMixer.PrepareMasterMix()

	// 7. Song advance (may spawn new play-handles/ports via addPlayHandleLocked).
	m.song.ProcessNextBuffer(m)

	// 8. Stage 1: play handles.
	m.runStage1()

	// 9. Cull done handles.
	m.playHandles.CullDone(EngineThreadID)

	// 10. Stage 2: audio port effects.
	m.runStage2()

	// 11. Stage 3: effect channels.
	m.runStage3()

	// 12. Master mix.
	m.fxMixer.MasterMix(m.bufferPool.WriteBuffer())

	// 13. Release global lock.
	m.lock.Unlock()

	// 14. Emit event.
	m.events.Emit(Event{Kind: EventNextAudioBuffer})

	// 15. Advance the period counter (the frame position used for
	// metronome clicks); no LFO/envelope state is ticked here.
	m.periodCounter++

	// 16. CPU-load EMA.
	elapsedUs := float64(time.Since(start).Microseconds())
	m.updateCPULoad(elapsedUs)

	// 17. Return read buffer.
	return m.bufferPool.ReadBuffer()
}

func (m *Mixer) maybeInjectMetronome() {
	if m.transport.PlayMode() != ModePlayPattern || !m.pianoRoll.IsRecording() {
		return
	}
	quarterTact := int64(DefaultTicksPerTact / 4)
	pos := m.transport.PlayPos(m.transport.PlayMode())
	tickBucket := pos - (pos % quarterTact)
	if tickBucket == m.lastMetronomeTick {
		return
	}
	if pos%quarterTact != 0 {
		return
	}
	m.lastMetronomeTick = tickBucket

	m.lock.Lock()
	var target *AudioPort
	if len(m.audioPorts) > 0 {
		target = m.audioPorts[0]
	} else {
		target = NewAudioPort(m.framesPerPeriod, MasterFxChannel)
		m.audioPorts = append(m.audioPorts, target)
	}
	click := NewMetronomeHandle(target, m.sampleRate, int64(m.periodCounter)*int64(m.framesPerPeriod), m.framesPerPeriod)
	m.addPlayHandleLocked(click)
	m.lock.Unlock()
}

func (m *Mixer) runStage1() {
	entries := m.playHandles.Entries()
	jobs := make([]JobDescriptor, 0, len(entries))
	for _, e := range entries {
		e := e
		if e.handle.Done() {
			continue
		}
		jobs = append(jobs, JobDescriptor{
			kind: PlayHandleKind,
			run: func(scratch *AlignedBuffer[float32]) {
				e.handle.Play(alignedToFrame2(scratch))
			},
		})
	}
	m.workers.RunStage(jobs)
}

func (m *Mixer) runStage2() {
	jobs := make([]JobDescriptor, 0, len(m.audioPorts))
	for _, p := range m.audioPorts {
		p := p
		jobs = append(jobs, JobDescriptor{
			kind: AudioPortEffectsKind,
			run: func(scratch *AlignedBuffer[float32]) {
				audible := p.ProcessEffects()
				if audible || p.Usage() != UsageNone {
					m.fxMixer.MixToChannel(p.FirstBuffer(), p.NextFxChannel())
					p.NextPeriod()
				}
			},
		})
	}
	m.workers.RunStage(jobs)
}

func (m *Mixer) runStage3() {
	numChannels := 1 // at minimum, the master channel itself is processed as channel 0.
	if bm, ok := m.fxMixer.(*BusFxMixer); ok {
		numChannels = bm.numChannels
	}
	jobs := make([]JobDescriptor, 0, numChannels+1)
	for ch := 0; ch <= numChannels; ch++ {
		ch := ch
		jobs = append(jobs, JobDescriptor{
			kind:  EffectChannelKind,
			param: ch,
			run: func(scratch *AlignedBuffer[float32]) {
				m.fxMixer.ProcessChannel(FxChannelID(ch))
			},
		})
	}
	m.workers.RunStage(jobs)
}

func (m *Mixer) updateCPULoad(elapsedUs float64) {
	m.lock.Lock()
	defer m.lock.Unlock()
	instant := elapsedUs / 10000 * float64(m.sampleRate) / float64(m.framesPerPeriod)
	load := instant*0.1 + m.cpuLoad*0.9
	m.cpuLoad = math.Max(0, math.Min(100, math.Round(load)))
}

// alignedToFrame2 reinterprets a [float32] scratch buffer as [Frame2]
// without copying: Frame2 is a [2]float32 with identical layout to two
// consecutive float32 elements, so the aligned backing storage can be
// viewed directly as a Frame2 slice.
func alignedToFrame2(scratch *AlignedBuffer[float32]) []Frame2 {
	flat := scratch.Acquire()
	return unsafe.Slice((*Frame2)(unsafe.Pointer(&flat[0])), len(flat)/2)
}

// Shutdown stops the audio device, sets the worker pool's quit flag and
// joins its workers with a bounded timeout, and releases the buffer pool.
// Spec.md §4.9.
func (m *Mixer) Shutdown() {
	m.StopProcessing()
	if m.audioDevice != nil {
		m.audioDevice.StopProcessing()
	}
	m.workers.Shutdown(500 * time.Millisecond)
	m.bufferPool.Release()
}
