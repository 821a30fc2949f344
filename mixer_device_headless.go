// mixer_device_headless.go - always-available silent fallback backend
//
// Adapted from audio_backend_headless.go's no-op OtoPlayer stub: there the
// stub only existed under the headless build tag as a stand-in for the
// real oto backend. Here the dummy device is unconditional, matching
// spec.md §4.10's requirement that "the dummy backend" always exists as
// the terminal fallback regardless of which real backends were compiled
// in.

package mixer

import "sync"

// DummyAudioDevice satisfies the AudioDevice contract by producing
// silence and dropping output. Always available.
type DummyAudioDevice struct {
	mu         sync.Mutex
	sampleRate int
	running    bool
}

// NewDummyAudioDevice always succeeds.
func NewDummyAudioDevice(sampleRate int) (*DummyAudioDevice, bool) {
	return &DummyAudioDevice{sampleRate: sampleRate}, true
}

func (d *DummyAudioDevice) StartProcessing(engine *Mixer) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.running = true
	return nil
}

func (d *DummyAudioDevice) StopProcessing() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.running = false
}

func (d *DummyAudioDevice) SampleRate() int { return d.sampleRate }

func (d *DummyAudioDevice) ApplyQualitySettings(qs QualitySettings) error { return nil }

func (d *DummyAudioDevice) Name() string { return "dummy" }

func init() {
	registerAudioBackendDummyLast()
}

// registerAudioBackendDummyLast registers the dummy backend at package
// init so TryAudioDevices always has a terminal fallback, even in builds
// with no other backend compiled in.
func registerAudioBackendDummyLast() {
	registerAudioBackend("dummy", func(sampleRate int) (AudioDevice, bool) {
		return NewDummyAudioDevice(sampleRate)
	})
}
