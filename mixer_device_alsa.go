//go:build linux && !headless

// mixer_device_alsa.go - cgo ALSA audio output backend
//
// Adapted from audio_backend_alsa.go: same cgo PCM setup and EPIPE retry
// logic, channel count raised from 1 to 2 (stereo), and the write loop
// retargeted from a SoundChip-driven sample buffer to the mixer's
// interleaved surround output.

package mixer

/*
#cgo LDFLAGS: -lasound
#include <alsa/asoundlib.h>
#include <stdlib.h>

static snd_pcm_t* mixer_openPCM(const char* device, int* err) {
    snd_pcm_t* handle;
    *err = snd_pcm_open(&handle, device, SND_PCM_STREAM_PLAYBACK, 0);
    return handle;
}

static int mixer_setupPCM(snd_pcm_t* handle, unsigned int rate, unsigned int channels) {
    snd_pcm_hw_params_t* params;
    int err;

    snd_pcm_hw_params_alloca(&params);
    err = snd_pcm_hw_params_any(handle, params);
    if (err < 0) return err;

    err = snd_pcm_hw_params_set_access(handle, params, SND_PCM_ACCESS_RW_INTERLEAVED);
    if (err < 0) return err;

    err = snd_pcm_hw_params_set_format(handle, params, SND_PCM_FORMAT_FLOAT);
    if (err < 0) return err;

    err = snd_pcm_hw_params_set_channels(handle, params, channels);
    if (err < 0) return err;

    err = snd_pcm_hw_params_set_rate(handle, params, rate, 0);
    if (err < 0) return err;

    err = snd_pcm_hw_params(handle, params);
    if (err < 0) return err;

    return snd_pcm_prepare(handle);
}

static int mixer_writePCM(snd_pcm_t* handle, float* buffer, int frames) {
    return snd_pcm_writei(handle, buffer, frames);
}

static void mixer_closePCM(snd_pcm_t* handle) {
    if (handle != NULL) {
        snd_pcm_drain(handle);
        snd_pcm_close(handle);
    }
}
*/
import "C"
import (
	"fmt"
	"sync"
	"unsafe"
)

func init() {
	registerAudioBackend("alsa", func(sampleRate int) (AudioDevice, bool) {
		dev, err := NewAlsaAudioDevice(sampleRate)
		if err != nil {
			return nil, false
		}
		return dev, true
	})
}

// AlsaAudioDevice drives the mixer from a dedicated write-loop goroutine
// feeding ALSA's PCM interface directly (no oto/v3 callback indirection).
type AlsaAudioDevice struct {
	handle *C.snd_pcm_t

	mu         sync.Mutex
	started    bool
	sampleRate int
	interleave []float32

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewAlsaAudioDevice opens the default ALSA PCM device at sampleRate,
// stereo, 32-bit float.
func NewAlsaAudioDevice(sampleRate int) (*AlsaAudioDevice, error) {
	var cErr C.int
	handle := C.mixer_openPCM(C.CString("default"), &cErr)
	if cErr < 0 {
		return nil, fmt.Errorf("alsa: open failed: %s", C.GoString(C.snd_strerror(cErr)))
	}
	if cErr = C.mixer_setupPCM(handle, C.uint(sampleRate), 2); cErr < 0 {
		C.mixer_closePCM(handle)
		return nil, fmt.Errorf("alsa: setup failed: %s", C.GoString(C.snd_strerror(cErr)))
	}
	return &AlsaAudioDevice{handle: handle, sampleRate: sampleRate}, nil
}

func (d *AlsaAudioDevice) writeFrames(frames []Frame2) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if cap(d.interleave) < len(frames)*2 {
		d.interleave = make([]float32, len(frames)*2)
	}
	buf := d.interleave[:len(frames)*2]
	for i, fr := range frames {
		buf[i*2] = fr[0]
		buf[i*2+1] = fr[1]
	}

	n := C.mixer_writePCM(d.handle, (*C.float)(unsafe.Pointer(&buf[0])), C.int(len(frames)))
	if n < 0 {
		if n == -C.EPIPE {
			C.snd_pcm_prepare(d.handle)
			n = C.mixer_writePCM(d.handle, (*C.float)(unsafe.Pointer(&buf[0])), C.int(len(frames)))
		}
		if n < 0 {
			return fmt.Errorf("alsa: write failed: %s", C.GoString(C.snd_strerror(C.int(n))))
		}
	}
	return nil
}

func (d *AlsaAudioDevice) StartProcessing(engine *Mixer) error {
	d.mu.Lock()
	if d.started {
		d.mu.Unlock()
		return nil
	}
	d.started = true
	d.stopCh = make(chan struct{})
	d.doneCh = make(chan struct{})
	d.mu.Unlock()

	go func() {
		defer close(d.doneCh)
		for {
			select {
			case <-d.stopCh:
				return
			default:
			}
			buf := engine.RenderNextBuffer()
			_ = d.writeFrames(frameNToFrame2(buf.Frames()))
		}
	}()
	return nil
}

func (d *AlsaAudioDevice) StopProcessing() {
	d.mu.Lock()
	if !d.started {
		d.mu.Unlock()
		return
	}
	d.started = false
	stopCh := d.stopCh
	doneCh := d.doneCh
	d.mu.Unlock()

	close(stopCh)
	<-doneCh
}

func (d *AlsaAudioDevice) SampleRate() int { return d.sampleRate }

func (d *AlsaAudioDevice) ApplyQualitySettings(qs QualitySettings) error { return nil }

func (d *AlsaAudioDevice) Name() string { return "alsa" }
