// mixer_device.go - audio device contract and backend probing/fallback

package mixer

import "fmt"

// AudioDevice is the collaborator contract for a concrete audio backend.
// The device drives RenderNextBuffer either synchronously from its
// callback or by consuming the fifo.
type AudioDevice interface {
	StartProcessing(engine *Mixer) error
	StopProcessing()
	SampleRate() int
	ApplyQualitySettings(qs QualitySettings) error
	Name() string
}

// audioDeviceFactory constructs a named AudioDevice candidate. success is
// false when construction failed; the caller skips it and continues to
// the next candidate.
type audioDeviceFactory struct {
	name  string
	build func(sampleRate int) (AudioDevice, bool)
}

// audioDeviceCandidates lists the compiled-in backends in registration
// order; the dummy is always registered, and orderedCandidatesDummyLast
// moves it to the end for probing. Build-tag-gated backends register
// themselves via registerAudioBackend from their own files.
var audioDeviceCandidates []audioDeviceFactory

func registerAudioBackend(name string, build func(sampleRate int) (AudioDevice, bool)) {
	audioDeviceCandidates = append(audioDeviceCandidates, audioDeviceFactory{name: name, build: build})
}

// TryAudioDevices probes the ordered candidate list. If preferredName
// matches a candidate (empty or "dummy" means no preference), that
// candidate is tried first. On success it returns the constructed
// device and its name; if every candidate fails, it prints a diagnostic
// and returns the dummy backend, which always succeeds.
func TryAudioDevices(preferredName string, sampleRate int) (AudioDevice, string) {
	candidates := orderedCandidatesDummyLast()
	if preferredName != "" && preferredName != "dummy" {
		reordered := make([]audioDeviceFactory, 0, len(candidates))
		for _, c := range candidates {
			if c.name == preferredName {
				reordered = append([]audioDeviceFactory{c}, reordered...)
			} else {
				reordered = append(reordered, c)
			}
		}
		candidates = reordered
	}

	for _, c := range candidates {
		dev, ok := c.build(sampleRate)
		if !ok {
			continue
		}
		return dev, c.name
	}

	fmt.Println("mixer: all audio backends failed probing, falling back to dummy")
	dev, _ := NewDummyAudioDevice(sampleRate)
	return dev, dev.Name()
}

// orderedCandidatesDummyLast returns the registered backends with any
// "dummy" entry moved to the end, regardless of file-level init order.
func orderedCandidatesDummyLast() []audioDeviceFactory {
	ordered := make([]audioDeviceFactory, 0, len(audioDeviceCandidates))
	var dummy *audioDeviceFactory
	for i, c := range audioDeviceCandidates {
		if c.name == "dummy" {
			dummy = &audioDeviceCandidates[i]
			continue
		}
		ordered = append(ordered, c)
	}
	if dummy != nil {
		ordered = append(ordered, *dummy)
	}
	return ordered
}
