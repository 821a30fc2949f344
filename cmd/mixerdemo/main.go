// mixerdemo wires a mixer engine to a probed audio backend and a single
// synthetic test-tone voice, then runs until interrupted.
//
// CLI shape (flag.NewFlagSet, flagSet.Usage) is grounded on the
// teacher's main.go; its ASCII banner and product branding are not
// reused here, only the flag-parsing idiom.
package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"os/signal"
	"syscall"

	mixer "mixerengine"
)

func main() {
	flagSet := flag.NewFlagSet("mixerdemo", flag.ExitOnError)
	audioDev := flagSet.String("audiodev", "", "preferred audio backend name (empty = probe all)")
	freq := flagSet.Float64("freq", 440, "test-tone frequency in Hz")
	flagSet.Usage = func() {
		fmt.Fprintln(os.Stderr, "mixerdemo - minimal runnable driver for the mixer engine")
		flagSet.PrintDefaults()
	}
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		os.Exit(2)
	}

	cfg := mixer.NewMemConfigStore()
	if *audioDev != "" {
		cfg.SetString("mixer.audiodev", *audioDev)
	}

	fx := mixer.NewBusFxMixer(4, mixer.DefaultFramesPerPeriod)
	m, err := mixer.NewMixer(cfg, fx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "mixerdemo: construction failed:", err)
		os.Exit(1)
	}
	defer m.Shutdown()

	port := m.AddAudioPort(mixer.MasterFxChannel)
	m.AddPlayHandle(newTestToneHandle(port, *freq, m.SampleRate()))

	dev, name := mixer.TryAudioDevices(cfg.GetString("mixer.audiodev", ""), m.SampleRate())
	fmt.Fprintf(os.Stderr, "mixerdemo: using audio backend %q\n", name)
	if err := m.SetAudioDevice(dev, name); err != nil {
		fmt.Fprintln(os.Stderr, "mixerdemo: start failed:", err)
		os.Exit(1)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh
}

// testToneHandle is a never-done sine-wave play-handle used to exercise
// the engine end to end without any project-model collaborators.
type testToneHandle struct {
	port       *mixer.AudioPort
	freq       float64
	sampleRate int
	phase      float64
}

func newTestToneHandle(port *mixer.AudioPort, freq float64, sampleRate int) *testToneHandle {
	return &testToneHandle{port: port, freq: freq, sampleRate: sampleRate}
}

func (h *testToneHandle) Play(scratch []mixer.Frame2) {
	n := len(scratch)
	step := 2 * math.Pi * h.freq / float64(h.sampleRate)
	for i := 0; i < n; i++ {
		s := float32(math.Sin(h.phase) * 0.2)
		scratch[i] = mixer.Frame2{s, s}
		h.phase += step
	}
	if h.phase > 2*math.Pi {
		h.phase = math.Mod(h.phase, 2*math.Pi)
	}
	mixer.BufferToPort(scratch[:n], 0, mixer.UnityVolume, h.port, h.port.FramesPerPeriod())
}

func (h *testToneHandle) Done() bool                      { return false }
func (h *testToneHandle) Type() mixer.HandleType           { return mixer.InstrumentPlayHandle }
func (h *testToneHandle) AffinityMatters() bool            { return false }
func (h *testToneHandle) Affinity() mixer.ThreadID         { return mixer.EngineThreadID }
func (h *testToneHandle) IsFromTrack(track mixer.TrackID) bool { return false }
