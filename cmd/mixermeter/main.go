// mixermeter polls a running mixer engine's status (CPU load, XRun state,
// active voice count) and renders it to a terminal in raw mode, exiting
// on any keypress.
//
// Raw-mode stdin handling follows a term.MakeRaw/term.Restore bracket
// around a goroutine reader, with shutdown coordinated through a
// stopCh/done channel pair and sync.Once guarding the restore so it
// never double-fires.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sync"
	"time"

	"golang.org/x/term"

	mixer "mixerengine"
)

func main() {
	flagSet := flag.NewFlagSet("mixermeter", flag.ExitOnError)
	interval := flagSet.Duration("interval", 200*time.Millisecond, "status refresh interval")
	audioDev := flagSet.String("audiodev", "", "preferred audio backend name")
	flagSet.Usage = func() {
		fmt.Fprintln(os.Stderr, "mixermeter - terminal status meter for the mixer engine")
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
		fmt.Fprintln(os.Stderr, "mixermeter: construction failed:", err)
		os.Exit(1)
	}

	dev, name := mixer.TryAudioDevices(cfg.GetString("mixer.audiodev", ""), m.SampleRate())
	fmt.Fprintf(os.Stderr, "mixermeter: using audio backend %q\n", name)
	if err := m.SetAudioDevice(dev, name); err != nil {
		fmt.Fprintln(os.Stderr, "mixermeter: start failed:", err)
		os.Exit(1)
	}
	defer m.Shutdown()

	runMeter(m, *interval)
}

func runMeter(m *mixer.Mixer, interval time.Duration) {
	ctx, cancel := context.WithCancel(context.Background())
	var restoreOnce sync.Once

	fd := int(os.Stdin.Fd())
	oldState, rawErr := term.MakeRaw(fd)
	if rawErr == nil {
		defer restoreOnce.Do(func() { term.Restore(fd, oldState) })
	}

	stopCh := make(chan struct{})
	doneCh := make(chan struct{})

	go func() {
		defer close(doneCh)
		buf := make([]byte, 1)
		for {
			n, err := os.Stdin.Read(buf)
			if n > 0 || err != nil {
				cancel()
				return
			}
			select {
			case <-stopCh:
				return
			default:
			}
		}
	}()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			close(stopCh)
			<-doneCh
			return
		case <-ticker.C:
			fmt.Printf("\rcpu_load=%5.1f%%  xrun=%-5v  voices=%-4d", m.CPULoad(), m.CriticalXRuns(), m.ActiveVoices())
		}
	}
}
