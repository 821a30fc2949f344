// mixer_metronome_test.go - synthesized click decays to silence and finishes

package mixer

import "testing"

func TestMetronomeHandle_CompletesAfterItsClickLength(t *testing.T) {
	port := NewAudioPort(DefaultFramesPerPeriod, MasterFxChannel)
	h := NewMetronomeHandle(port, DefaultSampleRate, 0, DefaultFramesPerPeriod)

	scratch := make([]Frame2, DefaultFramesPerPeriod)
	periods := 0
	for !h.Done() && periods < 100 {
		h.Play(scratch)
		periods++
	}

	if !h.Done() {
		t.Fatal("metronome click never completed")
	}
}

func TestMetronomeClickFrames_DecaysTowardsZero(t *testing.T) {
	frames := metronomeClickFrames(1000, DefaultSampleRate, 0.05)
	if len(frames) == 0 {
		t.Fatal("expected a non-empty click")
	}

	tenth := len(frames) / 10
	var peakStart, peakEnd float32
	for _, fr := range frames[:tenth] {
		if v := abs32(fr[0]); v > peakStart {
			peakStart = v
		}
	}
	for _, fr := range frames[len(frames)-tenth:] {
		if v := abs32(fr[0]); v > peakEnd {
			peakEnd = v
		}
	}
	if peakEnd >= peakStart {
		t.Fatalf("click did not decay: peak near start=%v, peak near end=%v", peakStart, peakEnd)
	}
}
