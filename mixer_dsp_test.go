// mixer_dsp_test.go - S3 port-spill scenario for bufferToPort

package mixer

import "testing"

func TestBufferToPort_SpillsAcrossPeriodBoundary(t *testing.T) {
	const framesPerPeriod = 256
	port := NewAudioPort(framesPerPeriod, FxChannelID(1))

	src := make([]Frame2, 128)
	for i := range src {
		src[i] = Frame2{1, 1}
	}

	BufferToPort(src, 200, UnityVolume, port, framesPerPeriod)

	first := port.FirstBuffer()
	for i := 200; i < 256; i++ {
		if first[i][0] != 1 || first[i][1] != 1 {
			t.Fatalf("first[%d] = %v, want [1 1]", i, first[i])
		}
	}

	second := port.SecondBuffer()
	for i := 0; i < 72; i++ {
		if second[i][0] != 1 || second[i][1] != 1 {
			t.Fatalf("second[%d] = %v, want [1 1]", i, second[i])
		}
	}
	for i := 72; i < framesPerPeriod; i++ {
		if second[i][0] != 0 || second[i][1] != 0 {
			t.Fatalf("second[%d] = %v, want untouched zero", i, second[i])
		}
	}

	if port.Usage() != UsageBoth {
		t.Fatalf("buffer_usage = %v, want UsageBoth", port.Usage())
	}
}

func TestBufferToPort_FirstOnlyWhenNoSpill(t *testing.T) {
	const framesPerPeriod = 256
	port := NewAudioPort(framesPerPeriod, FxChannelID(1))

	src := make([]Frame2, 10)
	BufferToPort(src, 0, UnityVolume, port, framesPerPeriod)

	if port.Usage() != UsageFirstOnly {
		t.Fatalf("buffer_usage = %v, want UsageFirstOnly", port.Usage())
	}
}
