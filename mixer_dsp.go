// mixer_dsp.go - peak measurement, buffer clearing, bufferToPort mix-in

package mixer

// ChannelVolume is a per-channel linear gain vector applied by
// BufferToPort.
type ChannelVolume [2]float32

// UnityVolume is the [1.0, 1.0] passthrough gain vector.
var UnityVolume = ChannelVolume{1, 1}

// BufferToPort additively mixes frames frames of src, starting at the
// port-relative offset, into port's first/second buffer pair. Only
// additive writes; the port is cleared by NextPeriod after Stage 2.
func BufferToPort(src []Frame2, offset int, vv ChannelVolume, port *AudioPort, framesPerPeriod int) {
	start := offset % framesPerPeriod
	end := start + len(src)

	port.LockFirstBuffer()
	firstN := end
	if firstN > framesPerPeriod {
		firstN = framesPerPeriod
	}
	first := port.FirstBuffer()
	for i := 0; i < firstN-start; i++ {
		first[start+i][0] += src[i][0] * vv[0]
		first[start+i][1] += src[i][1] * vv[1]
	}
	port.UnlockFirstBuffer()

	if end > framesPerPeriod {
		spill := end - framesPerPeriod
		consumed := framesPerPeriod - start
		port.LockSecondBuffer()
		second := port.SecondBuffer()
		for i := 0; i < spill; i++ {
			second[i][0] += src[consumed+i][0] * vv[0]
			second[i][1] += src[consumed+i][1] * vv[1]
		}
		port.UnlockSecondBuffer()
		port.MarkSpillUsage()
	} else {
		port.MarkFirstOnlyIfUnused()
	}
}

// PeakValueLeft returns max(|buf[i][0]|) over the first n frames.
func PeakValueLeft(buf []Frame2, n int) float32 {
	return peakValueChannel(buf, n, 0)
}

// PeakValueRight returns max(|buf[i][1]|) over the first n frames.
func PeakValueRight(buf []Frame2, n int) float32 {
	return peakValueChannel(buf, n, 1)
}

func peakValueChannel(buf []Frame2, n int, channel int) float32 {
	var peak float32
	if n > len(buf) {
		n = len(buf)
	}
	for i := 0; i < n; i++ {
		v := buf[i][channel]
		if v < 0 {
			v = -v
		}
		if v > peak {
			peak = v
		}
	}
	return peak
}

// ClearAudioBuffer zeroes every frame in buf.
func ClearAudioBuffer(buf []Frame2) {
	for i := range buf {
		buf[i] = Frame2{}
	}
}
