// mixer_types.go - core data model for the mixer engine

package mixer

// Frame2 is a stereo sample frame: left, right.
type Frame2 [2]float32

// FrameN is a surround sample frame sized by a ChannelLayout. Lane count
// is implementation-defined but always >= 2.
type FrameN []float32

// ChannelLayout describes the lane count and ordering of a surround frame.
type ChannelLayout struct {
	Name  string
	Lanes int
}

// StereoLayout and common surround layouts.
var (
	StereoLayout     = ChannelLayout{Name: "stereo", Lanes: 2}
	Surround51Layout = ChannelLayout{Name: "5.1", Lanes: 6}
)

const (
	// DefaultFramesPerPeriod is the default period block size in frames.
	DefaultFramesPerPeriod = 256
	// MinFramesPerPeriod is the minimum allowed frames_per_period.
	MinFramesPerPeriod = 32
	// DefaultPoolDepth is the number of surround buffers kept in the pool.
	DefaultPoolDepth = 3
	// MinPoolDepth is the minimum allowed pool depth.
	MinPoolDepth = 2
	// JobQueueCapacity is the fixed capacity of one stage's job descriptor array.
	JobQueueCapacity = 1024
	// DefaultSampleRate is the minimum/default processing sample rate in Hz.
	DefaultSampleRate = 44100
	// MasterFxChannel is the reserved FX channel id for the master bus.
	MasterFxChannel FxChannelID = 0
)

// FxChannelID identifies a bus in the FX mixer topology. 0 is the master.
type FxChannelID int

// JobKind identifies which stage a JobDescriptor belongs to.
type JobKind int

const (
	PlayHandleKind JobKind = iota
	AudioPortEffectsKind
	EffectChannelKind
)

func (k JobKind) String() string {
	switch k {
	case PlayHandleKind:
		return "PlayHandleKind"
	case AudioPortEffectsKind:
		return "AudioPortEffectsKind"
	case EffectChannelKind:
		return "EffectChannelKind"
	default:
		return "UnknownJobKind"
	}
}

// HandleType tags the variant of a PlayHandle. InstrumentPlayHandle is
// exempt from Clear(): it is lifetime-bound to its owning instrument.
type HandleType int

const (
	NotePlayHandle HandleType = iota
	SamplePlayHandle
	InstrumentPlayHandle
	AutomationPlayHandle
)

// BufferUsage tracks how much of an AudioPort's buffer pair carries live
// data for the current period.
type BufferUsage int

const (
	UsageNone BufferUsage = iota
	UsageFirstOnly
	UsageBoth
)

// PlayMode is the transport's play-state tag.
type PlayMode int

const (
	ModeStopped PlayMode = iota
	ModePlayPattern
	ModePlaySong
)

// QualityMode tags the internal rendering quality preset.
type QualityMode int

const (
	QualityDraft QualityMode = iota
	QualityHigh
	QualityUltra
)

// QualitySettings bundles the oversampling multiplier with a mode tag.
type QualitySettings struct {
	SampleRateMultiplier float64
	Mode                 QualityMode
}

// DefaultQualitySettings is the draft-quality, no-oversampling default.
func DefaultQualitySettings() QualitySettings {
	return QualitySettings{SampleRateMultiplier: 1, Mode: QualityDraft}
}
