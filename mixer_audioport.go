// mixer_audioport.go - per-track audio accumulator

package mixer

import "sync"

// AudioPort is a per-track additive accumulator: play-handles mix into it
// via BufferToPort, then its effect chain and FX routing run in Stage 2.
// first and second form a 2*period ring so jobs writing past the period
// boundary can spill from first into second.
type AudioPort struct {
	firstMu sync.Mutex
	first   []Frame2

	secondMu sync.Mutex
	second   []Frame2

	usageMu       sync.Mutex
	usage         BufferUsage
	nextFxChannel FxChannelID
	effects       EffectChain
}

// EffectChain is the per-port effect chain contract, invoked from
// ProcessEffects. A nil chain means "no effects", matching the common
// case of a track with nothing inserted.
type EffectChain interface {
	// Process runs the chain over buf in place, returning true if it
	// produced audible (non-silent) output this period.
	Process(buf []Frame2) bool
}

// NewAudioPort creates a port with first/second buffers sized to
// framesPerPeriod, routed to the given FX channel.
func NewAudioPort(framesPerPeriod int, fxChannel FxChannelID) *AudioPort {
	return &AudioPort{
		first:         make([]Frame2, framesPerPeriod),
		second:        make([]Frame2, framesPerPeriod),
		usage:         UsageNone,
		nextFxChannel: fxChannel,
	}
}

// FirstBuffer returns the port's first buffer.
func (p *AudioPort) FirstBuffer() []Frame2 { return p.first }

// SecondBuffer returns the port's second buffer.
func (p *AudioPort) SecondBuffer() []Frame2 { return p.second }

// LockFirstBuffer / UnlockFirstBuffer guard concurrent additive writes
// into first from different Stage 1 jobs.
func (p *AudioPort) LockFirstBuffer()   { p.firstMu.Lock() }
func (p *AudioPort) UnlockFirstBuffer() { p.firstMu.Unlock() }

// LockSecondBuffer / UnlockSecondBuffer guard concurrent additive writes
// into second.
func (p *AudioPort) LockSecondBuffer()   { p.secondMu.Lock() }
func (p *AudioPort) UnlockSecondBuffer() { p.secondMu.Unlock() }

// SetEffectChain installs (or clears, with nil) the port's effect chain.
func (p *AudioPort) SetEffectChain(chain EffectChain) { p.effects = chain }

// ProcessEffects runs the port's effect chain over first, reporting
// whether it produced audible output.
func (p *AudioPort) ProcessEffects() bool {
	if p.effects == nil {
		return false
	}
	return p.effects.Process(p.first)
}

// NextFxChannel returns the FX channel this port routes to.
func (p *AudioPort) NextFxChannel() FxChannelID { return p.nextFxChannel }

// FramesPerPeriod returns the port's period size, the value callers of
// BufferToPort must pass alongside this port.
func (p *AudioPort) FramesPerPeriod() int { return len(p.first) }

// Usage returns the current buffer-usage flag.
func (p *AudioPort) Usage() BufferUsage {
	p.usageMu.Lock()
	defer p.usageMu.Unlock()
	return p.usage
}

// SetUsage sets the buffer-usage flag.
func (p *AudioPort) SetUsage(u BufferUsage) {
	p.usageMu.Lock()
	p.usage = u
	p.usageMu.Unlock()
}

// MarkSpillUsage records that this period's write spilled into second,
// unconditionally setting UsageBoth. Concurrent play-handle jobs targeting
// the same port may call this alongside MarkFirstOnlyIfUnused; both take
// the same lock so the flag never loses an update.
func (p *AudioPort) MarkSpillUsage() {
	p.usageMu.Lock()
	p.usage = UsageBoth
	p.usageMu.Unlock()
}

// MarkFirstOnlyIfUnused sets UsageFirstOnly, but only if no job (this one
// or a concurrent one sharing the port) has already recorded usage this
// period. The read and the conditional write happen under one lock, so a
// concurrent MarkSpillUsage can never be clobbered back to FirstOnly.
func (p *AudioPort) MarkFirstOnlyIfUnused() {
	p.usageMu.Lock()
	if p.usage == UsageNone {
		p.usage = UsageFirstOnly
	}
	p.usageMu.Unlock()
}

// NextPeriod swaps first<->second and clears the new second, resetting
// buffer_usage to None. Called after Stage 2 dispatches this port.
func (p *AudioPort) NextPeriod() {
	p.firstMu.Lock()
	p.secondMu.Lock()
	p.first, p.second = p.second, p.first
	for i := range p.second {
		p.second[i] = Frame2{}
	}
	p.secondMu.Unlock()
	p.firstMu.Unlock()
	p.SetUsage(UsageNone)
}
