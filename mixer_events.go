// mixer_events.go - non-blocking event bus for GUI/editor observers

package mixer

import "sync/atomic"

// EventKind tags an emitted mixer event.
type EventKind int

const (
	EventNextAudioBuffer EventKind = iota
	EventSampleRateChanged
	EventQualitySettingsChanged
)

// Event is one emitted notification. Payload is event-specific and may be
// nil (e.g. for EventNextAudioBuffer).
type Event struct {
	Kind    EventKind
	Payload any
}

// EventBus fans out mixer events to subscribers over a buffered channel
// per event kind. Sends are non-blocking: a realtime producer must never
// block on a slow GUI subscriber, so a full channel drops the event and
// increments a per-kind drop counter instead. Adapted from a channel-based
// BreakpointEvent pattern (buffered channel, non-blocking send, drop-and-
// count on a full channel) used by a CPU single-step debugger elsewhere in
// this codebase's history.
type EventBus struct {
	channels map[EventKind]chan Event
	dropped  map[EventKind]*atomic.Int64
}

// NewEventBus creates a bus with bufferSize slots per event kind.
func NewEventBus(bufferSize int) *EventBus {
	if bufferSize < 1 {
		bufferSize = 1
	}
	b := &EventBus{
		channels: make(map[EventKind]chan Event),
		dropped:  make(map[EventKind]*atomic.Int64),
	}
	for _, k := range []EventKind{EventNextAudioBuffer, EventSampleRateChanged, EventQualitySettingsChanged} {
		b.channels[k] = make(chan Event, bufferSize)
		b.dropped[k] = &atomic.Int64{}
	}
	return b
}

// Subscribe returns the receive-only channel for kind.
func (b *EventBus) Subscribe(kind EventKind) <-chan Event {
	return b.channels[kind]
}

// Emit attempts a non-blocking send of ev on its own channel. If the
// channel is full, the event is dropped and counted rather than
// blocking the caller.
func (b *EventBus) Emit(ev Event) {
	ch, ok := b.channels[ev.Kind]
	if !ok {
		return
	}
	select {
	case ch <- ev:
	default:
		b.dropped[ev.Kind].Add(1)
	}
}

// Dropped reports how many events of kind have been dropped due to a
// full subscriber channel.
func (b *EventBus) Dropped(kind EventKind) int64 {
	if c, ok := b.dropped[kind]; ok {
		return c.Load()
	}
	return 0
}
