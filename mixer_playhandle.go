// mixer_playhandle.go - play-handle contract, list and deferred removal

package mixer

import "sync"

// PlayHandle is the polymorphic contract for an active voice, sample, or
// automation producer. InstrumentPlayHandle instances are lifetime-bound
// to their instrument and must never be auto-deleted by Clear().
type PlayHandle interface {
	// Play renders this handle's contribution for the current period into
	// its owning audio port via BufferToPort, using scratch as working
	// space.
	Play(scratch []Frame2)
	// Done reports whether this handle has finished and is eligible for
	// deletion.
	Done() bool
	// Type returns the handle's variant tag.
	Type() HandleType
	// AffinityMatters reports whether this handle may only be deleted
	// from a specific thread.
	AffinityMatters() bool
	// Affinity returns the goroutine identity that must perform deletion,
	// when AffinityMatters is true.
	Affinity() ThreadID
	// IsFromTrack reports whether this handle belongs to the given track.
	IsFromTrack(track TrackID) bool
}

// TrackID identifies an owning track for play-handle/track association.
type TrackID int

// ThreadID identifies the logical thread (goroutine role) a handle is
// bound to for affinity purposes. The engine's own render goroutine has
// a fixed, well-known id so deferred-delete tests can compare against it.
type ThreadID int64

const EngineThreadID ThreadID = 0

// handleEntry pairs a handle with a generation counter so the removal
// queue never matches a new handle that happens to reuse a slot (ABA
// avoidance, per DESIGN NOTES §9's "intrusive alive flag plus generation
// counter" guidance).
type handleEntry struct {
	handle     PlayHandle
	generation uint64
	alive      bool
}

// PlayHandleList is the mixer's set of active handles plus its
// deferred-removal queue. All mutation happens under the caller's lock
// (the engine's global mutex); apart from removeLock, which guards only
// the removal queue, PlayHandleList adds no locking of its own — per
// DESIGN NOTES §9, callback code invoked while the engine lock is held
// must not re-enter it.
type PlayHandleList struct {
	entries    []*handleEntry
	nextGen    uint64
	toRemove   []*handleEntry
	removeLock sync.Mutex // guards toRemove only; producers may run off the engine thread
}

// NewPlayHandleList creates an empty handle list.
func NewPlayHandleList() *PlayHandleList {
	return &PlayHandleList{}
}

// Add appends a new handle, returning its entry for later removal.
func (l *PlayHandleList) Add(h PlayHandle) *handleEntry {
	l.nextGen++
	e := &handleEntry{handle: h, generation: l.nextGen, alive: true}
	l.entries = append(l.entries, e)
	return e
}

// Entries returns the live entries. Callers must not mutate the slice.
func (l *PlayHandleList) Entries() []*handleEntry { return l.entries }

// Len reports the number of live handles.
func (l *PlayHandleList) Len() int { return len(l.entries) }

// RemovePlayHandle removes h if affinity allows immediate deletion from
// currentThread; otherwise defers it to the removal queue, drained at the
// top of the next period.
func (l *PlayHandleList) RemovePlayHandle(e *handleEntry, currentThread ThreadID) {
	if e == nil || !e.alive {
		return
	}
	if e.handle.AffinityMatters() && e.handle.Affinity() == currentThread {
		l.eraseEntry(e)
		return
	}
	l.removeLock.Lock()
	l.toRemove = append(l.toRemove, e)
	l.removeLock.Unlock()
}

// RemovePlayHandles removes every live handle belonging to track,
// immediately, under the caller's lock.
func (l *PlayHandleList) RemovePlayHandles(track TrackID) {
	kept := l.entries[:0:0]
	for _, e := range l.entries {
		if e.alive && e.handle.IsFromTrack(track) {
			e.alive = false
			continue
		}
		kept = append(kept, e)
	}
	l.entries = kept
}

// Clear defers every handle whose Type() != InstrumentPlayHandle to the
// removal queue. Instrument handles persist for the lifetime of their
// owning instrument.
func (l *PlayHandleList) Clear() {
	l.removeLock.Lock()
	defer l.removeLock.Unlock()
	for _, e := range l.entries {
		if e.alive && e.handle.Type() != InstrumentPlayHandle {
			l.toRemove = append(l.toRemove, e)
		}
	}
}

// DrainDeferred erases every entry queued via RemovePlayHandle/Clear that
// is still present in the list. Called at the top of each period under
// the engine's global lock.
func (l *PlayHandleList) DrainDeferred() {
	l.removeLock.Lock()
	pending := l.toRemove
	l.toRemove = nil
	l.removeLock.Unlock()

	for _, e := range pending {
		if e.alive {
			l.eraseEntry(e)
		}
	}
}

// CullDone removes every handle that is Done(), skipping any handle whose
// affinity does not match currentThread (it will be removed later via the
// deferred queue instead).
func (l *PlayHandleList) CullDone(currentThread ThreadID) {
	kept := l.entries[:0:0]
	for _, e := range l.entries {
		if !e.alive {
			continue
		}
		if e.handle.AffinityMatters() && e.handle.Affinity() != currentThread {
			kept = append(kept, e)
			continue
		}
		if e.handle.Done() {
			e.alive = false
			continue
		}
		kept = append(kept, e)
	}
	l.entries = kept
}

func (l *PlayHandleList) eraseEntry(target *handleEntry) {
	target.alive = false
	kept := l.entries[:0:0]
	for _, e := range l.entries {
		if e != target {
			kept = append(kept, e)
		}
	}
	l.entries = kept
}
