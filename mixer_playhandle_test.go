// mixer_playhandle_test.go - S4 deferred delete, invariant 7 (remove_play_handles)

package mixer

import "testing"

type affinityHandle struct {
	affinity ThreadID
	done     bool
	track    TrackID
}

func (h *affinityHandle) Play(scratch []Frame2)    {}
func (h *affinityHandle) Done() bool               { return h.done }
func (h *affinityHandle) Type() HandleType         { return NotePlayHandle }
func (h *affinityHandle) AffinityMatters() bool    { return true }
func (h *affinityHandle) Affinity() ThreadID       { return h.affinity }
func (h *affinityHandle) IsFromTrack(t TrackID) bool { return h.track == t }

// TestRemovePlayHandle_DefersAcrossAffinity covers S4: removing a
// handle from a thread other than its affinity defers it to the next
// period's drain step rather than erasing it immediately.
func TestRemovePlayHandle_DefersAcrossAffinity(t *testing.T) {
	list := NewPlayHandleList()
	h := &affinityHandle{affinity: EngineThreadID}
	e := list.Add(h)

	const otherThread ThreadID = 99
	list.RemovePlayHandle(e, otherThread)

	if list.Len() != 1 {
		t.Fatalf("handle removed immediately from wrong thread; Len() = %d, want 1", list.Len())
	}

	list.DrainDeferred()
	if list.Len() != 0 {
		t.Fatalf("handle survived drain; Len() = %d, want 0", list.Len())
	}
}

func TestRemovePlayHandle_ImmediateOnMatchingAffinity(t *testing.T) {
	list := NewPlayHandleList()
	h := &affinityHandle{affinity: EngineThreadID}
	e := list.Add(h)

	list.RemovePlayHandle(e, EngineThreadID)

	if list.Len() != 0 {
		t.Fatalf("expected immediate removal on matching affinity; Len() = %d", list.Len())
	}
}

// TestRemovePlayHandles_ByTrack covers invariant 7.
func TestRemovePlayHandles_ByTrack(t *testing.T) {
	list := NewPlayHandleList()
	list.Add(&affinityHandle{track: 1})
	list.Add(&affinityHandle{track: 2})
	list.Add(&affinityHandle{track: 1})

	list.RemovePlayHandles(1)

	for _, e := range list.Entries() {
		if e.handle.IsFromTrack(1) {
			t.Fatal("handle from removed track still present")
		}
	}
	if list.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", list.Len())
	}
}

func TestCullDone_SkipsAffinityMismatch(t *testing.T) {
	list := NewPlayHandleList()
	const otherThread ThreadID = 42
	h := &affinityHandle{affinity: otherThread, done: true}
	list.Add(h)

	list.CullDone(EngineThreadID)
	if list.Len() != 1 {
		t.Fatalf("handle culled despite affinity mismatch; Len() = %d, want 1", list.Len())
	}

	list.CullDone(otherThread)
	if list.Len() != 0 {
		t.Fatalf("handle survived cull on matching thread; Len() = %d, want 0", list.Len())
	}
}
