// mixer_song_test.go - scheduled-trigger drain ordering

package mixer

import "testing"

func TestSong_ProcessNextBufferDrainsDueTriggersOnly(t *testing.T) {
	transport := NewTransport()
	song := NewSong(transport)

	cfg := NewMemConfigStore()
	fx := NewBusFxMixer(1, DefaultFramesPerPeriod)
	m, err := NewMixer(cfg, fx)
	if err != nil {
		t.Fatalf("NewMixer failed: %v", err)
	}

	due := &foreverHandle{kind: NotePlayHandle}
	notYetDue := &foreverHandle{kind: NotePlayHandle}
	song.ScheduleHandle(ScheduledHandle{TriggerTick: 0, Handle: due})
	song.ScheduleHandle(ScheduledHandle{TriggerTick: 1000, Handle: notYetDue})

	song.ProcessNextBuffer(m)

	if m.ActiveVoices() != 1 {
		t.Fatalf("ActiveVoices() = %d, want 1 (only the due trigger)", m.ActiveVoices())
	}

	transport.AdvanceTicks(1000)
	song.ProcessNextBuffer(m)

	if m.ActiveVoices() != 2 {
		t.Fatalf("ActiveVoices() = %d, want 2 after the tick advanced past the second trigger", m.ActiveVoices())
	}
}

func TestPianoRoll_RecordingFlagRoundTrips(t *testing.T) {
	pr := NewPianoRoll()
	if pr.IsRecording() {
		t.Fatal("new piano roll should not be recording")
	}
	pr.SetRecording(true)
	if !pr.IsRecording() {
		t.Fatal("expected IsRecording to be true after SetRecording(true)")
	}
}
