// mixer_device_test.go - S6 backend fallback and dummy-always-last ordering

package mixer

import "testing"

func TestTryAudioDevices_UnknownPreferenceFallsBackToDummy(t *testing.T) {
	dev, name := TryAudioDevices("nonexistent", DefaultSampleRate)
	if dev == nil {
		t.Fatal("TryAudioDevices must never return a nil device")
	}
	if name != "dummy" {
		t.Fatalf("name = %q, want %q", name, "dummy")
	}
	if dev.Name() != "dummy" {
		t.Fatalf("dev.Name() = %q, want %q", dev.Name(), "dummy")
	}
}

func TestOrderedCandidatesDummyLast(t *testing.T) {
	ordered := orderedCandidatesDummyLast()
	if len(ordered) == 0 {
		t.Fatal("expected at least the dummy backend to be registered")
	}
	last := ordered[len(ordered)-1]
	if last.name != "dummy" {
		t.Fatalf("last candidate = %q, want %q", last.name, "dummy")
	}
}

func TestTryMidiClients_DummyAlwaysAvailable(t *testing.T) {
	client, name := TryMidiClients("")
	if client == nil || !client.IsRunning() {
		t.Fatal("TryMidiClients must return a running client")
	}
	if name != "dummy" {
		t.Fatalf("name = %q, want %q", name, "dummy")
	}
}
