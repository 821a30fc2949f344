// mixer_midi.go - MIDI client contract, dummy implementation, probing

package mixer

// MidiClient is the collaborator contract for a concrete MIDI transport.
// Implementations register with the engine for note events; routing
// logic is out of scope here.
type MidiClient interface {
	IsRunning() bool
	Name() string
}

// DummyMidiClient satisfies the contract without any real transport. No
// third-party MIDI library is grounded in any example repo's go.mod, so
// none is fabricated (see DESIGN.md) — this is the only MidiClient
// implementation this module ships.
type DummyMidiClient struct{}

// NewDummyMidiClient always succeeds and reports itself as running; the
// dummy MIDI client is always available regardless of what else probed
// successfully.
func NewDummyMidiClient() *DummyMidiClient { return &DummyMidiClient{} }

func (d *DummyMidiClient) IsRunning() bool { return true }
func (d *DummyMidiClient) Name() string    { return "dummy" }

type midiClientFactory struct {
	name  string
	build func() (MidiClient, bool)
}

var midiClientCandidates = []midiClientFactory{
	{name: "dummy", build: func() (MidiClient, bool) { return NewDummyMidiClient(), true }},
}

// TryMidiClients probes the ordered candidate list, honoring
// preferredName the same way TryAudioDevices does. Per the decided Open
// Question on MidiWinMM/is_running() symmetry, every candidate's
// IsRunning() is checked uniformly (including the dummy) rather than
// trusting construction success alone.
func TryMidiClients(preferredName string) (MidiClient, string) {
	candidates := midiClientCandidates
	if preferredName != "" && preferredName != "dummy" {
		reordered := make([]midiClientFactory, 0, len(candidates))
		for _, c := range candidates {
			if c.name == preferredName {
				reordered = append([]midiClientFactory{c}, reordered...)
			} else {
				reordered = append(reordered, c)
			}
		}
		candidates = reordered
	}

	for _, c := range candidates {
		client, ok := c.build()
		if !ok || !client.IsRunning() {
			continue
		}
		return client, c.name
	}

	dummy := NewDummyMidiClient()
	return dummy, dummy.Name()
}
