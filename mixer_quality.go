// mixer_quality.go - quality settings change (spec.md §4.8) and the
// quality settings accessor. Device swap and shutdown live in
// mixer_engine.go.

package mixer

// ChangeQuality stops processing, stores qs, asks the current audio
// device to apply it, emits sample_rate_changed and
// quality_settings_changed, then resumes processing. Spec.md §4.8.
func (m *Mixer) ChangeQuality(qs QualitySettings) error {
	m.StopProcessing()
	if m.audioDevice != nil {
		m.audioDevice.StopProcessing()
	}

	m.lock.Lock()
	m.qualitySettings = qs
	m.lock.Unlock()

	var applyErr error
	if m.audioDevice != nil {
		applyErr = m.audioDevice.ApplyQualitySettings(qs)
	}

	m.events.Emit(Event{Kind: EventSampleRateChanged, Payload: m.sampleRate})
	m.events.Emit(Event{Kind: EventQualitySettingsChanged, Payload: qs})

	m.StartProcessing()
	if m.audioDevice != nil {
		if err := m.audioDevice.StartProcessing(m); err != nil {
			return err
		}
	}
	return applyErr
}

// QualitySettings returns the currently active quality settings.
func (m *Mixer) QualitySettings() QualitySettings {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.qualitySettings
}
