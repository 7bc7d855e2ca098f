// Package mixer abstracts the audio server. The daemon only needs a
// change-notification stream and a point query of the default devices;
// Monitor captures exactly that so the pactl implementation is swappable
// in tests.
package mixer

// DeviceState is a partial view of the default sink and source. Nil fields
// mean the attribute could not be read this round and should keep the
// previous value.
type DeviceState struct {
	Volume       *int
	SpeakerMuted *bool
	MicMuted     *bool
}

// Monitor watches an audio server for changes.
type Monitor interface {
	// Events delivers a signal whenever the sink, source, or server
	// changed. Coalescing is permitted; payloads are not.
	Events() <-chan struct{}

	// State queries the current default-device state.
	State() (DeviceState, error)

	Close() error
}
