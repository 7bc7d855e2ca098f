package models

// MetricsState is the snapshot served by the combined metrics daemon.
// Nil pointers marshal as JSON null and mean "unknown", never zero.
type MetricsState struct {
	BatteryPercentage    *int  `json:"battery_percentage"`
	IsCharging           bool  `json:"is_charging"`
	BatteryTimeRemaining *int  `json:"battery_time_remaining"`
	BacklightPercentage  *int  `json:"backlight_percentage"`
	VolumePercentage     *int  `json:"volume_percentage"`
	SpeakerMuted         *bool `json:"speaker_muted"`
	MicMuted             *bool `json:"mic_muted"`
}

// Equal reports field-wise value equality. Pointer fields compare by
// pointed-to value; nil only equals nil.
func (m MetricsState) Equal(other MetricsState) bool {
	return intPtrEqual(m.BatteryPercentage, other.BatteryPercentage) &&
		m.IsCharging == other.IsCharging &&
		intPtrEqual(m.BatteryTimeRemaining, other.BatteryTimeRemaining) &&
		intPtrEqual(m.BacklightPercentage, other.BacklightPercentage) &&
		intPtrEqual(m.VolumePercentage, other.VolumePercentage) &&
		boolPtrEqual(m.SpeakerMuted, other.SpeakerMuted) &&
		boolPtrEqual(m.MicMuted, other.MicMuted)
}
