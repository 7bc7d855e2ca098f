// Package sysfs reads hardware state from the kernel's sysfs class
// directories: power supplies and backlights.
package sysfs

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/moby/patternmatcher"

	slateerrors "github.com/slatebar/slate/errors"
)

// ChargingState classifies the battery's reported status string.
type ChargingState int

const (
	StateDischarging ChargingState = iota
	StateCharging
)

var chargingWords = []string{"charging"}
var dischargingWords = []string{"not charging", "discharging"}

// ParseStatus maps a sysfs status string to a charging classification.
// Discharging vocabulary wins over charging vocabulary, so "Not charging"
// never counts as charging despite containing the word. Anything outside
// both vocabularies, "Full" included, reports as not charging.
func ParseStatus(status string) ChargingState {
	s := strings.ToLower(strings.TrimSpace(status))
	for _, word := range dischargingWords {
		if strings.Contains(s, word) {
			return StateDischarging
		}
	}
	for _, word := range chargingWords {
		if strings.Contains(s, word) {
			return StateCharging
		}
	}
	return StateDischarging
}

// Battery reads one power-supply device directory.
type Battery struct {
	Dir string
}

// FindBattery locates the first power-supply device under root whose name
// matches one of the patterns (e.g. "BAT*"). Entries are visited in sorted
// order so the result is stable across runs.
func FindBattery(root string, patterns []string) (*Battery, error) {
	matcher, err := patternmatcher.New(patterns)
	if err != nil {
		return nil, slateerrors.New(slateerrors.ErrCodeInvalidInput, "invalid battery pattern").WithDetail("patterns", strings.Join(patterns, ","))
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, slateerrors.AttributeMissing("power_supply")
	}
	for _, entry := range entries {
		matched, err := matcher.MatchesOrParentMatches(entry.Name())
		if err != nil || !matched {
			continue
		}
		return &Battery{Dir: filepath.Join(root, entry.Name())}, nil
	}
	return nil, slateerrors.AttributeMissing("battery")
}

// readInt reads a sysfs attribute as an integer. Missing or malformed
// attributes return ok=false rather than an error; absence is routine.
func (b *Battery) readInt(name string) (int64, bool) {
	data, err := os.ReadFile(filepath.Join(b.Dir, name))
	if err != nil {
		return 0, false
	}
	v, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Percentage returns the reported capacity, clamped to 0..100.
func (b *Battery) Percentage() (int, bool) {
	v, ok := b.readInt("capacity")
	if !ok {
		return 0, false
	}
	if v < 0 {
		v = 0
	}
	if v > 100 {
		v = 100
	}
	return int(v), true
}

// Status returns the raw status string.
func (b *Battery) Status() (string, bool) {
	data, err := os.ReadFile(filepath.Join(b.Dir, "status"))
	if err != nil {
		return "", false
	}
	return strings.TrimSpace(string(data)), true
}

// TimeRemaining estimates seconds until empty (discharging) or full
// (charging). The kernel's direct time attributes are preferred; failing
// those, the energy pair and then the charge pair are used to derive a
// rate. A zero rate means no estimate, not an infinite one.
func (b *Battery) TimeRemaining(charging bool) *int64 {
	direct := "time_to_empty_now"
	if charging {
		direct = "time_to_full_now"
	}
	if v, ok := b.readInt(direct); ok && v > 0 {
		return &v
	}

	// The energy pair is only usable when both attributes exist; a battery
	// exposing power_now without energy_now still gets the charge pair.
	if rate, ok := b.readInt("power_now"); ok {
		if _, hasEnergy := b.readInt("energy_now"); hasEnergy {
			return deriveSeconds(b, rate, charging, "energy_now", "energy_full")
		}
	}
	if rate, ok := b.readInt("current_now"); ok {
		return deriveSeconds(b, rate, charging, "charge_now", "charge_full")
	}
	return nil
}

func deriveSeconds(b *Battery, rate int64, charging bool, nowAttr, fullAttr string) *int64 {
	if rate <= 0 {
		return nil
	}
	now, ok := b.readInt(nowAttr)
	if !ok {
		return nil
	}
	var remaining int64
	if charging {
		full, ok := b.readInt(fullAttr)
		if !ok || full <= now {
			return nil
		}
		remaining = full - now
	} else {
		remaining = now
	}
	seconds := remaining * 3600 / rate
	if seconds <= 0 {
		return nil
	}
	return &seconds
}

// WatchPaths returns the attribute files worth watching for change events.
// Only files that actually exist are returned.
func (b *Battery) WatchPaths() []string {
	var paths []string
	for _, name := range []string{"capacity", "status"} {
		p := filepath.Join(b.Dir, name)
		if _, err := os.Stat(p); err == nil {
			paths = append(paths, p)
		}
	}
	return paths
}
