package sysfs

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	slateerrors "github.com/slatebar/slate/errors"
)

// Backlight reads one backlight device directory.
type Backlight struct {
	Dir string
}

// FindBacklight returns the first backlight device under root, in sorted
// order, or an AttributeMissing error when none exists (headless boxes,
// desktops).
func FindBacklight(root string) (*Backlight, error) {
	entries, err := os.ReadDir(root)
	if err != nil || len(entries) == 0 {
		return nil, slateerrors.AttributeMissing("backlight")
	}
	return &Backlight{Dir: filepath.Join(root, entries[0].Name())}, nil
}

// Percentage returns the current brightness as a percentage of maximum.
// actual_brightness is preferred over brightness; the kernel keeps the
// former in sync with hardware-initiated changes.
func (b *Backlight) Percentage() (int, bool) {
	max, ok := b.readInt("max_brightness")
	if !ok || max <= 0 {
		return 0, false
	}
	current, ok := b.readInt("actual_brightness")
	if !ok {
		current, ok = b.readInt("brightness")
		if !ok {
			return 0, false
		}
	}
	pct := int(current * 100 / max)
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	return pct, true
}

// WatchPaths returns backlight attribute files worth watching.
func (b *Backlight) WatchPaths() []string {
	var paths []string
	for _, name := range []string{"actual_brightness", "brightness"} {
		p := filepath.Join(b.Dir, name)
		if _, err := os.Stat(p); err == nil {
			paths = append(paths, p)
		}
	}
	return paths
}

func (b *Backlight) readInt(name string) (int64, bool) {
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
