package sysfs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slatebar/slate/errors"
	"github.com/slatebar/slate/testutil"
)

func TestParseStatus(t *testing.T) {
	cases := []struct {
		status string
		want   ChargingState
	}{
		{"Charging", StateCharging},
		{"charging", StateCharging},
		{"Full", StateDischarging},
		{"Plugged", StateDischarging},
		{"Discharging", StateDischarging},
		{"Not charging", StateDischarging},
		{"not charging", StateDischarging},
		{"Unknown", StateDischarging},
		{"", StateDischarging},
		{"  Charging \n", StateCharging},
	}
	for _, tc := range cases {
		t.Run(tc.status, func(t *testing.T) {
			assert.Equal(t, tc.want, ParseStatus(tc.status))
		})
	}
}

func TestFindBattery(t *testing.T) {
	t.Run("matches pattern", func(t *testing.T) {
		root := t.TempDir()
		testutil.CreateBatteryDir(t, root, "AC", map[string]string{"type": "Mains"})
		testutil.CreateBatteryDir(t, root, "BAT0", map[string]string{"capacity": "80"})

		battery, err := FindBattery(root, []string{"BAT*"})
		require.NoError(t, err)

		pct, ok := battery.Percentage()
		require.True(t, ok)
		assert.Equal(t, 80, pct)
	})

	t.Run("no matching device", func(t *testing.T) {
		root := t.TempDir()
		testutil.CreateBatteryDir(t, root, "AC", map[string]string{"type": "Mains"})

		_, err := FindBattery(root, []string{"BAT*"})
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrCodeAttributeMissing))
	})

	t.Run("missing root", func(t *testing.T) {
		_, err := FindBattery("/nonexistent/power_supply", []string{"BAT*"})
		assert.Error(t, err)
	})
}

func TestBatteryPercentage(t *testing.T) {
	root := t.TempDir()

	t.Run("clamps out of range values", func(t *testing.T) {
		dir := testutil.CreateBatteryDir(t, root, "BAT0", map[string]string{"capacity": "120"})
		b := &Battery{Dir: dir}
		pct, ok := b.Percentage()
		require.True(t, ok)
		assert.Equal(t, 100, pct)
	})

	t.Run("missing attribute", func(t *testing.T) {
		dir := testutil.CreateBatteryDir(t, root, "BAT1", map[string]string{"status": "Full"})
		b := &Battery{Dir: dir}
		_, ok := b.Percentage()
		assert.False(t, ok)
	})

	t.Run("malformed attribute", func(t *testing.T) {
		dir := testutil.CreateBatteryDir(t, root, "BAT2", map[string]string{"capacity": "garbage"})
		b := &Battery{Dir: dir}
		_, ok := b.Percentage()
		assert.False(t, ok)
	})
}

func TestBatteryTimeRemaining(t *testing.T) {
	t.Run("prefers direct time attribute", func(t *testing.T) {
		dir := testutil.CreateBatteryDir(t, t.TempDir(), "BAT0", map[string]string{
			"time_to_empty_now": "5400",
			"power_now":         "10000000",
			"energy_now":        "30000000",
		})
		b := &Battery{Dir: dir}
		secs := b.TimeRemaining(false)
		require.NotNil(t, secs)
		assert.Equal(t, int64(5400), *secs)
	})

	t.Run("derives from energy pair while discharging", func(t *testing.T) {
		dir := testutil.CreateBatteryDir(t, t.TempDir(), "BAT0", map[string]string{
			"power_now":  "10000000",
			"energy_now": "30000000",
		})
		b := &Battery{Dir: dir}
		secs := b.TimeRemaining(false)
		require.NotNil(t, secs)
		// 30 Wh at 10 W is 3 hours.
		assert.Equal(t, int64(3*3600), *secs)
	})

	t.Run("derives from energy pair while charging", func(t *testing.T) {
		dir := testutil.CreateBatteryDir(t, t.TempDir(), "BAT0", map[string]string{
			"power_now":   "10000000",
			"energy_now":  "30000000",
			"energy_full": "50000000",
		})
		b := &Battery{Dir: dir}
		secs := b.TimeRemaining(true)
		require.NotNil(t, secs)
		// 20 Wh to fill at 10 W is 2 hours.
		assert.Equal(t, int64(2*3600), *secs)
	})

	t.Run("falls back to charge pair", func(t *testing.T) {
		dir := testutil.CreateBatteryDir(t, t.TempDir(), "BAT0", map[string]string{
			"current_now": "2000000",
			"charge_now":  "4000000",
		})
		b := &Battery{Dir: dir}
		secs := b.TimeRemaining(false)
		require.NotNil(t, secs)
		assert.Equal(t, int64(2*3600), *secs)
	})

	t.Run("power_now without energy_now uses charge pair", func(t *testing.T) {
		dir := testutil.CreateBatteryDir(t, t.TempDir(), "BAT0", map[string]string{
			"power_now":   "10000000",
			"current_now": "2000000",
			"charge_now":  "4000000",
		})
		b := &Battery{Dir: dir}
		secs := b.TimeRemaining(false)
		require.NotNil(t, secs)
		assert.Equal(t, int64(2*3600), *secs)
	})

	t.Run("zero rate means no estimate", func(t *testing.T) {
		dir := testutil.CreateBatteryDir(t, t.TempDir(), "BAT0", map[string]string{
			"power_now":  "0",
			"energy_now": "30000000",
		})
		b := &Battery{Dir: dir}
		assert.Nil(t, b.TimeRemaining(false))
	})

	t.Run("zero direct time falls through to derivation", func(t *testing.T) {
		dir := testutil.CreateBatteryDir(t, t.TempDir(), "BAT0", map[string]string{
			"time_to_empty_now": "0",
			"power_now":         "10000000",
			"energy_now":        "10000000",
		})
		b := &Battery{Dir: dir}
		secs := b.TimeRemaining(false)
		require.NotNil(t, secs)
		assert.Equal(t, int64(3600), *secs)
	})

	t.Run("no usable attributes", func(t *testing.T) {
		dir := testutil.CreateBatteryDir(t, t.TempDir(), "BAT0", map[string]string{
			"capacity": "50",
		})
		b := &Battery{Dir: dir}
		assert.Nil(t, b.TimeRemaining(false))
	})

	t.Run("charging with full below now yields nothing", func(t *testing.T) {
		dir := testutil.CreateBatteryDir(t, t.TempDir(), "BAT0", map[string]string{
			"power_now":   "10000000",
			"energy_now":  "50000000",
			"energy_full": "50000000",
		})
		b := &Battery{Dir: dir}
		assert.Nil(t, b.TimeRemaining(true))
	})
}

func TestBatteryWatchPaths(t *testing.T) {
	dir := testutil.CreateBatteryDir(t, t.TempDir(), "BAT0", map[string]string{
		"capacity": "50",
	})
	b := &Battery{Dir: dir}

	paths := b.WatchPaths()
	require.Len(t, paths, 1)
	assert.Contains(t, paths[0], "capacity")
}
