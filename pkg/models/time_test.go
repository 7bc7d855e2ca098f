package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewTimeInfo(t *testing.T) {
	t.Run("formats all fields", func(t *testing.T) {
		now := time.Date(2025, time.March, 2, 9, 5, 42, 0, time.UTC)
		info := NewTimeInfo(now)

		assert.Equal(t, "09:05", info.TimeStr)
		assert.Equal(t, "Sun", info.DayName)
		assert.Equal(t, "2nd Mar", info.DateStr)
		assert.Equal(t, "09:05, Sun, 2nd Mar", info.FullDisplay)
	})

	t.Run("uses 24 hour clock", func(t *testing.T) {
		now := time.Date(2025, time.March, 2, 23, 59, 0, 0, time.UTC)
		assert.Equal(t, "23:59", NewTimeInfo(now).TimeStr)
	})

	t.Run("seconds do not affect the result", func(t *testing.T) {
		a := NewTimeInfo(time.Date(2025, time.June, 1, 12, 30, 1, 0, time.UTC))
		b := NewTimeInfo(time.Date(2025, time.June, 1, 12, 30, 59, 0, time.UTC))
		assert.True(t, a.Equal(b))
	})
}

func TestOrdinalSuffix(t *testing.T) {
	cases := map[int]string{
		1:  "st",
		2:  "nd",
		3:  "rd",
		4:  "th",
		11: "th",
		12: "th",
		13: "th",
		21: "st",
		22: "nd",
		23: "rd",
		30: "th",
		31: "st",
	}
	for day, want := range cases {
		assert.Equal(t, want, ordinalSuffix(day), "day %d", day)
	}
}

func TestTimeInfoEqual(t *testing.T) {
	a := NewTimeInfo(time.Date(2025, time.January, 11, 8, 0, 0, 0, time.UTC))
	b := NewTimeInfo(time.Date(2025, time.January, 11, 8, 0, 30, 0, time.UTC))
	c := NewTimeInfo(time.Date(2025, time.January, 11, 8, 1, 0, 0, time.UTC))

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}
