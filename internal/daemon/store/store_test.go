package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slatebar/slate/pkg/models"
)

func TestStoreApply(t *testing.T) {
	t.Run("differing snapshot is stored and reported", func(t *testing.T) {
		st := New(models.TimeInfo{TimeStr: "09:00"})
		changed := st.Apply(models.TimeInfo{TimeStr: "09:01"})

		assert.True(t, changed)
		assert.Equal(t, "09:01", st.Get().TimeStr)
	})

	t.Run("identical snapshot is suppressed", func(t *testing.T) {
		st := New(models.TimeInfo{TimeStr: "09:00"})
		assert.False(t, st.Apply(models.TimeInfo{TimeStr: "09:00"}))
	})
}

func TestStoreUpdate(t *testing.T) {
	st := New(models.MetricsState{VolumePercentage: models.Int(70)})

	t.Run("merge keeps fields the function copies", func(t *testing.T) {
		changed := st.Update(func(prev models.MetricsState) models.MetricsState {
			next := prev
			next.BatteryPercentage = models.Int(55)
			return next
		})

		require.True(t, changed)
		got := st.Get()
		require.NotNil(t, got.VolumePercentage)
		assert.Equal(t, 70, *got.VolumePercentage)
		require.NotNil(t, got.BatteryPercentage)
		assert.Equal(t, 55, *got.BatteryPercentage)
	})

	t.Run("no-op merge reports false", func(t *testing.T) {
		assert.False(t, st.Update(func(prev models.MetricsState) models.MetricsState {
			return prev
		}))
	})
}

func TestStoreSubscribe(t *testing.T) {
	t.Run("subscribers see broadcast-worthy changes", func(t *testing.T) {
		st := New(models.TimeInfo{TimeStr: "09:00"})
		ch := st.Subscribe()
		defer st.Unsubscribe(ch)

		st.Apply(models.TimeInfo{TimeStr: "09:01"})

		select {
		case got := <-ch:
			assert.Equal(t, "09:01", got.TimeStr)
		case <-time.After(time.Second):
			t.Fatal("no notification received")
		}
	})

	t.Run("suppressed changes produce no notification", func(t *testing.T) {
		st := New(models.TimeInfo{TimeStr: "09:00"})
		ch := st.Subscribe()
		defer st.Unsubscribe(ch)

		st.Apply(models.TimeInfo{TimeStr: "09:00"})

		select {
		case <-ch:
			t.Fatal("unexpected notification for identical snapshot")
		case <-time.After(50 * time.Millisecond):
		}
	})

	t.Run("unsubscribe closes the channel", func(t *testing.T) {
		st := New(models.TimeInfo{})
		ch := st.Subscribe()
		st.Unsubscribe(ch)

		_, open := <-ch
		assert.False(t, open)
	})
}
