package engine

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScaledClock(t *testing.T) {
	base := NewFakeClock(start)
	c := NewScaledClock(base, 2)
	assert.Equal(t, start, c.Now())

	base.Advance(time.Hour)
	assert.Equal(t, start.Add(2*time.Hour), c.Now())

	c.SetSpeed(0)
	base.Advance(time.Hour)
	assert.Equal(t, start.Add(2*time.Hour), c.Now(), "paused")

	c.SetSpeed(1)
	assert.Equal(t, start.Add(2*time.Hour), c.Now(), "no jump on speed change")
	base.Advance(30 * time.Minute)
	assert.Equal(t, start.Add(150*time.Minute), c.Now())
}

func TestCrossed(t *testing.T) {
	day := 24 * time.Hour
	midnight := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)

	assert.True(t, crossed(midnight.Add(-time.Second), midnight, day))
	assert.False(t, crossed(midnight, midnight.Add(time.Hour), day))
	assert.False(t, crossed(midnight, midnight, day))
	assert.False(t, crossed(midnight, midnight.Add(-time.Hour), day))
	assert.True(t, crossed(midnight.Add(-time.Hour), midnight.Add(3*day), day))
}

func TestEngineStepLayers(t *testing.T) {
	e := NewEngine()
	now := time.Date(2026, 1, 1, 0, 30, 0, 0, time.UTC)
	var days, weeks int
	e.OnTick = func() TickReport {
		prev := now
		now = now.Add(20 * time.Minute)
		return TickReport{Previous: prev, Now: now}
	}
	e.OnDay = func(time.Time) { days++ }
	e.OnWeek = func(time.Time) { weeks++ }

	// One game day is one hour; 30 ticks of 20 minutes cover 10 hours.
	for i := 0; i < 30; i++ {
		e.step()
	}
	assert.Equal(t, uint64(30), e.Ticks())
	assert.Equal(t, 10, days)
	assert.Equal(t, 1, weeks, "seven-hour week boundary crossed once")
}

func TestEngineRunAndStop(t *testing.T) {
	e := NewEngine()
	e.Interval = time.Millisecond
	var ticks atomic.Int64
	e.OnTick = func() TickReport {
		ticks.Add(1)
		return TickReport{}
	}

	done := make(chan struct{})
	go func() {
		e.Run(context.Background())
		close(done)
	}()

	require.Eventually(t, func() bool { return ticks.Load() >= 3 }, time.Second, time.Millisecond)
	assert.True(t, e.Running())

	e.Stop()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("engine did not stop")
	}
	assert.False(t, e.Running())
}

func TestEngineStopsOnContextCancel(t *testing.T) {
	e := NewEngine()
	e.Interval = time.Millisecond
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		e.Run(ctx)
		close(done)
	}()
	require.Eventually(t, e.Running, time.Second, time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("engine did not stop")
	}
}

func TestEngineDrivesStore(t *testing.T) {
	s, clock := newTestStore(t)
	e := NewEngine()
	var dayFired bool
	e.OnTick = func() TickReport {
		clock.Advance(90 * time.Minute)
		return s.AdvanceTime()
	}
	e.OnDay = func(now time.Time) {
		dayFired = true
		s.TickDay(now)
	}

	e.step()
	assert.True(t, dayFired)
	assert.NotEmpty(t, s.PriceHistories())
}
