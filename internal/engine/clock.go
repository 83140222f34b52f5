package engine

import (
	"sync"
	"time"
)

// Clock supplies the current game time.
type Clock interface {
	Now() time.Time
}

// SpeedSetter is implemented by clocks whose pace follows the game speed.
type SpeedSetter interface {
	SetSpeed(speed float64)
}

// RealClock reads the wall clock.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// FakeClock is deterministic and test-friendly.
type FakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func NewFakeClock(start time.Time) *FakeClock {
	return &FakeClock{t: start}
}

func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *FakeClock) Set(t time.Time) {
	c.mu.Lock()
	c.t = t
	c.mu.Unlock()
}

func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

// ScaledClock runs game time at a multiple of its base clock.
// Speed 0 freezes game time; changing speed never makes time jump.
type ScaledClock struct {
	mu         sync.Mutex
	base       Clock
	anchorBase time.Time
	anchorGame time.Time
	speed      float64
}

// NewScaledClock starts game time at base.Now() running at speed.
func NewScaledClock(base Clock, speed float64) *ScaledClock {
	now := base.Now()
	return &ScaledClock{
		base:       base,
		anchorBase: now,
		anchorGame: now,
		speed:      speed,
	}
}

func (c *ScaledClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.nowLocked()
}

func (c *ScaledClock) nowLocked() time.Time {
	elapsed := c.base.Now().Sub(c.anchorBase)
	return c.anchorGame.Add(time.Duration(float64(elapsed) * c.speed))
}

// SetSpeed re-anchors the clock so game time stays continuous.
func (c *ScaledClock) SetSpeed(speed float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.anchorGame = c.nowLocked()
	c.anchorBase = c.base.Now()
	c.speed = speed
}

// Speed returns the current multiplier.
func (c *ScaledClock) Speed() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.speed
}
