package engine

import "time"

// Clock is the game clock: elapsed game seconds, driven from outside.
// It never moves backwards.
type Clock struct {
	now float64
}

// Now returns the current game time.
func (c *Clock) Now() float64 {
	return c.now
}

// Set moves the clock to t and reports whether it moved. Earlier values
// are ignored.
func (c *Clock) Set(t float64) bool {
	if t <= c.now {
		return false
	}
	c.now = t
	return true
}

// gameEpoch anchors game seconds on the time.Time axis so they can drive
// golang.org/x/time/rate limiters. Limiters only see differences, so the
// anchor itself is arbitrary.
var gameEpoch = time.Unix(0, 0).UTC()

// gameTime converts game seconds to a time.Time on the limiter axis.
func gameTime(sec float64) time.Time {
	return gameEpoch.Add(time.Duration(sec * float64(time.Second)))
}
