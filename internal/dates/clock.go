package dates

import "time"

// Clock is the one source of "now" for the engine. Production code uses
// SystemClock; tests pin a FixedClock so classification is reproducible.
type Clock interface {
	Now() time.Time
	Today() Day
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }
func (systemClock) Today() Day     { return FromTime(time.Now()) }

func SystemClock() Clock { return systemClock{} }

// FixedClock always reports the same instant.
type FixedClock struct {
	Instant time.Time
}

func Fixed(d Day) FixedClock {
	return FixedClock{Instant: d.Time()}
}

func (c FixedClock) Now() time.Time { return c.Instant }
func (c FixedClock) Today() Day     { return FromTime(c.Instant) }
