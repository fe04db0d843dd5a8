// Package clock lets time-dependent components take their notion of "now" as a
// dependency.
package clock

import (
	"time"

	bclock "github.com/benbjohnson/clock"
)

type Clock interface {
	Now() time.Time
}

type utcClock struct {
	clock bclock.Clock
}

func (c utcClock) Now() time.Time { return c.clock.Now().UTC() }

// System returns the wall clock in UTC.
func System() Clock { return utcClock{clock: bclock.New()} }

// Manual is a settable clock for tests.
type Manual struct {
	mock *bclock.Mock
}

func NewManual(start time.Time) *Manual {
	m := bclock.NewMock()
	m.Set(start)
	return &Manual{mock: m}
}

func (m *Manual) Now() time.Time { return m.mock.Now() }

func (m *Manual) Advance(d time.Duration) { m.mock.Add(d) }

func (m *Manual) Set(t time.Time) { m.mock.Set(t) }
