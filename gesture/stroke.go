package gesture

import (
	"time"

	"gridstroke/music"
	"gridstroke/pattern"
)

// Stroke is the ephemeral shape of one completed pointer gesture. It exists
// only between stroke-start and stroke-end and is never persisted.
type Stroke struct {
	Track     music.Track
	StartSlot int
	StartStep int
	EndSlot   int
	EndStep   int
	Hold      time.Duration
}

// Write is one candidate cell write on the stroke's track. Writes from a
// single stroke are applied atomically in order.
type Write struct {
	Slot int
	Step int
	Vel  pattern.Velocity
}

// Context is the musical state the classifier reads. It is a plain value
// so classification stays a pure function of its inputs.
type Context struct {
	Scale    music.Scale
	Interval music.IntervalMode
	Length   int
}

// Family is the coarse gesture class.
type Family int

const (
	FamilyTap Family = iota
	FamilyHorizontal
	FamilyVertical
	FamilyDiagonal
)

// Hold time separating a normal hit from an accent/sustain anchor.
const accentHold = 400 * time.Millisecond

// Tier returns the stroke's velocity tier from its hold duration.
func (s Stroke) Tier() pattern.Velocity {
	if s.Hold > accentHold {
		return pattern.Accent
	}
	return pattern.Normal
}

// directionality ratio: the dominant axis must exceed the other by 1.3x
// before a stroke leaves the diagonal family.
const axisRatio = 1.3

// FamilyOf classifies a stroke by displacement magnitude. Taps win before
// the ratio test so a one-cell nudge never reads as a line.
func (s Stroke) FamilyOf() Family {
	dStep := abs(s.EndStep - s.StartStep)
	dSlot := abs(s.EndSlot - s.StartSlot)
	switch {
	case dStep <= 1 && dSlot <= 1:
		return FamilyTap
	case float64(dStep) > axisRatio*float64(dSlot):
		return FamilyHorizontal
	case float64(dSlot) > axisRatio*float64(dStep):
		return FamilyVertical
	default:
		return FamilyDiagonal
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func sign(x int) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}

func clamp(x, lo, hi int) int {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
