// Package playback advances the step transport and fires the sound output.
package playback

import (
	"time"

	"gridstroke/music"
	"gridstroke/pattern"
)

// Output is the sound collaborator. Triggers are fire-and-forget: failures
// are not reported back and must never block the transport.
type Output interface {
	TriggerNote(pitch int, vel pattern.Velocity, track music.Track, dur time.Duration)
	TriggerDrum(slot int, vel pattern.Velocity)
}

// Scheduler is the step transport. It holds no goroutine of its own: the
// engine loop owns the tick timer and calls Tick, so pattern reads are
// always complete snapshots.
type Scheduler struct {
	out     Output
	playing bool
	step    int
}

// NewScheduler creates a stopped transport. out may be nil; ticks then
// advance transport state and silently skip triggering.
func NewScheduler(out Output) *Scheduler {
	return &Scheduler{out: out, step: -1}
}

// SetOutput swaps the sound collaborator (nil allowed).
func (s *Scheduler) SetOutput(out Output) { s.out = out }

// Playing reports transport state.
func (s *Scheduler) Playing() bool { return s.playing }

// Step returns the current playhead position, -1 before the first tick.
func (s *Scheduler) Step() int { return s.step }

// Toggle flips between Stopped and Playing and returns the new state.
// Starting rewinds so the first tick lands on step 0.
func (s *Scheduler) Toggle() bool {
	s.playing = !s.playing
	if s.playing {
		s.step = -1
	}
	return s.playing
}

// SetTransport force-sets transport state (viewer path: host broadcasts are
// applied wholesale).
func (s *Scheduler) SetTransport(playing bool, step int) {
	s.playing = playing
	s.step = step
}

// TickInterval is the sixteenth-note tick period at the given tempo.
func TickInterval(bpm int) time.Duration {
	if bpm <= 0 {
		bpm = 120
	}
	return time.Duration(60000 / float64(bpm) / 4 * float64(time.Millisecond))
}

// Tick advances the playhead one sixteenth and triggers every audible
// track's active cells. Continuation cells never retrigger; a triggered
// cell's duration spans its contiguous sustain run converted to wall-clock
// time at the pattern's tempo. A pattern shortened below the playhead wraps
// here via the modulo.
func (s *Scheduler) Tick(p pattern.Pattern) int {
	if !s.playing || p.Length <= 0 {
		return s.step
	}
	s.step = (s.step + 1) % p.Length

	if s.out == nil {
		return s.step
	}
	for _, track := range music.Tracks() {
		if !p.Audible(track) {
			continue
		}
		for slot := 0; slot < music.NumSlots; slot++ {
			vel := p.Cell(track, slot, s.step)
			if vel == pattern.Off || vel == pattern.Sustain {
				continue
			}
			if track == music.Rhythm {
				s.out.TriggerDrum(slot, vel)
				continue
			}
			steps := 1 + p.SustainRun(track, slot, s.step)
			dur := time.Duration(steps) * TickInterval(p.BPM)
			pitch := music.PitchForRow(track, slot, p.Lanes[track].Interval, p.Scale)
			s.out.TriggerNote(pitch, vel, track, dur)
		}
	}
	return s.step
}
