// Package audio provides the sound collaborators behind the playback
// scheduler: a MIDI output and a built-in oscillator synth. Both are
// fire-and-forget; trigger failures never reach the core.
package audio

import (
	"sync"
	"time"

	"gridstroke/debug"
	"gridstroke/music"
	"gridstroke/pattern"
)

// velocityFor maps a cell tier to a MIDI-style velocity.
func velocityFor(vel pattern.Velocity) uint8 {
	if vel == pattern.Accent {
		return 127
	}
	return 100
}

// Gate wraps an output behind a one-time unlock tied to the first user
// interaction. Init runs at most once; until it has run, triggers are
// dropped silently, and if it fails every later trigger stays a no-op.
type Gate struct {
	once sync.Once
	init func() error

	mu  sync.Mutex
	out Out
}

// Out is the concrete trigger surface shared by the MIDI and synth outputs.
// It mirrors playback.Output without importing it, so audio stays a leaf.
type Out interface {
	TriggerNote(pitch int, vel pattern.Velocity, track music.Track, dur time.Duration)
	TriggerDrum(slot int, vel pattern.Velocity)
}

// NewGate defers init until Unlock.
func NewGate(init func() (Out, error)) *Gate {
	g := &Gate{}
	g.init = func() error {
		out, err := init()
		if err != nil {
			return err
		}
		g.mu.Lock()
		g.out = out
		g.mu.Unlock()
		return nil
	}
	return g
}

// Unlock runs the deferred init exactly once. Call on the first user
// interaction; further calls are no-ops.
func (g *Gate) Unlock() {
	g.once.Do(func() {
		if err := g.init(); err != nil {
			debug.Log("audio", "unlock failed, output disabled: %v", err)
		}
	})
}

func (g *Gate) current() Out {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.out
}

func (g *Gate) TriggerNote(pitch int, vel pattern.Velocity, track music.Track, dur time.Duration) {
	if out := g.current(); out != nil {
		out.TriggerNote(pitch, vel, track, dur)
	}
}

func (g *Gate) TriggerDrum(slot int, vel pattern.Velocity) {
	if out := g.current(); out != nil {
		out.TriggerDrum(slot, vel)
	}
}
