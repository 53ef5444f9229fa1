package pattern

import "gridstroke/music"

// Velocity is one of the four cell tiers.
type Velocity uint8

const (
	Off     Velocity = iota
	Normal           // plain hit
	Accent           // accented hit / sustain anchor
	Sustain          // sustain continuation, never retriggered
)

// Valid reports whether v is a defined tier.
func (v Velocity) Valid() bool {
	return v <= Sustain
}

// MaxSteps is the longest supported pattern.
const MaxSteps = 32

// MinSteps is the shortest supported pattern.
const MinSteps = 8

// Lane is one track's grid plus its per-track settings.
type Lane struct {
	Cells    [music.NumSlots][MaxSteps]Velocity
	Muted    bool
	Solo     bool
	Interval music.IntervalMode
}

// Pattern is an immutable snapshot of everything a single sequence holds.
// All mutators are value-receiver and return a fresh copy, so snapshots in
// history and snapshots handed to the projector/scheduler can never be
// observed half-written.
type Pattern struct {
	Lanes  [music.NumTracks]Lane
	Length int
	BPM    int
	Scale  music.Scale
}

// New returns an empty pattern with the startup defaults: 16 steps at 120 BPM,
// C major, thirds on every melodic track.
func New() Pattern {
	var p Pattern
	p.Length = 16
	p.BPM = 120
	p.Scale = music.Scale{Root: 0, Mode: music.Major}
	for i := range p.Lanes {
		p.Lanes[i].Interval = music.Thirds
	}
	return p
}

// Cell returns the velocity at a position, Off for out-of-range input.
func (p Pattern) Cell(track music.Track, slot, step int) Velocity {
	if !p.inRange(track, slot, step) {
		return Off
	}
	return p.Lanes[track].Cells[slot][step]
}

// SetCell writes one velocity tier. Out-of-range positions and undefined
// tiers leave the pattern unchanged rather than erroring.
func (p Pattern) SetCell(track music.Track, slot, step int, v Velocity) Pattern {
	if !p.inRange(track, slot, step) || !v.Valid() {
		return p
	}
	p.Lanes[track].Cells[slot][step] = v
	return p
}

// PutCell is SetCell bounded by MaxSteps instead of the current Length.
// Session mirroring uses it so a remote edit racing a length change is kept
// rather than dropped.
func (p Pattern) PutCell(track music.Track, slot, step int, v Velocity) Pattern {
	if track < 0 || track >= music.NumTracks ||
		slot < 0 || slot >= music.NumSlots ||
		step < 0 || step >= MaxSteps || !v.Valid() {
		return p
	}
	p.Lanes[track].Cells[slot][step] = v
	return p
}

// Clear wipes every cell on every track, keeping tempo, scale and length.
func (p Pattern) Clear() Pattern {
	for t := range p.Lanes {
		p.Lanes[t].Cells = [music.NumSlots][MaxSteps]Velocity{}
	}
	return p
}

// SetMuted sets a track's mute flag.
func (p Pattern) SetMuted(track music.Track, muted bool) Pattern {
	if track < 0 || track >= music.NumTracks {
		return p
	}
	p.Lanes[track].Muted = muted
	return p
}

// SetSolo sets a track's solo flag.
func (p Pattern) SetSolo(track music.Track, solo bool) Pattern {
	if track < 0 || track >= music.NumTracks {
		return p
	}
	p.Lanes[track].Solo = solo
	return p
}

// SetTempo clamps to the playable range.
func (p Pattern) SetTempo(bpm int) Pattern {
	if bpm < 20 {
		bpm = 20
	}
	if bpm > 300 {
		bpm = 300
	}
	p.BPM = bpm
	return p
}

// SetLength snaps to the nearest multiple of 4 within [8,32].
func (p Pattern) SetLength(steps int) Pattern {
	if steps < MinSteps {
		steps = MinSteps
	}
	if steps > MaxSteps {
		steps = MaxSteps
	}
	steps -= steps % 4
	p.Length = steps
	return p
}

// SetScale replaces the active scale.
func (p Pattern) SetScale(s music.Scale) Pattern {
	s.Root = ((s.Root % 12) + 12) % 12
	p.Scale = s
	return p
}

// SetInterval replaces a track's interval mode.
func (p Pattern) SetInterval(track music.Track, m music.IntervalMode) Pattern {
	if track < 0 || track >= music.NumTracks {
		return p
	}
	p.Lanes[track].Interval = m
	return p
}

// Audible reports whether the track sounds on playback: muted tracks are
// silent, and any solo makes playback exclusive to the soloed tracks.
func (p Pattern) Audible(track music.Track) bool {
	if track < 0 || track >= music.NumTracks {
		return false
	}
	if p.Lanes[track].Muted {
		return false
	}
	anySolo := false
	for i := range p.Lanes {
		if p.Lanes[i].Solo {
			anySolo = true
			break
		}
	}
	if anySolo {
		return p.Lanes[track].Solo
	}
	return true
}

// SustainRun counts the contiguous Sustain cells following step on a slot,
// stopping at the pattern boundary.
func (p Pattern) SustainRun(track music.Track, slot, step int) int {
	run := 0
	for s := step + 1; s < p.Length; s++ {
		if p.Cell(track, slot, s) != Sustain {
			break
		}
		run++
	}
	return run
}

func (p Pattern) inRange(track music.Track, slot, step int) bool {
	return track >= 0 && track < music.NumTracks &&
		slot >= 0 && slot < music.NumSlots &&
		step >= 0 && step < p.Length
}
