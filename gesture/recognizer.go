package gesture

import (
	"time"

	"gridstroke/music"
)

// Outcome is what a finished (or aborted) pointer interaction asks for.
type Outcome int

const (
	OutcomeNone   Outcome = iota // nothing to do (still in progress, or dropped)
	OutcomeStroke                // classify and commit the stroke
	OutcomeClear                 // shake: clear the whole pattern, zero writes
	OutcomeUndo                  // leftward double swipe
	OutcomeRedo                  // rightward double swipe
)

// Shake: this many alternating horizontal reversals inside the window abort
// the gesture and clear the pattern.
const (
	shakeReversals = 5
	shakeWindow    = 500 * time.Millisecond
)

// Double swipe: a fast wide swipe followed by a second one the same way.
const (
	swipeColumns  = 6
	swipeDuration = 300 * time.Millisecond
)

// PairGap is how long a qualifying swipe stays provisional waiting for its
// pair. The swipe is held back rather than committed, so a completed pair
// turns into pure undo/redo with zero writes; callers poll Flush past the
// gap to land a swipe that never paired.
const PairGap = 500 * time.Millisecond

// Recognizer accumulates pointer samples between stroke-start and
// stroke-end and detects the two abort gestures. It keeps no pattern state;
// the stroke it emits is a short-lived value handed to Classify.
type Recognizer struct {
	active    bool
	track     music.Track
	startSlot int
	startStep int
	startAt   time.Time
	lastSlot  int
	lastStep  int
	lastDir   int // horizontal travel direction of the previous move
	reversals []time.Time

	pending    Stroke // qualifying swipe held back for pairing
	pendingAt  time.Time
	pendingDir int
	hasPending bool
}

// Active reports whether a stroke is in progress.
func (r *Recognizer) Active() bool { return r.active }

// Track returns the track owning the in-progress stroke.
func (r *Recognizer) Track() music.Track { return r.track }

// Current returns the live end position for gesture preview.
func (r *Recognizer) Current() (slot, step int) { return r.lastSlot, r.lastStep }

// Preview returns the uncommitted stroke as it stands now.
func (r *Recognizer) Preview(at time.Time) Stroke {
	return Stroke{
		Track:     r.track,
		StartSlot: r.startSlot,
		StartStep: r.startStep,
		EndSlot:   r.lastSlot,
		EndStep:   r.lastStep,
		Hold:      at.Sub(r.startAt),
	}
}

// Begin starts a stroke at a cell.
func (r *Recognizer) Begin(track music.Track, slot, step int, at time.Time) {
	r.active = true
	r.track = track
	r.startSlot, r.startStep = slot, step
	r.lastSlot, r.lastStep = slot, step
	r.startAt = at
	r.lastDir = 0
	r.reversals = r.reversals[:0]
}

// Move extends the stroke. A recognized shake aborts immediately and
// returns OutcomeClear; the in-progress gesture produces zero writes.
func (r *Recognizer) Move(slot, step int, at time.Time) Outcome {
	if !r.active {
		return OutcomeNone
	}
	dir := sign(step - r.lastStep)
	if dir != 0 {
		if r.lastDir != 0 && dir == -r.lastDir {
			r.reversals = append(r.reversals, at)
		}
		r.lastDir = dir
	}
	r.lastSlot, r.lastStep = slot, step

	r.pruneReversals(at)
	if len(r.reversals) >= shakeReversals {
		r.reset()
		return OutcomeClear
	}
	return OutcomeNone
}

// End finishes the stroke. A completed double swipe asks for undo (leftward)
// or redo (rightward) instead of a write, and neither swipe of the pair ever
// commits. A lone qualifying swipe is therefore not returned here: it is held
// until the pairing window closes, then released through Flush.
func (r *Recognizer) End(at time.Time) (Stroke, Outcome) {
	if !r.active {
		return Stroke{}, OutcomeNone
	}
	s := r.Preview(at)
	r.reset()

	dir, swipe := isSwipe(s)
	if swipe && r.hasPending && r.pendingDir == dir && at.Sub(r.pendingAt) <= PairGap {
		r.clearPending()
		if dir < 0 {
			return Stroke{}, OutcomeUndo
		}
		return Stroke{}, OutcomeRedo
	}
	if swipe {
		prev, had := r.pending, r.hasPending
		r.pending, r.pendingAt, r.pendingDir, r.hasPending = s, at, dir, true
		if had {
			return prev, OutcomeStroke
		}
		return Stroke{}, OutcomeNone
	}

	// A plain stroke between two swipes breaks the pair; the held swipe
	// still lands once Flush releases it.
	r.pendingDir = 0
	return s, OutcomeStroke
}

// Flush releases a held swipe once its pairing window has closed with no
// second swipe arriving. Callers poll it after PairGap.
func (r *Recognizer) Flush(at time.Time) (Stroke, bool) {
	if !r.hasPending || at.Sub(r.pendingAt) <= PairGap {
		return Stroke{}, false
	}
	s := r.pending
	r.clearPending()
	return s, true
}

// PendingSwipe reports whether a swipe is being held for pairing.
func (r *Recognizer) PendingSwipe() bool { return r.hasPending }

func (r *Recognizer) clearPending() {
	r.pending = Stroke{}
	r.pendingAt = time.Time{}
	r.pendingDir = 0
	r.hasPending = false
}

// Cancel drops the in-progress stroke with no writes.
func (r *Recognizer) Cancel() { r.reset() }

func (r *Recognizer) reset() {
	r.active = false
	r.lastDir = 0
	r.reversals = r.reversals[:0]
}

func (r *Recognizer) pruneReversals(now time.Time) {
	cut := 0
	for cut < len(r.reversals) && now.Sub(r.reversals[cut]) > shakeWindow {
		cut++
	}
	if cut > 0 {
		r.reversals = append(r.reversals[:0], r.reversals[cut:]...)
	}
}

func isSwipe(s Stroke) (dir int, ok bool) {
	d := s.EndStep - s.StartStep
	if abs(d) >= swipeColumns && s.Hold < swipeDuration {
		return sign(d), true
	}
	return 0, false
}
