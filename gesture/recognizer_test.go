package gesture

import (
	"testing"
	"time"

	"gridstroke/music"
)

func TestShakeClearsWithZeroWrites(t *testing.T) {
	var r Recognizer
	at := time.Now()
	r.Begin(music.Melody, 4, 8, at)

	// Five alternating horizontal reversals inside the rolling window.
	step := 8
	dir := 1
	outcome := OutcomeNone
	for i := 0; i < 12 && outcome == OutcomeNone; i++ {
		step += dir * 2
		dir = -dir
		at = at.Add(40 * time.Millisecond)
		outcome = r.Move(4, step, at)
	}
	if outcome != OutcomeClear {
		t.Fatalf("got outcome %d, want clear", outcome)
	}
	if r.Active() {
		t.Fatal("shake must abort the in-progress gesture")
	}
}

func TestSlowReversalsDoNotShake(t *testing.T) {
	var r Recognizer
	at := time.Now()
	r.Begin(music.Melody, 4, 8, at)

	step := 8
	dir := 1
	for i := 0; i < 12; i++ {
		step += dir * 2
		dir = -dir
		at = at.Add(200 * time.Millisecond) // reversals age out of the window
		if outcome := r.Move(4, step, at); outcome == OutcomeClear {
			t.Fatal("slow reversals must not trigger a shake")
		}
	}
}

func TestDoubleSwipeLeftIsUndo(t *testing.T) {
	var r Recognizer
	at := time.Now()

	// The first swipe is held for pairing, never committed.
	r.Begin(music.Melody, 3, 10, at)
	r.Move(3, 2, at.Add(100*time.Millisecond))
	if _, outcome := r.End(at.Add(100 * time.Millisecond)); outcome != OutcomeNone {
		t.Fatalf("first swipe should be held, got %d", outcome)
	}
	if !r.PendingSwipe() {
		t.Fatal("first swipe should be pending")
	}

	at = at.Add(300 * time.Millisecond)
	r.Begin(music.Melody, 3, 10, at)
	r.Move(3, 2, at.Add(100*time.Millisecond))
	_, outcome := r.End(at.Add(100 * time.Millisecond))
	if outcome != OutcomeUndo {
		t.Fatalf("second leftward swipe should undo, got %d", outcome)
	}
	if _, ok := r.Flush(at.Add(2 * time.Second)); ok {
		t.Fatal("a paired swipe must never flush as a write")
	}
}

func TestDoubleSwipeRightIsRedo(t *testing.T) {
	var r Recognizer
	at := time.Now()
	for i := 0; i < 2; i++ {
		r.Begin(music.Melody, 3, 0, at)
		r.Move(3, 8, at.Add(80*time.Millisecond))
		_, outcome := r.End(at.Add(80 * time.Millisecond))
		if i == 0 && outcome != OutcomeNone {
			t.Fatalf("first swipe: got %d, want held", outcome)
		}
		if i == 1 && outcome != OutcomeRedo {
			t.Fatalf("second swipe: got %d, want redo", outcome)
		}
		at = at.Add(200 * time.Millisecond)
	}
}

func TestLoneSwipeFlushesAfterPairWindow(t *testing.T) {
	var r Recognizer
	at := time.Now()

	r.Begin(music.Melody, 3, 0, at)
	r.Move(3, 8, at.Add(80*time.Millisecond))
	end := at.Add(80 * time.Millisecond)
	if _, outcome := r.End(end); outcome != OutcomeNone {
		t.Fatalf("lone swipe should be held, got %d", outcome)
	}

	if _, ok := r.Flush(end.Add(PairGap)); ok {
		t.Fatal("swipe must stay held while the pairing window is open")
	}
	s, ok := r.Flush(end.Add(PairGap + time.Millisecond))
	if !ok {
		t.Fatal("unpaired swipe must land once the window closes")
	}
	if s.StartStep != 0 || s.EndStep != 8 || s.Track != music.Melody {
		t.Fatalf("flushed stroke lost its geometry: %+v", s)
	}
	if _, ok := r.Flush(end.Add(2 * PairGap)); ok {
		t.Fatal("a swipe must flush at most once")
	}
}

func TestOppositeSwipesDoNotPair(t *testing.T) {
	var r Recognizer
	at := time.Now()

	r.Begin(music.Melody, 3, 0, at)
	r.Move(3, 8, at.Add(80*time.Millisecond))
	r.End(at.Add(80 * time.Millisecond))

	// The opposite-direction swipe releases the held one as a plain stroke
	// and takes its place in the pairing slot.
	at = at.Add(200 * time.Millisecond)
	r.Begin(music.Melody, 3, 10, at)
	r.Move(3, 2, at.Add(80*time.Millisecond))
	s, outcome := r.End(at.Add(80 * time.Millisecond))
	if outcome != OutcomeStroke {
		t.Fatalf("opposite-direction swipe should not pair, got %d", outcome)
	}
	if s.StartStep != 0 || s.EndStep != 8 {
		t.Fatalf("expected the first swipe to land, got %+v", s)
	}
	if !r.PendingSwipe() {
		t.Fatal("second swipe should now be the held one")
	}
}

func TestLateSecondSwipeDoesNotPair(t *testing.T) {
	var r Recognizer
	at := time.Now()

	r.Begin(music.Melody, 3, 0, at)
	r.Move(3, 8, at.Add(80*time.Millisecond))
	r.End(at.Add(80 * time.Millisecond))

	at = at.Add(2 * time.Second)
	r.Begin(music.Melody, 3, 0, at)
	r.Move(3, 8, at.Add(80*time.Millisecond))
	_, outcome := r.End(at.Add(80 * time.Millisecond))
	if outcome == OutcomeUndo || outcome == OutcomeRedo {
		t.Fatalf("late second swipe should not pair, got %d", outcome)
	}
}

func TestStrokeBetweenSwipesBreaksThePair(t *testing.T) {
	var r Recognizer
	at := time.Now()

	r.Begin(music.Melody, 3, 10, at)
	r.Move(3, 2, at.Add(80*time.Millisecond))
	r.End(at.Add(80 * time.Millisecond))

	// A tap in between lands normally and poisons the pairing.
	at = at.Add(150 * time.Millisecond)
	r.Begin(music.Melody, 5, 4, at)
	if s, outcome := r.End(at.Add(50 * time.Millisecond)); outcome != OutcomeStroke || s.StartSlot != 5 {
		t.Fatalf("tap should land as a stroke, got %d %+v", outcome, s)
	}

	at = at.Add(100 * time.Millisecond)
	r.Begin(music.Melody, 3, 10, at)
	r.Move(3, 2, at.Add(80*time.Millisecond))
	s, outcome := r.End(at.Add(80 * time.Millisecond))
	if outcome == OutcomeUndo {
		t.Fatal("an interrupted pair must not undo")
	}
	// The original swipe was still a real edit and must land.
	if outcome != OutcomeStroke || s.StartStep != 10 || s.EndStep != 2 {
		t.Fatalf("held swipe should land when the pair breaks, got %d %+v", outcome, s)
	}
}

func TestSlowWideDragIsNotASwipe(t *testing.T) {
	var r Recognizer
	at := time.Now()
	r.Begin(music.Melody, 3, 0, at)
	r.Move(3, 10, at.Add(time.Second))
	s, outcome := r.End(at.Add(time.Second))
	if outcome != OutcomeStroke {
		t.Fatalf("got %d, want stroke", outcome)
	}
	if s.FamilyOf() != FamilyHorizontal {
		t.Fatal("wide slow drag should still classify horizontally")
	}
}
