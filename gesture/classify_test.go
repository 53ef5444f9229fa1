package gesture

import (
	"testing"
	"time"

	"gridstroke/music"
	"gridstroke/pattern"
)

func testCtx() Context {
	return Context{
		Scale:    music.Scale{Root: 0, Mode: music.Major},
		Interval: music.Thirds,
		Length:   16,
	}
}

func TestFamilyBoundaryRatio(t *testing.T) {
	cases := []struct {
		name         string
		dStep, dSlot int
		want         Family
	}{
		{"tap zero", 0, 0, FamilyTap},
		{"tap one cell", 1, 1, FamilyTap},
		{"ratio 2.0 is horizontal", 2, 1, FamilyHorizontal},
		{"ratio inverse is vertical", 1, 2, FamilyVertical},
		{"equal magnitudes are diagonal", 4, 4, FamilyDiagonal},
		{"just under ratio is diagonal", 5, 4, FamilyDiagonal},
		{"just over ratio is horizontal", 6, 4, FamilyHorizontal},
	}
	for _, c := range cases {
		s := Stroke{Track: music.Melody, EndStep: c.dStep, EndSlot: c.dSlot}
		if got := s.FamilyOf(); got != c.want {
			t.Errorf("%s: got family %d, want %d", c.name, got, c.want)
		}
	}
}

func TestChordTapWritesTriad(t *testing.T) {
	ctx := testCtx()
	s := Stroke{Track: music.Chords, StartSlot: 0, StartStep: 5, EndSlot: 0, EndStep: 5}
	writes := Classify(s, ctx)
	if len(writes) != 3 {
		t.Fatalf("got %d writes, want 3: %+v", len(writes), writes)
	}
	got := map[int]bool{}
	for _, w := range writes {
		if w.Step != 5 {
			t.Fatalf("triad write at step %d, want 5", w.Step)
		}
		pc := music.PitchClassForRow(w.Slot, music.Chords.RowSpan(), ctx.Interval, ctx.Scale)
		got[pc] = true
	}
	for _, want := range []int{0, 4, 7} {
		if !got[want] {
			t.Fatalf("triad missing pitch class %d: %v", want, got)
		}
	}
}

func TestChordTapMinorTriad(t *testing.T) {
	ctx := testCtx()
	ctx.Scale.Mode = music.Minor
	s := Stroke{Track: music.Chords, StartSlot: 0, StartStep: 0, EndSlot: 0, EndStep: 0}
	got := map[int]bool{}
	for _, w := range Classify(s, ctx) {
		pc := music.PitchClassForRow(w.Slot, music.Chords.RowSpan(), ctx.Interval, ctx.Scale)
		got[pc] = true
	}
	for _, want := range []int{0, 3, 7} {
		if !got[want] {
			t.Fatalf("minor triad missing pitch class %d: %v", want, got)
		}
	}
}

func TestRhythmTapEchoesTwoStepsLater(t *testing.T) {
	ctx := testCtx()
	s := Stroke{Track: music.Rhythm, StartSlot: 3, StartStep: 15, EndSlot: 3, EndStep: 15}
	writes := Classify(s, ctx)
	if len(writes) != 2 {
		t.Fatalf("got %d writes, want tap+echo", len(writes))
	}
	if writes[0].Step != 15 || writes[1].Step != 1 {
		t.Fatalf("echo should wrap: got steps %d,%d", writes[0].Step, writes[1].Step)
	}
	if writes[1].Slot != 3 {
		t.Fatalf("echo on slot %d, want 3", writes[1].Slot)
	}
}

func TestBassTapAddsParallelFifth(t *testing.T) {
	ctx := testCtx()
	s := Stroke{Track: music.Bass, StartSlot: 0, StartStep: 2, EndSlot: 0, EndStep: 2}
	writes := Classify(s, ctx)
	if len(writes) != 2 {
		t.Fatalf("got %d writes, want root+fifth", len(writes))
	}
	fifth := music.PitchClassForRow(writes[1].Slot, music.Bass.RowSpan(), ctx.Interval, ctx.Scale)
	if fifth != 7 {
		t.Fatalf("second write pitch class %d, want 7", fifth)
	}
}

func TestMelodyTapSnapsToScale(t *testing.T) {
	ctx := testCtx()
	ctx.Interval = music.Chromatic
	// Chromatic row 6 is F#, out of C major; must snap to an in-scale class.
	s := Stroke{Track: music.Melody, StartSlot: 6, StartStep: 0, EndSlot: 6, EndStep: 0}
	writes := Classify(s, ctx)
	if len(writes) != 1 {
		t.Fatalf("got %d writes, want 1", len(writes))
	}
	pc := music.PitchClassForRow(writes[0].Slot, music.Melody.RowSpan(), ctx.Interval, ctx.Scale)
	if !ctx.Scale.Contains(pc) {
		t.Fatalf("snapped pitch class %d is out of scale", pc)
	}
}

func TestAccentHoldSelectsTier(t *testing.T) {
	ctx := testCtx()
	s := Stroke{Track: music.Melody, StartSlot: 0, StartStep: 0, EndSlot: 0, EndStep: 0}
	if got := Classify(s, ctx)[0].Vel; got != pattern.Normal {
		t.Fatalf("short hold: got tier %d, want normal", got)
	}
	s.Hold = 500 * time.Millisecond
	if got := Classify(s, ctx)[0].Vel; got != pattern.Accent {
		t.Fatalf("long hold: got tier %d, want accent", got)
	}
}

func TestSustainStrokeWritesAnchorAndContinuation(t *testing.T) {
	ctx := testCtx()
	s := Stroke{
		Track: music.Melody, StartSlot: 4, StartStep: 2,
		EndSlot: 4, EndStep: 6,
		Hold: 600 * time.Millisecond,
	}
	writes := Classify(s, ctx)
	if len(writes) != 5 {
		t.Fatalf("got %d writes, want anchor + 4 continuations", len(writes))
	}
	if writes[0].Vel != pattern.Accent || writes[0].Step != 2 {
		t.Fatalf("anchor wrong: %+v", writes[0])
	}
	for _, w := range writes[1:] {
		if w.Vel != pattern.Sustain || w.Slot != 4 {
			t.Fatalf("continuation wrong: %+v", w)
		}
	}
}

func TestRhythmRollAccentsBothEnds(t *testing.T) {
	ctx := testCtx()
	s := Stroke{Track: music.Rhythm, StartSlot: 1, StartStep: 0, EndSlot: 1, EndStep: 5}
	writes := Classify(s, ctx)
	if len(writes) != 6 {
		t.Fatalf("got %d writes, want 6", len(writes))
	}
	if writes[0].Vel != pattern.Accent || writes[5].Vel != pattern.Accent {
		t.Fatal("roll ends must be accented")
	}
	for _, w := range writes[1:5] {
		if w.Vel != pattern.Normal {
			t.Fatalf("roll interior must be normal: %+v", w)
		}
	}
}

func TestBassWalkCyclesRootFifthThird(t *testing.T) {
	ctx := testCtx()
	s := Stroke{Track: music.Bass, StartSlot: 0, StartStep: 0, EndSlot: 0, EndStep: 7}
	writes := Classify(s, ctx)
	if len(writes) == 0 {
		t.Fatal("walking bass produced no writes")
	}
	wantCycle := []int{0, 7, 4, 7}
	for i, w := range writes {
		pc := music.PitchClassForRow(w.Slot, music.Bass.RowSpan(), ctx.Interval, ctx.Scale)
		if pc != wantCycle[w.Step%4] {
			t.Fatalf("write %d at step %d: pitch class %d, want %d", i, w.Step, pc, wantCycle[w.Step%4])
		}
	}
}

func TestVerticalRhythmFillsColumn(t *testing.T) {
	ctx := testCtx()
	s := Stroke{Track: music.Rhythm, StartSlot: 2, StartStep: 4, EndSlot: 7, EndStep: 4}
	writes := Classify(s, ctx)
	if len(writes) != 6 {
		t.Fatalf("got %d writes, want filled span of 6", len(writes))
	}
	for _, w := range writes {
		if w.Step != 4 {
			t.Fatalf("vertical fill moved steps: %+v", w)
		}
	}
}

func TestDiagonalInterpolatesLine(t *testing.T) {
	ctx := testCtx()
	s := Stroke{Track: music.Rhythm, StartSlot: 0, StartStep: 0, EndSlot: 4, EndStep: 4}
	writes := Classify(s, ctx)
	if len(writes) != 5 {
		t.Fatalf("got %d writes, want 5", len(writes))
	}
	for i, w := range writes {
		if w.Step != i || w.Slot != i {
			t.Fatalf("write %d off the diagonal: %+v", i, w)
		}
	}
}

func TestClassifyDropsOutOfRangeWrites(t *testing.T) {
	ctx := testCtx()
	ctx.Length = 8
	s := Stroke{Track: music.Rhythm, StartSlot: 0, StartStep: 6, EndSlot: 0, EndStep: 12}
	for _, w := range Classify(s, ctx) {
		if w.Step >= ctx.Length {
			t.Fatalf("write past pattern length survived: %+v", w)
		}
	}
}

func TestClassifyDeterministic(t *testing.T) {
	ctx := testCtx()
	s := Stroke{Track: music.Chords, StartSlot: 1, StartStep: 0, EndSlot: 6, EndStep: 8}
	first := Classify(s, ctx)
	for i := 0; i < 50; i++ {
		again := Classify(s, ctx)
		if len(again) != len(first) {
			t.Fatal("classification not deterministic")
		}
		for j := range again {
			if again[j] != first[j] {
				t.Fatal("classification not deterministic")
			}
		}
	}
}
