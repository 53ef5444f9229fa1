package projector

import (
	"testing"

	"gridstroke/gesture"
	"gridstroke/music"
	"gridstroke/pattern"
	"gridstroke/theme"
)

func testProjector() *Projector {
	return New(theme.New(theme.Default()))
}

func TestRowMappingRoundTrip(t *testing.T) {
	for row := 0; row < Rows(); row++ {
		track, slot, ok := RowInfo(row)
		if !ok {
			t.Fatalf("row %d unmapped", row)
		}
		if got := RowOf(track, slot); got != row {
			t.Fatalf("row %d -> %v/%d -> %d", row, track, slot, got)
		}
	}
	if _, _, ok := RowInfo(Rows()); ok {
		t.Fatal("row past grid height should not map")
	}
}

func TestProjectionDeterministic(t *testing.T) {
	pr := testProjector()
	p := pattern.New().
		SetCell(music.Melody, 3, 2, pattern.Accent).
		SetCell(music.Melody, 3, 3, pattern.Sustain).
		SetCell(music.Rhythm, 0, 0, pattern.Normal)
	tr := Transport{Playing: true, Step: 2}
	v := NewView()
	v.Preview = []gesture.Write{{Slot: 1, Step: 1, Vel: pattern.Normal}}
	v.PreviewTrack = music.Chords

	first := pr.Project(p, tr, v)
	for i := 0; i < 10; i++ {
		again := pr.Project(p, tr, v)
		for r := range first {
			for c := range first[r] {
				if first[r][c] != again[r][c] {
					t.Fatalf("projection not deterministic at %d,%d", r, c)
				}
			}
		}
	}
}

func TestSustainFadeShape(t *testing.T) {
	// 4-step sustain: anchor + 3 continuation cells.
	const n = 4
	prev := SustainAlpha(1, n)
	for k := 2; k < n; k++ {
		a := SustainAlpha(k, n)
		if a > prev {
			t.Fatalf("alpha increased at k=%d: %f > %f", k, a, prev)
		}
		prev = a
	}
	if last := SustainAlpha(n-1, n); last < 0.25 {
		t.Fatalf("final cell alpha %f below floor", last)
	}
	// The first 40% of the span holds near-full alpha.
	const long = 11
	if SustainAlpha(1, long) != SustainAlpha(4, long) {
		t.Fatal("alpha should hold through the first 40% of the span")
	}
	if SustainAlpha(5, long) >= SustainAlpha(4, long) {
		t.Fatal("alpha should decay after the 40% mark")
	}
}

func TestCommittedNoteAlphaByTier(t *testing.T) {
	pr := testProjector()
	p := pattern.New().
		SetCell(music.Melody, 2, 0, pattern.Normal).
		SetCell(music.Melody, 4, 0, pattern.Accent)
	grid := pr.Project(p, Transport{}, NewView())

	normal := grid[RowOf(music.Melody, 2)][0]
	accent := grid[RowOf(music.Melody, 4)][0]
	if normal.Kind != KindNote || accent.Kind != KindNote {
		t.Fatalf("expected notes, got kinds %d/%d", normal.Kind, accent.Kind)
	}
	if !(accent.Alpha > normal.Alpha) {
		t.Fatalf("accent alpha %f should exceed normal %f", accent.Alpha, normal.Alpha)
	}
}

func TestGhostOnlyOnEmptyCells(t *testing.T) {
	pr := testProjector()
	// Same pitch class on melody and chords at step 0: chromatic rows make
	// pitch classes line up directly.
	p := pattern.New().
		SetInterval(music.Melody, music.Chromatic).
		SetInterval(music.Chords, music.Chromatic).
		SetCell(music.Chords, 4, 0, pattern.Normal)

	v := NewView()
	grid := pr.Project(p, Transport{}, v)
	ghost := grid[RowOf(music.Melody, 4)][0]
	if ghost.Kind != KindGhost {
		t.Fatalf("empty melody cell over chords content should ghost, got kind %d", ghost.Kind)
	}

	// A committed note suppresses the ghost.
	p = p.SetCell(music.Melody, 4, 0, pattern.Normal)
	grid = pr.Project(p, Transport{}, v)
	if got := grid[RowOf(music.Melody, 4)][0].Kind; got != KindNote {
		t.Fatalf("note must override ghost, got kind %d", got)
	}

	// Ghosts off.
	v.Ghost = false
	p = p.SetCell(music.Melody, 4, 0, pattern.Off)
	grid = pr.Project(p, Transport{}, v)
	if got := grid[RowOf(music.Melody, 4)][0].Kind; got == KindGhost {
		t.Fatal("ghost rendered with ghosts disabled")
	}
}

func TestPlayheadAndPreviewLayers(t *testing.T) {
	pr := testProjector()
	p := pattern.New()
	tr := Transport{Playing: true, Step: 3}
	v := NewView()
	v.PreviewTrack = music.Bass
	v.Preview = []gesture.Write{{Slot: 1, Step: 3, Vel: pattern.Normal}}

	grid := pr.Project(p, tr, v)
	if got := grid[RowOf(music.Melody, 0)][3].Kind; got != KindPlayhead {
		t.Fatalf("playhead column not tagged, got %d", got)
	}
	// Preview layers above the playhead on the same column.
	if got := grid[RowOf(music.Bass, 1)][3].Kind; got != KindPreview {
		t.Fatalf("preview should be above playhead, got %d", got)
	}

	// Stopped transport shows no playhead.
	grid = pr.Project(p, Transport{}, NewView())
	if got := grid[RowOf(music.Melody, 0)][3].Kind; got == KindPlayhead {
		t.Fatal("stopped transport must not tint a playhead")
	}
}

func TestTooltipIsTopmost(t *testing.T) {
	pr := testProjector()
	p := pattern.New().SetCell(music.Melody, music.Melody.RowSpan()-1, 0, pattern.Accent)
	v := NewView()
	v.HoverRow = RowOf(music.Melody, music.Melody.RowSpan()-1)
	v.HoverCol = 0
	grid := pr.Project(p, Transport{Playing: true, Step: 0}, v)
	if got := grid[v.HoverRow][0].Kind; got != KindTooltip {
		t.Fatalf("tooltip not topmost, got %d", got)
	}
}
