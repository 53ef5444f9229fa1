package music

import "testing"

func TestPitchClassForRowDeterministic(t *testing.T) {
	scale := Scale{Root: 2, Mode: Minor}
	first := PitchClassForRow(5, 12, Fifths, scale)
	for i := 0; i < 100; i++ {
		if got := PitchClassForRow(5, 12, Fifths, scale); got != first {
			t.Fatalf("call %d: got %d, want %d", i, got, first)
		}
	}
}

func TestPitchClassForRowChromatic(t *testing.T) {
	scale := Scale{Root: 7, Mode: Major}
	for row := 0; row < 12; row++ {
		if got := PitchClassForRow(row, 12, Chromatic, scale); got != row {
			t.Errorf("row %d: got %d, want linear position %d", row, got, row)
		}
	}
}

func TestPitchClassForRowScaleWalk(t *testing.T) {
	cases := []struct {
		name string
		mode IntervalMode
		row  int
		want int
	}{
		// C major thirds: rows walk degrees 0,2,4,6,1,3,... -> C E G B D F
		{"thirds row0", Thirds, 0, 0},
		{"thirds row1", Thirds, 1, 4},
		{"thirds row2", Thirds, 2, 7},
		{"thirds row3", Thirds, 3, 11},
		{"thirds row4 wraps", Thirds, 4, 2},
		// C major fourths: degrees 0,3,6,2,... -> C F B E
		{"fourths row1", Fourths, 1, 5},
		{"fourths row2", Fourths, 2, 11},
		{"fourths row3 wraps", Fourths, 3, 4},
		// Fifths skip 4 degrees: C G D ...
		{"fifths row1", Fifths, 1, 7},
		{"fifths row2 wraps", Fifths, 2, 2},
	}
	scale := Scale{Root: 0, Mode: Major}
	for _, c := range cases {
		if got := PitchClassForRow(c.row, 12, c.mode, scale); got != c.want {
			t.Errorf("%s: got %d, want %d", c.name, got, c.want)
		}
	}
}

func TestPitchClassForRowTransposesByRoot(t *testing.T) {
	base := Scale{Root: 0, Mode: Major}
	up := Scale{Root: 3, Mode: Major}
	for row := 0; row < 12; row++ {
		want := (PitchClassForRow(row, 12, Thirds, base) + 3) % 12
		if got := PitchClassForRow(row, 12, Thirds, up); got != want {
			t.Errorf("row %d: got %d, want %d", row, got, want)
		}
	}
}

func TestPitchClassForRowClampsOutOfRange(t *testing.T) {
	scale := Scale{Root: 0, Mode: Pentatonic}
	low := PitchClassForRow(0, 8, Thirds, scale)
	high := PitchClassForRow(7, 8, Thirds, scale)
	if got := PitchClassForRow(-3, 8, Thirds, scale); got != low {
		t.Errorf("below range: got %d, want %d", got, low)
	}
	if got := PitchClassForRow(20, 8, Thirds, scale); got != high {
		t.Errorf("above range: got %d, want %d", got, high)
	}
}

func TestPitchForRowRegisterOrder(t *testing.T) {
	scale := Scale{Root: 0, Mode: Major}
	mel := PitchForRow(Melody, 0, Thirds, scale)
	cho := PitchForRow(Chords, 0, Thirds, scale)
	bas := PitchForRow(Bass, 0, Thirds, scale)
	if !(mel > cho && cho > bas) {
		t.Fatalf("register order wrong: melody=%d chords=%d bass=%d", mel, cho, bas)
	}
}

func TestPitchForRowOctaveCarry(t *testing.T) {
	scale := Scale{Root: 0, Mode: Major}
	prev := PitchForRow(Melody, 0, Thirds, scale)
	for row := 1; row < Melody.RowSpan(); row++ {
		p := PitchForRow(Melody, row, Thirds, scale)
		if p <= prev {
			t.Fatalf("row %d: pitch %d not above previous %d", row, p, prev)
		}
		prev = p
	}
}

func TestSlotForPitchClassPrefersNearest(t *testing.T) {
	scale := Scale{Root: 0, Mode: Major}
	// Chromatic rows are linear, so pc 7 appears exactly at row 7.
	if got := SlotForPitchClass(Melody, Chromatic, scale, 7, 0); got != 7 {
		t.Fatalf("got slot %d, want 7", got)
	}
	// Pitch class outside a pentatonic walk is unreachable.
	if got := SlotForPitchClass(Bass, Thirds, Scale{Root: 0, Mode: Pentatonic}, 1, 0); got != -1 {
		t.Fatalf("expected -1 for unreachable pitch class, got %d", got)
	}
}

func TestScaleSnap(t *testing.T) {
	scale := Scale{Root: 0, Mode: Major}
	cases := []struct{ in, want int }{
		{0, 0},
		{1, 0}, // ties resolve downward
		{6, 5},
		{10, 9},
	}
	for _, c := range cases {
		if got := scale.Snap(c.in); got != c.want {
			t.Errorf("Snap(%d) = %d, want %d", c.in, got, c.want)
		}
	}
}
