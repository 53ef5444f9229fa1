package music

// ScaleMode selects the degree list a scale is built from.
type ScaleMode int

const (
	Major ScaleMode = iota
	Minor
	Pentatonic
)

var scaleModeNames = map[ScaleMode]string{
	Major:      "major",
	Minor:      "minor",
	Pentatonic: "pentatonic",
}

func (m ScaleMode) String() string {
	if s, ok := scaleModeNames[m]; ok {
		return s
	}
	return "major"
}

// ParseScaleMode maps a mode name to its ScaleMode, defaulting to major.
func ParseScaleMode(s string) ScaleMode {
	for m, name := range scaleModeNames {
		if name == s {
			return m
		}
	}
	return Major
}

// Next cycles through the scale modes.
func (m ScaleMode) Next() ScaleMode {
	switch m {
	case Major:
		return Minor
	case Minor:
		return Pentatonic
	default:
		return Major
	}
}

var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// NoteName returns the sharp-spelled name of a pitch class.
func NoteName(pc int) string {
	return noteNames[((pc%12)+12)%12]
}

var (
	majorDegrees = []int{0, 2, 4, 5, 7, 9, 11}
	minorDegrees = []int{0, 2, 3, 5, 7, 8, 10}
	pentaDegrees = []int{0, 2, 4, 7, 9}
)

// Degrees returns the semitone offsets of the mode relative to the root.
// The returned slice is shared; callers must not modify it.
func (m ScaleMode) Degrees() []int {
	switch m {
	case Minor:
		return minorDegrees
	case Pentatonic:
		return pentaDegrees
	default:
		return majorDegrees
	}
}

// Scale pairs a root pitch class with a mode.
type Scale struct {
	Root int
	Mode ScaleMode
}

// Contains reports whether the pitch class is a scale member.
func (s Scale) Contains(pc int) bool {
	rel := ((pc-s.Root)%12 + 12) % 12
	for _, d := range s.Mode.Degrees() {
		if d == rel {
			return true
		}
	}
	return false
}

// Snap returns the in-scale pitch class nearest to pc. Ties resolve
// downward so snapping is deterministic.
func (s Scale) Snap(pc int) int {
	pc = ((pc % 12) + 12) % 12
	if s.Contains(pc) {
		return pc
	}
	for d := 1; d <= 6; d++ {
		if down := ((pc-d)%12 + 12) % 12; s.Contains(down) {
			return down
		}
		if up := (pc + d) % 12; s.Contains(up) {
			return up
		}
	}
	return pc
}

// TriadOffsets returns the semitone offsets of the mode's tonic triad.
// Pentatonic shares the major triad.
func (m ScaleMode) TriadOffsets() [3]int {
	if m == Minor {
		return [3]int{0, 3, 7}
	}
	return [3]int{0, 4, 7}
}

// SeventhOffsets returns the tonic seventh-chord offsets for the mode.
func (m ScaleMode) SeventhOffsets() [4]int {
	if m == Minor {
		return [4]int{0, 3, 7, 10}
	}
	return [4]int{0, 4, 7, 11}
}

// IntervalMode is the scale-degree skip used to assign pitch classes to
// adjacent rows. Chromatic bypasses the scale entirely.
type IntervalMode int

const (
	Thirds IntervalMode = iota
	Fourths
	Fifths
	Sevenths
	Ninths
	Chromatic
)

var intervalModeNames = map[IntervalMode]string{
	Thirds:    "thirds",
	Fourths:   "fourths",
	Fifths:    "fifths",
	Sevenths:  "sevenths",
	Ninths:    "ninths",
	Chromatic: "chromatic",
}

func (m IntervalMode) String() string {
	if s, ok := intervalModeNames[m]; ok {
		return s
	}
	return "thirds"
}

// ParseIntervalMode maps a mode name to its IntervalMode, defaulting to thirds.
func ParseIntervalMode(s string) IntervalMode {
	for m, name := range intervalModeNames {
		if name == s {
			return m
		}
	}
	return Thirds
}

// Skip returns the number of scale degrees stepped per row.
func (m IntervalMode) Skip() int {
	switch m {
	case Fourths:
		return 3
	case Fifths:
		return 4
	case Sevenths:
		return 6
	case Ninths:
		return 8
	case Chromatic:
		return 1
	default:
		return 2
	}
}

// Next cycles to the following interval mode, wrapping after chromatic.
func (m IntervalMode) Next() IntervalMode {
	return (m + 1) % (Chromatic + 1)
}
