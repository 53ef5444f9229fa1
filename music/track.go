package music

// NumSlots is the pitch-slot capacity of every track: 12 chromatic rows for
// melodic tracks, 12 drum slots for the rhythm track.
const NumSlots = 12

// Track identifies one of the four sequencer lanes.
type Track int

const (
	Melody Track = iota
	Chords
	Bass
	Rhythm
	NumTracks
)

var trackNames = [NumTracks]string{"melody", "chords", "bass", "rhythm"}

func (t Track) String() string {
	if t < 0 || t >= NumTracks {
		return "unknown"
	}
	return trackNames[t]
}

// Tracks returns all tracks in display order (melody on top).
func Tracks() [NumTracks]Track {
	return [NumTracks]Track{Melody, Chords, Bass, Rhythm}
}

// RowSpan is the track's fixed visual height in grid rows. Rows outside the
// span clamp to the nearest valid slot when mapped to pitch.
func (t Track) RowSpan() int {
	switch t {
	case Melody, Rhythm:
		return 12
	case Chords:
		return 8
	case Bass:
		return 6
	}
	return 0
}

// BaseOctave orders the melodic tracks in register: melody highest, then
// chords, then bass. Rhythm has no pitch register.
func (t Track) BaseOctave() int {
	switch t {
	case Melody:
		return 5
	case Chords:
		return 4
	case Bass:
		return 2
	}
	return 0
}

// Melodic reports whether the track carries pitched material.
func (t Track) Melodic() bool {
	return t == Melody || t == Chords || t == Bass
}

// GM drum notes for the 12 rhythm slots, low slots first.
var drumNotes = [NumSlots]uint8{
	36, // Kick
	38, // Snare
	42, // Closed HH
	46, // Open HH
	39, // Clap
	37, // Rimshot
	41, // Low Tom
	45, // High Tom
	49, // Crash
	51, // Ride
	56, // Cowbell
	54, // Tambourine
}

// KickSlot is the rhythm slot carrying the kick drum.
const KickSlot = 0

// DrumNote maps a rhythm slot to its General MIDI note. Out-of-range slots
// clamp to the nearest valid slot.
func DrumNote(slot int) uint8 {
	if slot < 0 {
		slot = 0
	}
	if slot >= NumSlots {
		slot = NumSlots - 1
	}
	return drumNotes[slot]
}
