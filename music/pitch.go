package music

// PitchClassForRow maps a row inside a track's grid to a pitch class.
//
// Chromatic mode treats the row as its linear position in 12-tone space.
// Every other interval mode walks the scale's degree list, skipping
// mode.Skip() degrees per row and wrapping around the scale length, then
// transposes by the scale root. Pure and deterministic: host and viewer
// must project identical pitches from identical inputs.
func PitchClassForRow(localRow, trackHeight int, mode IntervalMode, scale Scale) int {
	localRow = clampRow(localRow, trackHeight)
	if mode == Chromatic {
		return localRow % 12
	}
	degrees := scale.Mode.Degrees()
	idx := localRow * mode.Skip()
	return (degrees[idx%len(degrees)] + scale.Root) % 12
}

// PitchForRow extends PitchClassForRow with the track's base octave.
// Wrapping past the end of the degree list carries into the next octave so
// wide interval modes keep ascending instead of folding back down.
func PitchForRow(track Track, localRow int, mode IntervalMode, scale Scale) int {
	height := track.RowSpan()
	localRow = clampRow(localRow, height)
	pc := PitchClassForRow(localRow, height, mode, scale)

	var carry int
	if mode == Chromatic {
		carry = localRow / 12
	} else {
		carry = localRow * mode.Skip() / len(scale.Mode.Degrees())
	}
	return (track.BaseOctave()+carry)*12 + pc
}

// SlotForPitchClass finds the slot within a track whose row maps to the
// given pitch class, preferring the slot closest to near. Returns -1 when
// no row produces the pitch class under the current mode.
func SlotForPitchClass(track Track, mode IntervalMode, scale Scale, pc, near int) int {
	height := track.RowSpan()
	pc = ((pc % 12) + 12) % 12
	best, bestDist := -1, 0
	for row := 0; row < height; row++ {
		if PitchClassForRow(row, height, mode, scale) != pc {
			continue
		}
		dist := row - near
		if dist < 0 {
			dist = -dist
		}
		if best == -1 || dist < bestDist {
			best, bestDist = row, dist
		}
	}
	return best
}

func clampRow(row, height int) int {
	if row < 0 {
		return 0
	}
	if height > 0 && row >= height {
		return height - 1
	}
	return row
}
