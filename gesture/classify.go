package gesture

import (
	"gridstroke/music"
	"gridstroke/pattern"
)

// Classify turns a completed stroke into an ordered list of cell writes for
// the stroke's track. Pure: identical stroke and context always produce the
// same writes. Out-of-range candidates are dropped, and a stroke that
// elaborates to nothing returns an empty list for the caller to drop.
func Classify(s Stroke, ctx Context) []Write {
	if ctx.Length <= 0 {
		return nil
	}
	var writes []Write
	switch s.FamilyOf() {
	case FamilyTap:
		writes = classifyTap(s, ctx)
	case FamilyHorizontal:
		writes = classifyHorizontal(s, ctx)
	case FamilyVertical:
		writes = classifyVertical(s, ctx)
	default:
		writes = classifyDiagonal(s, ctx)
	}
	return filterWrites(s.Track, ctx, writes)
}

// classifyTap elaborates a single touched cell per track idiom.
func classifyTap(s Stroke, ctx Context) []Write {
	tier := s.Tier()
	switch s.Track {
	case music.Rhythm:
		// Tapped hit plus an echo two steps later.
		return []Write{
			{Slot: s.StartSlot, Step: s.StartStep, Vel: tier},
			{Slot: s.StartSlot, Step: (s.StartStep + 2) % ctx.Length, Vel: pattern.Normal},
		}
	case music.Bass:
		root := rowPC(s.Track, s.StartSlot, ctx)
		writes := []Write{{Slot: s.StartSlot, Step: s.StartStep, Vel: tier}}
		if fifth := slotFor(s.Track, ctx, root+7, s.StartSlot); fifth >= 0 && fifth != s.StartSlot {
			writes = append(writes, Write{Slot: fifth, Step: s.StartStep, Vel: tier})
		}
		return writes
	case music.Chords:
		return chordWrites(s.Track, ctx, s.StartSlot, s.StartStep, tier, ctx.Scale.Mode.TriadOffsets())
	default: // melody snaps to the nearest in-scale pitch class
		snapped := ctx.Scale.Snap(rowPC(s.Track, s.StartSlot, ctx))
		slot := slotFor(s.Track, ctx, snapped, s.StartSlot)
		if slot < 0 {
			slot = s.StartSlot
		}
		return []Write{{Slot: slot, Step: s.StartStep, Vel: tier}}
	}
}

func classifyHorizontal(s Stroke, ctx Context) []Write {
	dir := sign(s.EndStep - s.StartStep)
	if dir == 0 {
		dir = 1
	}
	span := abs(s.EndStep-s.StartStep) + 1

	// An accented horizontal stroke on a pitched track is a sustain: a
	// tier-2 anchor, then continuation cells across the stroke direction.
	if s.Tier() == pattern.Accent && s.Track != music.Rhythm {
		anchorSlots := []int{s.StartSlot}
		if s.Track == music.Chords {
			anchorSlots = chordSlots(s.Track, ctx, s.StartSlot, ctx.Scale.Mode.TriadOffsets())
		}
		var writes []Write
		for _, slot := range anchorSlots {
			writes = append(writes, Write{Slot: slot, Step: s.StartStep, Vel: pattern.Accent})
			for i := 1; i < span; i++ {
				writes = append(writes, Write{Slot: slot, Step: s.StartStep + i*dir, Vel: pattern.Sustain})
			}
		}
		return writes
	}

	switch s.Track {
	case music.Chords:
		// Arpeggiated seventh-chord cascade across the span.
		root := rowPC(s.Track, s.StartSlot, ctx)
		tones := ctx.Scale.Mode.SeventhOffsets()
		var writes []Write
		for i := 0; i < span; i++ {
			slot := slotFor(s.Track, ctx, root+tones[i%len(tones)], s.StartSlot)
			if slot < 0 {
				continue
			}
			writes = append(writes, Write{Slot: slot, Step: s.StartStep + i*dir, Vel: pattern.Normal})
		}
		return writes
	case music.Bass:
		// Walking pattern cycling root, fifth, third, fifth.
		root := rowPC(s.Track, s.StartSlot, ctx)
		third := ctx.Scale.Mode.TriadOffsets()[1]
		cycle := [4]int{0, 7, third, 7}
		var writes []Write
		for i := 0; i < span; i++ {
			slot := slotFor(s.Track, ctx, root+cycle[i%4], s.StartSlot)
			if slot < 0 {
				continue
			}
			writes = append(writes, Write{Slot: slot, Step: s.StartStep + i*dir, Vel: pattern.Normal})
		}
		return writes
	case music.Rhythm:
		// Roll: both ends accented, interior hits normal.
		var writes []Write
		for i := 0; i < span; i++ {
			vel := pattern.Normal
			if i == 0 || i == span-1 {
				vel = pattern.Accent
			}
			writes = append(writes, Write{Slot: s.StartSlot, Step: s.StartStep + i*dir, Vel: vel})
		}
		return writes
	default:
		// Melody scale run; direction comes from the stroke's vertical sign.
		vdir := sign(s.EndSlot - s.StartSlot)
		if vdir == 0 {
			vdir = 1
		}
		top := s.Track.RowSpan() - 1
		var writes []Write
		for i := 0; i < span; i++ {
			slot := clamp(s.StartSlot+i*vdir, 0, top)
			writes = append(writes, Write{Slot: slot, Step: s.StartStep + i*dir, Vel: pattern.Normal})
		}
		return writes
	}
}

func classifyVertical(s Stroke, ctx Context) []Write {
	tier := s.Tier()
	lo, hi := s.StartSlot, s.EndSlot
	if lo > hi {
		lo, hi = hi, lo
	}
	switch s.Track {
	case music.Rhythm:
		// Filled multi-row span at the same step.
		var writes []Write
		for slot := lo; slot <= hi; slot++ {
			writes = append(writes, Write{Slot: slot, Step: s.StartStep, Vel: tier})
		}
		return writes
	case music.Bass:
		root := rowPC(s.Track, s.StartSlot, ctx)
		writes := []Write{{Slot: s.StartSlot, Step: s.StartStep, Vel: tier}}
		if fifth := slotFor(s.Track, ctx, root+7, s.StartSlot); fifth >= 0 && fifth != s.StartSlot {
			writes = append(writes, Write{Slot: fifth, Step: s.StartStep, Vel: tier})
		}
		return writes
	default:
		// Melody/chords: chord tones stacked through the stroke's span.
		root := rowPC(s.Track, s.StartSlot, ctx)
		tones := ctx.Scale.Mode.SeventhOffsets()
		var writes []Write
		for _, off := range tones {
			slot := slotFor(s.Track, ctx, root+off, s.StartSlot)
			if slot < lo || slot > hi {
				continue
			}
			writes = append(writes, Write{Slot: slot, Step: s.StartStep, Vel: tier})
		}
		if len(writes) == 0 {
			writes = append(writes, Write{Slot: s.StartSlot, Step: s.StartStep, Vel: tier})
		}
		return writes
	}
}

func classifyDiagonal(s Stroke, ctx Context) []Write {
	sdir := sign(s.EndStep - s.StartStep)
	if sdir == 0 {
		sdir = 1
	}
	n := abs(s.EndStep-s.StartStep) + 1
	top := s.Track.RowSpan() - 1
	var writes []Write
	for i := 0; i < n; i++ {
		step := s.StartStep + i*sdir
		slot := lerpRound(s.StartSlot, s.EndSlot, i, n-1)
		slot = clamp(slot, 0, top)
		if s.Track == music.Melody || s.Track == music.Chords {
			// Phrase: walk the interpolated rows through in-scale degrees.
			snapped := ctx.Scale.Snap(rowPC(s.Track, slot, ctx))
			if snap := slotFor(s.Track, ctx, snapped, slot); snap >= 0 {
				slot = snap
			}
		}
		writes = append(writes, Write{Slot: slot, Step: step, Vel: pattern.Normal})
	}
	return writes
}

// chordWrites expands a chord at one step into writes for each reachable tone.
func chordWrites(track music.Track, ctx Context, rootSlot, step int, vel pattern.Velocity, tones [3]int) []Write {
	var writes []Write
	for _, slot := range chordSlots(track, ctx, rootSlot, tones) {
		writes = append(writes, Write{Slot: slot, Step: step, Vel: vel})
	}
	return writes
}

// chordSlots maps chord-tone pitch classes to distinct slots near the root.
func chordSlots(track music.Track, ctx Context, rootSlot int, tones [3]int) []int {
	root := rowPC(track, rootSlot, ctx)
	var slots []int
	seen := map[int]bool{}
	for _, off := range tones {
		slot := slotFor(track, ctx, root+off, rootSlot)
		if slot < 0 || seen[slot] {
			continue
		}
		seen[slot] = true
		slots = append(slots, slot)
	}
	return slots
}

func rowPC(track music.Track, slot int, ctx Context) int {
	return music.PitchClassForRow(slot, track.RowSpan(), ctx.Interval, ctx.Scale)
}

func slotFor(track music.Track, ctx Context, pc, near int) int {
	return music.SlotForPitchClass(track, ctx.Interval, ctx.Scale, pc, near)
}

// filterWrites drops candidates outside the track's rows or the pattern
// length; invalid input never errors.
func filterWrites(track music.Track, ctx Context, in []Write) []Write {
	out := in[:0]
	for _, w := range in {
		if w.Slot < 0 || w.Slot >= track.RowSpan() || w.Slot >= music.NumSlots {
			continue
		}
		if w.Step < 0 || w.Step >= ctx.Length {
			continue
		}
		out = append(out, w)
	}
	return out
}

// lerpRound interpolates a/b over i of n with round-half-away behavior that
// is symmetric for descending strokes, keeping host and viewer previews
// identical.
func lerpRound(a, b, i, n int) int {
	if n <= 0 {
		return a
	}
	num := a*(n-i) + b*i
	if num >= 0 {
		return (2*num + n) / (2 * n)
	}
	return -((-2*num + n) / (2 * n))
}
