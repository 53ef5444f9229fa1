// Package projector turns a pattern snapshot plus transient UI state into a
// renderable color grid. The projection is a pure function: host and viewer
// must produce identical grids from identical inputs, so nothing here reads
// clocks, randomness, or mutable globals.
package projector

import (
	"github.com/lucasb-eyer/go-colorful"

	"gridstroke/gesture"
	"gridstroke/music"
	"gridstroke/pattern"
	"gridstroke/theme"
)

// Kind tags a cell with the topmost layer that colored it, which doubles as
// the interaction tag for hit-testing.
type Kind int

const (
	KindEmpty Kind = iota
	KindGhost
	KindNote
	KindSustain
	KindPlayhead
	KindPreview
	KindTooltip
)

// Cell is one renderable grid cell.
type Cell struct {
	Color colorful.Color
	Kind  Kind
	Alpha float64 // alpha of the note layer, 0 when no note
	Track music.Track
	Slot  int
	Step  int
}

// Transport is the playback state the projector overlays.
type Transport struct {
	Playing bool
	Step    int
}

// View is the transient UI state layered over the pattern.
type View struct {
	ActiveTrack  music.Track
	Ghost        bool
	Preview      []gesture.Write // live uncommitted gesture
	PreviewTrack music.Track
	HoverRow     int // -1 when no tooltip hover
	HoverCol     int
}

// NewView returns a view with no hover and ghosts enabled.
func NewView() View {
	return View{Ghost: true, HoverRow: -1, HoverCol: -1}
}

// Rows is the total grid height: the tracks' row spans stacked in display
// order, melody on top.
func Rows() int {
	n := 0
	for _, t := range music.Tracks() {
		n += t.RowSpan()
	}
	return n
}

// RowInfo maps a grid row to its track and pitch slot. Within a track block
// the top row is the highest slot.
func RowInfo(row int) (music.Track, int, bool) {
	for _, t := range music.Tracks() {
		span := t.RowSpan()
		if row < span {
			return t, span - 1 - row, true
		}
		row -= span
	}
	return 0, 0, false
}

// RowOf is the inverse of RowInfo.
func RowOf(track music.Track, slot int) int {
	row := 0
	for _, t := range music.Tracks() {
		if t == track {
			return row + t.RowSpan() - 1 - slot
		}
		row += t.RowSpan()
	}
	return -1
}

// Projector binds a theme to the projection. The theme is read-only.
type Projector struct {
	Theme *theme.Theme
}

func New(th *theme.Theme) *Projector {
	return &Projector{Theme: th}
}

// Project renders the full grid. Layer order, later overriding earlier:
// background, out-of-scale dimming, ghost notes, committed notes, playhead
// tint, live gesture preview, tooltip glyph.
func (pr *Projector) Project(p pattern.Pattern, tr Transport, v View) [][]Cell {
	rows := Rows()
	grid := make([][]Cell, rows)

	preview := make(map[[2]int]pattern.Velocity, len(v.Preview))
	for _, w := range v.Preview {
		preview[[2]int{w.Slot, w.Step}] = w.Vel
	}

	for row := 0; row < rows; row++ {
		track, slot, _ := RowInfo(row)
		lane := p.Lanes[track]
		inScale := pr.rowInScale(p, track, slot)
		line := make([]Cell, p.Length)

		for step := 0; step < p.Length; step++ {
			cell := Cell{Track: track, Slot: slot, Step: step, Kind: KindEmpty}

			// Base background, dimmed when the row is out of scale.
			bg := pr.Theme.Colorful(theme.RoleBG)
			if track == v.ActiveTrack {
				bg = pr.Theme.Colorful(theme.RoleSurface)
			}
			if !inScale {
				bg = bg.BlendRgb(colorful.Color{}, 0.5)
			}
			cell.Color = bg

			vel := p.Cell(track, slot, step)

			// Ghost notes: other unmuted tracks' content at the same
			// step/pitch, only where this cell is empty.
			if vel == pattern.Off && v.Ghost && pr.ghostAt(p, track, slot, step) {
				cell.Color = bg.BlendRgb(pr.Theme.Colorful(theme.RoleMuted), 0.35)
				cell.Kind = KindGhost
			}

			// Committed note, alpha scaled by velocity tier.
			if vel != pattern.Off {
				alpha := pr.noteAlpha(p, track, slot, step, vel)
				cell.Color = bg.BlendRgb(pr.Theme.TrackColor(track), alpha)
				cell.Alpha = alpha
				if vel == pattern.Sustain {
					cell.Kind = KindSustain
				} else {
					cell.Kind = KindNote
				}
			}
			if lane.Muted {
				cell.Color = cell.Color.BlendRgb(pr.Theme.Colorful(theme.RoleBG), 0.5)
			}

			// Playhead tint.
			if tr.Playing && step == tr.Step {
				cell.Color = cell.Color.BlendRgb(pr.Theme.Colorful(theme.RolePlayhead), 0.3)
				if cell.Kind == KindEmpty {
					cell.Kind = KindPlayhead
				}
			}

			// Live gesture preview.
			if track == v.PreviewTrack {
				if pv, ok := preview[[2]int{slot, step}]; ok && pv != pattern.Off {
					cell.Color = cell.Color.BlendRgb(pr.Theme.Colorful(theme.RolePreview), 0.6)
					cell.Kind = KindPreview
				}
			}

			// Tooltip glyph, always topmost.
			if row == v.HoverRow && step == v.HoverCol {
				cell.Color = cell.Color.BlendRgb(pr.Theme.Colorful(theme.RoleSuccess), 0.5)
				cell.Kind = KindTooltip
			}

			line[step] = cell
		}
		grid[row] = line
	}
	return grid
}

// noteAlpha maps a velocity tier to its render alpha. Sustain cells use the
// two-phase fade over their span.
func (pr *Projector) noteAlpha(p pattern.Pattern, track music.Track, slot, step int, vel pattern.Velocity) float64 {
	switch vel {
	case pattern.Accent:
		return 1.0
	case pattern.Normal:
		return 0.75
	case pattern.Sustain:
		k, n := sustainPosition(p, track, slot, step)
		return SustainAlpha(k, n)
	}
	return 0
}

// sustainPosition locates a continuation cell inside its sustain span:
// k is the cell's index from the anchor, n the span length in cells.
func sustainPosition(p pattern.Pattern, track music.Track, slot, step int) (k, n int) {
	start := step
	for start > 0 && p.Cell(track, slot, start) == pattern.Sustain {
		start--
	}
	// start now sits on the anchor (or on step 0 of an orphaned run).
	k = step - start
	n = k + 1 + p.SustainRun(track, slot, step)
	return k, n
}

// SustainAlpha is the two-phase fade: near-full alpha through the first 40%
// of the span, then a linear decay to a floor of 0.25 at the final cell.
func SustainAlpha(k, n int) float64 {
	const (
		holdAlpha  = 0.9
		floorAlpha = 0.25
		holdFrac   = 0.4
	)
	if n <= 1 || k <= 0 {
		return holdAlpha
	}
	pos := float64(k) / float64(n-1)
	if pos <= holdFrac {
		return holdAlpha
	}
	return holdAlpha - (holdAlpha-floorAlpha)*(pos-holdFrac)/(1-holdFrac)
}

// ghostAt reports whether any other unmuted track has content at the same
// step whose pitch class matches this row's pitch class.
func (pr *Projector) ghostAt(p pattern.Pattern, track music.Track, slot, step int) bool {
	pcHere := music.PitchClassForRow(slot, track.RowSpan(), p.Lanes[track].Interval, p.Scale)
	for _, other := range music.Tracks() {
		if other == track || p.Lanes[other].Muted {
			continue
		}
		for s := 0; s < music.NumSlots; s++ {
			if p.Cell(other, s, step) == pattern.Off {
				continue
			}
			if other == music.Rhythm || track == music.Rhythm {
				// No pitch identity across the rhythm boundary; match slots.
				if s == slot {
					return true
				}
				continue
			}
			pcOther := music.PitchClassForRow(s, other.RowSpan(), p.Lanes[other].Interval, p.Scale)
			if pcOther == pcHere {
				return true
			}
		}
	}
	return false
}

// rowInScale reports whether the row's pitch class is a scale member.
// Rhythm rows and chromatic-mode rows are never dimmed for scale.
func (pr *Projector) rowInScale(p pattern.Pattern, track music.Track, slot int) bool {
	if track == music.Rhythm {
		return true
	}
	mode := p.Lanes[track].Interval
	if mode != music.Chromatic {
		return true // scale walks only produce in-scale classes
	}
	return p.Scale.Contains(music.PitchClassForRow(slot, track.RowSpan(), mode, p.Scale))
}
