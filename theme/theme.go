package theme

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"

	"gridstroke/music"
)

type Theme struct {
	Palette *Palette
	Symbols Symbols
}

type Symbols struct {
	CellEmpty    rune // · empty cell
	CellNote     rune // ● committed note
	CellSustain  rune // ─ sustain continuation
	CellGhost    rune // ∙ ghost note from another track
	CellPlayhead rune // ▶ playhead column marker
	CellPreview  rune // ◦ live gesture preview
	CellTooltip  rune // ◈ hovered cell
}

func New(palette *Palette) *Theme {
	return &Theme{
		Palette: palette,
		Symbols: Symbols{
			CellEmpty:    '·',
			CellNote:     '●',
			CellSustain:  '─',
			CellGhost:    '∙',
			CellPlayhead: '▶',
			CellPreview:  '◦',
			CellTooltip:  '◈',
		},
	}
}

// Color roles mapped to palette positions (0-1)
const (
	RoleBG       = 0.0
	RoleSurface  = 0.08
	RoleMuted    = 0.2
	RoleFG       = 0.45
	RoleAccent   = 0.55
	RolePlayhead = 0.65
	RolePreview  = 0.8
	RoleWarning  = 0.9
	RoleSuccess  = 1.0
)

// Track note colors, spread across the warm half of the palette so the four
// lanes stay distinguishable.
var trackRoles = [music.NumTracks]float64{
	music.Melody: 0.95,
	music.Chords: 0.75,
	music.Bass:   0.55,
	music.Rhythm: 0.35,
}

// TrackColor returns a track's committed-note color.
func (t *Theme) TrackColor(track music.Track) colorful.Color {
	if track < 0 || track >= music.NumTracks {
		return t.Colorful(RoleFG)
	}
	return t.Colorful(trackRoles[track])
}

// Style helpers

func (t *Theme) BG() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleBG))
}

func (t *Theme) FG() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleFG))
}

func (t *Theme) Accent() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleAccent))
}

func (t *Theme) Muted() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleMuted))
}

func (t *Theme) Warning() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleWarning))
}

func (t *Theme) Success() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleSuccess))
}

// Color returns lipgloss color for any normalized value 0-1
func (t *Theme) Color(norm float64) lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(norm))
}

// RGB returns raw RGB for any normalized value (for LED controllers)
func (t *Theme) RGB(norm float64) RGB {
	return t.Palette.Lookup(norm)
}

// Colorful returns the palette color as a go-colorful value for blending.
func (t *Theme) Colorful(norm float64) colorful.Color {
	return ToColorful(t.Palette.Lookup(norm))
}

// ToColorful converts a palette RGB to a go-colorful value.
func ToColorful(c RGB) colorful.Color {
	return colorful.Color{
		R: float64(c[0]) / 255,
		G: float64(c[1]) / 255,
		B: float64(c[2]) / 255,
	}
}

// ToRGB converts a go-colorful value back to a clamped palette RGB.
func ToRGB(c colorful.Color) RGB {
	c = c.Clamped()
	return RGB{uint8(c.R*255 + 0.5), uint8(c.G*255 + 0.5), uint8(c.B*255 + 0.5)}
}

func rgbToLipgloss(c RGB) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2]))
}

// LipglossFor converts any go-colorful value to a lipgloss color.
func LipglossFor(c colorful.Color) lipgloss.Color {
	return rgbToLipgloss(ToRGB(c))
}
