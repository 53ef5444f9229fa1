package engine

import (
	"gridstroke/gesture"
	"gridstroke/music"
)

// Intent is one user-initiated mutation request. Intents from every input
// surface (keys, mouse strokes, grid pads, session deltas) funnel into the
// engine loop, which applies them one at a time.
type Intent interface{ isIntent() }

// TogglePlay flips the transport between stopped and playing.
type TogglePlay struct{}

// Undo rewinds one committed snapshot.
type Undo struct{}

// Redo replays one undone snapshot.
type Redo struct{}

// ClearAll empties every lane, keeping tempo, scale and length.
type ClearAll struct{}

// CommitStroke classifies a finished stroke against the current pattern and
// commits its writes as one undoable edit.
type CommitStroke struct{ Stroke gesture.Stroke }

// SetRoot transposes the scale root (0..11).
type SetRoot struct{ Root int }

// SetScaleMode switches the scale quality.
type SetScaleMode struct{ Mode music.ScaleMode }

// SetIntervalMode changes the active track's row-to-interval mapping.
type SetIntervalMode struct{ Mode music.IntervalMode }

// ToggleMute flips a track's mute flag.
type ToggleMute struct{ Track music.Track }

// ToggleSolo flips a track's solo flag.
type ToggleSolo struct{ Track music.Track }

// SetTempo sets the BPM (clamped by the pattern).
type SetTempo struct{ BPM int }

// NudgeTempo adjusts the BPM by a delta.
type NudgeTempo struct{ Delta int }

// SetLength resizes the pattern (snapped to a multiple of four steps).
type SetLength struct{ Steps int }

// SelectTrack changes which track receives strokes.
type SelectTrack struct{ Track music.Track }

// ToggleGhost flips the cross-track ghost overlay.
type ToggleGhost struct{}

// SavePattern writes the current pattern to a named snapshot file.
type SavePattern struct{ Name string }

// LoadPattern replaces the current pattern from a named snapshot file. The
// load itself is committed, so it can be undone.
type LoadPattern struct{ Name string }

func (TogglePlay) isIntent()      {}
func (Undo) isIntent()            {}
func (Redo) isIntent()            {}
func (ClearAll) isIntent()        {}
func (CommitStroke) isIntent()    {}
func (SetRoot) isIntent()         {}
func (SetScaleMode) isIntent()    {}
func (SetIntervalMode) isIntent() {}
func (ToggleMute) isIntent()      {}
func (ToggleSolo) isIntent()      {}
func (SetTempo) isIntent()        {}
func (NudgeTempo) isIntent()      {}
func (SetLength) isIntent()       {}
func (SelectTrack) isIntent()     {}
func (ToggleGhost) isIntent()     {}
func (SavePattern) isIntent()     {}
func (LoadPattern) isIntent()     {}
