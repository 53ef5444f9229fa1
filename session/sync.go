package session

import (
	"gridstroke/debug"
	"gridstroke/music"
	"gridstroke/pattern"
)

// Host fans committed writes out to viewers. Every broadcast is
// fire-and-forget: transport failures are logged at this boundary and never
// block local editing or playback.
type Host struct {
	transport Transport
}

// NewHost joins the session in the host role.
func NewHost(t Transport, code, displayName string) (*Host, error) {
	if err := t.Join(code, displayName, RoleHost); err != nil {
		return nil, err
	}
	return &Host{transport: t}, nil
}

// Close leaves the session.
func (h *Host) Close() {
	if err := h.transport.Leave(); err != nil {
		debug.Log("sync", "leave failed: %v", err)
	}
}

// CellChanged broadcasts a single committed cell write.
func (h *Host) CellChanged(track music.Track, slot, step int, vel pattern.Velocity) {
	edit := PatternEdit{
		TrackIndex: int(track),
		Step:       step,
		PitchSlot:  slot,
		Velocity:   int(vel),
		Timestamp:  nowMillis(),
	}
	if err := h.transport.BroadcastPatternEdit(edit); err != nil {
		debug.Log("sync", "pattern edit dropped: %v", err)
	}
}

// PatternReplaced broadcasts every cell of the new pattern. Used after
// undo/redo and clear, where the delta is the whole grid. It walks the full
// lane width rather than p.Length so cells hidden behind a shortened length
// mirror too and reappear in step if the host lengthens again.
func (h *Host) PatternReplaced(p pattern.Pattern) {
	for _, track := range music.Tracks() {
		for slot := 0; slot < music.NumSlots; slot++ {
			for step := 0; step < pattern.MaxSteps; step++ {
				h.CellChanged(track, slot, step, p.Lanes[track].Cells[slot][step])
			}
		}
	}
}

// SettingsChanged broadcasts length, scale and interval modes together.
func (h *Host) SettingsChanged(p pattern.Pattern) {
	s := SettingsState{
		Length:    p.Length,
		ScaleRoot: p.Scale.Root,
		ScaleMode: int(p.Scale.Mode),
	}
	for _, t := range music.Tracks() {
		s.Intervals = append(s.Intervals, int(p.Lanes[t].Interval))
	}
	if err := h.transport.BroadcastSettings(s); err != nil {
		debug.Log("sync", "settings dropped: %v", err)
	}
}

// TransportChanged broadcasts play state.
func (h *Host) TransportChanged(playing bool, step int) {
	if err := h.transport.BroadcastPlaybackState(PlaybackState{IsPlaying: playing, CurrentStep: step}); err != nil {
		debug.Log("sync", "playback state dropped: %v", err)
	}
}

// TempoChanged broadcasts the BPM.
func (h *Host) TempoChanged(bpm int) {
	if err := h.transport.BroadcastTempo(TempoState{BPM: bpm}); err != nil {
		debug.Log("sync", "tempo dropped: %v", err)
	}
}

// TrackChanged broadcasts one track's mute/solo flags.
func (h *Host) TrackChanged(track music.Track, muted, solo bool) {
	state := TrackState{TrackIndex: int(track), Muted: muted, Solo: solo}
	if err := h.transport.BroadcastTrackState(state); err != nil {
		debug.Log("sync", "track state dropped: %v", err)
	}
}

// Delta is an inbound host broadcast, decoded for the engine loop.
type Delta interface{ delta() }

// EditDelta applies one cell write without a history push.
type EditDelta struct {
	Track music.Track
	Slot  int
	Step  int
	Vel   pattern.Velocity
}

// TransportDelta replaces playback state wholesale.
type TransportDelta struct {
	Playing bool
	Step    int
}

// TempoDelta replaces the BPM wholesale.
type TempoDelta struct{ BPM int }

// TrackDelta replaces one track's mute/solo wholesale.
type TrackDelta struct {
	Track music.Track
	Muted bool
	Solo  bool
}

// SettingsDelta replaces length, scale and interval modes wholesale.
type SettingsDelta struct {
	Length    int
	Scale     music.Scale
	Intervals [music.NumTracks]music.IntervalMode
}

func (EditDelta) delta()      {}
func (TransportDelta) delta() {}
func (TempoDelta) delta()     {}
func (TrackDelta) delta()     {}
func (SettingsDelta) delta()  {}

// Viewer subscribes to host broadcasts and funnels them into one channel so
// the engine loop can serialize their application. Malformed deltas are
// dropped here with local state untouched.
type Viewer struct {
	transport Transport
	deltas    chan Delta
}

// NewViewer joins the session in the viewer role. A viewer joining
// mid-session starts blank until the next broadcast.
func NewViewer(t Transport, code, displayName string) (*Viewer, error) {
	if err := t.Join(code, displayName, RoleViewer); err != nil {
		return nil, err
	}
	// Sized so a whole-grid replace burst fits without dropping.
	replaceBurst := int(music.NumTracks)*music.NumSlots*pattern.MaxSteps + 64
	v := &Viewer{transport: t, deltas: make(chan Delta, replaceBurst)}

	t.OnPatternEdit(func(e PatternEdit) {
		if !validEdit(e) {
			debug.Log("sync", "malformed edit dropped: %+v", e)
			return
		}
		v.push(EditDelta{
			Track: music.Track(e.TrackIndex),
			Slot:  e.PitchSlot,
			Step:  e.Step,
			Vel:   pattern.Velocity(e.Velocity),
		})
	})
	t.OnPlaybackState(func(s PlaybackState) {
		v.push(TransportDelta{Playing: s.IsPlaying, Step: s.CurrentStep})
	})
	t.OnTempoChange(func(s TempoState) {
		if s.BPM <= 0 {
			debug.Log("sync", "malformed tempo dropped: %+v", s)
			return
		}
		v.push(TempoDelta{BPM: s.BPM})
	})
	t.OnTrackState(func(s TrackState) {
		if s.TrackIndex < 0 || s.TrackIndex >= int(music.NumTracks) {
			debug.Log("sync", "malformed track state dropped: %+v", s)
			return
		}
		v.push(TrackDelta{Track: music.Track(s.TrackIndex), Muted: s.Muted, Solo: s.Solo})
	})
	t.OnSettings(func(s SettingsState) {
		if !validSettings(s) {
			debug.Log("sync", "malformed settings dropped: %+v", s)
			return
		}
		d := SettingsDelta{
			Length: s.Length,
			Scale:  music.Scale{Root: s.ScaleRoot, Mode: music.ScaleMode(s.ScaleMode)},
		}
		for i, iv := range s.Intervals {
			d.Intervals[i] = music.IntervalMode(iv)
		}
		v.push(d)
	})
	return v, nil
}

// Deltas is the stream the engine loop selects on.
func (v *Viewer) Deltas() <-chan Delta { return v.deltas }

// Close leaves the session.
func (v *Viewer) Close() {
	if err := v.transport.Leave(); err != nil {
		debug.Log("sync", "leave failed: %v", err)
	}
}

// push never blocks; if the viewer falls this far behind, dropping is safer
// than stalling the transport callback.
func (v *Viewer) push(d Delta) {
	select {
	case v.deltas <- d:
	default:
		debug.Log("sync", "viewer delta buffer full, dropping")
	}
}

// ApplyEdit folds an edit delta into a pattern snapshot. It writes through
// PutCell so an edit landing just ahead of its length broadcast is kept.
func ApplyEdit(p pattern.Pattern, d EditDelta) pattern.Pattern {
	return p.PutCell(d.Track, d.Slot, d.Step, d.Vel)
}

func validEdit(e PatternEdit) bool {
	return e.TrackIndex >= 0 && e.TrackIndex < int(music.NumTracks) &&
		e.PitchSlot >= 0 && e.PitchSlot < music.NumSlots &&
		e.Step >= 0 && e.Step < pattern.MaxSteps &&
		e.Velocity >= int(pattern.Off) && e.Velocity <= int(pattern.Sustain)
}

func validSettings(s SettingsState) bool {
	if s.Length < pattern.MinSteps || s.Length > pattern.MaxSteps {
		return false
	}
	if s.ScaleRoot < 0 || s.ScaleRoot >= 12 {
		return false
	}
	if s.ScaleMode < int(music.Major) || s.ScaleMode > int(music.Pentatonic) {
		return false
	}
	if len(s.Intervals) != int(music.NumTracks) {
		return false
	}
	for _, iv := range s.Intervals {
		if iv < int(music.Thirds) || iv > int(music.Chromatic) {
			return false
		}
	}
	return true
}
