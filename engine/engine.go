// Package engine serializes all pattern mutation through one goroutine.
// Intents and inbound session deltas land on channels; the loop applies
// them in arrival order and drives the step clock, so the store never sees
// concurrent writers.
package engine

import (
	"sync"
	"time"

	"gridstroke/debug"
	"gridstroke/gesture"
	"gridstroke/music"
	"gridstroke/pattern"
	"gridstroke/playback"
	"gridstroke/session"
)

// Frame is a consistent snapshot for render surfaces (TUI, grid LEDs). It
// is a value; readers never share state with the loop.
type Frame struct {
	Pattern     pattern.Pattern
	Playing     bool
	Step        int
	ActiveTrack music.Track
	Ghost       bool
	CanUndo     bool
	CanRedo     bool
	Viewer      bool
}

// Engine owns the pattern store and the transport.
type Engine struct {
	mu    sync.RWMutex
	store *pattern.Store
	sched *playback.Scheduler

	host   *session.Host   // nil unless hosting a session
	viewer *session.Viewer // nil unless following one

	active music.Track
	ghost  bool

	intents  chan Intent
	stopChan chan struct{}
	lastBPM  int

	// Notify TUI of updates
	UpdateChan chan struct{}
}

// New creates a stopped engine. out may be nil (silent transport).
func New(out playback.Output) *Engine {
	store := pattern.NewStore()
	return &Engine{
		store:      store,
		sched:      playback.NewScheduler(out),
		active:     music.Melody,
		ghost:      true,
		intents:    make(chan Intent, 64),
		stopChan:   make(chan struct{}),
		lastBPM:    store.Pattern().BPM,
		UpdateChan: make(chan struct{}, 1),
	}
}

// SetHost attaches the outbound session side. Call before Start.
func (e *Engine) SetHost(h *session.Host) { e.host = h }

// SetViewer attaches the inbound session side. Call before Start. A viewer
// engine still applies local transport toggles but its edits come only from
// deltas.
func (e *Engine) SetViewer(v *session.Viewer) { e.viewer = v }

// SetOutput swaps the sound collaborator.
func (e *Engine) SetOutput(out playback.Output) {
	e.mu.Lock()
	e.sched.SetOutput(out)
	e.mu.Unlock()
}

// Restore seeds tempo and ghost display from saved preferences. Call before
// Start; it does not touch history.
func (e *Engine) Restore(bpm int, ghost bool) {
	if bpm > 0 {
		e.store.Apply(e.store.Pattern().SetTempo(bpm))
		e.lastBPM = e.store.Pattern().BPM
	}
	e.ghost = ghost
}

// Start launches the loop goroutine.
func (e *Engine) Start() {
	go e.loop()
}

// Stop terminates the loop.
func (e *Engine) Stop() {
	close(e.stopChan)
}

// Do queues an intent. Never blocks; if the loop is this far behind the
// intent is dropped, which the next input will effectively retry.
func (e *Engine) Do(it Intent) {
	select {
	case e.intents <- it:
	default:
		debug.Log("engine", "intent buffer full, dropping %T", it)
	}
}

// Frame returns the current render snapshot.
func (e *Engine) Frame() Frame {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return Frame{
		Pattern:     e.store.Pattern(),
		Playing:     e.sched.Playing(),
		Step:        e.sched.Step(),
		ActiveTrack: e.active,
		Ghost:       e.ghost,
		CanUndo:     e.store.CanUndo(),
		CanRedo:     e.store.CanRedo(),
		Viewer:      e.viewer != nil,
	}
}

func (e *Engine) loop() {
	ticker := time.NewTicker(playback.TickInterval(e.lastBPM))
	defer ticker.Stop()

	var deltas <-chan session.Delta
	if e.viewer != nil {
		deltas = e.viewer.Deltas()
	}

	for {
		select {
		case <-e.stopChan:
			return
		case it := <-e.intents:
			e.mu.Lock()
			e.apply(it)
			e.retime(ticker)
			e.mu.Unlock()
			e.notify()
		case d := <-deltas:
			e.mu.Lock()
			e.applyDelta(d)
			e.retime(ticker)
			e.mu.Unlock()
			e.notify()
		case <-ticker.C:
			e.mu.Lock()
			playing := e.sched.Playing()
			if playing && e.viewer == nil {
				e.sched.Tick(e.store.Pattern())
				if e.host != nil {
					e.host.TransportChanged(true, e.sched.Step())
				}
			}
			e.mu.Unlock()
			if playing {
				e.notify()
			}
		}
	}
}

// retime resets the tick clock when a mutation changed the tempo. Undo and
// redo can change it too, so this runs after every apply.
func (e *Engine) retime(ticker *time.Ticker) {
	bpm := e.store.Pattern().BPM
	if bpm != e.lastBPM {
		e.lastBPM = bpm
		ticker.Reset(playback.TickInterval(bpm))
	}
}

// apply runs under e.mu.
func (e *Engine) apply(it Intent) {
	switch it := it.(type) {
	case TogglePlay:
		playing := e.sched.Toggle()
		if e.host != nil {
			e.host.TransportChanged(playing, e.sched.Step())
		}
	case Undo:
		if e.store.Undo() {
			e.replaced()
		}
	case Redo:
		if e.store.Redo() {
			e.replaced()
		}
	case ClearAll:
		e.commit(e.store.Pattern().Clear())
		e.replaced()
	case CommitStroke:
		e.commitStroke(it.Stroke)
	case SetRoot:
		p := e.store.Pattern()
		s := p.Scale
		s.Root = ((it.Root % 12) + 12) % 12
		e.commit(p.SetScale(s))
		e.settingsChanged()
	case SetScaleMode:
		p := e.store.Pattern()
		s := p.Scale
		s.Mode = it.Mode
		e.commit(p.SetScale(s))
		e.settingsChanged()
	case SetIntervalMode:
		e.commit(e.store.Pattern().SetInterval(e.active, it.Mode))
		e.settingsChanged()
	case ToggleMute:
		p := e.store.Pattern()
		p = p.SetMuted(it.Track, !p.Lanes[it.Track].Muted)
		e.commit(p)
		if e.host != nil {
			lane := p.Lanes[it.Track]
			e.host.TrackChanged(it.Track, lane.Muted, lane.Solo)
		}
	case ToggleSolo:
		p := e.store.Pattern()
		p = p.SetSolo(it.Track, !p.Lanes[it.Track].Solo)
		e.commit(p)
		if e.host != nil {
			lane := p.Lanes[it.Track]
			e.host.TrackChanged(it.Track, lane.Muted, lane.Solo)
		}
	case SetTempo:
		p := e.store.Pattern().SetTempo(it.BPM)
		e.commit(p)
		if e.host != nil {
			e.host.TempoChanged(p.BPM)
		}
	case NudgeTempo:
		p := e.store.Pattern()
		p = p.SetTempo(p.BPM + it.Delta)
		e.commit(p)
		if e.host != nil {
			e.host.TempoChanged(p.BPM)
		}
	case SetLength:
		e.commit(e.store.Pattern().SetLength(it.Steps))
		e.settingsChanged()
	case SelectTrack:
		if it.Track >= 0 && it.Track < music.NumTracks {
			e.active = it.Track
		}
	case ToggleGhost:
		e.ghost = !e.ghost
	case SavePattern:
		if err := e.store.Pattern().SaveFile(it.Name); err != nil {
			debug.Log("engine", "save %q failed: %v", it.Name, err)
		}
	case LoadPattern:
		p, err := pattern.LoadFile(it.Name)
		if err != nil {
			debug.Log("engine", "load %q failed: %v", it.Name, err)
			return
		}
		e.commit(p)
		e.replaced()
	}
}

// commitStroke classifies against the pattern as it stands right now, so a
// stroke racing a tempo or scale change lands on whichever state won.
func (e *Engine) commitStroke(s gesture.Stroke) {
	if e.viewer != nil {
		return
	}
	p := e.store.Pattern()
	ctx := gesture.Context{
		Scale:    p.Scale,
		Interval: p.Lanes[s.Track].Interval,
		Length:   p.Length,
	}
	writes := gesture.Classify(s, ctx)
	if len(writes) == 0 {
		return
	}
	for _, w := range writes {
		p = p.SetCell(s.Track, w.Slot, w.Step, w.Vel)
	}
	e.commit(p)
	if e.host != nil {
		for _, w := range writes {
			e.host.CellChanged(s.Track, w.Slot, w.Step, w.Vel)
		}
	}
	debug.Log("engine", "stroke track=%v writes=%d", s.Track, len(writes))
}

// commit pushes an undoable snapshot unless this engine is a viewer, whose
// local history must stay empty.
func (e *Engine) commit(p pattern.Pattern) {
	if e.viewer != nil {
		e.store.Apply(p)
		return
	}
	e.store.Commit(p)
}

// settingsChanged mirrors length, scale and interval modes to viewers.
func (e *Engine) settingsChanged() {
	if e.host != nil {
		e.host.SettingsChanged(e.store.Pattern())
	}
}

// replaced broadcasts everything after a change with no small delta. Undo
// and redo can move any part of the snapshot, so settings, tempo and track
// flags go out ahead of the grid.
func (e *Engine) replaced() {
	if e.host == nil {
		return
	}
	p := e.store.Pattern()
	e.host.SettingsChanged(p)
	e.host.TempoChanged(p.BPM)
	for _, t := range music.Tracks() {
		e.host.TrackChanged(t, p.Lanes[t].Muted, p.Lanes[t].Solo)
	}
	e.host.PatternReplaced(p)
}

// applyDelta runs under e.mu. Deltas bypass history.
func (e *Engine) applyDelta(d session.Delta) {
	switch d := d.(type) {
	case session.EditDelta:
		e.store.Apply(session.ApplyEdit(e.store.Pattern(), d))
	case session.TransportDelta:
		e.sched.SetTransport(d.Playing, d.Step)
	case session.TempoDelta:
		e.store.Apply(e.store.Pattern().SetTempo(d.BPM))
	case session.TrackDelta:
		p := e.store.Pattern()
		p = p.SetMuted(d.Track, d.Muted)
		p = p.SetSolo(d.Track, d.Solo)
		e.store.Apply(p)
	case session.SettingsDelta:
		p := e.store.Pattern()
		p = p.SetLength(d.Length)
		p = p.SetScale(d.Scale)
		for t, iv := range d.Intervals {
			p = p.SetInterval(music.Track(t), iv)
		}
		e.store.Apply(p)
	}
}

func (e *Engine) notify() {
	select {
	case e.UpdateChan <- struct{}{}:
	default:
	}
}
