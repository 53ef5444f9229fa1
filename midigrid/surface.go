package midigrid

import (
	"sync"
	"time"

	"gridstroke/debug"
	"gridstroke/engine"
	"gridstroke/gesture"
	"gridstroke/music"
	"gridstroke/projector"
	"gridstroke/theme"
)

// LED refresh rate
const mirrorFPS = 30

// Surface adapts an 8x8 pad grid into a stroke surface and mirrors the
// pattern back to the pads. The pad window shows the bottom eight pitch
// slots of the active track across one eight-step page; the top button row
// selects track and page, the right column carries transport and history.
type Surface struct {
	eng  *engine.Engine
	proj *projector.Projector

	mu       sync.Mutex
	ctrl     Controller
	rec      gesture.Recognizer
	page     int
	held     int
	prevLEDs map[[2]int]LEDUpdate

	stopChan chan struct{}
}

// Top row button assignments.
const (
	topTrackFirst = 0 // cols 0..3 select the track
	topPageFirst  = 4 // cols 4..7 select the step page
)

// Right column button assignments (row 0 is the bottom pad).
const (
	sidePlay  = 7
	sideUndo  = 6
	sideRedo  = 5
	sideClear = 0
)

// NewSurface creates a pad surface bound to the engine.
func NewSurface(eng *engine.Engine, proj *projector.Projector) *Surface {
	return &Surface{
		eng:      eng,
		proj:     proj,
		prevLEDs: make(map[[2]int]LEDUpdate),
		stopChan: make(chan struct{}),
	}
}

// Start launches the mirror loop.
func (s *Surface) Start() {
	go s.mirrorLoop()
}

// Stop terminates the mirror loop and blanks the pads.
func (s *Surface) Stop() {
	close(s.stopChan)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ctrl != nil {
		s.ctrl.ClearLEDs()
	}
}

// SetController swaps the active grid controller (nil to detach). The
// previous controller's event pump ends when its pad channel closes.
func (s *Surface) SetController(c Controller) {
	s.mu.Lock()
	s.ctrl = c
	s.prevLEDs = make(map[[2]int]LEDUpdate) // reset state - diff will handle clearing
	s.rec.Cancel()
	s.held = 0
	s.mu.Unlock()

	if c == nil {
		return
	}
	debug.Log("pads", "controller attached: %s", c.ID())
	go func() {
		for e := range c.PadEvents() {
			s.handlePad(e)
		}
	}()
}

// mirrorLoop renders at fixed FPS; diffing keeps idle frames silent.
func (s *Surface) mirrorLoop() {
	ticker := time.NewTicker(time.Second / mirrorFPS)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.flush()
		}
	}
}

func (s *Surface) flush() {
	s.mu.Lock()
	defer s.mu.Unlock()

	// A swipe held for pairing lands as a plain stroke once the window has
	// closed; the mirror tick doubles as the poll.
	if st, ok := s.rec.Flush(time.Now()); ok {
		s.eng.Do(engine.CommitStroke{Stroke: st})
	}

	if s.ctrl == nil {
		return
	}

	leds := s.render()
	newMap := make(map[[2]int]LEDUpdate, len(leds))

	var updates []LEDUpdate
	for _, led := range leds {
		key := [2]int{led.Row, led.Col}
		newMap[key] = led

		// Only send if changed
		if prev, ok := s.prevLEDs[key]; !ok || prev != led {
			updates = append(updates, led)
		}
	}

	// Clear LEDs that are no longer present
	for key := range s.prevLEDs {
		if _, ok := newMap[key]; !ok {
			updates = append(updates, LEDUpdate{Row: key[0], Col: key[1], Color: [3]uint8{0, 0, 0}})
		}
	}

	if len(updates) > 0 {
		s.ctrl.SetLEDBatch(updates)
	}
	s.prevLEDs = newMap
}

// render runs under s.mu.
func (s *Surface) render() []LEDUpdate {
	f := s.eng.Frame()
	v := projector.NewView()
	v.ActiveTrack = f.ActiveTrack
	v.Ghost = f.Ghost

	if s.rec.Active() {
		stroke := s.rec.Preview(time.Now())
		ctx := gesture.Context{
			Scale:    f.Pattern.Scale,
			Interval: f.Pattern.Lanes[stroke.Track].Interval,
			Length:   f.Pattern.Length,
		}
		v.Preview = gesture.Classify(stroke, ctx)
		v.PreviewTrack = stroke.Track
	}

	cells := s.proj.Project(f.Pattern, projector.Transport{Playing: f.Playing, Step: f.Step}, v)

	var leds []LEDUpdate
	span := f.ActiveTrack.RowSpan()
	pages := (f.Pattern.Length + 7) / 8
	if s.page >= pages {
		s.page = pages - 1
	}

	// Main grid window: pad row = pitch slot, pad col = step within page.
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			led := LEDUpdate{Row: row, Col: col}
			step := s.page*8 + col
			if row < span && step < f.Pattern.Length {
				cell := cells[projector.RowOf(f.ActiveTrack, row)][step]
				led.Color = theme.ToRGB(cell.Color)
				if cell.Kind == projector.KindPlayhead {
					led.Channel = ChannelPulse
				}
			}
			leds = append(leds, led)
		}
	}

	// Top row: track select then page select.
	for i, t := range music.Tracks() {
		color := theme.ToRGB(s.proj.Theme.TrackColor(t))
		led := LEDUpdate{Row: 8, Col: topTrackFirst + i, Color: color}
		if t != f.ActiveTrack {
			led.Color = dim(led.Color)
		}
		leds = append(leds, led)
	}
	for i := 0; i < 4; i++ {
		led := LEDUpdate{Row: 8, Col: topPageFirst + i}
		if i < pages {
			led.Color = [3]uint8{120, 120, 120}
			if i != s.page {
				led.Color = dim(led.Color)
			}
		}
		leds = append(leds, led)
	}

	// Right column: transport and history.
	play := LEDUpdate{Row: sidePlay, Col: 8, Color: [3]uint8{0, 180, 0}}
	if f.Playing {
		play.Color = [3]uint8{0, 255, 0}
		play.Channel = ChannelPulse
	}
	leds = append(leds, play)

	undo := LEDUpdate{Row: sideUndo, Col: 8}
	if f.CanUndo {
		undo.Color = [3]uint8{255, 200, 0}
	}
	leds = append(leds, undo)

	redo := LEDUpdate{Row: sideRedo, Col: 8}
	if f.CanRedo {
		redo.Color = [3]uint8{255, 200, 0}
	}
	leds = append(leds, redo)

	leds = append(leds, LEDUpdate{Row: sideClear, Col: 8, Color: [3]uint8{80, 0, 0}})

	return leds
}

func dim(c [3]uint8) [3]uint8 {
	return [3]uint8{c[0] / 4, c[1] / 4, c[2] / 4}
}

func (s *Surface) handlePad(e PadEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	f := s.eng.Frame()

	switch {
	case e.Row == 8: // top row
		if !e.Pressed {
			return
		}
		if e.Col >= topTrackFirst && e.Col < topTrackFirst+int(music.NumTracks) {
			s.eng.Do(engine.SelectTrack{Track: music.Track(e.Col - topTrackFirst)})
			s.rec.Cancel()
			s.held = 0
			return
		}
		if e.Col >= topPageFirst && e.Col < topPageFirst+4 {
			page := e.Col - topPageFirst
			if page*8 < f.Pattern.Length {
				s.page = page
			}
		}

	case e.Col == 8: // right column
		if !e.Pressed {
			return
		}
		switch e.Row {
		case sidePlay:
			s.eng.Do(engine.TogglePlay{})
		case sideUndo:
			s.eng.Do(engine.Undo{})
		case sideRedo:
			s.eng.Do(engine.Redo{})
		case sideClear:
			s.eng.Do(engine.ClearAll{})
		}

	default: // 8x8 grid
		slot := e.Row
		step := s.page*8 + e.Col
		if slot >= f.ActiveTrack.RowSpan() || step >= f.Pattern.Length {
			return
		}

		if e.Pressed {
			if !s.rec.Active() {
				s.rec.Begin(f.ActiveTrack, slot, step, now)
				s.held = 1
				return
			}
			s.held++
			if s.rec.Move(slot, step, now) == gesture.OutcomeClear {
				s.eng.Do(engine.ClearAll{})
				s.held = 0
			}
			return
		}

		// Release: the stroke ends when the last held pad lifts.
		if s.held > 0 {
			s.held--
		}
		if s.held == 0 && s.rec.Active() {
			stroke, outcome := s.rec.End(now)
			switch outcome {
			case gesture.OutcomeStroke:
				s.eng.Do(engine.CommitStroke{Stroke: stroke})
			case gesture.OutcomeUndo:
				s.eng.Do(engine.Undo{})
			case gesture.OutcomeRedo:
				s.eng.Do(engine.Redo{})
			case gesture.OutcomeClear:
				s.eng.Do(engine.ClearAll{})
			}
		}
	}
}
