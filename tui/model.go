package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"gridstroke/config"
	"gridstroke/debug"
	"gridstroke/engine"
	"gridstroke/gesture"
	"gridstroke/midigrid"
	"gridstroke/music"
	"gridstroke/projector"
	"gridstroke/theme"
	"gridstroke/widgets"
)

// cell width in terminal columns
const cellW = 2

// layoutBounds holds cached layout info for mouse hit-testing
type layoutBounds struct {
	gridTop  int
	gridLeft int
}

type Model struct {
	Engine    *engine.Engine
	DeviceMgr *midigrid.DeviceManager // may be nil
	Surface   *midigrid.Surface       // may be nil
	Theme     *theme.Theme
	Unlock    func()         // audio unlock gate, fired on first interaction
	Config    *config.Config // may be nil; controller preferences

	proj     *projector.Projector
	rec      *gesture.Recognizer
	bounds   *layoutBounds
	hoverRow int
	hoverCol int
	flash    string
	ctrlID   string // attached grid controller, "" if none
	showHelp bool
	quitting bool
}

type UpdateMsg struct{}

type DeviceEventMsg midigrid.DeviceEvent

// swipeFlushMsg fires after the swipe pairing window so a lone swipe lands
// as a plain stroke.
type swipeFlushMsg struct{}

func swipeFlushCmd() tea.Cmd {
	return tea.Tick(gesture.PairGap+20*time.Millisecond, func(time.Time) tea.Msg {
		return swipeFlushMsg{}
	})
}

func NewModel(eng *engine.Engine, deviceMgr *midigrid.DeviceManager, surface *midigrid.Surface, th *theme.Theme) Model {
	return Model{
		Engine:    eng,
		DeviceMgr: deviceMgr,
		Surface:   surface,
		Theme:     th,
		proj:      projector.New(th),
		rec:       &gesture.Recognizer{},
		bounds:    &layoutBounds{},
		hoverRow:  -1,
		hoverCol:  -1,
	}
}

func ListenForUpdates(eng *engine.Engine) tea.Cmd {
	return func() tea.Msg {
		<-eng.UpdateChan
		return UpdateMsg{}
	}
}

func ListenForDevices(deviceMgr *midigrid.DeviceManager) tea.Cmd {
	return func() tea.Msg {
		event := <-deviceMgr.Events()
		return DeviceEventMsg(event)
	}
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{ListenForUpdates(m.Engine)}
	if m.DeviceMgr != nil {
		cmds = append(cmds, ListenForDevices(m.DeviceMgr))
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.Unlock != nil {
			m.Unlock()
		}
		return m.handleKey(msg)

	case tea.MouseMsg:
		if m.Unlock != nil {
			m.Unlock()
		}
		return m.handleMouse(msg)

	case UpdateMsg:
		return m, ListenForUpdates(m.Engine)

	case swipeFlushMsg:
		if s, ok := m.rec.Flush(time.Now()); ok {
			m.Engine.Do(engine.CommitStroke{Stroke: s})
		}
		return m, nil

	case DeviceEventMsg:
		event := midigrid.DeviceEvent(msg)
		if event.Type == midigrid.DeviceConnected {
			if !m.wantController(event.ID) {
				return m, ListenForDevices(m.DeviceMgr)
			}
			m.ctrlID = event.ID
			if m.Surface != nil {
				m.Surface.SetController(event.Controller)
			}
		} else if event.Type == midigrid.DeviceDisconnected && m.ctrlID == event.ID {
			m.ctrlID = ""
			if m.Surface != nil {
				m.Surface.SetController(nil)
			}
		}
		return m, ListenForDevices(m.DeviceMgr)
	}

	return m, nil
}

// wantController consults the saved controller preferences: a known port
// with autoConnect off stays detached, an unknown one is remembered.
func (m Model) wantController(id string) bool {
	if m.Config == nil {
		return true
	}
	if saved := m.Config.FindController(id); saved != nil {
		return saved.AutoConnect
	}
	m.Config.AddController(config.ControllerConfig{
		PortName:    id,
		Type:        config.TypeForPort(id),
		AutoConnect: true,
	})
	if err := m.Config.Save(); err != nil {
		debug.Log("tui", "saving controller config: %v", err)
	}
	return true
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := m.Engine.Frame()

	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		m.Engine.Stop()
		return m, tea.Quit

	case " ", "p":
		m.Engine.Do(engine.TogglePlay{})

	case "+", "=":
		m.Engine.Do(engine.NudgeTempo{Delta: 5})
	case "-", "_":
		m.Engine.Do(engine.NudgeTempo{Delta: -5})

	case "1", "2", "3", "4":
		m.Engine.Do(engine.SelectTrack{Track: music.Track(msg.String()[0] - '1')})

	case "u":
		m.Engine.Do(engine.Undo{})
	case "r":
		m.Engine.Do(engine.Redo{})

	case "m":
		m.Engine.Do(engine.ToggleMute{Track: f.ActiveTrack})
	case "s":
		m.Engine.Do(engine.ToggleSolo{Track: f.ActiveTrack})

	case "g":
		m.Engine.Do(engine.ToggleGhost{})

	case "i":
		m.Engine.Do(engine.SetIntervalMode{Mode: f.Pattern.Lanes[f.ActiveTrack].Interval.Next()})
	case "k":
		m.Engine.Do(engine.SetScaleMode{Mode: f.Pattern.Scale.Mode.Next()})
	case "[":
		m.Engine.Do(engine.SetRoot{Root: f.Pattern.Scale.Root - 1})
	case "]":
		m.Engine.Do(engine.SetRoot{Root: f.Pattern.Scale.Root + 1})

	case "<", ",":
		m.Engine.Do(engine.SetLength{Steps: f.Pattern.Length - 4})
	case ">", ".":
		m.Engine.Do(engine.SetLength{Steps: f.Pattern.Length + 4})

	case "c":
		m.Engine.Do(engine.ClearAll{})
		m.flash = "cleared"

	case "w":
		m.Engine.Do(engine.SavePattern{Name: "default"})
		m.flash = "saved"
	case "o":
		m.Engine.Do(engine.LoadPattern{Name: "default"})
		m.flash = "loaded"

	case "?":
		m.showHelp = !m.showHelp
	}

	return m, nil
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	now := time.Now()

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return m, nil
		}
		row, col, ok := m.cellAt(msg.X, msg.Y)
		if !ok {
			return m, nil
		}
		track, slot, _ := projector.RowInfo(row)
		m.rec.Begin(track, slot, col, now)
		m.flash = ""

	case tea.MouseActionMotion:
		row, col, ok := m.cellAt(msg.X, msg.Y)
		if !m.rec.Active() {
			if ok {
				m.hoverRow, m.hoverCol = row, col
			} else {
				m.hoverRow, m.hoverCol = -1, -1
			}
			return m, nil
		}
		slot, step := m.clampToStroke(msg.X, msg.Y)
		if m.rec.Move(slot, step, now) == gesture.OutcomeClear {
			m.Engine.Do(engine.ClearAll{})
			m.flash = "cleared"
		}

	case tea.MouseActionRelease:
		if !m.rec.Active() {
			return m, nil
		}
		stroke, outcome := m.rec.End(now)
		switch outcome {
		case gesture.OutcomeStroke:
			m.Engine.Do(engine.CommitStroke{Stroke: stroke})
		case gesture.OutcomeUndo:
			m.Engine.Do(engine.Undo{})
			m.flash = "undo"
		case gesture.OutcomeRedo:
			m.Engine.Do(engine.Redo{})
			m.flash = "redo"
		case gesture.OutcomeClear:
			m.Engine.Do(engine.ClearAll{})
			m.flash = "cleared"
		}
		if m.rec.PendingSwipe() {
			return m, swipeFlushCmd()
		}
	}

	return m, nil
}

// cellAt converts terminal coordinates to a grid cell.
func (m Model) cellAt(x, y int) (row, col int, ok bool) {
	f := m.Engine.Frame()
	row = y - m.bounds.gridTop
	col = (x - m.bounds.gridLeft) / cellW
	if x < m.bounds.gridLeft || row < 0 || row >= projector.Rows() || col < 0 || col >= f.Pattern.Length {
		return 0, 0, false
	}
	return row, col, true
}

// clampToStroke maps a pointer position into the stroke's own track block,
// so a drag that wanders over a neighboring track keeps writing to the track
// it started on.
func (m Model) clampToStroke(x, y int) (slot, step int) {
	f := m.Engine.Frame()
	track := m.rec.Track()
	span := track.RowSpan()
	topRow := projector.RowOf(track, span-1)

	row := y - m.bounds.gridTop
	slot = span - 1 - (row - topRow)
	if slot < 0 {
		slot = 0
	}
	if slot >= span {
		slot = span - 1
	}

	step = (x - m.bounds.gridLeft) / cellW
	if step < 0 {
		step = 0
	}
	if step >= f.Pattern.Length {
		step = f.Pattern.Length - 1
	}
	return slot, step
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	f := m.Engine.Frame()

	headerStyle := lipgloss.NewStyle().Foreground(m.Theme.Accent())
	dimStyle := lipgloss.NewStyle().Foreground(m.Theme.Muted())
	flashStyle := lipgloss.NewStyle().Foreground(m.Theme.Success())
	tooltipStyle := lipgloss.NewStyle().
		Foreground(m.Theme.FG()).
		Background(m.Theme.Muted()).
		Padding(0, 1)

	header := m.renderHeader(f, headerStyle)
	ruler := m.renderRuler(f, dimStyle)
	grid := m.renderGrid(f)
	status := m.renderStatus(f)
	help := dimStyle.Render(m.helpLine(f))

	// Compute layout bounds for mouse hit-testing
	m.bounds.gridTop = 1 + lipgloss.Height(header) + 1 + lipgloss.Height(ruler)
	m.bounds.gridLeft = labelWidth

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(header)
	out.WriteString("\n\n")
	out.WriteString(ruler)
	out.WriteString("\n")
	out.WriteString(grid)
	out.WriteString("\n")
	out.WriteString(status)
	out.WriteString("\n\n")
	out.WriteString(help)

	if m.flash != "" {
		out.WriteString("  ")
		out.WriteString(flashStyle.Render(m.flash))
	}

	if tip := m.tooltip(f); tip != "" {
		out.WriteString("\n")
		out.WriteString(tooltipStyle.Render(tip))
	}

	if m.showHelp {
		out.WriteString("\n\n")
		out.WriteString(dimStyle.Render(m.helpPanel()))
	}

	return out.String()
}

const labelWidth = 8

func (m Model) renderHeader(f engine.Frame, style lipgloss.Style) string {
	playState := "STOP"
	if f.Playing {
		playState = "PLAY"
	}
	step := f.Step
	if step < 0 {
		step = 0
	}
	role := ""
	if f.Viewer {
		role = "  viewer"
	}
	pads := ""
	if m.ctrlID != "" {
		pads = "  LP:X"
	}
	scale := fmt.Sprintf("%s %s", music.NoteName(f.Pattern.Scale.Root), f.Pattern.Scale.Mode)
	return style.Render(fmt.Sprintf("gridstroke  %s  %3dbpm  step:%02d  %s%s%s",
		playState, f.Pattern.BPM, step, scale, role, pads))
}

func (m Model) renderRuler(f engine.Frame, style lipgloss.Style) string {
	var b strings.Builder
	b.WriteString(strings.Repeat(" ", labelWidth))
	for step := 0; step < f.Pattern.Length; step++ {
		if step%4 == 0 {
			b.WriteString(fmt.Sprintf("%-*d", cellW, step+1))
		} else {
			b.WriteString(strings.Repeat(" ", cellW))
		}
	}
	return style.Render(b.String())
}

func (m Model) renderGrid(f engine.Frame) string {
	v := projector.NewView()
	v.ActiveTrack = f.ActiveTrack
	v.Ghost = f.Ghost
	v.HoverRow = m.hoverRow
	v.HoverCol = m.hoverCol

	if m.rec.Active() {
		stroke := m.rec.Preview(time.Now())
		ctx := gesture.Context{
			Scale:    f.Pattern.Scale,
			Interval: f.Pattern.Lanes[stroke.Track].Interval,
			Length:   f.Pattern.Length,
		}
		v.Preview = gesture.Classify(stroke, ctx)
		v.PreviewTrack = stroke.Track
	}

	cells := m.proj.Project(f.Pattern, projector.Transport{Playing: f.Playing, Step: f.Step}, v)

	var lines []string
	for row := 0; row < projector.Rows(); row++ {
		track, slot, _ := projector.RowInfo(row)

		label := strings.Repeat(" ", labelWidth)
		if slot == track.RowSpan()-1 {
			name := strings.ToUpper(track.String())
			style := lipgloss.NewStyle().Foreground(theme.LipglossFor(m.Theme.TrackColor(track)))
			if track == f.ActiveTrack {
				name = "▸" + name
			}
			label = style.Render(fmt.Sprintf("%-*s", labelWidth, name))
		}

		var line strings.Builder
		line.WriteString(label)
		for step := 0; step < f.Pattern.Length; step++ {
			cell := cells[row][step]
			style := lipgloss.NewStyle().Foreground(theme.LipglossFor(cell.Color))
			line.WriteString(style.Render(string(m.glyph(cell.Kind))))
			line.WriteString(" ")
		}
		lines = append(lines, line.String())
	}
	return strings.Join(lines, "\n")
}

func (m Model) glyph(k projector.Kind) rune {
	sym := m.Theme.Symbols
	switch k {
	case projector.KindNote:
		return sym.CellNote
	case projector.KindSustain:
		return sym.CellSustain
	case projector.KindGhost:
		return sym.CellGhost
	case projector.KindPlayhead:
		return sym.CellPlayhead
	case projector.KindPreview:
		return sym.CellPreview
	case projector.KindTooltip:
		return sym.CellTooltip
	default:
		return sym.CellEmpty
	}
}

func (m Model) renderStatus(f engine.Frame) string {
	var parts []string
	for _, t := range music.Tracks() {
		lane := f.Pattern.Lanes[t]
		name := t.String()
		if t == f.ActiveTrack {
			name = "[" + name + "]"
		}
		flags := ""
		if lane.Muted {
			flags += "M"
		}
		if lane.Solo {
			flags += "S"
		}
		if flags != "" {
			name += ":" + flags
		}
		style := lipgloss.NewStyle().Foreground(theme.LipglossFor(m.Theme.TrackColor(t)))
		parts = append(parts, style.Render(name))
	}

	dim := lipgloss.NewStyle().Foreground(m.Theme.Muted())
	extra := dim.Render(fmt.Sprintf("  interval:%s  len:%d  undo:%s redo:%s",
		f.Pattern.Lanes[f.ActiveTrack].Interval, f.Pattern.Length,
		mark(f.CanUndo), mark(f.CanRedo)))

	return strings.Repeat(" ", labelWidth) + strings.Join(parts, " ") + extra
}

func mark(ok bool) string {
	if ok {
		return "✓"
	}
	return "-"
}

func (m Model) helpLine(f engine.Frame) string {
	if f.Viewer {
		return "following host  space:play  ?:help  q:quit"
	}
	return "1-4:track  drag:stroke  u/r:undo/redo  +/-:tempo  space:play  ?:help  q:quit"
}

func (m Model) helpPanel() string {
	return widgets.RenderKeyHelp([]widgets.KeySection{
		{Title: "Strokes", Keys: []widgets.KeyBinding{
			{Key: "tap", Desc: "place a note (plus its track flourish)"},
			{Key: "drag →", Desc: "run / arpeggio / walk / roll"},
			{Key: "drag ↑↓", Desc: "stack chord tones or a drum fill"},
			{Key: "hold 400ms", Desc: "accent; drag after holding for sustain"},
			{Key: "shake", Desc: "clear everything"},
			{Key: "swipe ×2", Desc: "left = undo, right = redo"},
		}},
		{Title: "Keys", Keys: []widgets.KeyBinding{
			{Key: "1-4", Desc: "select track"},
			{Key: "m / s", Desc: "mute / solo active track"},
			{Key: "i", Desc: "cycle interval mode"},
			{Key: "k  [ ]", Desc: "cycle scale mode, move root"},
			{Key: "< / >", Desc: "pattern length"},
			{Key: "+ / -", Desc: "tempo"},
			{Key: "u / r", Desc: "undo / redo"},
			{Key: "w / o", Desc: "save / load pattern"},
			{Key: "g", Desc: "toggle ghost notes"},
			{Key: "c", Desc: "clear all"},
		}},
	})
}

// tooltip names the hovered cell: track, pitch and step.
func (m Model) tooltip(f engine.Frame) string {
	if m.hoverRow < 0 {
		return ""
	}
	track, slot, ok := projector.RowInfo(m.hoverRow)
	if !ok || m.hoverCol >= f.Pattern.Length {
		return ""
	}
	if !track.Melodic() {
		return fmt.Sprintf("%s  slot %d  step %d", track, slot, m.hoverCol+1)
	}
	lane := f.Pattern.Lanes[track]
	pitch := music.PitchForRow(track, slot, lane.Interval, f.Pattern.Scale)
	return fmt.Sprintf("%s  %s%d  step %d", track, music.NoteName(pitch%12), pitch/12-1, m.hoverCol+1)
}
