package session

import "sync"

// LoopbackHub is an in-process session: one hub, any number of attached
// transports. It exists for same-process viewers and for tests, and keeps
// the same fan-out semantics as the wire transports: no acks, no replay for
// late joiners.
type LoopbackHub struct {
	mu      sync.Mutex
	members []*LoopbackTransport
}

func NewLoopbackHub() *LoopbackHub {
	return &LoopbackHub{}
}

// Attach returns a transport bound to this hub.
func (h *LoopbackHub) Attach() *LoopbackTransport {
	return &LoopbackTransport{hub: h}
}

func (h *LoopbackHub) join(t *LoopbackTransport) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.members = append(h.members, t)
}

func (h *LoopbackHub) leave(t *LoopbackTransport) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, m := range h.members {
		if m == t {
			h.members = append(h.members[:i], h.members[i+1:]...)
			return
		}
	}
}

func (h *LoopbackHub) others(t *LoopbackTransport) []*LoopbackTransport {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]*LoopbackTransport, 0, len(h.members))
	for _, m := range h.members {
		if m != t {
			out = append(out, m)
		}
	}
	return out
}

// LoopbackTransport implements Transport over direct function calls.
type LoopbackTransport struct {
	hub *LoopbackHub

	mu         sync.Mutex
	joined     bool
	onEdit     func(PatternEdit)
	onPlayback func(PlaybackState)
	onTempo    func(TempoState)
	onTrack    func(TrackState)
	onSettings func(SettingsState)
}

func (t *LoopbackTransport) Join(code, displayName string, role Role) error {
	t.mu.Lock()
	t.joined = true
	t.mu.Unlock()
	t.hub.join(t)
	return nil
}

func (t *LoopbackTransport) Leave() error {
	t.mu.Lock()
	t.joined = false
	t.mu.Unlock()
	t.hub.leave(t)
	return nil
}

func (t *LoopbackTransport) BroadcastPatternEdit(e PatternEdit) error {
	for _, m := range t.hub.others(t) {
		m.deliverEdit(e)
	}
	return nil
}

func (t *LoopbackTransport) BroadcastPlaybackState(s PlaybackState) error {
	for _, m := range t.hub.others(t) {
		m.deliverPlayback(s)
	}
	return nil
}

func (t *LoopbackTransport) BroadcastTempo(s TempoState) error {
	for _, m := range t.hub.others(t) {
		m.deliverTempo(s)
	}
	return nil
}

func (t *LoopbackTransport) BroadcastTrackState(s TrackState) error {
	for _, m := range t.hub.others(t) {
		m.deliverTrack(s)
	}
	return nil
}

func (t *LoopbackTransport) BroadcastSettings(s SettingsState) error {
	for _, m := range t.hub.others(t) {
		m.deliverSettings(s)
	}
	return nil
}

func (t *LoopbackTransport) OnPatternEdit(fn func(PatternEdit)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onEdit = fn
}

func (t *LoopbackTransport) OnPlaybackState(fn func(PlaybackState)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onPlayback = fn
}

func (t *LoopbackTransport) OnTempoChange(fn func(TempoState)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onTempo = fn
}

func (t *LoopbackTransport) OnTrackState(fn func(TrackState)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onTrack = fn
}

func (t *LoopbackTransport) OnSettings(fn func(SettingsState)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onSettings = fn
}

func (t *LoopbackTransport) deliverEdit(e PatternEdit) {
	t.mu.Lock()
	fn := t.onEdit
	t.mu.Unlock()
	if fn != nil {
		fn(e)
	}
}

func (t *LoopbackTransport) deliverPlayback(s PlaybackState) {
	t.mu.Lock()
	fn := t.onPlayback
	t.mu.Unlock()
	if fn != nil {
		fn(s)
	}
}

func (t *LoopbackTransport) deliverTempo(s TempoState) {
	t.mu.Lock()
	fn := t.onTempo
	t.mu.Unlock()
	if fn != nil {
		fn(s)
	}
}

func (t *LoopbackTransport) deliverTrack(s TrackState) {
	t.mu.Lock()
	fn := t.onTrack
	t.mu.Unlock()
	if fn != nil {
		fn(s)
	}
}

func (t *LoopbackTransport) deliverSettings(s SettingsState) {
	t.mu.Lock()
	fn := t.onSettings
	t.mu.Unlock()
	if fn != nil {
		fn(s)
	}
}
