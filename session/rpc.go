package session

import (
	"fmt"
	"net"
	"net/http"
	"net/rpc"
	"sync"

	"gridstroke/debug"
)

// The wire transport runs over net/rpc: each viewer listens, the host dials
// every viewer and pumps envelopes through a buffered channel so a slow or
// dead link drops messages instead of stalling the edit path.

// envelopeKind discriminates the single rpc payload type.
type envelopeKind int

const (
	kindEdit envelopeKind = iota
	kindPlayback
	kindTempo
	kindTrack
	kindSettings
)

// Envelope is the one message shape crossing the wire.
type Envelope struct {
	Kind     envelopeKind
	Edit     PatternEdit
	Playback PlaybackState
	Tempo    TempoState
	Track    TrackState
	Settings SettingsState
}

// SessionServer receives envelopes on the viewer side.
type SessionServer struct {
	envelopes chan Envelope
}

// Deliver queues an envelope, dropping when the viewer is saturated.
func (s *SessionServer) Deliver(env Envelope, reply *int) error {
	select {
	case s.envelopes <- env:
	default:
	}
	return nil
}

// RPCViewerTransport is the listening (viewer) end.
type RPCViewerTransport struct {
	listener net.Listener

	mu         sync.Mutex
	onEdit     func(PatternEdit)
	onPlayback func(PlaybackState)
	onTempo    func(TempoState)
	onTrack    func(TrackState)
	onSettings func(SettingsState)
}

// ListenRPC starts a viewer-side listener on addr (e.g. ":41234").
func ListenRPC(addr string) (*RPCViewerTransport, error) {
	server := &SessionServer{envelopes: make(chan Envelope, 256)}
	srv := rpc.NewServer()
	if err := srv.Register(server); err != nil {
		return nil, fmt.Errorf("rpc register: %w", err)
	}
	mux := http.NewServeMux()
	mux.Handle(rpc.DefaultRPCPath, srv)

	l, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}
	t := &RPCViewerTransport{listener: l}

	go func() {
		if err := http.Serve(l, mux); err != nil {
			debug.Log("rpc", "serve ended: %v", err)
		}
	}()
	go func() {
		for env := range server.envelopes {
			t.dispatch(env)
		}
	}()
	return t, nil
}

func (t *RPCViewerTransport) dispatch(env Envelope) {
	t.mu.Lock()
	onEdit, onPlayback, onTempo, onTrack, onSettings :=
		t.onEdit, t.onPlayback, t.onTempo, t.onTrack, t.onSettings
	t.mu.Unlock()
	switch env.Kind {
	case kindEdit:
		if onEdit != nil {
			onEdit(env.Edit)
		}
	case kindPlayback:
		if onPlayback != nil {
			onPlayback(env.Playback)
		}
	case kindTempo:
		if onTempo != nil {
			onTempo(env.Tempo)
		}
	case kindTrack:
		if onTrack != nil {
			onTrack(env.Track)
		}
	case kindSettings:
		if onSettings != nil {
			onSettings(env.Settings)
		}
	default:
		debug.Log("rpc", "unknown envelope kind %d dropped", env.Kind)
	}
}

func (t *RPCViewerTransport) Join(code, displayName string, role Role) error { return nil }

func (t *RPCViewerTransport) Leave() error {
	return t.listener.Close()
}

// Viewers never broadcast; the calls exist to satisfy Transport.
func (t *RPCViewerTransport) BroadcastPatternEdit(PatternEdit) error     { return nil }
func (t *RPCViewerTransport) BroadcastPlaybackState(PlaybackState) error { return nil }
func (t *RPCViewerTransport) BroadcastTempo(TempoState) error            { return nil }
func (t *RPCViewerTransport) BroadcastTrackState(TrackState) error       { return nil }
func (t *RPCViewerTransport) BroadcastSettings(SettingsState) error      { return nil }

func (t *RPCViewerTransport) OnPatternEdit(fn func(PatternEdit)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onEdit = fn
}

func (t *RPCViewerTransport) OnPlaybackState(fn func(PlaybackState)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onPlayback = fn
}

func (t *RPCViewerTransport) OnTempoChange(fn func(TempoState)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onTempo = fn
}

func (t *RPCViewerTransport) OnTrackState(fn func(TrackState)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onTrack = fn
}

func (t *RPCViewerTransport) OnSettings(fn func(SettingsState)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onSettings = fn
}

// RPCHostTransport is the dialing (host) end, one outbound pump per viewer.
type RPCHostTransport struct {
	addrs []string

	mu    sync.Mutex
	pumps []chan<- Envelope
}

// DialRPC prepares a host transport for the given viewer addresses. Dialing
// happens on Join so a dead viewer costs nothing until a session starts.
func DialRPC(addrs ...string) *RPCHostTransport {
	return &RPCHostTransport{addrs: addrs}
}

func (t *RPCHostTransport) Join(code, displayName string, role Role) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, addr := range t.addrs {
		client, err := rpc.DialHTTP("tcp", addr)
		if err != nil {
			// Connectivity failures are swallowed here; local editing
			// must proceed without the viewer.
			debug.Log("rpc", "dial %s failed: %v", addr, err)
			continue
		}
		c := make(chan Envelope, 256)
		t.pumps = append(t.pumps, c)
		go pump(client, c)
	}
	return nil
}

func pump(client *rpc.Client, c <-chan Envelope) {
	defer client.Close()
	for env := range c {
		var reply int
		if err := client.Call("SessionServer.Deliver", env, &reply); err != nil {
			debug.Log("rpc", "deliver failed: %v", err)
			return
		}
	}
}

func (t *RPCHostTransport) Leave() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, c := range t.pumps {
		close(c)
	}
	t.pumps = nil
	return nil
}

// send fans an envelope to every pump without blocking; a full pump means
// that viewer is behind and loses the message.
func (t *RPCHostTransport) send(env Envelope) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, c := range t.pumps {
		select {
		case c <- env:
		default:
			debug.Log("rpc", "pump full, envelope dropped")
		}
	}
	return nil
}

func (t *RPCHostTransport) BroadcastPatternEdit(e PatternEdit) error {
	return t.send(Envelope{Kind: kindEdit, Edit: e})
}

func (t *RPCHostTransport) BroadcastPlaybackState(s PlaybackState) error {
	return t.send(Envelope{Kind: kindPlayback, Playback: s})
}

func (t *RPCHostTransport) BroadcastTempo(s TempoState) error {
	return t.send(Envelope{Kind: kindTempo, Tempo: s})
}

func (t *RPCHostTransport) BroadcastTrackState(s TrackState) error {
	return t.send(Envelope{Kind: kindTrack, Track: s})
}

func (t *RPCHostTransport) BroadcastSettings(s SettingsState) error {
	return t.send(Envelope{Kind: kindSettings, Settings: s})
}

// Hosts react to nothing inbound; the callbacks exist to satisfy Transport.
func (t *RPCHostTransport) OnPatternEdit(func(PatternEdit))     {}
func (t *RPCHostTransport) OnPlaybackState(func(PlaybackState)) {}
func (t *RPCHostTransport) OnTempoChange(func(TempoState))      {}
func (t *RPCHostTransport) OnTrackState(func(TrackState))       {}
func (t *RPCHostTransport) OnSettings(func(SettingsState))      {}
