// Package session mirrors host pattern mutations to read-only viewers.
// Exactly one host per session may mutate content; consistency is
// last-write-wins per cell with no acknowledgement, which is sound because
// viewers never write.
package session

import "time"

// Role separates the single read-write participant from the read-only ones.
type Role int

const (
	RoleHost Role = iota
	RoleViewer
)

func (r Role) String() string {
	if r == RoleHost {
		return "host"
	}
	return "viewer"
}

// PatternEdit is one committed cell write.
type PatternEdit struct {
	TrackIndex int   `json:"trackIndex"`
	Step       int   `json:"step"`
	PitchSlot  int   `json:"pitchSlot"`
	Velocity   int   `json:"velocity"`
	Timestamp  int64 `json:"timestamp"` // unix millis, informational only
}

// PlaybackState is the transport broadcast.
type PlaybackState struct {
	IsPlaying   bool `json:"isPlaying"`
	CurrentStep int  `json:"currentStep"`
}

// TempoState is the tempo broadcast.
type TempoState struct {
	BPM int `json:"bpm"`
}

// TrackState is the per-track mute/solo broadcast.
type TrackState struct {
	TrackIndex int  `json:"trackIndex"`
	Muted      bool `json:"muted"`
	Solo       bool `json:"solo"`
}

// SettingsState is the grid-shape broadcast: pattern length, scale and the
// per-track interval modes. It travels whole so a viewer applies it
// atomically and renders dimming and ghosts exactly like the host.
type SettingsState struct {
	Length    int   `json:"length"`
	ScaleRoot int   `json:"scaleRoot"`
	ScaleMode int   `json:"scaleMode"`
	Intervals []int `json:"intervals"` // one per track
}

// Transport is the session wire boundary. Discovery and handshake live
// behind it; the core only sees typed pub/sub.
type Transport interface {
	Join(code, displayName string, role Role) error
	Leave() error

	BroadcastPatternEdit(PatternEdit) error
	BroadcastPlaybackState(PlaybackState) error
	BroadcastTempo(TempoState) error
	BroadcastTrackState(TrackState) error
	BroadcastSettings(SettingsState) error

	OnPatternEdit(func(PatternEdit))
	OnPlaybackState(func(PlaybackState))
	OnTempoChange(func(TempoState))
	OnTrackState(func(TrackState))
	OnSettings(func(SettingsState))
}

func nowMillis() int64 {
	return time.Now().UnixMilli()
}
