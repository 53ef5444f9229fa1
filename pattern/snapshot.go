package pattern

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gridstroke/music"
)

// Snapshot is the exported pattern shape. Track grids are
// velocity[pitchSlot][step], trimmed to the pattern length.
type Snapshot struct {
	Tracks        SnapshotTracks `json:"tracks"`
	Scale         SnapshotScale  `json:"scale"`
	BPM           int            `json:"bpm"`
	PatternLength int            `json:"patternLength"`
}

type SnapshotTracks struct {
	Melody [][]int `json:"melody"`
	Chords [][]int `json:"chords"`
	Bass   [][]int `json:"bass"`
	Rhythm [][]int `json:"rhythm"`
}

type SnapshotScale struct {
	Root int    `json:"root"`
	Mode string `json:"mode"`
}

// Snapshot exports the pattern.
func (p Pattern) Snapshot() Snapshot {
	grid := func(track music.Track) [][]int {
		out := make([][]int, music.NumSlots)
		for slot := 0; slot < music.NumSlots; slot++ {
			row := make([]int, p.Length)
			for step := 0; step < p.Length; step++ {
				row[step] = int(p.Lanes[track].Cells[slot][step])
			}
			out[slot] = row
		}
		return out
	}
	return Snapshot{
		Tracks: SnapshotTracks{
			Melody: grid(music.Melody),
			Chords: grid(music.Chords),
			Bass:   grid(music.Bass),
			Rhythm: grid(music.Rhythm),
		},
		Scale:         SnapshotScale{Root: p.Scale.Root, Mode: p.Scale.Mode.String()},
		BPM:           p.BPM,
		PatternLength: p.Length,
	}
}

// FromSnapshot rebuilds a pattern. Out-of-range cells and undefined tiers
// are dropped rather than erroring.
func FromSnapshot(snap Snapshot) Pattern {
	p := New()
	p = p.SetLength(snap.PatternLength)
	p = p.SetTempo(snap.BPM)
	p = p.SetScale(music.Scale{Root: snap.Scale.Root, Mode: music.ParseScaleMode(snap.Scale.Mode)})

	load := func(track music.Track, grid [][]int) {
		for slot, row := range grid {
			for step, v := range row {
				if v <= 0 {
					continue
				}
				p = p.SetCell(track, slot, step, Velocity(v))
			}
		}
	}
	load(music.Melody, snap.Tracks.Melody)
	load(music.Chords, snap.Tracks.Chords)
	load(music.Bass, snap.Tracks.Bass)
	load(music.Rhythm, snap.Tracks.Rhythm)
	return p
}

// snapshotDir is where saved patterns live.
func snapshotDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "gridstroke", "patterns"), nil
}

// SaveFile writes the pattern as JSON under the snapshot directory.
func (p Pattern) SaveFile(name string) error {
	dir, err := snapshotDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(p.Snapshot(), "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, name+".json"), data, 0644)
}

// LoadFile reads a saved pattern by name.
func LoadFile(name string) (Pattern, error) {
	dir, err := snapshotDir()
	if err != nil {
		return New(), err
	}
	data, err := os.ReadFile(filepath.Join(dir, name+".json"))
	if err != nil {
		return New(), err
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return New(), fmt.Errorf("parse pattern %s: %w", name, err)
	}
	return FromSnapshot(snap), nil
}
