package pattern

import (
	"testing"

	"gridstroke/music"
)

func TestUndoRedoRoundTrip(t *testing.T) {
	s := NewStore()
	p1 := s.Pattern().SetCell(music.Melody, 3, 0, Normal)
	s.Commit(p1)
	p2 := p1.SetCell(music.Melody, 5, 4, Accent)
	s.Commit(p2)

	if !s.Undo() {
		t.Fatal("undo should succeed")
	}
	if got := s.Pattern(); got != p1 {
		t.Fatal("undo did not restore previous snapshot")
	}
	if !s.Redo() {
		t.Fatal("redo should succeed")
	}
	if got := s.Pattern(); got != p2 {
		t.Fatal("redo did not restore forward snapshot")
	}
	// redo(undo(x)) == x and undo(redo(x)) == x away from the boundaries
	s.Undo()
	s.Redo()
	if s.Pattern() != p2 {
		t.Fatal("redo(undo(x)) != x")
	}
}

func TestUndoRedoBoundariesAreNoOps(t *testing.T) {
	s := NewStore()
	start := s.Pattern()
	if s.Undo() {
		t.Fatal("undo at index 0 should be a no-op")
	}
	if s.Pattern() != start {
		t.Fatal("undo at boundary changed state")
	}
	if s.Redo() {
		t.Fatal("redo at tail should be a no-op")
	}
	if s.Pattern() != start {
		t.Fatal("redo at boundary changed state")
	}
}

func TestCommitDiscardsForwardBranch(t *testing.T) {
	s := NewStore()
	p1 := s.Pattern().SetCell(music.Bass, 0, 0, Normal)
	s.Commit(p1)
	p2 := p1.SetCell(music.Bass, 1, 1, Normal)
	s.Commit(p2)
	s.Undo()

	p3 := s.Pattern().SetCell(music.Bass, 2, 2, Normal)
	s.Commit(p3)
	if s.Redo() {
		t.Fatal("stale forward branch should be gone after commit")
	}
	if s.Pattern() != p3 {
		t.Fatal("commit after rewind did not become current")
	}
}

func TestHistoryRingDropsOldest(t *testing.T) {
	s := NewStore()
	p := s.Pattern()
	for i := 0; i < HistoryLimit+20; i++ {
		p = p.SetCell(music.Rhythm, i%music.NumSlots, i%p.Length, Normal)
		s.Commit(p)
	}
	if s.Depth() != HistoryLimit {
		t.Fatalf("history depth = %d, want %d", s.Depth(), HistoryLimit)
	}
	// Rewind all the way: oldest retained state is not the initial one.
	for s.Undo() {
	}
	if s.Pattern() == New() {
		t.Fatal("oldest snapshot should have been dropped from the ring")
	}
}

func TestApplySkipsHistory(t *testing.T) {
	s := NewStore()
	depth := s.Depth()
	s.Apply(s.Pattern().SetCell(music.Chords, 2, 3, Accent))
	if s.Depth() != depth {
		t.Fatal("apply must not push a history snapshot")
	}
	if s.Pattern().Cell(music.Chords, 2, 3) != Accent {
		t.Fatal("apply did not mutate current snapshot")
	}
	if s.Undo() {
		t.Fatal("remote-applied edit must not be locally undoable")
	}
}

func TestSetCellClampsInvalidInput(t *testing.T) {
	p := New()
	if q := p.SetCell(music.Melody, -1, 0, Normal); q != p {
		t.Fatal("negative slot should be dropped")
	}
	if q := p.SetCell(music.Melody, 0, p.Length, Normal); q != p {
		t.Fatal("step past pattern length should be dropped")
	}
	if q := p.SetCell(music.Melody, 0, 0, Velocity(9)); q != p {
		t.Fatal("undefined velocity tier should be dropped")
	}
}

func TestAudibleSoloAndMute(t *testing.T) {
	p := New()
	if !p.Audible(music.Bass) {
		t.Fatal("default pattern should be fully audible")
	}
	p = p.SetMuted(music.Bass, true)
	if p.Audible(music.Bass) {
		t.Fatal("muted track should be silent")
	}
	p = p.SetSolo(music.Melody, true)
	if p.Audible(music.Chords) {
		t.Fatal("solo should make playback exclusive")
	}
	if !p.Audible(music.Melody) {
		t.Fatal("soloed track should be audible")
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	p := New().
		SetLength(12).
		SetTempo(140).
		SetScale(music.Scale{Root: 4, Mode: music.Minor}).
		SetCell(music.Melody, 2, 3, Normal).
		SetCell(music.Rhythm, 0, 0, Accent).
		SetCell(music.Rhythm, 0, 1, Sustain)

	got := FromSnapshot(p.Snapshot())
	if got.Length != 12 || got.BPM != 140 {
		t.Fatalf("length/bpm lost: %d %d", got.Length, got.BPM)
	}
	if got.Scale != p.Scale {
		t.Fatalf("scale lost: %+v", got.Scale)
	}
	for _, tr := range music.Tracks() {
		for slot := 0; slot < music.NumSlots; slot++ {
			for step := 0; step < got.Length; step++ {
				if got.Cell(tr, slot, step) != p.Cell(tr, slot, step) {
					t.Fatalf("cell %v/%d/%d mismatch", tr, slot, step)
				}
			}
		}
	}
}
