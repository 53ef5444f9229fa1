package playback

import (
	"testing"
	"time"

	"gridstroke/music"
	"gridstroke/pattern"
)

type recordingOutput struct {
	notes []struct {
		pitch int
		vel   pattern.Velocity
		track music.Track
		dur   time.Duration
	}
	drums []struct {
		slot int
		vel  pattern.Velocity
	}
}

func (r *recordingOutput) TriggerNote(pitch int, vel pattern.Velocity, track music.Track, dur time.Duration) {
	r.notes = append(r.notes, struct {
		pitch int
		vel   pattern.Velocity
		track music.Track
		dur   time.Duration
	}{pitch, vel, track, dur})
}

func (r *recordingOutput) TriggerDrum(slot int, vel pattern.Velocity) {
	r.drums = append(r.drums, struct {
		slot int
		vel  pattern.Velocity
	}{slot, vel})
}

func TestTickInterval(t *testing.T) {
	if got := TickInterval(120); got != 125*time.Millisecond {
		t.Fatalf("120 BPM: got %v, want 125ms", got)
	}
	if got := TickInterval(60); got != 250*time.Millisecond {
		t.Fatalf("60 BPM: got %v, want 250ms", got)
	}
}

func TestKickTriggersOncePerLoop(t *testing.T) {
	out := &recordingOutput{}
	s := NewScheduler(out)
	p := pattern.New().SetTempo(120).SetLength(16).
		SetCell(music.Rhythm, music.KickSlot, 0, pattern.Normal)

	s.Toggle()
	const loops = 3
	for i := 0; i < loops*p.Length; i++ {
		s.Tick(p)
	}
	if len(out.drums) != loops {
		t.Fatalf("kick fired %d times over %d loops, want %d", len(out.drums), loops, loops)
	}
	for _, d := range out.drums {
		if d.slot != music.KickSlot {
			t.Fatalf("wrong drum slot %d", d.slot)
		}
	}
}

func TestSustainContinuationNeverRetriggers(t *testing.T) {
	out := &recordingOutput{}
	s := NewScheduler(out)
	p := pattern.New().SetLength(16).
		SetCell(music.Melody, 4, 2, pattern.Accent).
		SetCell(music.Melody, 4, 3, pattern.Sustain).
		SetCell(music.Melody, 4, 4, pattern.Sustain).
		SetCell(music.Melody, 4, 5, pattern.Sustain)

	s.Toggle()
	for i := 0; i < p.Length; i++ {
		s.Tick(p)
	}
	if len(out.notes) != 1 {
		t.Fatalf("got %d note triggers, want 1", len(out.notes))
	}
	n := out.notes[0]
	if n.vel != pattern.Accent {
		t.Fatalf("trigger tier %d, want accent", n.vel)
	}
	want := 4 * TickInterval(p.BPM) // anchor + 3 continuation steps
	if n.dur != want {
		t.Fatalf("duration %v, want %v", n.dur, want)
	}
}

func TestMutedAndSoloRouting(t *testing.T) {
	out := &recordingOutput{}
	s := NewScheduler(out)
	p := pattern.New().SetLength(8).
		SetCell(music.Melody, 0, 0, pattern.Normal).
		SetCell(music.Bass, 0, 0, pattern.Normal).
		SetMuted(music.Melody, true)

	s.Toggle()
	for i := 0; i < p.Length; i++ {
		s.Tick(p)
	}
	if len(out.notes) != 1 || out.notes[0].track != music.Bass {
		t.Fatalf("muted track leaked: %+v", out.notes)
	}

	out.notes = nil
	p = p.SetMuted(music.Melody, false).SetSolo(music.Melody, true)
	for i := 0; i < p.Length; i++ {
		s.Tick(p)
	}
	if len(out.notes) != 1 || out.notes[0].track != music.Melody {
		t.Fatalf("solo not exclusive: %+v", out.notes)
	}
}

func TestShortenedLengthWrapsPlayhead(t *testing.T) {
	s := NewScheduler(nil)
	p := pattern.New().SetLength(32)
	s.Toggle()
	for i := 0; i < 20; i++ {
		s.Tick(p)
	}
	if s.Step() != 19 {
		t.Fatalf("playhead at %d, want 19", s.Step())
	}
	short := p.SetLength(8)
	if got := s.Tick(short); got >= short.Length {
		t.Fatalf("playhead %d not wrapped to shortened length", got)
	}
}

func TestNilOutputStillAdvances(t *testing.T) {
	s := NewScheduler(nil)
	p := pattern.New().SetCell(music.Rhythm, 0, 0, pattern.Normal)
	s.Toggle()
	if got := s.Tick(p); got != 0 {
		t.Fatalf("first tick at %d, want 0", got)
	}
	if got := s.Tick(p); got != 1 {
		t.Fatalf("second tick at %d, want 1", got)
	}
}

func TestStoppedTransportDoesNotAdvance(t *testing.T) {
	out := &recordingOutput{}
	s := NewScheduler(out)
	p := pattern.New().SetCell(music.Rhythm, 0, 0, pattern.Normal)
	for i := 0; i < 5; i++ {
		s.Tick(p)
	}
	if len(out.drums) != 0 {
		t.Fatal("stopped transport must not trigger")
	}
	if s.Step() != -1 {
		t.Fatalf("stopped transport moved to %d", s.Step())
	}
}
