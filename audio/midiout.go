package audio

import (
	"sync"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register MIDI driver

	"gridstroke/debug"
	"gridstroke/music"
	"gridstroke/pattern"
)

// Track to MIDI channel mapping; rhythm lands on the GM drum channel.
var trackChannels = [music.NumTracks]uint8{
	music.Melody: 0,
	music.Chords: 1,
	music.Bass:   2,
	music.Rhythm: 9,
}

// MIDIOut plays triggers on an external MIDI port.
type MIDIOut struct {
	portName string

	mu     sync.Mutex
	sender func(gomidi.Message) error
}

// NewMIDIOut opens the named output port, or the first available port when
// name is empty.
func NewMIDIOut(portName string) (*MIDIOut, error) {
	m := &MIDIOut{portName: portName}
	if err := m.open(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *MIDIOut) open() error {
	ports := gomidi.GetOutPorts()
	for _, port := range ports {
		if m.portName == "" || port.String() == m.portName {
			sender, err := gomidi.SendTo(port)
			if err != nil {
				return err
			}
			m.mu.Lock()
			m.sender = sender
			m.mu.Unlock()
			debug.Log("midi", "output open: %s", port.String())
			return nil
		}
	}
	debug.Log("midi", "no output port matching %q, triggers will be dropped", m.portName)
	return nil
}

func (m *MIDIOut) send(msg gomidi.Message) {
	m.mu.Lock()
	sender := m.sender
	m.mu.Unlock()
	if sender == nil {
		return
	}
	if err := sender(msg); err != nil {
		debug.LogEvery(50, "midi", "send failed: %v", err)
	}
}

// TriggerNote sends note on, then note off after the sustain duration.
func (m *MIDIOut) TriggerNote(pitch int, vel pattern.Velocity, track music.Track, dur time.Duration) {
	if pitch < 0 || pitch > 127 || track < 0 || track >= music.NumTracks {
		return
	}
	ch := trackChannels[track]
	note := uint8(pitch)
	m.send(gomidi.NoteOn(ch, note, velocityFor(vel)))
	go func() {
		time.Sleep(dur)
		m.send(gomidi.NoteOff(ch, note))
	}()
}

// TriggerDrum sends a short hit on the drum channel.
func (m *MIDIOut) TriggerDrum(slot int, vel pattern.Velocity) {
	ch := trackChannels[music.Rhythm]
	note := music.DrumNote(slot)
	m.send(gomidi.NoteOn(ch, note, velocityFor(vel)))
	go func() {
		time.Sleep(50 * time.Millisecond)
		m.send(gomidi.NoteOff(ch, note))
	}()
}

// Close frees the MIDI driver resources.
func (m *MIDIOut) Close() {
	m.mu.Lock()
	m.sender = nil
	m.mu.Unlock()
	gomidi.CloseDriver()
}
