package audio

import (
	"encoding/binary"
	"math"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"

	"gridstroke/music"
	"gridstroke/pattern"
)

const synthSampleRate = 44100

// Synth is a small built-in oscillator bank so the sequencer is audible
// without MIDI hardware. One voice per trigger, linear decay, mono mix.
type Synth struct {
	otoCtx    *oto.Context
	otoPlayer *oto.Player

	mu     sync.Mutex
	voices []*voice
}

type voice struct {
	freq   float64
	phase  float64
	amp    float64
	decay  float64 // amp units per sample
	noise  bool    // drum hits are filtered noise bursts
	nstate uint32
}

// NewSynth opens the audio device. The returned synth satisfies Out.
func NewSynth() (*Synth, error) {
	op := &oto.NewContextOptions{
		SampleRate:   synthSampleRate,
		ChannelCount: 1,
		Format:       oto.FormatSignedInt16LE,
	}
	otoCtx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, err
	}
	<-ready

	s := &Synth{otoCtx: otoCtx}
	s.otoPlayer = otoCtx.NewPlayer(&synthStream{s: s})
	s.otoPlayer.SetBufferSize(synthSampleRate / 10) // 100ms buffer
	s.otoPlayer.Play()
	return s, nil
}

// Close stops the audio output.
func (s *Synth) Close() {
	if s.otoPlayer != nil {
		s.otoPlayer.Close()
	}
}

// noteToFreq converts a MIDI note number to frequency (A4 = 69 = 440Hz).
func noteToFreq(note int) float64 {
	return 440.0 * math.Pow(2.0, float64(note-69)/12.0)
}

// TriggerNote starts a decaying oscillator voice.
func (s *Synth) TriggerNote(pitch int, vel pattern.Velocity, track music.Track, dur time.Duration) {
	if pitch < 0 || pitch > 127 {
		return
	}
	amp := 0.2
	if vel == pattern.Accent {
		amp = 0.3
	}
	samples := float64(dur) / float64(time.Second) * synthSampleRate
	if samples < 1 {
		samples = synthSampleRate / 10
	}
	s.addVoice(&voice{
		freq:  noteToFreq(pitch),
		amp:   amp,
		decay: amp / samples,
	})
}

// TriggerDrum starts a noise burst, pitched down for the low slots.
func (s *Synth) TriggerDrum(slot int, vel pattern.Velocity) {
	amp := 0.25
	if vel == pattern.Accent {
		amp = 0.35
	}
	// Kick and toms get a short sine thump instead of noise.
	if slot == music.KickSlot || slot == 6 || slot == 7 {
		s.addVoice(&voice{
			freq:  noteToFreq(int(music.DrumNote(slot))) / 4,
			amp:   amp,
			decay: amp / (synthSampleRate * 0.15),
		})
		return
	}
	s.addVoice(&voice{
		noise:  true,
		nstate: uint32(slot + 1),
		amp:    amp,
		decay:  amp / (synthSampleRate * 0.08),
	})
}

func (s *Synth) addVoice(v *voice) {
	s.mu.Lock()
	defer s.mu.Unlock()
	// Bound the mix; the oldest voice is the quietest by construction.
	if len(s.voices) >= 32 {
		s.voices = s.voices[1:]
	}
	s.voices = append(s.voices, v)
}

// mix renders the next block of samples into buf and retires dead voices.
func (s *Synth) mix(buf []float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range buf {
		buf[i] = 0
	}
	live := s.voices[:0]
	for _, v := range s.voices {
		for i := range buf {
			if v.amp <= 0 {
				break
			}
			buf[i] += v.sample()
		}
		if v.amp > 0 {
			live = append(live, v)
		}
	}
	s.voices = live
}

func (v *voice) sample() float64 {
	var out float64
	if v.noise {
		// xorshift noise
		v.nstate ^= v.nstate << 13
		v.nstate ^= v.nstate >> 17
		v.nstate ^= v.nstate << 5
		out = (float64(v.nstate)/float64(math.MaxUint32)*2 - 1) * v.amp
	} else {
		out = math.Sin(2*math.Pi*v.phase) * v.amp
		v.phase += v.freq / synthSampleRate
		if v.phase >= 1 {
			v.phase -= 1
		}
	}
	v.amp -= v.decay
	return out
}

// synthStream implements io.Reader for oto.
type synthStream struct {
	s   *Synth
	buf []float64
}

func (st *synthStream) Read(p []byte) (int, error) {
	n := len(p) / 2
	if cap(st.buf) < n {
		st.buf = make([]float64, n)
	}
	buf := st.buf[:n]
	st.s.mix(buf)

	for i, sample := range buf {
		if sample > 1.0 {
			sample = 1.0
		}
		if sample < -1.0 {
			sample = -1.0
		}
		s16 := int16(sample * 32767)
		binary.LittleEndian.PutUint16(p[i*2:], uint16(s16))
	}
	return n * 2, nil
}
