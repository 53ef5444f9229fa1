package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"gridstroke/audio"
	"gridstroke/config"
	"gridstroke/debug"
	"gridstroke/engine"
	"gridstroke/midigrid"
	"gridstroke/projector"
	"gridstroke/session"
	"gridstroke/theme"
	"gridstroke/tui"
)

func main() {
	var (
		hostPeers = flag.String("host", "", "host a session, broadcasting to these comma-separated viewer addresses")
		listen    = flag.String("listen", "", "follow a session, listening on this address")
		name      = flag.String("name", "", "display name in the session")
		synth     = flag.Bool("synth", false, "use the built-in synth instead of MIDI out")
		midiPort  = flag.String("midiport", "", "MIDI output port (empty = first available)")
		palette   = flag.String("palette", "", "GPL palette file (empty = built-in)")
		debugLog  = flag.Bool("debug", false, "write a debug log under ~/.config/gridstroke")
	)
	flag.Parse()

	if *debugLog {
		if err := debug.Enable(); err != nil {
			fmt.Printf("debug log: %v\n", err)
		}
		defer debug.Disable()
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("config: %v\n", err)
		os.Exit(1)
	}
	if *synth {
		cfg.Audio.UseSynth = true
	}
	if *midiPort != "" {
		cfg.Audio.MIDIPort = *midiPort
	}
	if *palette != "" {
		cfg.UI.PaletteFile = *palette
	}
	if *name != "" {
		cfg.Session.DisplayName = *name
	}
	if *listen != "" {
		cfg.Session.ListenAddr = *listen
	}
	if *hostPeers != "" {
		cfg.Session.HostPeers = strings.Split(*hostPeers, ",")
	}

	th := theme.New(theme.LoadGPLOrDefault(cfg.UI.PaletteFile))

	// Sound stays locked until the first key or mouse event, so a terminal
	// opening the app never grabs the audio device or MIDI port unprompted.
	gate := audio.NewGate(func() (audio.Out, error) {
		if cfg.Audio.UseSynth {
			s, err := audio.NewSynth()
			if err != nil {
				return nil, err
			}
			return s, nil
		}
		out, err := audio.NewMIDIOut(cfg.Audio.MIDIPort)
		if err != nil {
			return nil, err
		}
		return out, nil
	})

	eng := engine.New(gate)
	eng.Restore(cfg.UI.LastTempo, cfg.UI.Ghost)

	// Session roles: the host pushes every committed edit to its viewers,
	// viewers apply them verbatim and never write back.
	if cfg.Session.ListenAddr != "" {
		transport, err := session.ListenRPC(cfg.Session.ListenAddr)
		if err != nil {
			fmt.Printf("listen %s: %v\n", cfg.Session.ListenAddr, err)
			os.Exit(1)
		}
		viewer, err := session.NewViewer(transport, "", cfg.Session.DisplayName)
		if err != nil {
			fmt.Printf("join session: %v\n", err)
			os.Exit(1)
		}
		defer viewer.Close()
		eng.SetViewer(viewer)
	} else if len(cfg.Session.HostPeers) > 0 {
		transport := session.DialRPC(cfg.Session.HostPeers...)
		host, err := session.NewHost(transport, "", cfg.Session.DisplayName)
		if err != nil {
			fmt.Printf("host session: %v\n", err)
			os.Exit(1)
		}
		defer host.Close()
		eng.SetHost(host)
	}

	eng.Start()
	defer eng.Stop()

	// Grid controllers hot-plug through the device manager; the surface
	// mirrors the pattern to their pads and turns presses into strokes.
	deviceMgr := midigrid.NewDeviceManager()
	surface := midigrid.NewSurface(eng, projector.New(th))
	surface.Start()
	defer surface.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go deviceMgr.Run(ctx)

	m := tui.NewModel(eng, deviceMgr, surface, th)
	m.Unlock = gate.Unlock
	m.Config = cfg

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	// Remember tempo and ghost preference for the next run.
	f := eng.Frame()
	cfg.UI.LastTempo = f.Pattern.BPM
	cfg.UI.Ghost = f.Ghost
	if err := cfg.Save(); err != nil {
		fmt.Printf("config save: %v\n", err)
	}
}
