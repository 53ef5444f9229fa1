// Command miditest probes the MIDI setup gridstroke depends on: port
// listing, Launchpad detection, Programmer-mode SysEx, pad colors and
// hot-plug polling.
package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"gridstroke/music"
	"gridstroke/theme"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	switch os.Args[1] {
	case "list":
		listPorts()
	case "detect":
		detectLaunchpad()
	case "sysex":
		testSysEx()
	case "leds":
		testLEDs()
	case "note":
		testNote()
	case "poll":
		pollDevices()
	default:
		usage()
	}
}

func usage() {
	fmt.Println("gridstroke MIDI probe")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  list    - List all MIDI ports")
	fmt.Println("  detect  - Find Launchpad X")
	fmt.Println("  sysex   - Send programmer mode SysEx")
	fmt.Println("  leds    - Paint the track color bands on the pads")
	fmt.Println("  note    - Send a test note to the first output port")
	fmt.Println("  poll    - Poll for device changes")
}

func listPorts() {
	fmt.Println("=== MIDI Input Ports ===")
	fmt.Println("(waiting up to 3 seconds...)")

	type result struct {
		ins  []drivers.In
		outs []drivers.Out
	}
	ch := make(chan result, 1)
	go func() {
		ins := midi.GetInPorts()
		outs := midi.GetOutPorts()
		ch <- result{ins: ins, outs: outs}
	}()

	select {
	case r := <-ch:
		for i, p := range r.ins {
			fmt.Printf("  %d: %s\n", i, p.String())
		}
		fmt.Println("\n=== MIDI Output Ports ===")
		for i, p := range r.outs {
			fmt.Printf("  %d: %s\n", i, p.String())
		}
	case <-time.After(3 * time.Second):
		fmt.Println("\nTIMEOUT! CoreMIDI is hung.")
		fmt.Println("Fix: sudo killall coreaudiod midiserver")
	}
}

func isLaunchpadName(name string) bool {
	name = strings.ToLower(name)
	return strings.Contains(name, "launchpad") && strings.Contains(name, "midi")
}

func launchpadOut() drivers.Out {
	for _, p := range midi.GetOutPorts() {
		if isLaunchpadName(p.String()) {
			return p
		}
	}
	return nil
}

func detectLaunchpad() {
	fmt.Println("Looking for Launchpad X...")

	var inFound, outFound bool
	for i, p := range midi.GetInPorts() {
		if isLaunchpadName(p.String()) {
			fmt.Printf("Found input: %d: %s\n", i, p.String())
			inFound = true
		}
	}
	for i, p := range midi.GetOutPorts() {
		if isLaunchpadName(p.String()) {
			fmt.Printf("Found output: %d: %s\n", i, p.String())
			outFound = true
		}
	}

	if inFound && outFound {
		fmt.Println("\nLaunchpad X detected!")
	} else {
		fmt.Println("\nLaunchpad X not found")
	}
}

func testSysEx() {
	fmt.Println("Sending SysEx to switch to Programmer mode...")

	outPort := launchpadOut()
	if outPort == nil {
		fmt.Println("No Launchpad found")
		return
	}
	fmt.Printf("Using output: %s\n", outPort.String())

	send, err := midi.SendTo(outPort)
	if err != nil {
		fmt.Printf("Error opening port: %v\n", err)
		return
	}

	// Switch to Programmer mode: F0 00 20 29 02 0C 00 7F F7
	fmt.Println("Sending: Programmer mode (layout 0x7F)")
	if err := send(midi.SysEx([]byte{0x00, 0x20, 0x29, 0x02, 0x0C, 0x00, 0x7F})); err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	time.Sleep(100 * time.Millisecond)

	// Enable LED feedback: F0 00 20 29 02 0C 0A 01 01 F7
	fmt.Println("Sending: Enable LED feedback")
	if err := send(midi.SysEx([]byte{0x00, 0x20, 0x29, 0x02, 0x0C, 0x0A, 0x01, 0x01})); err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	fmt.Println("Done! Launchpad should now be in Programmer mode")
}

// testLEDs paints each pad row in the color of the track it would show in
// the app: two rows per track, rhythm at the bottom.
func testLEDs() {
	outPort := launchpadOut()
	if outPort == nil {
		fmt.Println("No Launchpad found")
		return
	}

	send, err := midi.SendTo(outPort)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	// First ensure programmer mode
	send(midi.SysEx([]byte{0x00, 0x20, 0x29, 0x02, 0x0C, 0x00, 0x7F}))
	time.Sleep(100 * time.Millisecond)

	th := theme.New(theme.Default())
	// Launchpad X velocity palette approximations of the four track hues.
	velocities := map[music.Track]uint8{
		music.Melody: 13, // yellow
		music.Chords: 9,  // orange
		music.Bass:   53, // pink
		music.Rhythm: 49, // purple
	}

	fmt.Println("Painting track bands (bottom to top: rhythm, bass, chords, melody)...")
	tracks := music.Tracks()
	for row := 0; row < 8; row++ {
		track := tracks[len(tracks)-1-row/2]
		rgb := theme.ToRGB(th.TrackColor(track))
		fmt.Printf("  row %d: %-6s #%02x%02x%02x\n", row, track, rgb[0], rgb[1], rgb[2])
		for col := 0; col < 8; col++ {
			note := uint8((row+1)*10 + col + 1)
			send(midi.NoteOn(0, note, velocities[track]))
		}
		time.Sleep(50 * time.Millisecond)
	}

	fmt.Println("Press Enter to clear...")
	fmt.Scanln()

	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			note := uint8((row+1)*10 + col + 1)
			send(midi.NoteOn(0, note, 0))
		}
	}

	fmt.Println("Done!")
}

// testNote plays middle C on the first non-Launchpad output, the port the
// app would pick by default.
func testNote() {
	var outPort drivers.Out
	for _, p := range midi.GetOutPorts() {
		if !isLaunchpadName(p.String()) {
			outPort = p
			break
		}
	}
	if outPort == nil {
		fmt.Println("No output port found")
		return
	}

	send, err := midi.SendTo(outPort)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	fmt.Printf("Playing C4 on %s\n", outPort.String())
	send(midi.NoteOn(0, 60, 100))
	time.Sleep(500 * time.Millisecond)
	send(midi.NoteOff(0, 60))
	fmt.Println("Done!")
}

func pollDevices() {
	fmt.Println("Polling for device changes every 2 seconds...")
	fmt.Println("Connect/disconnect Launchpad to test. Ctrl+C to exit.")

	lastIn := ""
	lastOut := ""

	for {
		ins := midi.GetInPorts()
		outs := midi.GetOutPorts()

		// Build current state
		var inNames, outNames []string
		for _, p := range ins {
			inNames = append(inNames, p.String())
		}
		for _, p := range outs {
			outNames = append(outNames, p.String())
		}

		currentIn := strings.Join(inNames, ",")
		currentOut := strings.Join(outNames, ",")

		if currentIn != lastIn || currentOut != lastOut {
			fmt.Printf("\n[%s] Device change detected!\n", time.Now().Format("15:04:05"))
			fmt.Printf("  Inputs: %v\n", inNames)
			fmt.Printf("  Outputs: %v\n", outNames)

			for _, name := range inNames {
				if strings.Contains(strings.ToLower(name), "launchpad") {
					fmt.Println("  -> Launchpad detected!")
				}
			}

			lastIn = currentIn
			lastOut = currentOut
		}

		time.Sleep(2 * time.Second)
	}
}
