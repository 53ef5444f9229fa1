// Package midigrid drives MIDI grid controllers (Launchpads) as a second
// stroke surface: pad presses become strokes, and the pattern is mirrored
// back to the pads as color.
package midigrid

// PadEvent is sent when a pad is pressed or released on a grid controller.
type PadEvent struct {
	Row, Col int
	Pressed  bool
	Velocity uint8
}

// LEDUpdate is one pad color change.
type LEDUpdate struct {
	Row, Col int
	Color    [3]uint8
	Channel  uint8
}

// Channel modes for LED updates.
const (
	ChannelStatic uint8 = 0 // solid color
	ChannelFlash  uint8 = 1 // flashing A/B alternating
	ChannelPulse  uint8 = 2 // pulsing (fades)
)

// Controller is the interface for grid input/output devices.
type Controller interface {
	ID() string

	// Input events from the controller
	PadEvents() <-chan PadEvent

	// Output to the controller
	SetLEDBatch(updates []LEDUpdate) error
	ClearLEDs() error

	// Lifecycle
	Close() error
}
