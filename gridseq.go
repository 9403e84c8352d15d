// Package gridseq contains the domain model of a grid-based MIDI step
// sequencer: the pattern grid, the sample-accurate clock, the active-note
// set and the event/sink types through which the real-time engine talks
// to its host. The pattern, clock, note set and event sink are pure state
// with fixed-size storage; they do not allocate, block or perform I/O,
// so they are safe to touch from an audio callback. Snapshot persistence
// (snapshot.go) allocates and performs I/O and is not.
package gridseq

const (
	// MaxSteps is the number of columns in the pattern grid. Only the
	// first Pattern.Length() of them participate in playback.
	MaxSteps = 16

	// PitchRange is the number of rows in the pattern grid, one per MIDI
	// note number.
	PitchRange = 128

	// VisibleRows is the height of the viewport exposed to the editor and
	// the hardware controller.
	VisibleRows = 8

	// VisibleCols is the width of one hardware page.
	VisibleCols = 8
)

const (
	MinLength          = 1
	DefaultLength      = 8
	DefaultPitchOffset = 36 // C2 at the bottom of the viewport
	DefaultTempo       = 120
	MaxPitchOffset     = PitchRange - VisibleRows
)

// NoteOnVelocity is the fixed velocity of every emitted Note On.
const NoteOnVelocity = 100
