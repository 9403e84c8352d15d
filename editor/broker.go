// Package editor is the terminal editor for the sequencer. It never
// touches engine state directly: edits travel to the host as messages
// that the host applies before the next tick (as control-channel writes,
// transport events or snapshot loads), and the engine's observable
// outputs travel back as Status snapshots.
package editor

import "github.com/gridseq/gridseq"

type (
	// Broker carries the two directions of the editor-host channel
	// pair. Sends from the tick thread are always non-blocking; a full
	// channel drops the message, never stalls the audio callback.
	Broker struct {
		ToHost   chan any
		ToEditor chan Status
	}

	// GridMsg toggles the viewport cell at (X, Y).
	GridMsg struct{ X, Y int }
	// SentinelMsg triggers one of the engine's coordinate-channel
	// sentinel actions.
	SentinelMsg struct{ Value float32 }
	// LengthMsg sets the sequence length.
	LengthMsg struct{ Length int }
	// FilterMsg sets the mid-step note-off filter.
	FilterMsg struct{ On bool }
	// PlayMsg starts or stops the standalone transport.
	PlayMsg struct{ On bool }
	// TempoMsg sets the standalone transport tempo.
	TempoMsg struct{ BPM float64 }
	// LoadMsg replaces the pattern with a snapshot between ticks.
	LoadMsg struct{ Snapshot gridseq.Snapshot }
	// SaveRequestMsg asks the host for a snapshot of the live pattern.
	SaveRequestMsg struct{ Reply chan gridseq.Snapshot }

	// Status is the per-tick observable state pushed to the editor.
	Status struct {
		CurrentStep int
		Length      int
		PitchOffset int
		GridChanged uint32
		Playing     bool
		Tempo       float64
		Rows        [gridseq.MaxSteps]byte
	}
)

// NewBroker creates the channel pair with enough slack that the editor
// never back-pressures the host.
func NewBroker() *Broker {
	return &Broker{
		ToHost:   make(chan any, 64),
		ToEditor: make(chan Status, 64),
	}
}

// TrySend sends v if the channel has room and reports whether it did.
func TrySend[T any](c chan<- T, v T) bool {
	select {
	case c <- v:
		return true
	default:
		return false
	}
}
