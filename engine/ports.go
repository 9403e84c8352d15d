package engine

import "github.com/gridseq/gridseq"

type (
	// Ports is the per-tick exchange surface between the host and the
	// engine. The host fills Events and the control inputs before each
	// Process call, binds the three sinks to preallocated buffers once,
	// and reads the sinks and control outputs afterwards. Nothing in
	// Ports is shared between threads during a tick.
	Ports struct {
		// Events is the time-ordered input stream for this tick: raw
		// MIDI from the controller and transport updates from the host.
		Events []gridseq.Event

		// MIDIOut carries the sequenced Note On/Off stream plus the
		// programmer-mode and device-inquiry sysex.
		MIDIOut gridseq.EventSink
		// HWOut carries LED updates and sysex for the grid controller.
		HWOut gridseq.EventSink
		// Notify carries the 64-byte viewport blob sent to the editor
		// after pattern mutations.
		Notify gridseq.EventSink

		Controls Controls
	}

	// Controls are the persistent scalar channels. Inputs keep their
	// value across ticks and are edge-detected inside the engine;
	// outputs are rewritten every tick.
	Controls struct {
		// GridX carries either a step coordinate or one of the action
		// sentinels; GridY a viewport row. Idle hosts hold both at -1,
		// which matches the engine's initial edge-detection state.
		GridX float32
		GridY float32
		// SeqLength is the editor's sequence length request, 1..16.
		SeqLength float32
		// MIDIFilter suppresses mid-step Note Offs when above 0.5.
		MIDIFilter float32

		// CurrentStep is the playhead column after the tick.
		CurrentStep float32
		// GridChanged is a rolling change counter, mod 1e6.
		GridChanged float32
		// SeqLengthOut and PitchOffsetOut echo the effective viewport
		// state, which hardware buttons can move without the editor's
		// involvement.
		SeqLengthOut   float32
		PitchOffsetOut float32
		// Rows pack the visible 8-row slice of each column, bit y set
		// iff the cell at (x, pitchOffset+y) is active.
		Rows [gridseq.MaxSteps]float32
	}
)

// Action sentinels accepted on the GridX channel. Negative values that
// match none of these are reserved and ignored.
const (
	SentinelReset    = -100 // exit programmer mode now, re-enter next tick
	SentinelInquiry  = -200 // emit a universal device inquiry on both outputs
	SentinelClear    = -300 // clear every pattern cell
	SentinelRecenter = -400 // reset the pitch offset to the default
)
