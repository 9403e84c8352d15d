// Package engine implements the real-time sequencing core: a fixed-order
// per-buffer tick that drains host input events, applies editor edits,
// advances the clock, emits Note On/Off at sample offsets and mirrors the
// pattern onto a grid controller. Engine.Process is meant to be called
// from an audio callback; it never allocates, locks or blocks, and all
// state it touches is owned by the calling thread.
package engine

import (
	"errors"

	"github.com/gridseq/gridseq"
)

// Engine is one sequencer instance. All methods must be called from the
// same goroutine that calls Process; the host mediates everything else
// through the Ports.
type Engine struct {
	pattern gridseq.Pattern
	clock   gridseq.Clock
	active  gridseq.NoteSet

	firstRun      bool
	noteOffFilter bool
	allOffPending bool

	modeEntered    bool
	exitPending    bool
	inquiryPending bool
	ledsDirty      bool
	prevLEDStep    int

	gridChanged   uint32
	notifyPending bool

	prevGridX  float32
	prevGridY  float32
	prevLength float32
}

// New creates an engine for the given sample rate. A non-positive rate
// is a programmer error and yields a nil engine.
func New(sampleRate float64) (*Engine, error) {
	if sampleRate <= 0 {
		return nil, errors.New("engine: sample rate must be positive")
	}
	return &Engine{
		pattern:     gridseq.NewPattern(),
		clock:       gridseq.NewClock(sampleRate),
		prevGridX:   -1,
		prevGridY:   -1,
		prevLength:  gridseq.DefaultLength,
		prevLEDStep: -1,
		ledsDirty:   true,
	}, nil
}

// Activate resets playback: the clock restarts from step zero, the first
// tick re-triggers step zero at offset zero, whatever notes were left
// sounding are released, and the controller re-enters programmer mode.
// Pattern content survives activate/deactivate cycles.
func (e *Engine) Activate() {
	e.allOffPending = true
	e.clock.Start()
	e.firstRun = true
	e.modeEntered = false
	e.ledsDirty = true
	e.prevLEDStep = -1
}

// Deactivate acts as a stop edge: the next tick (if any) emits a Note
// Off for every sounding note and no further notes.
func (e *Engine) Deactivate() {
	e.clock.Stop()
	e.firstRun = false
	e.allOffPending = true
}

// SetSampleRate forwards a host sample-rate change to the clock.
func (e *Engine) SetSampleRate(rate float64) { e.clock.SetSampleRate(rate) }

// Pattern exposes the pattern for host-side snapshot save/restore. Must
// only be touched between ticks, from the processing thread.
func (e *Engine) Pattern() *gridseq.Pattern { return &e.pattern }

// ApplySnapshot replaces the pattern content between ticks, on the
// processing thread: host chunk restore and editor file loads land
// here. The change propagates like any other edit: counter bump, LED
// repaint, notification blob.
func (e *Engine) ApplySnapshot(s gridseq.Snapshot) {
	s.Apply(&e.pattern)
	e.bumpGridChanged()
	e.ledsDirty = true
	e.notifyPending = true
}

// Playing reports whether the transport is running.
func (e *Engine) Playing() bool { return e.clock.Playing() }

// CurrentStep returns the playhead column.
func (e *Engine) CurrentStep() int { return e.clock.CurrentStep(e.pattern.Length()) }

// Process runs one tick of nSamples. The fixed phase order is part of
// the host contract: scalar inputs, input events, editor coordinates,
// output sequence start, device mode, playback, LED refresh, observable
// outputs.
func (e *Engine) Process(p *Ports, nSamples int) {
	if p == nil || nSamples < 0 {
		return
	}

	e.readControls(&p.Controls)

	for i := range p.Events {
		ev := &p.Events[i]
		switch ev.Kind {
		case gridseq.KindPosition:
			e.decodeTransport(ev)
		case gridseq.KindMIDI:
			e.decodeMIDI(ev.Bytes())
		}
	}

	e.readGridControls(&p.Controls)

	p.MIDIOut.Begin()
	p.HWOut.Begin()
	p.Notify.Begin()

	e.emitMode(&p.MIDIOut, &p.HWOut)
	e.processPlayback(&p.MIDIOut, nSamples)
	e.refreshLEDs(&p.HWOut)
	e.writeControls(&p.Controls)
	e.emitNotify(&p.Notify)
}

func (e *Engine) bumpGridChanged() {
	e.gridChanged = (e.gridChanged + 1) % 1000000
}
