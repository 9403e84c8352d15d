package engine

import "github.com/gridseq/gridseq"

// MIDI status bytes emitted on channel 0.
const (
	statusNoteOff = 0x80
	statusNoteOn  = 0x90
	statusCC      = 0xB0
)

// processPlayback is the transport/playback phase of the tick: it
// flushes a pending all-notes-off, handles the first-run trigger of step
// zero, then advances the clock and emits notes at every crossed
// boundary in offset order.
func (e *Engine) processPlayback(out *gridseq.EventSink, nSamples int) {
	if e.allOffPending {
		e.flushActive(out, 0)
		e.allOffPending = false
	}
	if !e.clock.Playing() {
		return
	}
	length := e.pattern.Length()
	if e.firstRun {
		// step zero sounds on the very first tick after start, even
		// though no boundary has been crossed yet
		e.emitStepOn(out, e.clock.CurrentStep(length), 0)
		e.firstRun = false
	}
	e.clock.Advance(nSamples, func(x gridseq.Crossing) {
		switch x.Kind {
		case gridseq.StepStart:
			e.emitStepOn(out, int(x.Step%uint64(length)), x.Offset)
			e.ledsDirty = true
		case gridseq.MidStep:
			if !e.noteOffFilter {
				e.flushActive(out, x.Offset)
			}
		}
	})
}

// emitStepOn sends a Note On for every active cell of the column and
// marks the pitches as sounding.
func (e *Engine) emitStepOn(out *gridseq.EventSink, step, offset int) {
	e.pattern.RangeColumn(step, func(pitch int) {
		out.Emit3(offset, statusNoteOn, byte(pitch), gridseq.NoteOnVelocity)
		e.active.Mark(pitch)
	})
}

// flushActive sends a Note Off for every sounding pitch and empties the
// active set.
func (e *Engine) flushActive(out *gridseq.EventSink, offset int) {
	e.active.Range(func(pitch int) {
		out.Emit3(offset, statusNoteOff, byte(pitch), 0)
	})
	e.active.Clear()
}
