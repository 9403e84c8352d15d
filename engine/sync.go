package engine

import "github.com/gridseq/gridseq"

// readControls applies the persistent scalar inputs that are not
// coordinates: sequence length (edge-detected, clamped by the pattern)
// and the note-off filter.
func (e *Engine) readControls(c *Controls) {
	if c.SeqLength != e.prevLength {
		e.prevLength = c.SeqLength
		e.pattern.SetLength(int(c.SeqLength))
		e.bumpGridChanged()
		e.ledsDirty = true
	}
	e.noteOffFilter = c.MIDIFilter > 0.5
}

// readGridControls turns the persistent coordinate pair into
// edge-triggered edits: a valid coordinate toggles a viewport cell, the
// negative sentinels trigger their actions, anything else is reserved
// and ignored. Each transition acts exactly once.
func (e *Engine) readGridControls(c *Controls) {
	gx, gy := c.GridX, c.GridY
	if gx == e.prevGridX && gy == e.prevGridY {
		return
	}
	e.prevGridX, e.prevGridY = gx, gy
	switch {
	case gx >= 0:
		x, y := int(gx), int(gy)
		if x >= gridseq.MaxSteps || gy < 0 || y >= gridseq.VisibleRows {
			return
		}
		if e.pattern.Toggle(x, e.pattern.PitchOffset()+y) {
			e.bumpGridChanged()
			e.ledsDirty = true
			e.notifyPending = true
		}
	case gx == SentinelReset:
		e.resetController()
	case gx == SentinelInquiry:
		e.inquiryPending = true
	case gx == SentinelClear:
		e.pattern.ClearAll()
		e.bumpGridChanged()
		e.ledsDirty = true
		e.notifyPending = true
	case gx == SentinelRecenter:
		e.pattern.SetPitchOffset(gridseq.DefaultPitchOffset)
		e.ledsDirty = true
	}
}

// writeControls publishes the observable state of the just-finished
// tick. Each scalar is a single store; the host delivers them to the
// editor asynchronously.
func (e *Engine) writeControls(c *Controls) {
	c.CurrentStep = float32(e.clock.CurrentStep(e.pattern.Length()))
	c.GridChanged = float32(e.gridChanged)
	c.SeqLengthOut = float32(e.pattern.Length())
	c.PitchOffsetOut = float32(e.pattern.PitchOffset())
	for x := 0; x < gridseq.MaxSteps; x++ {
		c.Rows[x] = float32(e.pattern.PackVisibleRow(x))
	}
}

// emitNotify sends the 64-byte viewport blob after any pattern
// mutation, as a consistency beacon for the editor.
func (e *Engine) emitNotify(out *gridseq.EventSink) {
	if !e.notifyPending {
		return
	}
	e.notifyPending = false
	var blob [gridseq.VisibleCols * gridseq.VisibleRows]byte
	page := e.pattern.HardwarePage()
	offset := e.pattern.PitchOffset()
	for x := 0; x < gridseq.VisibleCols; x++ {
		for y := 0; y < gridseq.VisibleRows; y++ {
			if e.pattern.Cell(x+gridseq.VisibleCols*page, offset+y) {
				blob[x*gridseq.VisibleRows+y] = 1
			}
		}
	}
	out.EmitRaw(0, blob[:])
}
