package engine

import "github.com/gridseq/gridseq"

// Launchpad programmer-mode protocol. The sysex patterns and the pad
// note layout (11 + x + 10y over an 8x8 matrix) are fixed by the device;
// they must match byte for byte.
var (
	// EnterProgrammerMode puts the device under direct LED control.
	EnterProgrammerMode = []byte{0xF0, 0x00, 0x20, 0x29, 0x02, 0x0D, 0x0E, 0x01, 0xF7}
	// ExitProgrammerMode returns the device to its standalone mode.
	ExitProgrammerMode = []byte{0xF0, 0x00, 0x20, 0x29, 0x02, 0x0D, 0x0E, 0x00, 0xF7}
	// DeviceInquiry is the universal identity request.
	DeviceInquiry = []byte{0xF0, 0x7E, 0x7F, 0x06, 0x01, 0xF7}
)

// Color palette indices of the device.
const (
	ColorOff      = 0
	ColorWhite    = 3
	ColorRed      = 5
	ColorYellow   = 13
	ColorGreen    = 21
	ColorDimGreen = 23
)

// Auxiliary buttons (top row CCs).
const (
	ccPitchDown = 91
	ccPitchUp   = 92
	ccPageZero  = 93
	ccPageOne   = 94
)

const (
	padNoteMin = 11
	padNoteMax = 88
)

// decodeMIDI scans one raw MIDI message byte-wise, the way the device
// stream arrives: pad presses become pattern toggles, aux CCs become
// navigation, anything malformed or unknown is skipped until the next
// status byte.
func (e *Engine) decodeMIDI(b []byte) {
	for i := 0; i < len(b); {
		status := b[i]
		switch status & 0xF0 {
		case statusNoteOn:
			if i+2 >= len(b) {
				return
			}
			if vel := b[i+2]; vel > 0 {
				e.padPressed(b[i+1])
			}
			i += 3
		case statusNoteOff:
			if i+2 >= len(b) {
				return
			}
			i += 3
		case statusCC:
			if i+2 >= len(b) {
				return
			}
			if val := b[i+2]; val > 0 {
				e.auxPressed(b[i+1])
			}
			i += 3
		case 0xF0:
			if status != 0xF0 {
				i++ // other system messages carry no data we care about
				continue
			}
			for i++; i < len(b) && b[i] != 0xF7; i++ {
			}
			i++ // inquiry replies and other sysex are skipped whole
		default:
			i++
		}
	}
}

// padPressed maps a pad note number to a pattern cell through the
// viewport and toggles it.
func (e *Engine) padPressed(note byte) {
	if note < padNoteMin || note > padNoteMax {
		return
	}
	n := int(note) - padNoteMin
	x, y := n%10, n/10
	if x >= gridseq.VisibleCols || y >= gridseq.VisibleRows {
		return
	}
	step := x + gridseq.VisibleCols*e.pattern.HardwarePage()
	pitch := e.pattern.PitchOffset() + y
	if step >= e.pattern.Length() || pitch >= gridseq.PitchRange {
		return
	}
	if e.pattern.Toggle(step, pitch) {
		e.bumpGridChanged()
		e.ledsDirty = true
		e.notifyPending = true
	}
}

// auxPressed handles the navigation buttons: viewport scroll and page
// switching.
func (e *Engine) auxPressed(cc byte) {
	switch cc {
	case ccPitchDown:
		if o := e.pattern.PitchOffset(); o > 0 {
			e.pattern.SetPitchOffset(o - 1)
			e.ledsDirty = true
		}
	case ccPitchUp:
		if o := e.pattern.PitchOffset(); o < gridseq.MaxPitchOffset {
			e.pattern.SetPitchOffset(o + 1)
			e.ledsDirty = true
		}
	case ccPageZero:
		if e.pattern.HardwarePage() > 0 {
			e.pattern.SetHardwarePage(0)
			e.ledsDirty = true
		}
	case ccPageOne:
		if e.pattern.HardwarePage() == 0 && e.pattern.SetHardwarePage(1) {
			e.ledsDirty = true
		}
	}
}

// emitMode keeps the device's programmer mode in step with the engine: a
// requested reset emits the exit sysex this tick and re-enters on the
// next, a fresh activation enters immediately. Both routes get the sysex
// because the host decides which output actually reaches the device.
func (e *Engine) emitMode(midiOut, hwOut *gridseq.EventSink) {
	if e.exitPending {
		midiOut.EmitRaw(0, ExitProgrammerMode)
		hwOut.EmitRaw(0, ExitProgrammerMode)
		e.exitPending = false
	} else if !e.modeEntered {
		midiOut.EmitRaw(0, EnterProgrammerMode)
		hwOut.EmitRaw(0, EnterProgrammerMode)
		e.modeEntered = true
	}
	if e.inquiryPending {
		midiOut.EmitRaw(0, DeviceInquiry)
		hwOut.EmitRaw(0, DeviceInquiry)
		e.inquiryPending = false
	}
}

// resetController schedules an exit from programmer mode; the following
// tick re-enters and repaints.
func (e *Engine) resetController() {
	e.exitPending = true
	e.modeEntered = false
	e.ledsDirty = true
}

// refreshLEDs repaints the 8x8 viewport and the aux button LEDs when the
// pattern is dirty or the playhead moved. LED commands are withheld
// until the device is back in programmer mode; the dirty flag keeps the
// repaint pending.
func (e *Engine) refreshLEDs(out *gridseq.EventSink) {
	cur := e.clock.CurrentStep(e.pattern.Length())
	if !e.ledsDirty && cur == e.prevLEDStep {
		return
	}
	if !e.modeEntered {
		return
	}
	e.prevLEDStep = cur
	e.ledsDirty = false

	length := e.pattern.Length()
	page := e.pattern.HardwarePage()
	offset := e.pattern.PitchOffset()
	for y := 0; y < gridseq.VisibleRows; y++ {
		for x := 0; x < gridseq.VisibleCols; x++ {
			step := x + gridseq.VisibleCols*page
			color := byte(ColorOff)
			if step < length {
				on := e.pattern.Cell(step, offset+y)
				switch {
				case step == cur && on:
					color = ColorYellow
				case step == cur:
					color = ColorDimGreen
				case on:
					color = ColorGreen
				}
			}
			out.Emit3(0, statusNoteOn, byte(padNoteMin+x+10*y), color)
		}
	}
	out.Emit3(0, statusCC, ccPitchDown, auxColor(offset > 0))
	out.Emit3(0, statusCC, ccPitchUp, auxColor(offset < gridseq.MaxPitchOffset))
	out.Emit3(0, statusCC, ccPageZero, auxColor(page > 0))
	out.Emit3(0, statusCC, ccPageOne, auxColor(length > gridseq.VisibleCols && page == 0))
}

func auxColor(lit bool) byte {
	if lit {
		return ColorWhite
	}
	return ColorOff
}
