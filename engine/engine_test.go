package engine_test

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/gridseq/gridseq"
	"github.com/gridseq/gridseq/engine"
)

// testHost stands in for the audio host: it owns the port buffers and
// runs ticks the way a plugin run() callback would.
type testHost struct {
	t   *testing.T
	eng *engine.Engine
	p   engine.Ports
}

func newTestHost(t *testing.T) *testHost {
	t.Helper()
	eng, err := engine.New(48000)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	h := &testHost{t: t, eng: eng}
	h.p.MIDIOut.Bind(make([]gridseq.Event, 128))
	h.p.HWOut.Bind(make([]gridseq.Event, 128))
	h.p.Notify.Bind(make([]gridseq.Event, 8))
	h.p.Controls.SeqLength = gridseq.DefaultLength
	// idle hosts hold the coordinate channel at the no-op value
	h.p.Controls.GridX, h.p.Controls.GridY = -1, -1
	return h
}

func (h *testHost) tick(nSamples int, events ...gridseq.Event) {
	h.p.Events = events
	h.eng.Process(&h.p, nSamples)
}

type note struct {
	frame int
	on    bool
	pitch byte
	vel   byte
}

// notes extracts the channel voice messages of a sink, ignoring sysex.
func notes(sink *gridseq.EventSink) []note {
	var out []note
	for _, ev := range sink.Events() {
		if ev.Len != 3 {
			continue
		}
		switch ev.Data[0] & 0xF0 {
		case 0x90:
			out = append(out, note{ev.Frame, true, ev.Data[1], ev.Data[2]})
		case 0x80:
			out = append(out, note{ev.Frame, false, ev.Data[1], ev.Data[2]})
		}
	}
	return out
}

func containsSysEx(sink *gridseq.EventSink, want []byte) bool {
	for _, ev := range sink.Events() {
		if bytes.Equal(ev.Bytes(), want) {
			return true
		}
	}
	return false
}

func TestNewRejectsBadSampleRate(t *testing.T) {
	for _, rate := range []float64{0, -48000} {
		if eng, err := engine.New(rate); eng != nil || err == nil {
			t.Errorf("New(%v) = %v, %v; want nil engine and error", rate, eng, err)
		}
	}
}

// S1: one active cell at (0, 36), activate, first 256-sample tick.
func TestBasicPlayback(t *testing.T) {
	h := newTestHost(t)
	h.eng.Pattern().Toggle(0, 36)
	h.eng.Activate()
	h.tick(256)

	got := notes(&h.p.MIDIOut)
	if len(got) != 1 || got[0] != (note{0, true, 36, 100}) {
		t.Fatalf("notes = %v, want one NoteOn(36, 100) at offset 0", got)
	}
	if s := h.p.Controls.CurrentStep; s != 0 {
		t.Errorf("current step %v, want 0", s)
	}
	if r := h.p.Controls.Rows[0]; r != 1 {
		t.Errorf("row 0 = %v, want 1", r)
	}
}

// S2: the next tick reaches the mid-step threshold at absolute frame
// 12000 and releases the note at offset 11744.
func TestMidStepNoteOff(t *testing.T) {
	h := newTestHost(t)
	h.eng.Pattern().Toggle(0, 36)
	h.eng.Activate()
	h.tick(256)
	h.tick(12000)

	got := notes(&h.p.MIDIOut)
	if len(got) != 1 || got[0] != (note{11744, false, 36, 0}) {
		t.Fatalf("notes = %v, want one NoteOff(36) at offset 11744", got)
	}
}

// S3: a full-step tick crosses the mid-step release and the next step
// start, each at its own offset, in order.
func TestStepAdvance(t *testing.T) {
	h := newTestHost(t)
	h.eng.Pattern().Toggle(0, 36)
	h.eng.Pattern().Toggle(1, 38)
	h.eng.Activate()
	h.tick(24000)

	got := notes(&h.p.MIDIOut)
	want := []note{{0, true, 36, 100}, {12000, false, 36, 0}, {24000, true, 38, 100}}
	if len(got) != len(want) {
		t.Fatalf("notes = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("note %d = %v, want %v", i, got[i], want[i])
		}
	}

	h.tick(256)
	if got := notes(&h.p.MIDIOut); len(got) != 0 {
		t.Errorf("boundary events repeated: %v", got)
	}
	if s := h.p.Controls.CurrentStep; s != 1 {
		t.Errorf("current step %v, want 1", s)
	}
}

// S6: a zero-speed transport event releases everything at offset 0 and
// halts playback.
func TestTransportStopEmitsAllNotesOff(t *testing.T) {
	h := newTestHost(t)
	h.eng.Pattern().Toggle(0, 36)
	h.eng.Activate()
	h.tick(256)

	h.tick(256, gridseq.SpeedEvent(0, 0))
	got := notes(&h.p.MIDIOut)
	if len(got) != 1 || got[0] != (note{0, false, 36, 0}) {
		t.Fatalf("notes = %v, want one NoteOff(36) at offset 0", got)
	}
	if h.eng.Playing() {
		t.Errorf("still playing after stop")
	}
	h.tick(48000)
	if got := notes(&h.p.MIDIOut); len(got) != 0 {
		t.Errorf("stopped sequencer emitted notes: %v", got)
	}
}

func TestSpeedEventWhilePlayingDoesNotRetrigger(t *testing.T) {
	h := newTestHost(t)
	h.eng.Pattern().Toggle(0, 36)
	h.eng.Activate()
	h.tick(256)
	h.tick(256, gridseq.SpeedEvent(0, 1))
	if got := notes(&h.p.MIDIOut); len(got) != 0 {
		t.Errorf("redundant speed event retriggered: %v", got)
	}
}

func TestTempoChangeTakesEffectImmediately(t *testing.T) {
	h := newTestHost(t)
	h.eng.Pattern().Toggle(1, 40)
	h.eng.Activate()
	h.tick(256, gridseq.TempoEvent(0, 240)) // 12000 frames per step now
	h.tick(12000)
	got := notes(&h.p.MIDIOut)
	if len(got) != 1 || got[0] != (note{11744, true, 40, 100}) {
		t.Fatalf("notes = %v, want NoteOn(40) at offset 11744", got)
	}
}

func TestFirstTickEntersProgrammerMode(t *testing.T) {
	h := newTestHost(t)
	h.eng.Activate()
	h.tick(256)
	if !containsSysEx(&h.p.MIDIOut, engine.EnterProgrammerMode) {
		t.Errorf("enter-programmer sysex missing on primary output")
	}
	if !containsSysEx(&h.p.HWOut, engine.EnterProgrammerMode) {
		t.Errorf("enter-programmer sysex missing on hardware output")
	}
	h.tick(256)
	if containsSysEx(&h.p.MIDIOut, engine.EnterProgrammerMode) {
		t.Errorf("enter-programmer sysex repeated")
	}
}

// Deactivation acts as a stop edge on the following tick.
func TestDeactivateFlushesNotes(t *testing.T) {
	h := newTestHost(t)
	h.eng.Pattern().Toggle(0, 60)
	h.eng.Activate()
	h.tick(256)
	h.eng.Deactivate()
	h.tick(256)
	got := notes(&h.p.MIDIOut)
	if len(got) != 1 || got[0] != (note{0, false, 60, 0}) {
		t.Fatalf("notes = %v, want one NoteOff(60) at offset 0", got)
	}
}

// The note-off filter suppresses mid-step releases but not the stop
// flush.
func TestMIDIFilter(t *testing.T) {
	h := newTestHost(t)
	h.p.Controls.MIDIFilter = 1
	h.eng.Pattern().Toggle(0, 36)
	h.eng.Activate()
	h.tick(256)
	h.tick(12000)
	if got := notes(&h.p.MIDIOut); len(got) != 0 {
		t.Fatalf("filtered mid-step still emitted: %v", got)
	}
	h.tick(256, gridseq.SpeedEvent(0, 0))
	got := notes(&h.p.MIDIOut)
	if len(got) != 1 || got[0].on || got[0].pitch != 36 {
		t.Fatalf("stop flush missing under filter: %v", got)
	}
}

// Emissions are appended in non-decreasing offset order, tick after
// tick, even across multi-step buffers.
func TestEmissionOrdering(t *testing.T) {
	h := newTestHost(t)
	for step := 0; step < 8; step++ {
		h.eng.Pattern().Toggle(step, 36+step)
	}
	h.eng.Activate()
	for i := 0; i < 20; i++ {
		h.tick(50000) // spans more than two steps
		last := -1
		for _, ev := range h.p.MIDIOut.Events() {
			if ev.Frame < last {
				t.Fatalf("tick %d: offsets decrease: %d after %d", i, ev.Frame, last)
			}
			last = ev.Frame
		}
	}
}

// Every Note On is followed by exactly one Note Off of the same pitch
// before the pitch sounds again.
func TestNoteOnOffPairing(t *testing.T) {
	h := newTestHost(t)
	h.eng.Pattern().Toggle(0, 36)
	h.eng.Pattern().Toggle(1, 36)
	h.eng.Pattern().Toggle(2, 40)
	h.eng.Pattern().SetLength(3)
	h.p.Controls.SeqLength = 3
	h.eng.Activate()

	sounding := map[byte]bool{}
	for i := 0; i < 100; i++ {
		h.tick(7919) // coprime with the step length
		for _, n := range notes(&h.p.MIDIOut) {
			if n.on {
				if sounding[n.pitch] {
					t.Fatalf("tick %d: NoteOn(%d) while already sounding", i, n.pitch)
				}
				sounding[n.pitch] = true
			} else {
				if !sounding[n.pitch] {
					t.Fatalf("tick %d: NoteOff(%d) without NoteOn", i, n.pitch)
				}
				sounding[n.pitch] = false
			}
		}
	}
}

// Sinks overflow by dropping, never by blocking or growing.
func TestOutputExhaustionIsBestEffort(t *testing.T) {
	h := newTestHost(t)
	h.p.MIDIOut.Bind(make([]gridseq.Event, 2))
	for pitch := 30; pitch < 60; pitch++ {
		h.eng.Pattern().Toggle(0, pitch)
	}
	h.eng.Activate()
	h.tick(256)
	if got := len(h.p.MIDIOut.Events()); got != 2 {
		t.Errorf("sink holds %d events, want 2", got)
	}
	if h.p.MIDIOut.Dropped() == 0 {
		t.Errorf("dropped counter not incremented")
	}
}

// Random walks through the input surface must never break the
// observable invariants: the playhead stays inside the sequence, the
// row outputs mirror the grid exactly, offsets never decrease, and bad
// input never panics.
func TestEngineRandomizedInvariants(t *testing.T) {
	h := newTestHost(t)
	h.eng.Activate()
	rnd := rand.New(rand.NewSource(1))

	for i := 0; i < 2000; i++ {
		var events []gridseq.Event
		switch rnd.Intn(6) {
		case 0:
			events = append(events, gridseq.MIDIEvent(0, 0x90, byte(rnd.Intn(128)), byte(rnd.Intn(128))))
		case 1:
			events = append(events, gridseq.MIDIEvent(0, 0xB0, byte(88+rnd.Intn(10)), 0x7F))
		case 2:
			events = append(events, gridseq.SpeedEvent(0, float64(rnd.Intn(2))))
		case 3:
			events = append(events, gridseq.TempoEvent(0, float64(rnd.Intn(400)-50)))
		case 4:
			raw := make([]byte, rnd.Intn(8))
			rnd.Read(raw)
			events = append(events, gridseq.MIDIEvent(0, raw...))
		}
		if rnd.Intn(3) == 0 {
			h.p.Controls.GridX = float32(rnd.Intn(40) - 20)
			h.p.Controls.GridY = float32(rnd.Intn(12) - 2)
		}
		if rnd.Intn(5) == 0 {
			h.p.Controls.SeqLength = float32(rnd.Intn(24) - 2)
		}
		h.tick(rnd.Intn(30000), events...)

		length := int(h.p.Controls.SeqLengthOut)
		if length < 1 || length > gridseq.MaxSteps {
			t.Fatalf("iteration %d: length %d out of range", i, length)
		}
		if s := int(h.p.Controls.CurrentStep); s < 0 || s >= length {
			t.Fatalf("iteration %d: step %d outside [0, %d)", i, s, length)
		}
		offset := int(h.p.Controls.PitchOffsetOut)
		for x := 0; x < gridseq.MaxSteps; x++ {
			row := byte(h.p.Controls.Rows[x])
			for y := 0; y < gridseq.VisibleRows; y++ {
				if want := h.eng.Pattern().Cell(x, offset+y); want != (row&(1<<uint(y)) != 0) {
					t.Fatalf("iteration %d: row %d bit %d diverged from the grid", i, x, y)
				}
			}
		}
		last := -1
		for _, ev := range h.p.MIDIOut.Events() {
			if ev.Frame < last {
				t.Fatalf("iteration %d: emission offsets decrease", i)
			}
			last = ev.Frame
		}
	}
}

func TestCurrentStepStaysBelowLength(t *testing.T) {
	h := newTestHost(t)
	h.p.Controls.SeqLength = 3
	h.eng.Activate()
	for i := 0; i < 50; i++ {
		h.tick(9000)
		if s := int(h.p.Controls.CurrentStep); s < 0 || s >= 3 {
			t.Fatalf("current step %d out of range", s)
		}
	}
}
