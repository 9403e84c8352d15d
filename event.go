package gridseq

// MaxEventBytes is the size of the fixed payload of an Event. It is
// large enough for every message the sequencer reads or writes: 3-byte
// channel voice messages, the device sysex handshakes, and the 64-byte
// editor notification blob.
const MaxEventBytes = 64

type (
	// Event is one element of a host event stream, timestamped with a
	// sample offset relative to the start of the current buffer. The
	// payload is a fixed array so that event streams can live in
	// preallocated host buffers; input events additionally may carry
	// transport data instead of MIDI bytes.
	Event struct {
		Frame int
		Kind  EventKind

		// MIDI payload, valid for KindMIDI events.
		Data [MaxEventBytes]byte
		Len  int

		// Transport payload, valid for KindPosition events.
		Tempo    float64
		HasTempo bool
		Speed    float64
		HasSpeed bool
	}

	EventKind uint8

	// EventSink is the single emission abstraction shared by the three
	// output streams (primary MIDI, hardware, editor notification). It
	// appends events into a host-loaned buffer, never allocates, and on
	// exhaustion drops the event and counts it. Callers must append in
	// non-decreasing frame order.
	EventSink struct {
		buf     []Event
		n       int
		dropped int
	}
)

const (
	// KindMIDI is a raw MIDI message (or the editor notification blob).
	KindMIDI EventKind = iota
	// KindPosition is a transport update from the host.
	KindPosition
)

// MIDIEvent builds an input event from raw MIDI bytes; oversized
// messages are truncated, which the byte-wise parser then skips over.
func MIDIEvent(frame int, data ...byte) Event {
	e := Event{Frame: frame, Kind: KindMIDI}
	e.Len = copy(e.Data[:], data)
	return e
}

// TempoEvent builds a transport event carrying only a tempo.
func TempoEvent(frame int, bpm float64) Event {
	return Event{Frame: frame, Kind: KindPosition, Tempo: bpm, HasTempo: true}
}

// SpeedEvent builds a transport event carrying only a speed. Speed zero
// stops the transport, anything positive starts it.
func SpeedEvent(frame int, speed float64) Event {
	return Event{Frame: frame, Kind: KindPosition, Speed: speed, HasSpeed: true}
}

// Bytes returns the MIDI payload of the event.
func (e *Event) Bytes() []byte { return e.Data[:e.Len] }

// Bind points the sink at a host-loaned buffer. The buffer stays bound
// across ticks; Begin resets the write position each tick.
func (s *EventSink) Bind(buf []Event) {
	s.buf = buf
	s.n = 0
	s.dropped = 0
}

// Begin starts a new sequence: the write position rewinds and the
// dropped counter resets.
func (s *EventSink) Begin() {
	s.n = 0
	s.dropped = 0
}

// Emit3 appends a three-byte MIDI message at the given frame offset.
func (s *EventSink) Emit3(frame int, status, d1, d2 byte) bool {
	if s.n >= len(s.buf) {
		s.dropped++
		return false
	}
	e := &s.buf[s.n]
	e.Frame = frame
	e.Kind = KindMIDI
	e.Data[0], e.Data[1], e.Data[2] = status, d1, d2
	e.Len = 3
	e.Tempo, e.HasTempo, e.Speed, e.HasSpeed = 0, false, 0, false
	s.n++
	return true
}

// EmitRaw appends an arbitrary message (sysex, notification blob) at the
// given frame offset, copying the payload into the event. Payloads
// longer than MaxEventBytes are dropped entirely rather than truncated.
func (s *EventSink) EmitRaw(frame int, data []byte) bool {
	if s.n >= len(s.buf) || len(data) > MaxEventBytes {
		s.dropped++
		return false
	}
	e := &s.buf[s.n]
	e.Frame = frame
	e.Kind = KindMIDI
	e.Len = copy(e.Data[:], data)
	e.Tempo, e.HasTempo, e.Speed, e.HasSpeed = 0, false, 0, false
	s.n++
	return true
}

// Events returns the events emitted since Begin, in emission order.
func (s *EventSink) Events() []Event { return s.buf[:s.n] }

// Dropped returns how many events did not fit since Begin.
func (s *EventSink) Dropped() int { return s.dropped }

// Cap returns the capacity of the bound buffer.
func (s *EventSink) Cap() int { return len(s.buf) }
