package audio

import "github.com/gridseq/gridseq"

// monitorGain keeps a handful of simultaneous voices out of clipping.
const monitorGain = 0.15

// Monitor turns a tick's emitted MIDI events into audio, applying each
// Note On/Off at its sample offset so the preview lines up with what an
// external synth would play.
type Monitor struct {
	sampleRate float64
	voices     [gridseq.PitchRange]Oscillator
}

// NewMonitor creates a monitor rendering at the given sample rate.
func NewMonitor(sampleRate float64) *Monitor {
	return &Monitor{sampleRate: sampleRate}
}

// Render fills buf (mono float samples) while applying events at their
// frame offsets. Events must be in non-decreasing frame order, which is
// what the engine's sinks guarantee. Offsets at or beyond the buffer end
// are applied after the last sample, so they take effect from the start
// of the next Render.
func (m *Monitor) Render(buf []float64, events []gridseq.Event) {
	next := 0
	for i := range buf {
		for next < len(events) && events[next].Frame <= i {
			m.apply(&events[next])
			next++
		}
		var sum float64
		for p := range m.voices {
			if m.voices[p].on {
				sum += m.voices[p].Sample()
			}
		}
		buf[i] = sum * monitorGain
	}
	// events timestamped at the buffer end (a step boundary on the last
	// frame) must not be lost
	for next < len(events) {
		m.apply(&events[next])
		next++
	}
}

// Silence releases every voice, for transport stops and shutdown.
func (m *Monitor) Silence() {
	for p := range m.voices {
		m.voices[p].Release()
	}
}

func (m *Monitor) apply(ev *gridseq.Event) {
	if ev.Len != 3 {
		return
	}
	pitch := int(ev.Data[1])
	if pitch >= gridseq.PitchRange {
		return
	}
	switch ev.Data[0] & 0xF0 {
	case 0x90:
		if ev.Data[2] > 0 {
			m.voices[pitch].Trigger(pitch, m.sampleRate)
		} else {
			m.voices[pitch].Release()
		}
	case 0x80:
		m.voices[pitch].Release()
	}
}
