// Package audio renders a minimal preview of the sequenced notes: a
// bank of square-wave oscillators driven by the tick's MIDI output, fed
// to the sound card through oto. It exists so the standalone sequencer
// is audible without an external synth; nothing in the core depends on
// it.
package audio

import "math"

// Oscillator is one square-wave voice.
type Oscillator struct {
	phase float64
	inc   float64
	on    bool
}

// NoteToFreq converts a MIDI note number to its frequency; A4 (note 69)
// is 440 Hz.
func NoteToFreq(note int) float64 {
	return 440.0 * math.Pow(2.0, float64(note-69)/12.0)
}

// Trigger starts the voice at the given note.
func (o *Oscillator) Trigger(note int, sampleRate float64) {
	o.inc = NoteToFreq(note) / sampleRate
	o.phase = 0
	o.on = true
}

// Release stops the voice.
func (o *Oscillator) Release() { o.on = false }

// Active reports whether the voice is sounding.
func (o *Oscillator) Active() bool { return o.on }

// Sample advances the phase and returns the next sample in [-1, 1].
func (o *Oscillator) Sample() float64 {
	if !o.on {
		return 0
	}
	o.phase += o.inc
	if o.phase >= 1 {
		o.phase -= 1
	}
	if o.phase < 0.5 {
		return 1
	}
	return -1
}
