package gridseq

import "math"

type (
	// Clock converts tempo and sample rate into a step grid over a
	// monotonic 64-bit frame counter. It knows nothing about notes; it
	// only reports, per advance, which step boundaries the elapsed
	// frames crossed and at which buffer-relative offsets.
	Clock struct {
		sampleRate    float64
		tempo         float64
		framesPerStep uint64
		frameCounter  uint64
		playing       bool
	}

	// Crossing describes one boundary crossed during an Advance call.
	// Offset is in samples relative to the start of the current buffer
	// and may equal the buffer length when the boundary falls exactly on
	// its end. Step is the absolute step counter (not yet wrapped to the
	// sequence length) of the step the crossing belongs to.
	Crossing struct {
		Kind   CrossingKind
		Offset int
		Step   uint64
	}

	CrossingKind uint8
)

const (
	// StepStart marks the first frame of a new step.
	StepStart CrossingKind = iota
	// MidStep marks the half-way frame of the current step, where the
	// sequencer releases its notes.
	MidStep
)

// NewClock returns a clock at the default tempo. The sample rate must be
// positive or the clock stays unusable (frames per step zero).
func NewClock(sampleRate float64) Clock {
	c := Clock{}
	c.SetSampleRate(sampleRate)
	c.SetTempo(DefaultTempo)
	return c
}

// SetSampleRate updates the sample rate and recomputes the step length.
// Non-positive rates are ignored.
func (c *Clock) SetSampleRate(rate float64) {
	if rate <= 0 {
		return
	}
	c.sampleRate = rate
	c.recompute()
}

// SetTempo updates the tempo and recomputes the step length. One step is
// one quarter note. Non-positive tempos are ignored. The change takes
// effect on the next Advance; it does not move the frame counter.
func (c *Clock) SetTempo(bpm float64) {
	if bpm <= 0 {
		return
	}
	c.tempo = bpm
	c.recompute()
}

func (c *Clock) recompute() {
	if c.sampleRate <= 0 || c.tempo <= 0 {
		return
	}
	c.framesPerStep = uint64(math.Round(c.sampleRate * 60 / c.tempo))
}

// Start begins playback from step zero.
func (c *Clock) Start() {
	c.playing = true
	c.frameCounter = 0
}

// Stop halts the clock. The frame counter keeps its value.
func (c *Clock) Stop() { c.playing = false }

// Playing reports whether the clock advances.
func (c *Clock) Playing() bool { return c.playing }

// Tempo returns the current tempo in BPM.
func (c *Clock) Tempo() float64 { return c.tempo }

// FramesPerStep returns the current step length in samples.
func (c *Clock) FramesPerStep() uint64 { return c.framesPerStep }

// FrameCounter returns the number of frames played since Start.
func (c *Clock) FrameCounter() uint64 { return c.frameCounter }

// CurrentStep derives the playhead column from the frame counter,
// wrapped to the given sequence length.
func (c *Clock) CurrentStep(length int) int {
	if length < 1 || c.framesPerStep == 0 {
		return 0
	}
	return int((c.frameCounter / c.framesPerStep) % uint64(length))
}

// Advance moves the clock forward by nSamples (only while playing) and
// calls yield once for every step-start and mid-step boundary crossed,
// in non-decreasing offset order. A boundary at frame b is crossed by
// the buffer spanning (f0, f0+nSamples]; a tick longer than one step
// yields every boundary it spans at its own offset. Frame zero itself is
// never yielded; the first step after Start is the caller's first-run
// responsibility.
func (c *Clock) Advance(nSamples int, yield func(Crossing)) {
	if !c.playing || nSamples <= 0 {
		return
	}
	f0 := c.frameCounter
	f1 := f0 + uint64(nSamples)
	c.frameCounter = f1
	L := c.framesPerStep
	if yield == nil || L == 0 {
		return
	}
	half := L / 2
	for step := f0 / L; ; step++ {
		if mid := step*L + half; mid > f0 && mid <= f1 {
			yield(Crossing{Kind: MidStep, Offset: int(mid - f0), Step: step})
		}
		next := (step + 1) * L
		if next > f1 {
			return
		}
		if next > f0 {
			yield(Crossing{Kind: StepStart, Offset: int(next - f0), Step: step + 1})
		}
	}
}
