package audio

import (
	"encoding/binary"
	"fmt"

	"github.com/ebitengine/oto/v3"
)

// Output owns the oto context and player. The player pulls from a
// stream whose Read calls the given tick function once per buffer; in
// the standalone sequencer that pull is the host clock driving
// Engine.Process.
type Output struct {
	otoCtx    *oto.Context
	otoPlayer *oto.Player
}

// NewOutput starts mono 16-bit playback at the given rate. tick fills
// one buffer of float samples and is called from the audio goroutine.
func NewOutput(sampleRate int, tick func(buf []float64)) (*Output, error) {
	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatSignedInt16LE,
	}
	otoCtx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("creating oto context: %w", err)
	}
	<-ready

	o := &Output{otoCtx: otoCtx}
	o.otoPlayer = otoCtx.NewPlayer(&stream{tick: tick, buf: make([]float64, 512)})
	o.otoPlayer.SetBufferSize(sampleRate * 2 / 10) // 100ms of 16-bit mono, in bytes
	o.otoPlayer.Play()
	return o, nil
}

// Close stops playback.
func (o *Output) Close() {
	if o.otoPlayer != nil {
		o.otoPlayer.Close()
	}
}

// stream adapts the tick function to the io.Reader oto pulls from.
type stream struct {
	tick func(buf []float64)
	buf  []float64
}

func (s *stream) Read(p []byte) (int, error) {
	samples := len(p) / 2
	if samples == 0 {
		return 0, nil
	}
	if samples > len(s.buf) {
		s.buf = make([]float64, samples)
	}
	buf := s.buf[:samples]
	s.tick(buf)
	for i, sample := range buf {
		if sample > 1 {
			sample = 1
		} else if sample < -1 {
			sample = -1
		}
		binary.LittleEndian.PutUint16(p[i*2:], uint16(int16(sample*32767)))
	}
	return samples * 2, nil
}
