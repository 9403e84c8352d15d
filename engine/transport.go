package engine

import "github.com/gridseq/gridseq"

// decodeTransport applies one host position event. Tempo forwards to the
// clock whenever positive; speed edges start and stop playback. Stopping
// releases every sounding note at the start of the playback phase.
func (e *Engine) decodeTransport(ev *gridseq.Event) {
	if ev.HasTempo && ev.Tempo > 0 {
		e.clock.SetTempo(ev.Tempo)
	}
	if !ev.HasSpeed {
		return
	}
	switch playing := ev.Speed > 0; {
	case playing && !e.clock.Playing():
		e.start()
	case !playing && e.clock.Playing():
		e.stop()
	}
}

func (e *Engine) start() {
	e.clock.Start()
	e.firstRun = true
	e.ledsDirty = true
}

func (e *Engine) stop() {
	e.clock.Stop()
	e.firstRun = false
	e.allOffPending = true
	e.ledsDirty = true
}
