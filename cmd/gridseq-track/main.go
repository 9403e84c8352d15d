package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/gridseq/gridseq"
	"github.com/gridseq/gridseq/audio"
	"github.com/gridseq/gridseq/editor"
	"github.com/gridseq/gridseq/engine"
	"github.com/gridseq/gridseq/engine/gomidi"
	"github.com/gridseq/gridseq/version"
)

const sampleRate = 48000

var (
	midiPrefix  = flag.String("midi", "Launchpad", "hardware controller port name prefix")
	tempoFlag   = flag.Float64("tempo", gridseq.DefaultTempo, "transport tempo in BPM")
	fileFlag    = flag.String("file", "", "pattern snapshot file for save/load")
	versionFlag = flag.Bool("version", false, "print the version and exit")
)

// host glues the engine to its collaborators the way a plugin host
// would: the audio pull is the tick, hardware MIDI merges into the
// input stream, editor messages become control-channel writes.
type host struct {
	eng     *engine.Engine
	ports   engine.Ports
	midi    *gomidi.Context
	broker  *editor.Broker
	monitor *audio.Monitor

	events      []gridseq.Event
	tempo       float64
	firstTick   bool
	clearCoords bool
}

func (h *host) tick(buf []float64) {
	h.events = h.events[:0]
	if h.firstTick {
		h.firstTick = false
		h.events = append(h.events,
			gridseq.TempoEvent(0, h.tempo),
			gridseq.SpeedEvent(0, 1))
	}
	if h.clearCoords {
		// give the persistent coordinate channel a fresh edge so the
		// editor can hit the same cell twice
		h.clearCoords = false
		h.ports.Controls.GridX, h.ports.Controls.GridY = -1, -1
	}
	h.drainEditor()
	h.events = h.midi.Drain(h.events)
	h.ports.Events = h.events

	h.eng.Process(&h.ports, len(buf))

	h.midi.Flush(&h.ports.HWOut)
	h.monitor.Render(buf, h.ports.MIDIOut.Events())

	c := &h.ports.Controls
	var rows [gridseq.MaxSteps]byte
	for x := range rows {
		rows[x] = byte(c.Rows[x])
	}
	editor.TrySend(h.broker.ToEditor, editor.Status{
		CurrentStep: int(c.CurrentStep),
		Length:      int(c.SeqLengthOut),
		PitchOffset: int(c.PitchOffsetOut),
		GridChanged: uint32(c.GridChanged),
		Playing:     h.eng.Playing(),
		Tempo:       h.tempo,
		Rows:        rows,
	})
}

func (h *host) drainEditor() {
	for {
		select {
		case msg := <-h.broker.ToHost:
			h.apply(msg)
		default:
			return
		}
	}
}

func (h *host) apply(msg any) {
	switch m := msg.(type) {
	case editor.GridMsg:
		h.ports.Controls.GridX = float32(m.X)
		h.ports.Controls.GridY = float32(m.Y)
		h.clearCoords = true
	case editor.SentinelMsg:
		h.ports.Controls.GridX = m.Value
		h.clearCoords = true
	case editor.LengthMsg:
		h.ports.Controls.SeqLength = float32(m.Length)
	case editor.FilterMsg:
		if m.On {
			h.ports.Controls.MIDIFilter = 1
		} else {
			h.ports.Controls.MIDIFilter = 0
		}
	case editor.PlayMsg:
		speed := 0.0
		if m.On {
			speed = 1
		} else {
			h.monitor.Silence()
		}
		h.events = append(h.events, gridseq.SpeedEvent(0, speed))
	case editor.TempoMsg:
		h.tempo = m.BPM
		h.events = append(h.events, gridseq.TempoEvent(0, m.BPM))
	case editor.LoadMsg:
		h.eng.ApplySnapshot(m.Snapshot)
	case editor.SaveRequestMsg:
		m.Reply <- h.eng.Pattern().Snapshot()
	}
}

func main() {
	flag.Parse()
	if *versionFlag {
		fmt.Println(version.VersionOrHash)
		return
	}

	eng, err := engine.New(sampleRate)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	if *fileFlag != "" {
		if f, err := os.Open(*fileFlag); err == nil {
			if snapshot, err := gridseq.ReadSnapshot(f); err == nil {
				eng.ApplySnapshot(snapshot)
			} else {
				log.Printf("snapshot %s: %v", *fileFlag, err)
			}
			f.Close()
		}
	}

	midiContext := gomidi.NewContext()
	defer midiContext.Close()
	if err := midiContext.OpenByPrefix(*midiPrefix); err != nil {
		log.Printf("hardware controller: %v (continuing without)", err)
	}

	broker := editor.NewBroker()
	h := &host{
		eng:       eng,
		midi:      midiContext,
		broker:    broker,
		monitor:   audio.NewMonitor(sampleRate),
		events:    make([]gridseq.Event, 0, 64),
		tempo:     *tempoFlag,
		firstTick: true,
	}
	h.ports.MIDIOut.Bind(make([]gridseq.Event, 256))
	h.ports.HWOut.Bind(make([]gridseq.Event, 128))
	h.ports.Notify.Bind(make([]gridseq.Event, 8))
	h.ports.Controls.SeqLength = float32(eng.Pattern().Length())
	h.ports.Controls.GridX, h.ports.Controls.GridY = -1, -1

	eng.Activate()
	out, err := audio.NewOutput(sampleRate, h.tick)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	if _, err := tea.NewProgram(editor.NewModel(broker, *fileFlag)).Run(); err != nil {
		log.Printf("editor: %v", err)
	}
	eng.Deactivate()
	out.Close()
}
