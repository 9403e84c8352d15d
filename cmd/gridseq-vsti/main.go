//go:build plugin

package main

import (
	"bytes"
	"log"

	"github.com/gridseq/gridseq"
	"github.com/gridseq/gridseq/audio"
	"github.com/gridseq/gridseq/engine"
	"github.com/gridseq/gridseq/engine/gomidi"
	"pipelined.dev/audio/vst2"
)

// the wrapper gives us no rate negotiation, so the plugin runs at the
// fixed rate most hosts default to
const sampleRate = 44100

type vstProcessContext struct {
	events     []vst2.MIDIEvent
	eventIndex int
	host       vst2.Host
}

// nextEvents converts the host's MIDI events of this block into the
// engine's input stream, appending to dst.
func (c *vstProcessContext) nextEvents(dst []gridseq.Event) []gridseq.Event {
	for c.eventIndex < len(c.events) {
		ev := c.events[c.eventIndex]
		c.eventIndex++
		dst = append(dst, gridseq.MIDIEvent(int(ev.DeltaFrames), ev.Data[0], ev.Data[1], ev.Data[2]))
	}
	return dst
}

// transport reads tempo and play state from the host clock.
func (c *vstProcessContext) transport(dst []gridseq.Event) []gridseq.Event {
	timeInfo := c.host.GetTimeInfo(vst2.TempoValid)
	if timeInfo == nil {
		return dst
	}
	if timeInfo.Flags&vst2.TempoValid != 0 && timeInfo.Tempo > 0 {
		dst = append(dst, gridseq.TempoEvent(0, timeInfo.Tempo))
	}
	speed := 0.0
	if timeInfo.Flags&vst2.TransportPlaying != 0 {
		speed = 1
	}
	return append(dst, gridseq.SpeedEvent(0, speed))
}

func init() {
	var (
		uniqueID = [4]byte{'g', 'r', 's', 'q'}
		version  = int32(100)
	)
	vst2.PluginAllocator = func(h vst2.Host) (vst2.Plugin, vst2.Dispatcher) {
		// a constant positive rate cannot be rejected
		eng, _ := engine.New(sampleRate)
		var ports engine.Ports
		ports.MIDIOut.Bind(make([]gridseq.Event, 256))
		ports.HWOut.Bind(make([]gridseq.Event, 128))
		ports.Notify.Bind(make([]gridseq.Event, 8))
		ports.Controls.SeqLength = float32(eng.Pattern().Length())
		ports.Controls.GridX, ports.Controls.GridY = -1, -1

		midiContext := gomidi.NewContext()
		if err := midiContext.OpenByPrefix("Launchpad"); err != nil {
			log.Printf("gridseq: hardware controller: %v", err)
		}
		monitor := audio.NewMonitor(sampleRate)
		context := vstProcessContext{host: h}
		eventBuf := make([]gridseq.Event, 0, 64)
		monoBuf := make([]float64, 1024)
		// chunk requests run on the host's UI thread; funnel them into
		// the processing callback where the engine may be touched
		exec := make(chan func(), 16)

		eng.Activate()
		return vst2.Plugin{
				UniqueID:       uniqueID,
				Version:        version,
				InputChannels:  0,
				OutputChannels: 2,
				Name:           "gridseq",
				Vendor:         "gridseq",
				Category:       vst2.PluginCategorySynth,
				Flags:          vst2.PluginIsSynth,
				ProcessFloatFunc: func(in, out vst2.FloatBuffer) {
				drain:
					for {
						select {
						case f := <-exec:
							f()
						default:
							break drain
						}
					}
					n := out.Frames
					eventBuf = eventBuf[:0]
					eventBuf = context.transport(eventBuf)
					eventBuf = context.nextEvents(eventBuf)
					ports.Events = eventBuf
					eng.Process(&ports, n)
					midiContext.Flush(&ports.HWOut)

					if len(monoBuf) < n {
						monoBuf = append(monoBuf, make([]float64, n-len(monoBuf))...)
					}
					monitor.Render(monoBuf[:n], ports.MIDIOut.Events())
					left := out.Channel(0)
					right := out.Channel(1)
					for i := 0; i < n; i++ {
						s := float32(monoBuf[i])
						left[i], right[i] = s, s
					}
					context.events = context.events[:0]
					context.eventIndex = 0
				},
			}, vst2.Dispatcher{
				CanDoFunc: func(pcds vst2.PluginCanDoString) vst2.CanDoResponse {
					switch pcds {
					case vst2.PluginCanReceiveEvents, vst2.PluginCanReceiveMIDIEvent, vst2.PluginCanReceiveTimeInfo:
						return vst2.YesCanDo
					}
					return vst2.NoCanDo
				},
				ProcessEventsFunc: func(ev *vst2.EventsPtr) {
					for i := 0; i < ev.NumEvents(); i++ {
						a := ev.Event(i)
						switch v := a.(type) {
						case *vst2.MIDIEvent:
							context.events = append(context.events, *v)
						}
					}
				},
				CloseFunc: func() {
					eng.Deactivate()
					midiContext.Close()
				},
				GetChunkFunc: func(isPreset bool) []byte {
					retChn := make(chan []byte)
					exec <- func() {
						var buf bytes.Buffer
						if err := eng.Pattern().Snapshot().WriteSnapshot(&buf); err != nil {
							retChn <- nil
							return
						}
						retChn <- buf.Bytes()
					}
					return <-retChn
				},
				SetChunkFunc: func(data []byte, isPreset bool) {
					snapshot, err := gridseq.ReadSnapshot(bytes.NewReader(data))
					if err != nil {
						log.Printf("gridseq: state chunk: %v", err)
						return
					}
					exec <- func() { eng.ApplySnapshot(snapshot) }
				},
			}
	}
}

func main() {}
