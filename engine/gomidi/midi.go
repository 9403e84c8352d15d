// Package gomidi connects the engine to real MIDI hardware through
// rtmidi. Incoming messages are buffered in a channel from the driver
// callback and drained into the tick's event stream; outgoing events
// from the hardware sink are flushed to the device after each tick.
package gomidi

import (
	"fmt"
	"log"
	"strings"

	"github.com/gridseq/gridseq"
	"github.com/gridseq/gridseq/engine"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

type Context struct {
	driver *rtmididrv.Driver
	in     drivers.In
	out    drivers.Out
	send   func(msg midi.Message) error
	stop   func()
	events chan gridseq.Event
}

// NewContext opens the rtmidi driver. A missing driver is not an error;
// the context just stays deviceless, OpenByPrefix reports that no driver
// is available and every other operation is a no-op, matching a host
// without hardware attached.
func NewContext() *Context {
	c := &Context{events: make(chan gridseq.Event, 1024)}
	// nothing to do if this fails; c.driver stays nil
	c.driver, _ = rtmididrv.New()
	return c
}

// OpenByPrefix opens the first input and output port whose name starts
// with the given prefix, typically "Launchpad".
func (c *Context) OpenByPrefix(prefix string) error {
	if c.driver == nil {
		return fmt.Errorf("no MIDI driver available")
	}
	ins, err := c.driver.Ins()
	if err != nil {
		return fmt.Errorf("listing MIDI inputs: %w", err)
	}
	for _, in := range ins {
		if strings.HasPrefix(in.String(), prefix) {
			c.in = in
			break
		}
	}
	outs, err := c.driver.Outs()
	if err != nil {
		return fmt.Errorf("listing MIDI outputs: %w", err)
	}
	for _, out := range outs {
		if strings.HasPrefix(out.String(), prefix) {
			c.out = out
			break
		}
	}
	if c.in == nil && c.out == nil {
		return fmt.Errorf("no MIDI port found with prefix %q", prefix)
	}
	if c.out != nil {
		send, err := midi.SendTo(c.out)
		if err != nil {
			return fmt.Errorf("opening MIDI output %s: %w", c.out, err)
		}
		c.send = send
	}
	if c.in != nil {
		stop, err := midi.ListenTo(c.in, c.handleMessage)
		if err != nil {
			return fmt.Errorf("opening MIDI input %s: %w", c.in, err)
		}
		c.stop = stop
	}
	return nil
}

// HasDevice reports whether at least one port is open.
func (c *Context) HasDevice() bool { return c.send != nil || c.stop != nil }

func (c *Context) handleMessage(msg midi.Message, timestampms int32) {
	// arrival time within the buffer is unknown; offset 0 is the
	// earliest point of the next tick. if the channel is full, drop.
	select {
	case c.events <- gridseq.MIDIEvent(0, msg...):
	default:
	}
}

// Drain appends the pending incoming messages to events and returns the
// extended slice, for handing to Engine.Process as this tick's input
// stream.
func (c *Context) Drain(events []gridseq.Event) []gridseq.Event {
	for {
		select {
		case ev := <-c.events:
			events = append(events, ev)
		default:
			return events
		}
	}
}

// Flush sends every event of the hardware sink to the device, in order.
func (c *Context) Flush(sink *gridseq.EventSink) {
	if c.send == nil {
		return
	}
	for _, ev := range sink.Events() {
		if err := c.send(midi.Message(ev.Bytes())); err != nil {
			log.Printf("gomidi: send failed: %v", err)
			return
		}
	}
}

// Close leaves programmer mode and releases the driver.
func (c *Context) Close() {
	if c.send != nil {
		c.send(midi.Message(engine.ExitProgrammerMode))
	}
	if c.stop != nil {
		c.stop()
	}
	if c.driver != nil {
		c.driver.Close()
	}
}
