// SPDX-License-Identifier: GPL-2.0-or-later

package demo

import (
	"github.com/pkg/errors"

	"qdemo/protocol"
)

// Frame is one forward step of a playback that is fully connected.
type Frame struct {
	// Offset of the frame's message in the demo file.
	Offset int64
	// EventSize is the number of bytes at the tail of the event log which
	// belong to this frame.
	EventSize int
	Flags     Flags
}

type snapshot struct {
	lightstyles [protocol.MaxLightstyles]string
	cshift      ColorShift
}

// Ledger records what changed during each forward frame so the frame can be
// undone when playing backwards. Frames and their events are both used as
// stacks: the top frame owns the tail of the event log.
type Ledger struct {
	frames  []Frame
	events  []byte
	pending []SoundEvent
	prev    snapshot
}

// Len returns the number of frames.
func (l *Ledger) Len() int {
	return len(l.frames)
}

// Frames returns a copy of the frame stack, bottom first.
func (l *Ledger) Frames() []Frame {
	return append([]Frame(nil), l.frames...)
}

// EventBytes returns the size of the event log.
func (l *Ledger) EventBytes() int {
	return len(l.events)
}

// Top returns the most recent frame.
func (l *Ledger) Top() (Frame, bool) {
	if len(l.frames) == 0 {
		return Frame{}, false
	}
	return l.frames[len(l.frames)-1], true
}

// Reset drops all frames, events and pending sounds.
func (l *Ledger) Reset() {
	l.frames = l.frames[:0]
	l.events = l.events[:0]
	l.pending = l.pending[:0]
}

func (l *Ledger) clearPending() {
	l.pending = l.pending[:0]
}

// QueueSound remembers the sound a channel played before a new sound
// started or the channel got stopped during the current frame. Sounds of
// the world and the auto channel are never undone.
func (l *Ledger) QueueSound(e SoundEvent) {
	if e.Entity <= 0 || e.Channel <= 0 {
		return
	}
	l.pending = append(l.pending, e)
}

// Pending returns the number of queued sounds.
func (l *Ledger) Pending() int {
	return len(l.pending)
}

// Begin pushes a new frame starting at offset and takes the snapshot the
// frame's changes are compared against.
func (l *Ledger) Begin(offset int64, t Tracked) {
	l.frames = append(l.frames, Frame{
		Offset: offset,
		Flags:  t.DemoFlags(),
	})
	for i := range l.prev.lightstyles {
		l.prev.lightstyles[i] = t.Lightstyle(i)
	}
	l.prev.cshift = t.ColorShift()
}

func (l *Ledger) push(e Event) {
	n := len(l.events)
	l.events = AppendEvent(l.events, e)
	l.frames[len(l.frames)-1].EventSize += len(l.events) - n
}

// Record stores the events needed to undo the top frame. Nothing is
// recorded for the first frame as playback never goes back beyond it.
func (l *Ledger) Record(t Tracked) {
	if len(l.frames) < 2 {
		return
	}
	if cs := t.ColorShift(); cs != l.prev.cshift {
		l.push(ColorShiftEvent{Shift: l.prev.cshift})
	}
	for i := range l.prev.lightstyles {
		if l.prev.lightstyles[i] == t.Lightstyle(i) {
			continue
		}
		l.push(LightstyleEvent{Style: i, Map: l.prev.lightstyles[i]})
	}
	// latest first, so undoing ends with the state before the first one
	for i := len(l.pending) - 1; i >= 0; i-- {
		l.push(l.pending[i])
	}
	l.clearPending()
}

// Revert undoes the events of the top frame, restores its flags and pops
// it. Errors mean the event log is corrupted.
func (l *Ledger) Revert(t Tracked) error {
	if len(l.frames) < 2 {
		return nil
	}
	top := &l.frames[len(l.frames)-1]
	if top.EventSize > 0 {
		if top.EventSize > len(l.events) {
			return errors.Wrapf(ErrCorruptLog, "frame owns %d bytes, log has %d", top.EventSize, len(l.events))
		}
		begin := len(l.events) - top.EventSize
		b := l.events[begin:]
		consumed := 0
		for consumed < len(b) {
			e, n, err := ConsumeEvent(b[consumed:])
			if err != nil {
				return errors.Wrapf(err, "at offset %d", begin+consumed)
			}
			e.Apply(t)
			consumed += n
		}
		if consumed != top.EventSize {
			return errors.Wrapf(ErrCorruptLog, "consumed %d of %d bytes", consumed, top.EventSize)
		}
		l.events = l.events[:begin]
		top.EventSize = 0
	}
	cur := t.DemoFlags()
	if cur.Intermission != top.Flags.Intermission && top.Flags.Intermission == 0 {
		t.ClearCompletedTime()
	}
	t.SetDemoFlags(top.Flags)
	l.frames = l.frames[:len(l.frames)-1]
	return nil
}
