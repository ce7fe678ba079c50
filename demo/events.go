// SPDX-License-Identifier: GPL-2.0-or-later

package demo

import (
	"github.com/chewxy/math32"
	"github.com/pkg/errors"
	"google.golang.org/protobuf/encoding/protowire"

	"qdemo/math"
	"qdemo/math/vec"
	"qdemo/snd"
)

// NoSound as the Sfx of a SoundEvent stops the channel instead.
const NoSound = snd.NoSound

// EventKind is the field number an event is stored under in the event log.
type EventKind protowire.Number

const (
	LightstyleKind EventKind = 1
	ColorShiftKind EventKind = 2
	SoundKind      EventKind = 3
)

func (k EventKind) String() string {
	switch k {
	case LightstyleKind:
		return "lightstyle"
	case ColorShiftKind:
		return "cshift"
	case SoundKind:
		return "sound"
	}
	return "unknown"
}

// Event restores one piece of client state when a frame is played
// backwards.
type Event interface {
	Kind() EventKind
	Apply(t Tracked)
	appendFields(b []byte) []byte
}

// LightstyleEvent holds the value a lightstyle had before the frame.
type LightstyleEvent struct {
	Style int
	Map   string
}

// ColorShiftEvent holds the color shift before the frame.
type ColorShiftEvent struct {
	Shift ColorShift
}

// SoundEvent holds the sound that played on a channel before the frame. An
// Sfx of NoSound means the channel was silent.
type SoundEvent struct {
	Sfx     int
	Entity  int
	Channel int
	// 0-255
	Volume int
	// attenuation * 64
	Attenuation int
	Origin      vec.Vec3
}

func (LightstyleEvent) Kind() EventKind { return LightstyleKind }
func (ColorShiftEvent) Kind() EventKind { return ColorShiftKind }
func (SoundEvent) Kind() EventKind      { return SoundKind }

func (e LightstyleEvent) Apply(t Tracked) {
	t.SetLightstyle(e.Style, e.Map)
}

func (e ColorShiftEvent) Apply(t Tracked) {
	t.SetColorShift(e.Shift)
}

func (e SoundEvent) Apply(t Tracked) {
	if e.Sfx != NoSound {
		t.StartSound(e.Entity, e.Channel, e.Sfx, e.Origin, float32(e.Volume)/255, float32(e.Attenuation)/64)
	} else {
		t.StopSound(e.Entity, e.Channel)
	}
}

// NewSoundEvent quantizes volume and attenuation the way they are sent on
// the wire.
func NewSoundEvent(ent, channel, sfx int, origin vec.Vec3, volume, attenuation float32) SoundEvent {
	return SoundEvent{
		Sfx:         sfx,
		Entity:      ent,
		Channel:     channel,
		Volume:      quantize(volume * 255),
		Attenuation: quantize(attenuation * 64),
		Origin:      origin,
	}
}

func quantize(f float32) int {
	return math.Clamp(0, math.Rint(f), 255)
}

func appendInt(b []byte, n protowire.Number, v int) []byte {
	b = protowire.AppendTag(b, n, protowire.VarintType)
	return protowire.AppendVarint(b, protowire.EncodeZigZag(int64(v)))
}

func appendFloat(b []byte, n protowire.Number, v float32) []byte {
	b = protowire.AppendTag(b, n, protowire.Fixed32Type)
	return protowire.AppendFixed32(b, math32.Float32bits(v))
}

func (e LightstyleEvent) appendFields(b []byte) []byte {
	b = appendInt(b, 1, e.Style)
	b = protowire.AppendTag(b, 2, protowire.BytesType)
	return protowire.AppendString(b, e.Map)
}

func (e ColorShiftEvent) appendFields(b []byte) []byte {
	b = appendInt(b, 1, e.Shift.DestColor[0])
	b = appendInt(b, 2, e.Shift.DestColor[1])
	b = appendInt(b, 3, e.Shift.DestColor[2])
	return appendInt(b, 4, e.Shift.Percent)
}

func (e SoundEvent) appendFields(b []byte) []byte {
	b = appendInt(b, 1, e.Sfx)
	b = appendInt(b, 2, e.Entity)
	b = appendInt(b, 3, e.Channel)
	b = appendInt(b, 4, e.Volume)
	b = appendInt(b, 5, e.Attenuation)
	b = appendFloat(b, 6, e.Origin.X)
	b = appendFloat(b, 7, e.Origin.Y)
	return appendFloat(b, 8, e.Origin.Z)
}

// AppendEvent appends e as one length delimited record.
func AppendEvent(b []byte, e Event) []byte {
	b = protowire.AppendTag(b, protowire.Number(e.Kind()), protowire.BytesType)
	return protowire.AppendBytes(b, e.appendFields(nil))
}

// ConsumeEvent decodes the record at the start of b and returns it with its
// encoded size.
func ConsumeEvent(b []byte) (Event, int, error) {
	num, typ, n := protowire.ConsumeTag(b)
	if n < 0 {
		return nil, 0, errors.Wrapf(ErrCorruptLog, "event tag: %v", protowire.ParseError(n))
	}
	if typ != protowire.BytesType {
		return nil, 0, errors.Wrapf(ErrCorruptLog, "event wire type %d", typ)
	}
	payload, m := protowire.ConsumeBytes(b[n:])
	if m < 0 {
		return nil, 0, errors.Wrapf(ErrCorruptLog, "event payload: %v", protowire.ParseError(m))
	}
	var (
		e   Event
		err error
	)
	switch k := EventKind(num); k {
	case LightstyleKind:
		e, err = decodeLightstyle(payload)
	case ColorShiftKind:
		e, err = decodeColorShift(payload)
	case SoundKind:
		e, err = decodeSound(payload)
	default:
		return nil, 0, errors.Wrapf(ErrUnknownEvent, "%d", num)
	}
	if err != nil {
		return nil, 0, err
	}
	return e, n + m, nil
}

// fields calls f for every field of a record payload. f returns the number
// of bytes of the value it consumed or a negative value to skip it.
func fields(b []byte, f func(num protowire.Number, typ protowire.Type, b []byte) int) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return errors.Wrapf(ErrCorruptLog, "field tag: %v", protowire.ParseError(n))
		}
		b = b[n:]
		m := f(num, typ, b)
		if m < 0 {
			m = protowire.ConsumeFieldValue(num, typ, b)
		}
		if m < 0 {
			return errors.Wrapf(ErrCorruptLog, "field %d: %v", num, protowire.ParseError(m))
		}
		b = b[m:]
	}
	return nil
}

func consumeInt(typ protowire.Type, b []byte, v *int) int {
	if typ != protowire.VarintType {
		return -1
	}
	u, n := protowire.ConsumeVarint(b)
	if n >= 0 {
		*v = int(protowire.DecodeZigZag(u))
	}
	return n
}

func consumeFloat(typ protowire.Type, b []byte, v *float32) int {
	if typ != protowire.Fixed32Type {
		return -1
	}
	u, n := protowire.ConsumeFixed32(b)
	if n >= 0 {
		*v = math32.Float32frombits(u)
	}
	return n
}

func decodeLightstyle(b []byte) (Event, error) {
	var e LightstyleEvent
	err := fields(b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		switch num {
		case 1:
			return consumeInt(typ, b, &e.Style)
		case 2:
			if typ != protowire.BytesType {
				return -1
			}
			s, n := protowire.ConsumeString(b)
			e.Map = s
			return n
		}
		return -1
	})
	return e, err
}

func decodeColorShift(b []byte) (Event, error) {
	var e ColorShiftEvent
	err := fields(b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		switch num {
		case 1, 2, 3:
			return consumeInt(typ, b, &e.Shift.DestColor[num-1])
		case 4:
			return consumeInt(typ, b, &e.Shift.Percent)
		}
		return -1
	})
	return e, err
}

func decodeSound(b []byte) (Event, error) {
	e := SoundEvent{Sfx: NoSound}
	err := fields(b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		switch num {
		case 1:
			return consumeInt(typ, b, &e.Sfx)
		case 2:
			return consumeInt(typ, b, &e.Entity)
		case 3:
			return consumeInt(typ, b, &e.Channel)
		case 4:
			return consumeInt(typ, b, &e.Volume)
		case 5:
			return consumeInt(typ, b, &e.Attenuation)
		case 6:
			return consumeFloat(typ, b, &e.Origin.X)
		case 7:
			return consumeFloat(typ, b, &e.Origin.Y)
		case 8:
			return consumeFloat(typ, b, &e.Origin.Z)
		}
		return -1
	})
	return e, err
}
