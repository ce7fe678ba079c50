// SPDX-License-Identifier: GPL-2.0-or-later

package demo

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/pkg/errors"

	"qdemo/math/vec"
	"qdemo/protocol"
)

// RecordHeaderSize is the size of the length and view angles in front of
// every message.
const RecordHeaderSize = 16

type flusher interface {
	Flush() error
}

type syncer interface {
	Sync() error
}

// WriteMessage writes data prefixed by its length and the view angles.
// Buffered writers are flushed so a demo that is cut off stays readable up
// to the last complete message.
func WriteMessage(w io.Writer, data []byte, angles vec.Vec3) error {
	var h [RecordHeaderSize]byte
	binary.LittleEndian.PutUint32(h[0:], uint32(len(data)))
	binary.LittleEndian.PutUint32(h[4:], math.Float32bits(angles.X))
	binary.LittleEndian.PutUint32(h[8:], math.Float32bits(angles.Y))
	binary.LittleEndian.PutUint32(h[12:], math.Float32bits(angles.Z))
	if _, err := w.Write(h[:]); err != nil {
		return errors.Wrap(err, "write demo message header")
	}
	if _, err := w.Write(data); err != nil {
		return errors.Wrap(err, "write demo message")
	}
	switch f := w.(type) {
	case flusher:
		return f.Flush()
	case syncer:
		return f.Sync()
	}
	return nil
}

// ReadMessage reads one message written by WriteMessage. A message larger
// than protocol.MaxMsgLen is reported as ErrMessageTooLarge without reading
// its payload. A short read or a negative length is ErrEndOfDemo.
func ReadMessage(r io.Reader) ([]byte, vec.Vec3, error) {
	var h [RecordHeaderSize]byte
	if _, err := io.ReadFull(r, h[:]); err != nil {
		return nil, vec.Vec3{}, errors.Wrapf(ErrEndOfDemo, "message header: %v", err)
	}
	l := int32(binary.LittleEndian.Uint32(h[0:]))
	angles := vec.Vec3{
		X: math.Float32frombits(binary.LittleEndian.Uint32(h[4:])),
		Y: math.Float32frombits(binary.LittleEndian.Uint32(h[8:])),
		Z: math.Float32frombits(binary.LittleEndian.Uint32(h[12:])),
	}
	if l < 0 {
		return nil, angles, errors.Wrapf(ErrEndOfDemo, "message length %d", l)
	}
	if l > protocol.MaxMsgLen {
		return nil, angles, errors.Wrapf(ErrMessageTooLarge, "%d bytes", l)
	}
	data := make([]byte, l)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, angles, errors.Wrapf(ErrEndOfDemo, "message of %d bytes: %v", l, err)
	}
	return data, angles, nil
}

// WriteHeader writes the forced cd track, -1 for none.
func WriteHeader(w io.Writer, track int) error {
	_, err := fmt.Fprintf(w, "%d\n", track)
	return errors.Wrap(err, "write demo header")
}

// ReadHeader reads the cd track line a demo starts with. The number must be
// followed by exactly one '\n'. n is the number of bytes consumed, which is
// the offset of the first message.
func ReadHeader(r *bufio.Reader) (track int, n int, err error) {
	var digits []byte
	// leading white space is skipped like scanf does
	for {
		c, err := r.ReadByte()
		if err != nil {
			return 0, n, errors.Wrapf(ErrBadHeader, "%v", err)
		}
		n++
		if c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == '\v' || c == '\f' {
			continue
		}
		digits = append(digits, c)
		break
	}
	for {
		c, err := r.ReadByte()
		if err != nil {
			return 0, n, errors.Wrapf(ErrBadHeader, "%v", err)
		}
		n++
		if c == '\n' {
			break
		}
		digits = append(digits, c)
	}
	t, err := strconv.ParseInt(string(digits), 10, 32)
	if err != nil {
		return 0, n, errors.Wrapf(ErrBadHeader, "cd track %q", digits)
	}
	return int(t), n, nil
}
