// SPDX-License-Identifier: GPL-2.0-or-later

package net

import (
	"bytes"
	"encoding/binary"
	"strings"

	"qdemo/protocol"
)

// QReader reads the little endian primitives of a server message.
type QReader struct {
	r *bytes.Reader
}

func NewQReader(data []byte) *QReader {
	return &QReader{bytes.NewReader(data)}
}

func (q *QReader) ReadInt8() (int8, error) {
	var r int8
	err := binary.Read(q.r, binary.LittleEndian, &r)
	return r, err
}

func (q *QReader) ReadByte() (byte, error) {
	return q.r.ReadByte()
}

func (q *QReader) ReadInt16() (int16, error) {
	var r int16
	err := binary.Read(q.r, binary.LittleEndian, &r)
	return r, err
}

func (q *QReader) ReadUint16() (uint16, error) {
	var r uint16
	err := binary.Read(q.r, binary.LittleEndian, &r)
	return r, err
}

func (q *QReader) ReadInt32() (int32, error) {
	var r int32
	err := binary.Read(q.r, binary.LittleEndian, &r)
	return r, err
}

func (q *QReader) ReadFloat32() (float32, error) {
	var r float32
	err := binary.Read(q.r, binary.LittleEndian, &r)
	return r, err
}

// 13.3 fixed point coords, max range +-4096
func (q *QReader) ReadCoord16() (float32, error) {
	i, err := q.ReadInt16()
	return float32(i) * (1.0 / 8.0), err
}

// 16.8 fixed point coords, max range +-32768
func (q *QReader) ReadCoord24() (float32, error) {
	i16, err := q.ReadInt16()
	if err != nil {
		return 0, err
	}
	i8, err := q.ReadByte()
	if err != nil {
		return 0, err
	}
	return float32(i16) + (float32(i8) * (1.0 / 255.0)), nil
}

func (q *QReader) ReadCoord(flags uint32) (float32, error) {
	if flags&protocol.PRFL_FLOATCOORD != 0 {
		return q.ReadFloat32()
	} else if flags&protocol.PRFL_INT32COORD != 0 {
		i, err := q.ReadInt32()
		return float32(i) * (1.0 / 16.0), err
	} else if flags&protocol.PRFL_24BITCOORD != 0 {
		return q.ReadCoord24()
	}
	return q.ReadCoord16()
}

func (q *QReader) ReadAngle(flags uint32) (float32, error) {
	if flags&protocol.PRFL_FLOATANGLE != 0 {
		return q.ReadFloat32()
	} else if flags&protocol.PRFL_SHORTANGLE != 0 {
		i, err := q.ReadInt16()
		return float32(i) * (360.0 / 65536.0), err
	}
	i, err := q.ReadInt8()
	return float32(i) * (360.0 / 256.0), err
}

// ReadString reads a zero terminated string.
func (q *QReader) ReadString() (string, error) {
	sb := strings.Builder{}
	for {
		b, err := q.ReadByte()
		if err != nil {
			return "", err
		}
		if b == 0 {
			break
		}
		sb.WriteByte(b)
	}
	return sb.String(), nil
}

// Len returns the number of bytes of the unread portion of the slice.
func (q *QReader) Len() int {
	return q.r.Len()
}
