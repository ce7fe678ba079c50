// SPDX-License-Identifier: GPL-2.0-or-later

// Package crc implements the 16 bit CRC of the Quake tools, CRC-16/CCITT
// with an initial value of 0xffff.
package crc

const (
	poly    = 0x1021
	initial = 0xffff
)

var table = makeTable(poly)

func makeTable(poly uint16) *[256]uint16 {
	t := &[256]uint16{}
	for i := uint16(0); i < 256; i++ {
		crc := i << 8
		for j := 0; j < 8; j++ {
			if crc&0x8000 != 0 {
				crc = (crc << 1) ^ poly
			} else {
				crc <<= 1
			}
		}
		t[i] = crc
	}
	return t
}

// Update continues crc over p.
func Update(crc uint16, p []byte) uint16 {
	for _, v := range p {
		crc = table[byte(crc>>8)^v] ^ (crc << 8)
	}
	return crc
}

// Checksum returns the CRC of p.
func Checksum(p []byte) uint16 {
	return Update(initial, p)
}
