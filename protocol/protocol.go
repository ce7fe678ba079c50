// SPDX-License-Identifier: GPL-2.0-or-later

package protocol

const (
	NetQuake  = 15
	FitzQuake = 666
	RMQ       = 999

	PRFL_SHORTANGLE = (1 << 1)
	PRFL_FLOATANGLE = (1 << 2)
	PRFL_24BITCOORD = (1 << 3)
	PRFL_FLOATCOORD = (1 << 4)
	PRFL_EDICTSCALE = (1 << 5)
	PRFL_INT32COORD = (1 << 7)
)

const (
	// largest message the client accepts, also the limit for a single
	// framed demo record
	MaxMsgLen = 64000
	// number of signon messages to receive before the client is fully
	// connected
	Signons = 4

	MaxLightstyles = 64
	MaxStyleString = 64
	MaxScoreboard  = 16
	MaxSounds      = 2048
)
