// SPDX-License-Identifier: GPL-2.0-or-later

package client

import (
	"qdemo/net"
)

const (
	//
	// client to server
	//
	Bad        = 0
	Nop        = 1
	Disconnect = 2
	// [usercmd_t]
	Move = 3
	// [string] message
	StringCmd = 4
)

// StringCmdBytes returns a message asking the server to run s.
func StringCmdBytes(s string) []byte {
	var m net.Message
	m.WriteByte(StringCmd)
	m.WriteString(s)
	return m.Bytes()
}

// DisconnectBytes returns a message telling the server the client leaves.
func DisconnectBytes() []byte {
	return []byte{Disconnect}
}
