// SPDX-License-Identifier: GPL-2.0-or-later

package net

import (
	"bytes"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestLoopback(t *testing.T) {
	client, server := NewLoopback()
	if m, err := client.GetMessage(); err != nil || m != nil {
		t.Errorf("GetMessage on empty connection = %v, %v, want nil, nil", m, err)
	}
	if err := server.SendMessage([]byte{1, 2, 3}); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if err := server.SendUnreliableMessage([]byte{4}); err != nil {
		t.Fatalf("SendUnreliableMessage: %v", err)
	}
	m, err := client.GetMessage()
	if err != nil || !bytes.Equal(m, []byte{Reliable, 1, 2, 3}) {
		t.Errorf("GetMessage = %v, %v, want [1 1 2 3]", m, err)
	}
	m, err = client.GetMessage()
	if err != nil || !bytes.Equal(m, []byte{Unreliable, 4}) {
		t.Errorf("GetMessage = %v, %v, want [2 4]", m, err)
	}
	server.Close()
	if _, err := client.GetMessage(); err == nil {
		t.Errorf("GetMessage after close should fail")
	}
	if err := server.SendMessage([]byte{1}); err == nil {
		t.Errorf("SendMessage after close should fail")
	}
	// closing twice is fine
	server.Close()
}

func TestLocalConnect(t *testing.T) {
	client, err := Connect("local")
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	server := CheckNewConnections()
	if server == nil {
		t.Fatalf("CheckNewConnections returned nil")
	}
	if CheckNewConnections() != nil {
		t.Errorf("second CheckNewConnections should return nil")
	}
	if err := client.SendMessage([]byte("hi")); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	m, err := server.GetMessage()
	if err != nil || string(m[1:]) != "hi" {
		t.Errorf("GetMessage = %q, %v, want hi", m, err)
	}
	if _, err := Connect("udp://nowhere"); err == nil {
		t.Errorf("Connect with unknown scheme should fail")
	}
}

func TestWebsocket(t *testing.T) {
	accepted := make(chan *Connection, 1)
	srv := httptest.NewServer(Handler(func(c *Connection) {
		accepted <- c
	}))
	defer srv.Close()

	client, err := Connect("ws" + strings.TrimPrefix(srv.URL, "http"))
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer client.Close()
	var server *Connection
	select {
	case server = <-accepted:
	case <-time.After(5 * time.Second):
		t.Fatalf("server did not accept the connection")
	}
	defer server.Close()

	if err := server.SendMessage([]byte{7, 8}); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		m, err := client.GetMessage()
		if err != nil {
			t.Fatalf("GetMessage: %v", err)
		}
		if m == nil {
			time.Sleep(time.Millisecond)
			continue
		}
		if !bytes.Equal(m, []byte{Reliable, 7, 8}) {
			t.Errorf("GetMessage = %v, want [1 7 8]", m)
		}
		return
	}
	t.Errorf("no message received")
}
