/*
 * Copyright (c) 2020 The xmppstream developers.
 * See the LICENSE file for more information.
 */

package transport

import (
	"crypto/tls"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func nextEvent(t *testing.T, tr Transport) Event {
	t.Helper()
	select {
	case ev := <-tr.Events():
		return ev
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for transport event")
		return Event{}
	}
}

func TestSocketTransport_ReadWrite(t *testing.T) {
	local, remote := net.Pipe()
	tr := NewSocketTransport(local, 0)
	defer tr.Disconnect()

	require.Equal(t, Socket, tr.Type())
	require.Equal(t, Connected, nextEvent(t, tr).Type)
	require.True(t, tr.Connected())

	// remote to local
	go func() { remote.Write([]byte("<presence/>")) }()
	ev := nextEvent(t, tr)
	require.Equal(t, DataReceived, ev.Type)
	require.Equal(t, "<presence/>", ev.Data)

	// local to remote
	readCh := make(chan string, 1)
	go func() {
		b := make([]byte, 64)
		n, _ := remote.Read(b)
		readCh <- string(b[:n])
	}()
	require.Nil(t, tr.WriteString("<iq/>"))
	require.Nil(t, tr.Flush())
	require.Equal(t, "<iq/>", <-readCh)
}

func TestSocketTransport_StartTLS(t *testing.T) {
	local, remote := net.Pipe()
	defer remote.Close()
	tr := NewSocketTransport(local, 0)
	defer tr.Disconnect()

	require.Equal(t, Connected, nextEvent(t, tr).Type)

	// writes issued while the upgrade is in flight must stay safe
	writesDone := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			tr.WriteString("<a/>")
		}
		close(writesDone)
	}()

	tr.StartTLS(&tls.Config{ServerName: "chatterbox.im"})
	require.Equal(t, Encrypted, nextEvent(t, tr).Type)
	<-writesDone

	// a second upgrade request is ignored
	tr.StartTLS(&tls.Config{ServerName: "chatterbox.im"})
	select {
	case ev := <-tr.Events():
		t.Fatalf("unexpected event after repeated upgrade: %v", ev.Type)
	case <-time.After(time.Millisecond * 100):
	}
}

func TestSocketTransport_RemoteClose(t *testing.T) {
	local, remote := net.Pipe()
	tr := NewSocketTransport(local, 0)

	require.Equal(t, Connected, nextEvent(t, tr).Type)

	remote.Close()
	ev := nextEvent(t, tr)
	require.Equal(t, Disconnected, ev.Type)
	require.False(t, tr.Connected())
}

func TestSocketTransport_LocalDisconnect(t *testing.T) {
	local, _ := net.Pipe()
	tr := NewSocketTransport(local, 0)

	require.Equal(t, Connected, nextEvent(t, tr).Type)

	tr.Disconnect()
	require.False(t, tr.Connected())
	require.Equal(t, Disconnected, nextEvent(t, tr).Type)
}
