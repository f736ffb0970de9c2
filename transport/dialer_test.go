/*
 * Copyright (c) 2020 The xmppstream developers.
 * See the LICENSE file for more information.
 */

package transport

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDialer_Dial(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.Nil(t, err)
	defer l.Close()

	go func() {
		conn, err := l.Accept()
		if err == nil {
			defer conn.Close()
			b := make([]byte, 32)
			conn.Read(b)
		}
	}()

	d := NewDialer(&Config{
		Address:     l.Addr().String(),
		KeepAlive:   time.Minute,
		DialTimeout: time.Second,
	})
	tr, err := d.Dial()
	require.Nil(t, err)
	require.NotNil(t, tr)
	require.Equal(t, Connected, nextEvent(t, tr).Type)
	tr.Disconnect()
}

func TestDialer_DialFailure(t *testing.T) {
	d := NewDialer(&Config{
		Address:     "127.0.0.1:1", // nothing listens here
		DialTimeout: time.Millisecond * 250,
	})
	tr, err := d.Dial()
	require.NotNil(t, err)
	require.Nil(t, tr)
}
