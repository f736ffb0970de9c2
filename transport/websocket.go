/*
 * Copyright (c) 2020 The xmppstream developers.
 * See the LICENSE file for more information.
 */

package transport

import (
	"crypto/tls"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

type webSocketTransport struct {
	conn      *websocket.Conn
	keepAlive time.Duration
	evCh      chan Event
	connected int32
	closed    int32
}

// NewWebSocketTransport creates a websocket class stream transport.
func NewWebSocketTransport(conn *websocket.Conn, keepAlive time.Duration) Transport {
	wst := &webSocketTransport{
		conn:      conn,
		keepAlive: keepAlive,
		evCh:      make(chan Event, evChanBufferSize),
		connected: 1,
	}
	wst.evCh <- Event{Type: Connected}
	go wst.readLoop()
	return wst
}

func (wst *webSocketTransport) Type() Type {
	return WebSocket
}

func (wst *webSocketTransport) Connected() bool {
	return atomic.LoadInt32(&wst.connected) == 1
}

func (wst *webSocketTransport) WriteString(str string) error {
	return wst.conn.WriteMessage(websocket.TextMessage, []byte(str))
}

func (wst *webSocketTransport) Flush() error {
	return nil // websocket messages are flushed frame by frame
}

func (wst *webSocketTransport) StartTLS(cfg *tls.Config) {
	// encryption is negotiated during the http upgrade handshake
}

func (wst *webSocketTransport) Disconnect() {
	if atomic.CompareAndSwapInt32(&wst.closed, 0, 1) {
		atomic.StoreInt32(&wst.connected, 0)
		wst.conn.Close()
	}
}

func (wst *webSocketTransport) Events() <-chan Event {
	return wst.evCh
}

func (wst *webSocketTransport) readLoop() {
	for {
		if wst.keepAlive > 0 {
			wst.conn.SetReadDeadline(time.Now().Add(wst.keepAlive))
		}
		_, msg, err := wst.conn.ReadMessage()
		if err != nil {
			atomic.StoreInt32(&wst.connected, 0)
			if atomic.LoadInt32(&wst.closed) == 0 && !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				wst.evCh <- Event{Type: ErrorOccurred, Err: err}
			}
			wst.evCh <- Event{Type: Disconnected}
			close(wst.evCh)
			return
		}
		wst.evCh <- Event{Type: DataReceived, Data: string(msg)}
	}
}
