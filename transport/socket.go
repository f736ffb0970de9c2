/*
 * Copyright (c) 2020 The xmppstream developers.
 * See the LICENSE file for more information.
 */

package transport

import (
	"bufio"
	"crypto/tls"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"
)

const socketBuffSize = 4096

const evChanBufferSize = 16

type socketTransport struct {
	mu        sync.Mutex
	conn      net.Conn
	br        *bufio.Reader
	bw        *bufio.Writer
	tlsCfg    *tls.Config
	keepAlive time.Duration
	evCh      chan Event
	connected int32
	closed    int32
}

// NewSocketTransport creates a socket class stream transport.
// The Connected event is emitted right away; data read from the
// connection is delivered through DataReceived events.
func NewSocketTransport(conn net.Conn, keepAlive time.Duration) Transport {
	s := &socketTransport{
		conn:      conn,
		br:        bufio.NewReaderSize(conn, socketBuffSize),
		bw:        bufio.NewWriterSize(conn, socketBuffSize),
		keepAlive: keepAlive,
		evCh:      make(chan Event, evChanBufferSize),
		connected: 1,
	}
	s.evCh <- Event{Type: Connected}
	go s.readLoop()
	return s
}

func (s *socketTransport) Type() Type {
	return Socket
}

func (s *socketTransport) Connected() bool {
	return atomic.LoadInt32(&s.connected) == 1
}

func (s *socketTransport) WriteString(str string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := io.WriteString(s.bw, str)
	return err
}

func (s *socketTransport) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bw.Flush()
}

func (s *socketTransport) Disconnect() {
	if atomic.CompareAndSwapInt32(&s.closed, 0, 1) {
		atomic.StoreInt32(&s.connected, 0)
		s.mu.Lock()
		s.conn.Close()
		s.mu.Unlock()
	}
}

func (s *socketTransport) Events() <-chan Event {
	return s.evCh
}

// StartTLS requests securing the transport as a client.
// The connection swap itself runs on the read loop goroutine, the
// only owner of the reader: the pending read is interrupted through
// the deadline and the loop picks the upgrade up before reading
// again. The Encrypted event is emitted once the swap is done.
func (s *socketTransport) StartTLS(cfg *tls.Config) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.conn.(*tls.Conn); ok || s.tlsCfg != nil {
		return
	}
	s.tlsCfg = cfg
	s.conn.SetReadDeadline(time.Now()) // unblock the pending read
}

func (s *socketTransport) readLoop() {
	buf := make([]byte, socketBuffSize)
	for {
		s.upgradeTLS() // pick up an upgrade requested between reads

		s.mu.Lock()
		br := s.br
		if s.keepAlive > 0 {
			s.conn.SetReadDeadline(time.Now().Add(s.keepAlive))
		}
		s.mu.Unlock()

		n, err := br.Read(buf)
		if n > 0 {
			s.evCh <- Event{Type: DataReceived, Data: string(buf[:n])}
		}
		if err != nil {
			if s.upgradeTLS() {
				continue
			}
			atomic.StoreInt32(&s.connected, 0)
			if err != io.EOF && atomic.LoadInt32(&s.closed) == 0 {
				s.evCh <- Event{Type: ErrorOccurred, Err: err}
			}
			s.evCh <- Event{Type: Disconnected}
			close(s.evCh)
			return
		}
	}
}

func (s *socketTransport) upgradeTLS() bool {
	s.mu.Lock()
	if s.tlsCfg == nil {
		s.mu.Unlock()
		return false
	}
	s.conn.SetReadDeadline(time.Time{})
	s.conn = tls.Client(s.conn, s.tlsCfg)
	s.br.Reset(s.conn)
	s.bw.Reset(s.conn)
	s.tlsCfg = nil
	s.mu.Unlock()

	s.evCh <- Event{Type: Encrypted}
	return true
}
