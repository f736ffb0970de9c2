/*
 * Copyright (c) 2020 The xmppstream developers.
 * See the LICENSE file for more information.
 */

package transport

import (
	"bytes"
	"crypto/tls"
	"sync"
)

// MockTransport represents a mocked transport type.
// Tests drive the event channel by hand through the Deliver methods.
type MockTransport struct {
	mu         sync.RWMutex
	wb         bytes.Buffer
	connected  bool
	secured    bool
	flushCount int
	evCh       chan Event
}

// NewMockTransport returns a new MockTransport instance.
func NewMockTransport() *MockTransport {
	return &MockTransport{
		evCh: make(chan Event, 64),
	}
}

// Type returns mocked transport type value.
func (mt *MockTransport) Type() Type {
	return Socket
}

// Connected returns whether or not the mocked transport is connected.
func (mt *MockTransport) Connected() bool {
	mt.mu.RLock()
	defer mt.mu.RUnlock()
	return mt.connected
}

// WriteString writes a raw string to the mocked transport internal buffer.
func (mt *MockTransport) WriteString(str string) error {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	mt.wb.WriteString(str)
	return nil
}

// Flush increments the mocked transport flush counter.
func (mt *MockTransport) Flush() error {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	mt.flushCount++
	return nil
}

// StartTLS marks the mocked transport as secured and emits the
// Encrypted event.
func (mt *MockTransport) StartTLS(cfg *tls.Config) {
	mt.mu.Lock()
	mt.secured = true
	mt.mu.Unlock()
	mt.evCh <- Event{Type: Encrypted}
}

// Secured returns whether or not the mocked transport has been secured.
func (mt *MockTransport) Secured() bool {
	mt.mu.RLock()
	defer mt.mu.RUnlock()
	return mt.secured
}

// Disconnect marks the mocked transport as disconnected and emits
// the Disconnected event.
func (mt *MockTransport) Disconnect() {
	mt.mu.Lock()
	mt.connected = false
	mt.mu.Unlock()
	mt.evCh <- Event{Type: Disconnected}
}

// Events returns the mocked transport event channel.
func (mt *MockTransport) Events() <-chan Event {
	return mt.evCh
}

// DeliverConnected marks the mocked transport as connected and emits
// the Connected event.
func (mt *MockTransport) DeliverConnected() {
	mt.mu.Lock()
	mt.connected = true
	mt.mu.Unlock()
	mt.evCh <- Event{Type: Connected}
}

// DeliverEncrypted emits the Encrypted event.
func (mt *MockTransport) DeliverEncrypted() {
	mt.evCh <- Event{Type: Encrypted}
}

// DeliverData emits a DataReceived event carrying text.
func (mt *MockTransport) DeliverData(text string) {
	mt.evCh <- Event{Type: DataReceived, Data: text}
}

// DeliverError emits an ErrorOccurred event.
func (mt *MockTransport) DeliverError(err error) {
	mt.evCh <- Event{Type: ErrorOccurred, Err: err}
}

// CloseEvents closes the mocked transport event channel.
func (mt *MockTransport) CloseEvents() {
	close(mt.evCh)
}

// WrittenText returns and clears any text previously written to the mocked transport.
func (mt *MockTransport) WrittenText() string {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	defer mt.wb.Reset()
	return mt.wb.String()
}

// FlushCount returns how many times the mocked transport has been flushed.
func (mt *MockTransport) FlushCount() int {
	mt.mu.RLock()
	defer mt.mu.RUnlock()
	return mt.flushCount
}
