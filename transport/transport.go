/*
 * Copyright (c) 2020 The xmppstream developers.
 * See the LICENSE file for more information.
 */

package transport

import "crypto/tls"

// Type represents a stream transport type.
type Type int

const (
	// Socket represents a socket transport type.
	Socket Type = iota + 1

	// WebSocket represents a websocket transport type.
	WebSocket
)

// String returns Type string representation.
func (tt Type) String() string {
	switch tt {
	case Socket:
		return "socket"
	case WebSocket:
		return "websocket"
	}
	return ""
}

// EventType represents a transport event kind.
type EventType int

const (
	// Connected event is emitted once the transport becomes ready.
	Connected EventType = iota + 1

	// Encrypted event is emitted once transport encryption is established.
	Encrypted

	// DataReceived event carries a received text payload.
	DataReceived

	// ErrorOccurred event carries a transport error description.
	ErrorOccurred

	// Disconnected event is emitted once the transport goes away.
	Disconnected
)

// Event represents a transport lifecycle or data event.
type Event struct {
	Type EventType
	Data string
	Err  error
}

// Transport represents an event driven stream transport mechanism.
// Events are delivered on a single channel, so a reading consumer
// observes them strictly in emission order.
type Transport interface {
	// Type returns transport type value.
	Type() Type

	// Connected returns whether or not the transport is ready to send.
	Connected() bool

	// WriteString writes a raw string to the transport.
	WriteString(s string) error

	// Flush writes any buffered outgoing data to the peer.
	Flush() error

	// StartTLS secures the transport as a client.
	// The Encrypted event is emitted once encryption is established.
	StartTLS(cfg *tls.Config)

	// Disconnect closes the transport.
	Disconnect()

	// Events returns the channel transport events are emitted on.
	// The channel is closed after the Disconnected event.
	Events() <-chan Event
}
