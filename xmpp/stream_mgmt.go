/*
 * Copyright (c) 2020 The xmppstream developers.
 * See the LICENSE file for more information.
 */

package xmpp

import (
	"fmt"
	"strconv"
)

const (
	// StreamManagementNamespace represents the stream management namespace (XEP-0198).
	StreamManagementNamespace = "urn:xmpp:sm:3"

	ackName     = "a"
	requestName = "r"
)

// NewAckFrame creates a stream management acknowledgement frame
// carrying the cumulative count of handled stanzas.
func NewAckFrame(h uint32) *Element {
	a := NewElementNamespace(ackName, StreamManagementNamespace)
	a.SetAttribute("h", strconv.FormatUint(uint64(h), 10))
	return a
}

// NewRequestFrame creates a stream management acknowledgement request frame.
func NewRequestFrame() *Element {
	return NewElementNamespace(requestName, StreamManagementNamespace)
}

// IsAckFrame returns true if elem is a stream management acknowledgement frame.
func IsAckFrame(elem XElement) bool {
	return elem.Name() == ackName && elem.Namespace() == StreamManagementNamespace
}

// IsRequestFrame returns true if elem is a stream management acknowledgement request frame.
func IsRequestFrame(elem XElement) bool {
	return elem.Name() == requestName && elem.Namespace() == StreamManagementNamespace
}

// AckFrameSeqNumber extracts the cumulative handled stanza count
// carried by an acknowledgement frame.
func AckFrameSeqNumber(elem XElement) (uint32, error) {
	if !IsAckFrame(elem) {
		return 0, fmt.Errorf("not an acknowledgement frame: %s", elem.Name())
	}
	h, err := strconv.ParseUint(elem.Attributes().Get("h"), 10, 32)
	if err != nil {
		return 0, fmt.Errorf(`invalid acknowledgement "h" attribute: %v`, err)
	}
	return uint32(h), nil
}
