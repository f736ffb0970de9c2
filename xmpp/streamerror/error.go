/*
 * Copyright (c) 2020 The xmppstream developers.
 * See the LICENSE file for more information.
 */

package streamerror

import (
	"github.com/chatterbox-im/xmppstream/xmpp"
)

const errorNamespace = "urn:ietf:params:xml:ns:xmpp-streams"

// StreamError represents a "stream:error" element.
type StreamError struct {
	reason string
}

var (
	// ErrInvalidXML represents 'invalid-xml' stream error.
	ErrInvalidXML = newStreamError("invalid-xml")

	// ErrInvalidNamespace represents 'invalid-namespace' stream error.
	ErrInvalidNamespace = newStreamError("invalid-namespace")

	// ErrConnectionTimeout represents 'connection-timeout' stream error.
	ErrConnectionTimeout = newStreamError("connection-timeout")

	// ErrUnsupportedStanzaType represents 'unsupported-stanza-type' stream error.
	ErrUnsupportedStanzaType = newStreamError("unsupported-stanza-type")

	// ErrUnsupportedVersion represents 'unsupported-version' stream error.
	ErrUnsupportedVersion = newStreamError("unsupported-version")

	// ErrNotAuthorized represents 'not-authorized' stream error.
	ErrNotAuthorized = newStreamError("not-authorized")

	// ErrPolicyViolation represents 'policy-violation' stream error.
	ErrPolicyViolation = newStreamError("policy-violation")

	// ErrResourceConstraint represents 'resource-constraint' stream error.
	ErrResourceConstraint = newStreamError("resource-constraint")

	// ErrSystemShutdown represents 'system-shutdown' stream error.
	ErrSystemShutdown = newStreamError("system-shutdown")

	// ErrInternalServerError represents 'internal-server-error' stream error.
	ErrInternalServerError = newStreamError("internal-server-error")
)

func newStreamError(reason string) *StreamError {
	return &StreamError{reason: reason}
}

// Element returns the stream error XML node.
func (se *StreamError) Element() *xmpp.Element {
	ret := xmpp.NewElementName("stream:error")
	ret.AppendElement(xmpp.NewElementNamespace(se.reason, errorNamespace))
	return ret
}

func (se *StreamError) Error() string {
	return se.reason
}
