/*
 * Copyright (c) 2020 The xmppstream developers.
 * See the LICENSE file for more information.
 */

package stream

import (
	"github.com/chatterbox-im/xmppstream/log"
	"github.com/chatterbox-im/xmppstream/pool"
	"github.com/chatterbox-im/xmppstream/transport"
	"github.com/chatterbox-im/xmppstream/xmpp"
	"github.com/chatterbox-im/xmppstream/xmpp/streamerror"
	"github.com/pborman/uuid"
)

var bufPool = pool.NewBufferPool()

// State represents stream connection state.
type State uint32

const (
	// Disconnected represents a disconnected stream state.
	Disconnected State = iota

	// Connecting represents a connecting stream state.
	Connecting

	// Connected represents a connected stream state.
	Connected

	// Closing represents a closing stream state.
	Closing
)

// Handler bundles the stream lifecycle callbacks.
// Every callback is optional; the stream's own bookkeeping runs
// regardless of which callbacks are set.
type Handler struct {
	// Started is invoked whenever the underlying transport becomes
	// ready (connected or freshly encrypted), after the stream has
	// reset its incoming buffer state.
	Started func()

	// StreamEstablished is invoked with the stream root element as
	// soon as the opening stream tag is received, before any of the
	// document children are dispatched.
	StreamEstablished func(root xmpp.XElement)

	// Stanza is invoked for every dispatched element, in the exact
	// order elements occur in the received document.
	Stanza func(elem xmpp.XElement)

	// KeepAlive is invoked when a whitespace ping is received.
	KeepAlive func()

	// TransportError is invoked on transport error events.
	TransportError func(err error)
}

// Stream represents a client-to-server XMPP stream: it frames incoming
// text fragments into virtual documents, dispatches their child
// elements in order and layers stream management acknowledgements on
// top of the attached transport.
//
// A stream instance is not safe for concurrent use: transport events
// and API calls must be serviced from a single goroutine.
type Stream struct {
	id    string
	cfg   *Config
	hnd   Handler
	tr    transport.Transport
	fr    *xmpp.Framer
	state State

	smEnabled       bool
	unackedStanzas  map[uint32]string
	lastOutgoingSeq uint32
	lastIncomingSeq uint32
}

// New returns a new stream instance.
func New(cfg *Config, hnd Handler) *Stream {
	return &Stream{
		id:             uuid.New(),
		cfg:            cfg,
		hnd:            hnd,
		fr:             xmpp.NewFramer(cfg.MaxStanzaSize),
		unackedStanzas: make(map[uint32]string),
	}
}

// ID returns stream identifier.
func (s *Stream) ID() string {
	return s.id
}

// State returns current stream connection state.
func (s *Stream) State() State {
	return s.state
}

// SetTransport attaches a transport to the stream, replacing any
// previous one. Pending unacknowledged stanzas are deliberately kept,
// so a caller can resume delivery on the new connection.
func (s *Stream) SetTransport(tr transport.Transport) {
	s.tr = tr
	s.state = Connecting
}

// Run consumes transport events until the transport event channel is
// closed. It is a convenience wrapper around HandleEvent for callers
// that dedicate a goroutine to the stream.
func (s *Stream) Run() {
	for ev := range s.tr.Events() {
		s.HandleEvent(ev)
	}
	s.state = Disconnected
}

// HandleEvent applies a single transport event to the stream.
func (s *Stream) HandleEvent(ev transport.Event) {
	switch ev.Type {
	case transport.Connected:
		log.Infof("stream %s: transport connected", s.id)
		s.state = Connected
		s.handleStart()

	case transport.Encrypted:
		log.Debugf("stream %s: transport encrypted", s.id)
		s.handleStart()

	case transport.ErrorOccurred:
		log.Warnf("stream %s: transport error: %v", s.id, ev.Err)
		if s.hnd.TransportError != nil {
			s.hnd.TransportError(ev.Err)
		}

	case transport.DataReceived:
		s.handleDataReceived(ev.Data)

	case transport.Disconnected:
		s.state = Disconnected
	}
}

// Send serializes a stanza and writes it to the attached transport.
// When stream management is enabled, stanzas of kind message, presence
// or iq are registered under a fresh sequence number before
// transmission, and an acknowledgement request is emitted right after.
// Returns false if the transport is unavailable; a registered ledger
// entry is kept either way, so it can be resent on resumption.
func (s *Stream) Send(stanza xmpp.XElement) bool {
	buf := bufPool.Get()
	defer bufPool.Put(buf)
	stanza.ToXML(buf, true)
	text := buf.String()

	isStanza := stanza.IsStanza()
	if isStanza && s.smEnabled {
		s.lastOutgoingSeq++
		s.unackedStanzas[s.lastOutgoingSeq] = text
	}
	sent := s.SendData(text)
	if isStanza {
		s.SendAcknowledgementRequest()
	}
	return sent
}

// SendData writes raw text to the attached transport.
// Returns false if the transport is unavailable.
func (s *Stream) SendData(text string) bool {
	log.Debugf("SEND(%s): %s", s.id, text)

	if s.tr == nil || !s.tr.Connected() {
		return false
	}
	return s.tr.WriteString(text) == nil
}

// Disconnect closes the stream: the closing stream tag is sent and
// flushed, and the transport is asked to disconnect. Unless the stream
// is configured to wait for the peer's own closing tag, the transport
// is torn down right away.
func (s *Stream) Disconnect() {
	s.smEnabled = false
	if s.tr == nil {
		return
	}
	connected := s.tr.Connected()
	if connected {
		s.SendData(xmpp.StreamClosingTag)
		s.tr.Flush()
	}
	s.state = Closing
	if s.cfg.WaitForPeerClose && connected {
		return // shutdown completes once the peer's closing tag arrives
	}
	s.tr.Disconnect()
	s.state = Disconnected
}

func (s *Stream) disconnectWithStreamError(streamErr *streamerror.StreamError) {
	s.smEnabled = false
	if s.tr != nil && s.tr.Connected() {
		s.SendData(streamErr.Element().String())
		s.SendData(xmpp.StreamClosingTag)
		s.tr.Flush()
		s.tr.Disconnect()
	}
	s.state = Disconnected
}

func (s *Stream) handleStart() {
	s.smEnabled = false
	s.fr.Reset()
	if s.hnd.Started != nil {
		s.hnd.Started()
	}
}

func (s *Stream) handleDataReceived(text string) {
	doc, err := s.fr.Feed(text)
	if err != nil {
		log.Errorf("stream %s: dropped incoming buffer: %v", s.id, err)
		if err == xmpp.ErrTooLargeDocument {
			s.disconnectWithStreamError(streamerror.ErrPolicyViolation)
		}
		return
	}
	if doc == nil {
		return // awaiting more data
	}
	log.Debugf("RECV(%s): %s", s.id, text)

	if doc.KeepAlive {
		if s.hnd.KeepAlive != nil {
			s.hnd.KeepAlive()
		}
		return
	}
	if doc.HasStreamStart && s.hnd.StreamEstablished != nil {
		s.hnd.StreamEstablished(doc.Root)
	}
	for _, child := range doc.Root.Elements().All() {
		switch {
		case xmpp.IsAckFrame(child):
			s.handleAcknowledgement(child)

		case xmpp.IsRequestFrame(child):
			s.SendAcknowledgement()

		default:
			if s.hnd.Stanza != nil {
				s.hnd.Stanza(child)
			}
			if s.smEnabled && child.IsStanza() {
				s.lastIncomingSeq++
			}
		}
	}
	if doc.HasStreamEnd {
		s.handleStreamEnd()
	}
}

func (s *Stream) handleStreamEnd() {
	s.smEnabled = false
	if s.state != Closing && s.tr.Connected() {
		// peer initiated the shutdown: answer with our own closing tag
		s.SendData(xmpp.StreamClosingTag)
		s.tr.Flush()
	}
	s.tr.Disconnect()
	s.state = Disconnected
}
