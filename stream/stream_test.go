/*
 * Copyright (c) 2020 The xmppstream developers.
 * See the LICENSE file for more information.
 */

package stream

import (
	"strings"
	"testing"

	"github.com/chatterbox-im/xmppstream/transport"
	"github.com/chatterbox-im/xmppstream/xmpp"
	"github.com/stretchr/testify/require"
)

const testStreamStart = `<?xml version="1.0"?><stream:stream xmlns="jabber:client" xmlns:stream="http://etherx.jabber.org/streams" version="1.0">`

type testRecorder struct {
	events []string
}

func (r *testRecorder) handler() Handler {
	return Handler{
		Started:           func() { r.events = append(r.events, "started") },
		StreamEstablished: func(root xmpp.XElement) { r.events = append(r.events, "established") },
		Stanza:            func(elem xmpp.XElement) { r.events = append(r.events, "stanza:"+elem.Name()) },
		KeepAlive:         func() { r.events = append(r.events, "ping") },
	}
}

func setupStream(cfg *Config) (*Stream, *transport.MockTransport, *testRecorder) {
	if cfg == nil {
		cfg = &Config{}
	}
	rec := &testRecorder{}
	s := New(cfg, rec.handler())
	mt := transport.NewMockTransport()
	s.SetTransport(mt)
	mt.DeliverConnected()
	drainEvents(s, mt)
	return s, mt, rec
}

func drainEvents(s *Stream, mt *transport.MockTransport) {
	for {
		select {
		case ev := <-mt.Events():
			s.HandleEvent(ev)
		default:
			return
		}
	}
}

func deliver(s *Stream, mt *transport.MockTransport, text string) {
	mt.DeliverData(text)
	drainEvents(s, mt)
}

func TestStream_EstablishedBeforeStanzas(t *testing.T) {
	s, mt, rec := setupStream(nil)

	deliver(s, mt, testStreamStart+`<message id="p"/><presence id="q"/>`)

	require.Equal(t, []string{"started", "established", "stanza:message", "stanza:presence"}, rec.events)
	require.Equal(t, Connected, s.State())
}

func TestStream_ChunkedDeliveryEquivalence(t *testing.T) {
	full := testStreamStart + `<message id="p"/><presence id="q"/>`

	whole, wholeTr, wholeRec := setupStream(nil)
	deliver(whole, wholeTr, full)

	split, splitTr, splitRec := setupStream(nil)
	for _, chunk := range []string{full[:17], full[17:103], full[103:]} {
		deliver(split, splitTr, chunk)
	}
	require.Equal(t, wholeRec.events, splitRec.events)
}

func TestStream_WhitespaceKeepAlive(t *testing.T) {
	s, mt, rec := setupStream(nil)

	deliver(s, mt, " \n\t ")

	require.Equal(t, []string{"started", "ping"}, rec.events)
}

func TestStream_SendAssignsSequenceNumbers(t *testing.T) {
	s, mt, _ := setupStream(nil)
	s.EnableStreamManagement(true)
	mt.WrittenText()

	s.Send(xmpp.NewElementName("message").SetID("m1"))
	s.Send(xmpp.NewElementName("auth")) // not a stanza: no sequence number
	s.Send(xmpp.NewElementName("presence").SetID("p1"))
	s.Send(xmpp.NewElementName("iq").SetID("i1"))

	require.Len(t, s.unackedStanzas, 3)
	require.Contains(t, s.unackedStanzas[uint32(1)], `id="m1"`)
	require.Contains(t, s.unackedStanzas[uint32(2)], `id="p1"`)
	require.Contains(t, s.unackedStanzas[uint32(3)], `id="i1"`)

	// every stanza send is followed by an acknowledgement request
	out := mt.WrittenText()
	require.Equal(t, 3, strings.Count(out, `<r xmlns="urn:xmpp:sm:3"/>`))
}

func TestStream_AcknowledgementPrunesLedger(t *testing.T) {
	s, mt, _ := setupStream(nil)
	s.EnableStreamManagement(true)

	deliver(s, mt, testStreamStart)
	require.True(t, s.Send(xmpp.NewElementName("message").SetID("x")))
	require.Len(t, s.unackedStanzas, 1)

	deliver(s, mt, `<a xmlns="urn:xmpp:sm:3" h="1"/>`)
	require.Len(t, s.unackedStanzas, 0)
}

func TestStream_CumulativeAcknowledgement(t *testing.T) {
	s, _, _ := setupStream(nil)
	s.EnableStreamManagement(true)
	s.unackedStanzas = map[uint32]string{1: "A", 2: "B", 3: "C", 4: "D"}

	s.SetAcknowledgedSequenceNumber(3)
	require.Equal(t, map[uint32]string{4: "D"}, s.unackedStanzas)

	// acknowledging a lower number after a higher one has no further effect
	s.SetAcknowledgedSequenceNumber(2)
	require.Equal(t, map[uint32]string{4: "D"}, s.unackedStanzas)

	s.SetAcknowledgedSequenceNumber(0)
	require.Equal(t, map[uint32]string{4: "D"}, s.unackedStanzas)
}

func TestStream_SendFailureKeepsLedgerEntry(t *testing.T) {
	s, mt, _ := setupStream(nil)
	s.EnableStreamManagement(true)

	mt.Disconnect()
	drainEvents(s, mt)
	require.Equal(t, Disconnected, s.State())

	sent := s.Send(xmpp.NewElementName("message").SetID("y"))
	require.False(t, sent)
	require.Len(t, s.unackedStanzas, 1)
	require.Contains(t, s.unackedStanzas[uint32(1)], `id="y"`)
}

func TestStream_RequestFrameTriggersAcknowledgement(t *testing.T) {
	s, mt, _ := setupStream(nil)
	s.EnableStreamManagement(true)
	mt.WrittenText()

	deliver(s, mt, testStreamStart+`<message/><message/><r xmlns="urn:xmpp:sm:3"/>`)

	require.Equal(t, uint32(2), s.LastIncomingSequenceNumber())
	require.Contains(t, mt.WrittenText(), `<a xmlns="urn:xmpp:sm:3" h="2"/>`)
}

func TestStream_IncomingCountOnlyWhileEnabled(t *testing.T) {
	s, mt, _ := setupStream(nil)

	deliver(s, mt, testStreamStart+`<message/>`)
	require.Equal(t, uint32(0), s.LastIncomingSequenceNumber())

	s.EnableStreamManagement(true)
	deliver(s, mt, `<message/><stream:features/>`)
	require.Equal(t, uint32(1), s.LastIncomingSequenceNumber()) // features is not counted
}

func TestStream_StreamEndShutdown(t *testing.T) {
	s, mt, rec := setupStream(nil)

	deliver(s, mt, testStreamStart+`<message id="p"/><presence id="q"/></stream:stream>`)

	// both stanzas dispatch before the disconnect sequence runs
	require.Equal(t, []string{"started", "established", "stanza:message", "stanza:presence"}, rec.events)
	require.Contains(t, mt.WrittenText(), xmpp.StreamClosingTag)
	require.Equal(t, 1, mt.FlushCount())
	require.Equal(t, Disconnected, s.State())
	require.False(t, mt.Connected())
}

func TestStream_Disconnect(t *testing.T) {
	s, mt, _ := setupStream(nil)
	s.EnableStreamManagement(true)

	s.Disconnect()
	drainEvents(s, mt)

	require.Equal(t, xmpp.StreamClosingTag, mt.WrittenText())
	require.Equal(t, 1, mt.FlushCount())
	require.Equal(t, Disconnected, s.State())
	require.False(t, s.smEnabled)
}

func TestStream_DisconnectWaitForPeerClose(t *testing.T) {
	s, mt, _ := setupStream(&Config{WaitForPeerClose: true})
	deliver(s, mt, testStreamStart)

	s.Disconnect()
	require.Equal(t, Closing, s.State())
	require.True(t, mt.Connected()) // transport stays open until the peer answers

	deliver(s, mt, `</stream:stream>`)
	require.Equal(t, Disconnected, s.State())
	require.False(t, mt.Connected())
}

func TestStream_ReconnectPreservesLedger(t *testing.T) {
	s, _, _ := setupStream(nil)
	s.EnableStreamManagement(true)
	s.Send(xmpp.NewElementName("message").SetID("m1"))
	require.Len(t, s.unackedStanzas, 1)

	// a fresh transport resets buffer state and disables management,
	// but never the ledger
	mt2 := transport.NewMockTransport()
	s.SetTransport(mt2)
	mt2.DeliverConnected()
	drainEvents(s, mt2)

	require.False(t, s.smEnabled)
	require.Len(t, s.unackedStanzas, 1)

	// sends are no longer registered until management is re-enabled
	s.Send(xmpp.NewElementName("message").SetID("m2"))
	require.Len(t, s.unackedStanzas, 1)
}

func TestStream_DisabledManagementIsNoOp(t *testing.T) {
	s, mt, _ := setupStream(nil)
	mt.WrittenText()

	require.True(t, s.Send(xmpp.NewElementName("message").SetID("m1")))
	require.Len(t, s.unackedStanzas, 0)

	s.SetAcknowledgedSequenceNumber(10)
	s.SendAcknowledgement()
	s.SendAcknowledgementRequest()

	out := mt.WrittenText()
	require.NotContains(t, out, "urn:xmpp:sm:3")
}

func TestStream_OversizedDocumentStreamError(t *testing.T) {
	s, mt, rec := setupStream(&Config{MaxStanzaSize: 64})
	mt.WrittenText()

	deliver(s, mt, strings.Repeat("<message>", 32))

	out := mt.WrittenText()
	require.Contains(t, out, "<policy-violation")
	require.Contains(t, out, xmpp.StreamClosingTag)
	require.False(t, mt.Connected())
	require.Equal(t, Disconnected, s.State())
	require.Equal(t, []string{"started"}, rec.events)
}
