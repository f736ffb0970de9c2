/*
 * Copyright (c) 2020 The xmppstream developers.
 * See the LICENSE file for more information.
 */

package stream

import (
	"sort"

	"github.com/chatterbox-im/xmppstream/log"
	"github.com/chatterbox-im/xmppstream/xmpp"
)

// EnableStreamManagement enables stream management acks and requests
// (XEP-0198) on the stream.
//
// resetSequenceNumbers indicates if the sequence numbers should be
// reset; this must be done if the stream is not resumed. Pending
// unacknowledged stanzas are retransmitted in ascending sequence
// order either way, renumbered from one when resetting, followed by a
// single acknowledgement request.
func (s *Stream) EnableStreamManagement(resetSequenceNumbers bool) {
	s.smEnabled = true

	if resetSequenceNumbers {
		s.lastOutgoingSeq = 0
		s.lastIncomingSeq = 0

		if len(s.unackedStanzas) > 0 {
			oldSeqs := s.sortedUnackedSeqNumbers()
			oldUnacked := s.unackedStanzas
			s.unackedStanzas = make(map[uint32]string, len(oldUnacked))
			for _, seq := range oldSeqs {
				text := oldUnacked[seq]
				s.lastOutgoingSeq++
				s.unackedStanzas[s.lastOutgoingSeq] = text
				s.SendData(text)
			}
			s.SendAcknowledgementRequest()
		}
	} else {
		if len(s.unackedStanzas) > 0 {
			for _, seq := range s.sortedUnackedSeqNumbers() {
				s.SendData(s.unackedStanzas[seq])
			}
			s.SendAcknowledgementRequest()
		}
	}
}

// LastIncomingSequenceNumber returns the count of dispatched message,
// presence and iq stanzas received since stream management was enabled.
func (s *Stream) LastIncomingSequenceNumber() uint32 {
	return s.lastIncomingSeq
}

// SetAcknowledgedSequenceNumber removes every pending stanza with a
// sequence number lower than or equal to seq: acknowledging N confirms
// everything up to and including N.
// Does nothing if stream management is disabled.
func (s *Stream) SetAcknowledgedSequenceNumber(seq uint32) {
	if !s.smEnabled {
		return
	}
	for k := range s.unackedStanzas {
		if k <= seq {
			delete(s.unackedStanzas, k)
		}
	}
}

// SendAcknowledgement emits an acknowledgement frame carrying the
// last incoming sequence number.
// Does nothing if stream management is disabled.
func (s *Stream) SendAcknowledgement() {
	if !s.smEnabled {
		return
	}
	s.SendData(xmpp.NewAckFrame(s.lastIncomingSeq).String())
}

// SendAcknowledgementRequest emits an acknowledgement request frame.
// Does nothing if stream management is disabled.
func (s *Stream) SendAcknowledgementRequest() {
	if !s.smEnabled {
		return
	}
	s.SendData(xmpp.NewRequestFrame().String())
}

func (s *Stream) handleAcknowledgement(elem xmpp.XElement) {
	if !s.smEnabled {
		return
	}
	seq, err := xmpp.AckFrameSeqNumber(elem)
	if err != nil {
		log.Warnf("stream %s: %v", s.id, err)
		return
	}
	s.SetAcknowledgedSequenceNumber(seq)
}

func (s *Stream) sortedUnackedSeqNumbers() []uint32 {
	seqs := make([]uint32, 0, len(s.unackedStanzas))
	for seq := range s.unackedStanzas {
		seqs = append(seqs, seq)
	}
	sort.Slice(seqs, func(i, j int) bool { return seqs[i] < seqs[j] })
	return seqs
}
