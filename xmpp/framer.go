/*
 * Copyright (c) 2020 The xmppstream developers.
 * See the LICENSE file for more information.
 */

package xmpp

import (
	"regexp"
	"strings"
)

// StreamClosingTag is the tag every stream document is terminated with.
const StreamClosingTag = "</stream:stream>"

var (
	// leftmost-shortest match of an optional prolog plus the opening stream tag
	streamStartRegex = regexp.MustCompile(`^(<\?xml.*?\?>)?\s*<stream:stream.*?>`)
	streamEndRegex   = regexp.MustCompile(`</stream:stream>$`)
)

// Document is the result of a successfully framed virtual document.
type Document struct {
	// Root is the parsed stream root element holding all received
	// child elements in document order. Nil on keep alive documents.
	Root XElement

	// KeepAlive tells whether the received payload was a whitespace ping.
	KeepAlive bool

	// HasStreamStart tells whether this document discovered the opening stream tag.
	HasStreamStart bool

	// HasStreamEnd tells whether the peer closing stream tag was received.
	HasStreamEnd bool
}

// Framer accumulates arbitrary text fragments and determines when a
// complete virtual stream document can be parsed out of them,
// synthesizing missing open and close framing as needed.
type Framer struct {
	buffer      strings.Builder
	streamStart string
	maxDocSize  int
}

// NewFramer creates a Framer instance.
// maxDocSize limits the size of a framed document. Zero means no limit.
func NewFramer(maxDocSize int) *Framer {
	return &Framer{maxDocSize: maxDocSize}
}

// Reset clears the accumulated buffer and the captured stream start tag.
// Must be invoked whenever the underlying connection restarts.
func (f *Framer) Reset() {
	f.buffer.Reset()
	f.streamStart = ""
}

// Feed appends chunk to the accumulated buffer and attempts to frame a
// complete virtual document out of it.
// A nil document with nil error means more data is needed: the buffer is
// kept untouched until a later chunk completes it.
// ErrTooLargeDocument is returned when the buffer outgrows the configured
// document size limit, in which case the buffer is dropped.
func (f *Framer) Feed(chunk string) (*Document, error) {
	f.buffer.WriteString(chunk)

	buf := f.buffer.String()
	if len(buf) > 0 && len(strings.TrimSpace(buf)) == 0 {
		f.buffer.Reset()
		return &Document{KeepAlive: true}, nil
	}
	if f.maxDocSize > 0 && len(buf) > f.maxDocSize {
		f.buffer.Reset()
		return nil, ErrTooLargeDocument
	}

	// check whether we need to add stream open / close framing
	//
	// NOTE: as we may only have partial XML content, do not alter the
	// framer's state until we have a valid XML document.
	completeXML := buf
	var startTag string
	if len(f.streamStart) == 0 {
		startTag = streamStartRegex.FindString(buf)
		if len(startTag) == 0 {
			return nil, nil // opening tag not received yet
		}
	} else {
		completeXML = f.streamStart + completeXML
	}
	streamEnd := streamEndRegex.MatchString(buf)
	if !streamEnd {
		completeXML += StreamClosingTag
	}

	root, ok, err := parseDocument(completeXML, f.maxDocSize)
	if err != nil {
		f.buffer.Reset()
		return nil, err
	}
	if !ok {
		return nil, nil // insufficient or still-invalid data
	}

	// we have a valid document: it is now safe to consume the buffer
	f.buffer.Reset()
	streamStart := len(startTag) > 0
	if streamStart {
		f.streamStart = startTag
	}
	return &Document{
		Root:           root,
		HasStreamStart: streamStart,
		HasStreamEnd:   streamEnd,
	}, nil
}

func parseDocument(completeXML string, maxDocSize int) (XElement, bool, error) {
	p := NewParser(strings.NewReader(completeXML), maxDocSize)
	for {
		root, err := p.ParseElement()
		switch {
		case err == ErrTooLargeDocument:
			return nil, false, err
		case err != nil:
			return nil, false, nil
		case root != nil:
			return root, true, nil
		}
	}
}
