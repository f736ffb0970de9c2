/*
 * Copyright (c) 2020 The xmppstream developers.
 * See the LICENSE file for more information.
 */

package xmpp

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParser_ParseElement(t *testing.T) {
	docSrc := `<?xml version="1.0" encoding="UTF-8"?><a xmlns="im.chatterbox.a"><b c="d"/><e>text</e></a>`
	p := NewParser(strings.NewReader(docSrc), 0)
	a, err := p.ParseElement()
	require.Nil(t, err)
	require.Nil(t, a) // xml prolog

	a, err = p.ParseElement()
	require.Nil(t, err)
	require.NotNil(t, a)
	require.Equal(t, "a", a.Name())
	require.Equal(t, "im.chatterbox.a", a.Namespace())
	require.Equal(t, 2, a.Elements().Count())

	b := a.Elements().Child("b")
	require.NotNil(t, b)
	require.Equal(t, "d", b.Attributes().Get("c"))

	e := a.Elements().Child("e")
	require.NotNil(t, e)
	require.Equal(t, "text", e.Text())
}

func TestParser_PrefixedName(t *testing.T) {
	docSrc := `<stream:stream xmlns:stream="http://etherx.jabber.org/streams" version="1.0"></stream:stream>`
	p := NewParser(strings.NewReader(docSrc), 0)
	elem, err := p.ParseElement()
	require.Nil(t, err)
	require.NotNil(t, elem)
	require.Equal(t, "stream:stream", elem.Name())
	require.Equal(t, "1.0", elem.Version())
}

func TestParser_UnexpectedEndElement(t *testing.T) {
	docSrc := `<a><b></c></a>`
	p := NewParser(strings.NewReader(docSrc), 0)
	_, err := p.ParseElement()
	require.NotNil(t, err)
}

func TestParser_TooLargeDocument(t *testing.T) {
	docSrc := `<a><b>` + strings.Repeat("x", 256) + `</b></a>`
	p := NewParser(strings.NewReader(docSrc), 64)
	_, err := p.ParseElement()
	require.Equal(t, ErrTooLargeDocument, err)
}
