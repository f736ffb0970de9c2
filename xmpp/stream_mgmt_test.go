/*
 * Copyright (c) 2020 The xmppstream developers.
 * See the LICENSE file for more information.
 */

package xmpp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStreamMgmt_AckFrame(t *testing.T) {
	a := NewAckFrame(12)
	require.Equal(t, `<a xmlns="urn:xmpp:sm:3" h="12"/>`, a.String())
	require.True(t, IsAckFrame(a))
	require.False(t, IsRequestFrame(a))

	h, err := AckFrameSeqNumber(a)
	require.Nil(t, err)
	require.Equal(t, uint32(12), h)
}

func TestStreamMgmt_RequestFrame(t *testing.T) {
	r := NewRequestFrame()
	require.Equal(t, `<r xmlns="urn:xmpp:sm:3"/>`, r.String())
	require.True(t, IsRequestFrame(r))
	require.False(t, IsAckFrame(r))
}

func TestStreamMgmt_InvalidAck(t *testing.T) {
	_, err := AckFrameSeqNumber(NewElementName("a"))
	require.NotNil(t, err)

	bad := NewElementNamespace("a", StreamManagementNamespace)
	bad.SetAttribute("h", "not-a-number")
	_, err = AckFrameSeqNumber(bad)
	require.NotNil(t, err)
}

func TestStreamMgmt_ClassifyParsedFrames(t *testing.T) {
	f := NewFramer(0)
	doc, err := f.Feed(testStreamStart + `<r xmlns="urn:xmpp:sm:3"/><a xmlns="urn:xmpp:sm:3" h="3"/>`)
	require.Nil(t, err)
	require.NotNil(t, doc)

	children := doc.Root.Elements().All()
	require.Len(t, children, 2)
	require.True(t, IsRequestFrame(children[0]))
	require.True(t, IsAckFrame(children[1]))
}
