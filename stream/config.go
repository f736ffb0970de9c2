/*
 * Copyright (c) 2020 The xmppstream developers.
 * See the LICENSE file for more information.
 */

package stream

const defaultMaxStanzaSize = 32768

// Config represents a stream configuration.
type Config struct {
	// MaxStanzaSize limits the size of a framed incoming document.
	// Zero disables the limit.
	MaxStanzaSize int

	// WaitForPeerClose determines whether Disconnect holds the
	// transport open until the peer answers with its own closing
	// stream tag (RFC 6120 section 4.4). When false the transport is
	// torn down right after our closing tag has been flushed.
	WaitForPeerClose bool
}

type configProxy struct {
	MaxStanzaSize    int  `yaml:"max_stanza_size"`
	WaitForPeerClose bool `yaml:"wait_for_peer_close"`
}

// UnmarshalYAML satisfies Unmarshaler interface.
func (c *Config) UnmarshalYAML(unmarshal func(interface{}) error) error {
	p := configProxy{}
	if err := unmarshal(&p); err != nil {
		return err
	}
	c.MaxStanzaSize = p.MaxStanzaSize
	if c.MaxStanzaSize == 0 {
		c.MaxStanzaSize = defaultMaxStanzaSize
	}
	c.WaitForPeerClose = p.WaitForPeerClose
	return nil
}
