/*
 * Copyright (c) 2020 The xmppstream developers.
 * See the LICENSE file for more information.
 */

package xmppstream

import (
	"bytes"
	"io/ioutil"

	"github.com/chatterbox-im/xmppstream/log"
	"github.com/chatterbox-im/xmppstream/stream"
	"github.com/chatterbox-im/xmppstream/transport"
	"gopkg.in/yaml.v2"
)

// Config represents a global client configuration.
type Config struct {
	Logger    log.Config       `yaml:"logger"`
	Transport transport.Config `yaml:"transport"`
	Stream    stream.Config    `yaml:"stream"`
}

// FromFile loads default global configuration from
// a specified file.
func (cfg *Config) FromFile(configFile string) error {
	b, err := ioutil.ReadFile(configFile)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(b, cfg)
}

// FromBuffer loads default global configuration from
// a specified byte buffer.
func (cfg *Config) FromBuffer(buf *bytes.Buffer) error {
	return yaml.Unmarshal(buf.Bytes(), cfg)
}
