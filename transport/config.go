/*
 * Copyright (c) 2020 The xmppstream developers.
 * See the LICENSE file for more information.
 */

package transport

import (
	"errors"
	"time"
)

const (
	defaultKeepAlive   = time.Duration(120) * time.Second
	defaultDialTimeout = time.Duration(15) * time.Second
)

// Config represents a transport configuration.
type Config struct {
	Address     string
	KeepAlive   time.Duration
	DialTimeout time.Duration
}

type configProxy struct {
	Address     string `yaml:"address"`
	KeepAlive   int    `yaml:"keep_alive"`
	DialTimeout int    `yaml:"dial_timeout"`
}

// UnmarshalYAML satisfies Unmarshaler interface.
func (c *Config) UnmarshalYAML(unmarshal func(interface{}) error) error {
	p := configProxy{}
	if err := unmarshal(&p); err != nil {
		return err
	}
	if len(p.Address) == 0 {
		return errors.New("transport.Config: address value must be set")
	}
	c.Address = p.Address

	c.KeepAlive = time.Duration(p.KeepAlive) * time.Second
	if c.KeepAlive == 0 {
		c.KeepAlive = defaultKeepAlive
	}
	c.DialTimeout = time.Duration(p.DialTimeout) * time.Second
	if c.DialTimeout == 0 {
		c.DialTimeout = defaultDialTimeout
	}
	return nil
}
