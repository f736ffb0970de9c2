/*
 * Copyright (c) 2020 The xmppstream developers.
 * See the LICENSE file for more information.
 */

package transport

import (
	"net"

	"github.com/pkg/errors"
	"github.com/sony/gobreaker"
)

// Dialer establishes socket transports guarded by a circuit breaker,
// so that repeated reconnection attempts against a dead host fail
// fast instead of piling up dial timeouts.
type Dialer struct {
	cfg *Config
	cb  *gobreaker.CircuitBreaker
}

// NewDialer returns an initialized transport dialer.
func NewDialer(cfg *Config) *Dialer {
	return &Dialer{
		cfg: cfg,
		cb:  gobreaker.NewCircuitBreaker(gobreaker.Settings{Name: "transport-dialer"}),
	}
}

// Dial connects to the configured address and returns a socket transport.
func (d *Dialer) Dial() (Transport, error) {
	tr, err := d.cb.Execute(func() (interface{}, error) {
		conn, err := net.DialTimeout("tcp", d.cfg.Address, d.cfg.DialTimeout)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to dial %s", d.cfg.Address)
		}
		return NewSocketTransport(conn, d.cfg.KeepAlive), nil
	})
	if err != nil {
		return nil, err
	}
	return tr.(Transport), nil
}
