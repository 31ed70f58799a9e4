/*
 * MIT License
 *
 * Copyright (c) 2022 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

// Package tcp is the plaintext TCP server.
//
// The listener binds at construction, so a bind failure or an address
// already in use surfaces immediately. The accept loop runs in Listen
// until the context is done or the server is closed. Each accepted socket
// is wrapped into an evented connection and reported through the
// connection event; accept failures are reported through the error event
// without terminating the server. A server bound to port 0 reports the
// real bound port in its address.
package tcp

import (
	"errors"
	"net"
	"syscall"

	liberr "github.com/nabbar/golib/errors"
	liblog "github.com/nabbar/golib/logger"
	libptc "github.com/nabbar/golib/network/protocol"
	libsck "github.com/nabbar/socket"
	sckadr "github.com/nabbar/socket/address"
	sckevt "github.com/nabbar/socket/event"
)

// Config is the TCP server configuration.
type Config struct {
	// Address is the host:port to bind, port 0 for an ephemeral port.
	Address string `mapstructure:"address" json:"address" yaml:"address" toml:"address" validate:"required"`
}

// New binds the given address and returns the server. The logger
// function may be nil.
func New(cfg Config, log liblog.FuncLog) (libsck.Server, liberr.Error) {
	if len(cfg.Address) < 1 {
		return nil, ErrorInvalidAddress.Errorf(cfg.Address)
	}

	if _, e := net.ResolveTCPAddr(libptc.NetworkTCP.Code(), cfg.Address); e != nil {
		ler := ErrorInvalidAddress.Errorf(cfg.Address)
		ler.Add(e)
		return nil, ler
	}

	lst, e := net.Listen(libptc.NetworkTCP.Code(), cfg.Address)

	if e != nil {
		if errors.Is(e, syscall.EADDRINUSE) {
			ler := ErrorAddressInUse.Errorf(cfg.Address)
			ler.Add(e)
			return nil, ler
		}

		ler := ErrorBindFailed.Errorf(cfg.Address)
		ler.Add(e)
		return nil, ler
	}

	s := &stc{
		lst: lst,
		lgr: log,
		sch: sckadr.SchemeTCP,
		don: make(chan struct{}),
		evc: sckevt.New[libsck.Connection](),
		eve: sckevt.New[error](),
		ecl: sckevt.New[struct{}](),
	}

	return s, nil
}
