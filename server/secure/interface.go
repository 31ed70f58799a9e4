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

// Package secure decorates a plaintext server with TLS termination.
//
// Each incoming plaintext connection runs the server side handshake; on
// success the encrypted connection is reported through the connection
// event, on failure an error event names the remote peer and the
// plaintext connection is closed. Errors of the underlying server are
// forwarded verbatim. The reported address carries the tls scheme.
package secure

import (
	"crypto/tls"

	liberr "github.com/nabbar/golib/errors"
	liblog "github.com/nabbar/golib/logger"
	libsck "github.com/nabbar/socket"
	sckevt "github.com/nabbar/socket/event"
	sckcfg "github.com/nabbar/socket/tlscfg"
)

// New decorates the given server with TLS termination configured by the
// given options. The options must carry a local certificate. The logger
// function may be nil.
func New(srv libsck.Server, opt sckcfg.Options, log liblog.FuncLog) (libsck.Server, liberr.Error) {
	cfg, err := opt.Server()

	if err != nil {
		return nil, err
	}

	if len(cfg.Certificates) < 1 && cfg.GetCertificate == nil {
		return nil, ErrorNoCertificate.Error(nil)
	}

	return newServer(srv, cfg, log), nil
}

// NewWithTLS decorates the given server with TLS termination using a
// prebuilt platform configuration.
func NewWithTLS(srv libsck.Server, cfg *tls.Config, log liblog.FuncLog) (libsck.Server, liberr.Error) {
	if cfg == nil {
		return nil, ErrorNoCertificate.Error(nil)
	}

	return newServer(srv, cfg, log), nil
}

func newServer(srv libsck.Server, cfg *tls.Config, log liblog.FuncLog) libsck.Server {
	s := &ssl{
		srv: srv,
		cfg: cfg,
		lgr: log,
		evc: sckevt.New[libsck.Connection](),
		eve: sckevt.New[error](),
	}

	srv.OnConnection(s.upgrade)
	srv.OnError(s.eve.Emit)

	return s
}
