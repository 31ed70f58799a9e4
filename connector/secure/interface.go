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

// Package secure decorates a connector with a TLS upgrade.
//
// The plaintext connect goes to the same host and port over tcp, with the
// query and the hostname hint preserved, then the handshake driver
// upgrades the stream in place. Peer verification targets the
// user-supplied hostname carried by the hint, falling back to the literal
// host. Plaintext failures and handshake failures wrap into distinct
// error kinds, each naming the original tls URI.
package secure

import (
	"crypto/tls"

	liblog "github.com/nabbar/golib/logger"
	libsck "github.com/nabbar/socket"
	sckcfg "github.com/nabbar/socket/tlscfg"
)

// New decorates the given connector with a TLS upgrade configured by the
// given options. The logger function may be nil.
func New(con libsck.Connector, opt sckcfg.Options, log liblog.FuncLog) libsck.Connector {
	return &cse{
		con: con,
		opt: opt,
		lgr: log,
	}
}

// NewWithTLS decorates the given connector with a TLS upgrade using a
// prebuilt platform configuration.
func NewWithTLS(con libsck.Connector, cfg *tls.Config, log liblog.FuncLog) libsck.Connector {
	return &cse{
		con: con,
		tls: cfg,
		lgr: log,
	}
}
