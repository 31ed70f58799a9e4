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

// Package handshake drives the TLS upgrade of an established plaintext
// connection, in place.
//
// The driver pauses the evented stream so no application byte is consumed
// while the handshake runs on the raw socket, performs the handshake (the
// client side initiates, the server side answers), then swaps the encrypted
// socket into the connection and relabels its addresses with the tls
// scheme. The stream is resumed on success and on permanent failure; on
// cancellation the underlying socket is left in the caller's hands for
// cleanup. The driver never blocks the caller outside of the Enable call
// itself, which is bounded by its context.
//
// Both the TLS connector and the TLS server use this driver.
package handshake

import (
	"context"
	"crypto/tls"

	libatm "github.com/nabbar/golib/atomic"
	liberr "github.com/nabbar/golib/errors"
	liblog "github.com/nabbar/golib/logger"
	libsck "github.com/nabbar/socket"
)

// Status is the state of one handshake driver.
type Status uint8

const (
	// StatusIdle means the handshake was not started yet.
	StatusIdle Status = iota
	// StatusHandshaking means the handshake is running.
	StatusHandshaking
	// StatusDone means the handshake completed and the connection is
	// encrypted.
	StatusDone
	// StatusFailed means the handshake failed permanently.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusHandshaking:
		return "handshaking"
	case StatusDone:
		return "done"
	case StatusFailed:
		return "failed"
	}

	return "idle"
}

// Driver upgrades exactly one connection. A driver lives one attempt and
// resolves exactly once.
type Driver interface {
	// Enable upgrades the plaintext connection with the given TLS
	// configuration and returns the encrypted connection, which is the
	// same value relabelled.
	Enable(ctx context.Context, cfg *tls.Config) (libsck.Connection, liberr.Error)

	// Disable removes the stream encryption. The platform TLS stack
	// cannot strip encryption from a live socket, so this fails with a
	// stable unsupported error; it exists for surface symmetry.
	Disable(ctx context.Context) (libsck.Connection, liberr.Error)

	// Status returns the current state of the driver.
	Status() Status
}

// New returns a driver for the given connection. The server flag selects
// the handshake side. The logger function may be nil.
func New(con libsck.Connection, server bool, log liblog.FuncLog) Driver {
	return &drv{
		con: con,
		srv: server,
		lgr: log,
		fin: libatm.NewValue[Status](),
	}
}
