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

// Package connection wraps an established net.Conn into the evented duplex
// stream exposed by the socket library.
//
// The wrapper owns the socket exclusively: closing the connection releases
// it. Reading is demand-driven, the read loop starts when the first data
// listener is registered (or on an explicit Resume) and can be paused and
// resumed at any time. Writing is buffered, Write reports backpressure when
// the buffer raises above the watermark and a drain event fires once it
// empties again. End flushes pending writes then closes the outgoing half.
// Close is idempotent and emits the close event at most once.
//
// Key Features:
//   - Fixed typed event set: data, end, error, close, drain, pipe
//   - Pause/Resume flow control: after Pause returns, the loop parks
//     before its next socket read, so kernel flow control applies
//   - Canonical address accessors (tcp://, tls://, unix://) returning an
//     empty string once closed
//   - In-place upgrade support used by the TLS handshake driver
package connection

import (
	"net"

	liblog "github.com/nabbar/golib/logger"
	libsck "github.com/nabbar/socket"
	sckevt "github.com/nabbar/socket/event"
)

// Upgrader is the in-place upgrade surface of a connection, consumed by
// the TLS handshake driver. The read loop must be paused before calling
// Swap, so no raw bytes are consumed by the stream while another party
// drives the socket.
type Upgrader interface {
	// NetConn returns the underlying socket.
	NetConn() net.Conn

	// Swap replaces the underlying socket and the address scheme, keeping
	// listeners, buffers and the hostname hint.
	Swap(con net.Conn, scheme string)

	// Quiesce pauses the stream and blocks until the read loop is parked,
	// leaving the raw socket free for another reader.
	Quiesce()
}

// New wraps the given established socket into an evented connection. The
// scheme labels the address accessors (tcp, unix). The logger function may
// be nil.
func New(con net.Conn, scheme string, log liblog.FuncLog) libsck.Connection {
	c := &cnn{
		con: con,
		sch: scheme,
		lgr: log,
		rdb: true,
		wrt: true,
		edt: sckevt.New[[]byte](),
		end: sckevt.New[struct{}](),
		eer: sckevt.New[error](),
		ecl: sckevt.New[struct{}](),
		edr: sckevt.New[struct{}](),
		epp: sckevt.New[libsck.Connection](),
		wkk: make(chan struct{}, 1),
	}

	c.prk.L = &c.mu

	return c
}
