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

// Package socket provides an event-driven socket library to establish and serve
// streaming connections over TCP, TLS and Unix domain sockets.
//
// The library exposes two symmetric surfaces: a client-side Connector stack that
// produces connections from URIs, and a server-side Server stack that accepts
// them. Around both, layered decorators add DNS resolution with Happy Eyeballs
// (RFC 8305) racing, TLS upgrade, connect timeouts and connection-count
// limiting.
//
// Key Features:
//   - Connector decorators: DNS resolution, Happy Eyeballs dual-stack racing,
//     connect timeout, TLS upgrade
//   - Server decorators: TLS termination, concurrent connection limiting with
//     optional OS-level backpressure
//   - Evented duplex connections: data, end, error, close, drain and pipe
//     notifications with pause/resume flow control
//   - Canonical address strings: tcp://host:port, tcp://[ipv6]:port,
//     unix://path, tls://host:port
//   - Cancellation as a first-class mode through context.Context on every
//     blocking operation
//
// Example:
//
//	cnt, err := connector.New(connector.Config{}, nil)
//	if err != nil {
//	    return err
//	}
//
//	con, err := cnt.Connect(ctx, "tls://example.com:443")
//	if err != nil {
//	    return err
//	}
//
//	con.OnData(func(p []byte) {
//	    // consume bytes
//	})
//	con.End([]byte("hello"))
//
// Sub-packages:
//   - address: URI parsing, host classification and canonical re-emission
//   - resolver: DNS resolution contract with system and direct-exchange backends
//   - connection: the evented duplex stream wrapping a net.Conn
//   - connector, connector/...: the client-side stack and its decorators
//   - server, server/...: the server-side stack and its decorators
package socket

import (
	"context"
)

// FuncData is the listener type for incoming bytes on a Connection.
// The slice is only valid for the duration of the call.
type FuncData func(p []byte)

// FuncEvent is the listener type for events carrying no payload
// (end, close, drain).
type FuncEvent func()

// FuncError is the listener type for error events.
type FuncError func(e error)

// FuncPipe is the listener type for pipe events, called with the
// destination of the pipe.
type FuncPipe func(dst Connection)

// FuncConnection is the listener type for new connections accepted by
// a Server.
type FuncConnection func(con Connection)

// Connector establishes outgoing connections from string URIs.
//
// Implementations are immutable after construction. Cancellation of the
// given context aborts whichever inner operation is currently pending
// (DNS lookup, connect or handshake) and releases every watcher, timer
// and socket the attempt registered.
type Connector interface {
	// Connect establishes a connection to the given URI and returns it,
	// or an error describing why every candidate failed.
	Connect(ctx context.Context, uri string) (Connection, error)
}

// Connection is a bidirectional evented byte stream.
//
// Once closed, both readability and writability are false and address
// accessors return an empty string. Close is idempotent and emits the
// close event at most once. End flushes pending writes then closes the
// write half. The connection exclusively owns the underlying OS socket,
// closing releases it.
type Connection interface {
	// IsReadable reports whether the incoming half is still open.
	IsReadable() bool
	// IsWritable reports whether the outgoing half is still open.
	IsWritable() bool

	// Pause stops delivery of data events until Resume is called.
	Pause()
	// Resume restarts delivery of data events.
	Resume()

	// Write queues the given bytes for sending. It returns false when the
	// internal buffer is above the watermark, in which case the caller
	// should wait for the drain event before writing more.
	Write(p []byte) bool
	// End queues the optional final bytes, flushes the buffer, then
	// closes the outgoing half of the stream.
	End(p ...[]byte)
	// Close terminates both halves and releases the socket. It is
	// idempotent, a second call performs no observable work.
	Close() error

	// Pipe forwards every data event to the destination, honoring its
	// backpressure, and ends it when this connection ends. It returns
	// the destination to allow chaining.
	Pipe(dst Connection) Connection

	// LocalAddr returns the canonical local address of the connection,
	// or an empty string once closed.
	LocalAddr() string
	// RemoteAddr returns the canonical remote address of the connection,
	// or an empty string once closed.
	RemoteAddr() string

	// ServerName returns the hostname hint attached to this connection
	// for TLS peer verification, when any.
	ServerName() string
	// SetServerName attaches the hostname hint used for SNI and TLS peer
	// verification.
	SetServerName(name string)

	OnData(fct FuncData) func()
	OnEnd(fct FuncEvent) func()
	OnError(fct FuncError) func()
	OnClose(fct FuncEvent) func()
	OnDrain(fct FuncEvent) func()
	OnPipe(fct FuncPipe) func()
}

// Server is a listener that accepts connections and reports them as
// connection events.
//
// Close is idempotent and permanent. Pause stops acceptance of new
// connections without terminating established ones. The address accessor
// returns an empty string after close.
type Server interface {
	// Listen runs the accept loop until the context is done or the
	// server is closed. It returns the error that terminated the loop,
	// or nil on a clean close.
	Listen(ctx context.Context) error

	// Address returns the canonical bound address, with the real port
	// substituted when the server was bound to port 0, or an empty
	// string once closed.
	Address() string

	// Pause stops accepting new connections. Established connections are
	// not affected.
	Pause()
	// Resume restarts accepting new connections.
	Resume()

	// Close stops the accept loop, closes the master socket and removes
	// every registered listener. It is idempotent and permanent.
	Close() error

	// IsRunning reports whether the accept loop is currently running.
	IsRunning() bool
	// IsGone reports whether the server has been closed.
	IsGone() bool
	// Done returns a channel closed when the server is fully stopped.
	Done() <-chan struct{}

	// OpenConnections returns the number of accepted connections still
	// open.
	OpenConnections() int64

	OnConnection(fct FuncConnection) func()
	OnError(fct FuncError) func()
	OnClose(fct FuncEvent) func()
}
