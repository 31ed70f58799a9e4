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

package socket

// ConnState identifies the lifecycle step of a connection, mainly used
// for logging and monitoring callbacks.
type ConnState uint8

const (
	// ConnectionDial is the step of establishing the connection.
	ConnectionDial ConnState = iota
	// ConnectionNew is the step of a newly established connection.
	ConnectionNew
	// ConnectionRead is the step of reading the incoming stream.
	ConnectionRead
	// ConnectionCloseRead is the step of closing the incoming stream.
	ConnectionCloseRead
	// ConnectionHandshake is the step of upgrading the stream encryption.
	ConnectionHandshake
	// ConnectionWrite is the step of writing the outgoing stream.
	ConnectionWrite
	// ConnectionCloseWrite is the step of closing the outgoing stream.
	ConnectionCloseWrite
	// ConnectionClose is the step of closing the connection.
	ConnectionClose
)

func (c ConnState) String() string {
	switch c {
	case ConnectionDial:
		return "Dial Connection"
	case ConnectionNew:
		return "New Connection"
	case ConnectionRead:
		return "Read Incoming Stream"
	case ConnectionCloseRead:
		return "Close Incoming Stream"
	case ConnectionHandshake:
		return "Upgrade Stream Encryption"
	case ConnectionWrite:
		return "Write Outgoing Steam"
	case ConnectionCloseWrite:
		return "Close Outgoing Stream"
	case ConnectionClose:
		return "Close Connection"
	}

	return "unknown connection state"
}
