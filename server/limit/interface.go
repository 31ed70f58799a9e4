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

// Package limit decorates a server with a cap on concurrent accepted
// connections.
//
// In reject mode a connection above the cap is closed and reported as an
// error event, never as a connection event. In pause mode reaching the
// cap pauses the upstream listener instead, so the kernel applies TCP
// level flow control to new clients; dropping below the cap resumes it.
// Manual pause and automatic pause are independent: the upstream is
// paused while either holds.
package limit

import (
	liblog "github.com/nabbar/golib/logger"
	libsck "github.com/nabbar/socket"
	sckevt "github.com/nabbar/socket/event"
)

// New decorates the given server with the given connection cap. A non
// positive limit means unlimited. With pauseOnLimit the upstream is
// paused at the cap instead of rejecting above it. The logger function
// may be nil.
func New(srv libsck.Server, limit int64, pauseOnLimit bool, log liblog.FuncLog) libsck.Server {
	s := &slm{
		srv: srv,
		lim: limit,
		pol: pauseOnLimit,
		lgr: log,
		set: make(map[libsck.Connection]struct{}),
		evc: sckevt.New[libsck.Connection](),
		eve: sckevt.New[error](),
	}

	srv.OnConnection(s.accept)
	srv.OnError(s.eve.Emit)

	return s
}
