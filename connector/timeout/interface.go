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

// Package timeout decorates a connector with a bound on the total connect
// time.
//
// One timer is armed when Connect is called. When the underlying connect
// resolves first the timer is released and the result forwarded; when the
// timer fires first the pending work is cancelled and a timeout error
// naming the elapsed bound is returned. The composing facade never builds
// this decorator for a non-positive bound.
package timeout

import (
	"time"

	libdur "github.com/nabbar/golib/duration"
	liblog "github.com/nabbar/golib/logger"
	libsck "github.com/nabbar/socket"
)

// New decorates the given connector with the given connect time bound.
// A non-positive bound returns the connector unchanged. The logger
// function may be nil.
func New(con libsck.Connector, t libdur.Duration, log liblog.FuncLog) libsck.Connector {
	if t <= 0 {
		return con
	}

	return &cto{
		con: con,
		tmo: t.Time(),
		lgr: log,
	}
}

// seconds renders a bound the way the timeout error reports it.
func seconds(t time.Duration) float64 {
	return t.Seconds()
}
