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

// Package dns decorates a connector with hostname resolution.
//
// Literal IP hosts delegate unchanged. Hostnames are resolved to one
// address, the URI is re-emitted with the resolved IP and the original
// hostname preserved as query hint for the TLS layers, then the underlying
// connector takes over. Resolution failures are reported as a connection
// failure naming the DNS phase.
package dns

import (
	liblog "github.com/nabbar/golib/logger"
	libsck "github.com/nabbar/socket"
	sckres "github.com/nabbar/socket/resolver"
)

// New decorates the given connector with the given resolver. A nil
// resolver falls back to the system one. The logger function may be nil.
func New(con libsck.Connector, res sckres.Resolver, log liblog.FuncLog) libsck.Connector {
	if res == nil {
		res = sckres.NewSystem(nil)
	}

	return &cdn{
		con: con,
		res: res,
		lgr: log,
	}
}
