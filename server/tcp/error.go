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

package tcp

import liberr "github.com/nabbar/golib/errors"

const (
	ErrorBindFailed liberr.CodeError = iota + liberr.MinAvailable + 240
	ErrorAddressInUse
	ErrorInvalidAddress
	ErrorAcceptFailed
	ErrorServerClosed
	ErrorServerRunning
)

var isCodeError = false

func IsCodeError() bool {
	return isCodeError
}

func init() {
	isCodeError = liberr.ExistInMapMessage(ErrorBindFailed)
	liberr.RegisterIdFctMessage(ErrorBindFailed, getMessage)
}

func getMessage(code liberr.CodeError) (message string) {
	switch code {
	case liberr.UNK_ERROR:
		return ""
	case ErrorBindFailed:
		return "cannot bind tcp server on '%s'"
	case ErrorAddressInUse:
		return "address '%s' is already in use (EADDRINUSE)"
	case ErrorInvalidAddress:
		return "invalid tcp server address '%s'"
	case ErrorAcceptFailed:
		return "cannot accept incoming connection"
	case ErrorServerClosed:
		return "server is closed"
	case ErrorServerRunning:
		return "server is already running"
	}

	return ""
}
