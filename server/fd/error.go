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

package fd

import liberr "github.com/nabbar/golib/errors"

const (
	ErrorInvalidURI liberr.CodeError = iota + liberr.MinAvailable + 280
	ErrorInvalidDescriptor
	ErrorNotListening
	ErrorAcceptFailed
	ErrorServerClosed
	ErrorServerRunning
)

var isCodeError = false

func IsCodeError() bool {
	return isCodeError
}

func init() {
	isCodeError = liberr.ExistInMapMessage(ErrorInvalidURI)
	liberr.RegisterIdFctMessage(ErrorInvalidURI, getMessage)
}

func getMessage(code liberr.CodeError) (message string) {
	switch code {
	case liberr.UNK_ERROR:
		return ""
	case ErrorInvalidURI:
		return "invalid inherited descriptor uri '%s'"
	case ErrorInvalidDescriptor:
		return "descriptor %d is not a usable listening socket"
	case ErrorNotListening:
		return "descriptor %d refers to a connected endpoint, not a listening socket"
	case ErrorAcceptFailed:
		return "cannot accept incoming connection"
	case ErrorServerClosed:
		return "server is closed"
	case ErrorServerRunning:
		return "server is already running"
	}

	return ""
}
