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

package handshake

import liberr "github.com/nabbar/golib/errors"

const (
	ErrorHandshakeFailed liberr.CodeError = iota + liberr.MinAvailable + 60
	ErrorConnectionLost
	ErrorHandshakeDone
	ErrorNotUpgradable
	ErrorAlreadyEncrypted
	ErrorDisableUnsupported
)

var isCodeError = false

func IsCodeError() bool {
	return isCodeError
}

func init() {
	isCodeError = liberr.ExistInMapMessage(ErrorHandshakeFailed)
	liberr.RegisterIdFctMessage(ErrorHandshakeFailed, getMessage)
}

func getMessage(code liberr.CodeError) (message string) {
	switch code {
	case liberr.UNK_ERROR:
		return ""
	case ErrorHandshakeFailed:
		return "failed during TLS handshake: %s"
	case ErrorConnectionLost:
		return "Connection lost during TLS handshake (ECONNRESET)"
	case ErrorHandshakeDone:
		return "handshake driver already resolved"
	case ErrorNotUpgradable:
		return "connection does not support in place upgrade"
	case ErrorAlreadyEncrypted:
		return "connection is already encrypted"
	case ErrorDisableUnsupported:
		return "removing stream encryption is not supported by the TLS stack"
	}

	return ""
}
