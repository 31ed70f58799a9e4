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
	ErrorConnectionFailed liberr.CodeError = iota + liberr.MinAvailable + 100
	ErrorBadScheme
	ErrorHostNotIP
	ErrorPortMissing
	ErrorLocalAddress
	ErrorValidatorError
)

var isCodeError = false

func IsCodeError() bool {
	return isCodeError
}

func init() {
	isCodeError = liberr.ExistInMapMessage(ErrorConnectionFailed)
	liberr.RegisterIdFctMessage(ErrorConnectionFailed, getMessage)
}

func getMessage(code liberr.CodeError) (message string) {
	switch code {
	case liberr.UNK_ERROR:
		return ""
	case ErrorConnectionFailed:
		return "Connection to %s failed: %s"
	case ErrorBadScheme:
		return "tcp connector does not accept scheme '%s'"
	case ErrorHostNotIP:
		return "tcp connector requires a literal IP host, got '%s'"
	case ErrorPortMissing:
		return "invalid uri '%s': missing port"
	case ErrorLocalAddress:
		return "invalid local address '%s'"
	case ErrorValidatorError:
		return "tcp connector: invalid config"
	}

	return ""
}
