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

import (
	"context"
	"errors"

	liberr "github.com/nabbar/golib/errors"
)

const (
	// ErrorCancelled is the distinct condition reported when an operation
	// was cancelled by its context. Cancellation is not a failure.
	ErrorCancelled liberr.CodeError = iota + liberr.MinAvailable + 380
)

var isCodeError = false

func IsCodeError() bool {
	return isCodeError
}

func init() {
	isCodeError = liberr.ExistInMapMessage(ErrorCancelled)
	liberr.RegisterIdFctMessage(ErrorCancelled, getMessage)
}

func getMessage(code liberr.CodeError) (message string) {
	switch code {
	case liberr.UNK_ERROR:
		return ""
	case ErrorCancelled:
		return "operation cancelled"
	}

	return ""
}

// IsCancelled reports whether the given error is the cancellation
// condition, directly or through a context error.
func IsCancelled(err error) bool {
	if err == nil {
		return false
	} else if errors.Is(err, context.Canceled) {
		return true
	} else if e := liberr.Get(err); e != nil {
		return e.IsCode(ErrorCancelled)
	}

	return false
}
