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
	"errors"
	"io"
	"net"
	"strings"
)

const (
	// DefaultBufferSize is the default size used for stream read buffers
	// and as the write buffer watermark.
	DefaultBufferSize = 32 * 1024

	// EOL is the end of line delimiter.
	EOL = byte('\n')
)

// ErrorFilter drops the errors that are part of the normal lifecycle of
// a socket, keeping only those worth reporting: a nil result means the
// error can be ignored.
func ErrorFilter(err error) error {
	if err == nil {
		return nil
	} else if errors.Is(err, net.ErrClosed) {
		return nil
	} else if errors.Is(err, io.EOF) {
		return nil
	} else if strings.Contains(err.Error(), "use of closed network connection") {
		return nil
	}

	return err
}
