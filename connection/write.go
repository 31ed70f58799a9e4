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

package connection

import (
	"net"

	loglvl "github.com/nabbar/golib/logger/level"
	libsck "github.com/nabbar/socket"
)

type closeWriter interface {
	CloseWrite() error
}

// kick wakes the write loop. Callers must hold the lock.
func (o *cnn) kick() {
	select {
	case o.wkk <- struct{}{}:
	default:
	}
}

// Write queues the given bytes. The returned flag is false when the
// buffer raised above the watermark, the caller should then wait for the
// drain event before writing more.
func (o *cnn) Write(p []byte) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.cld || !o.wrt || o.wnd {
		return false
	}

	o.wbf = append(o.wbf, p...)
	o.startWrite()
	o.kick()

	if len(o.wbf) >= libsck.DefaultBufferSize {
		o.wbp = true
		return false
	}

	return true
}

// End queues the optional final bytes then closes the outgoing half once
// the buffer is flushed.
func (o *cnn) End(p ...[]byte) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.cld || !o.wrt || o.wnd {
		return
	}

	for _, b := range p {
		o.wbf = append(o.wbf, b...)
	}

	o.wnd = true
	o.startWrite()
	o.kick()
}

// startWrite launches the write loop once. Callers must hold the lock.
func (o *cnn) startWrite() {
	if o.wlp || o.cld || !o.wrt {
		return
	}

	o.wlp = true
	go o.writeLoop()
}

func (o *cnn) writeLoop() {
	defer func() {
		o.mu.Lock()
		o.wlp = false
		o.mu.Unlock()
	}()

	for {
		o.mu.Lock()

		if o.cld || !o.wrt {
			o.mu.Unlock()
			return
		}

		if len(o.wbf) < 1 {
			drain := o.wbp
			o.wbp = false
			ending := o.wnd
			o.mu.Unlock()

			if drain && !ending {
				o.edr.Emit(struct{}{})
			}

			if ending {
				o.closeWrite()
				return
			}

			select {
			case <-o.wkk:
				continue
			}
		}

		buf := o.wbf
		o.wbf = nil
		con := o.con
		o.mu.Unlock()

		if _, err := con.Write(buf); err != nil {
			if f := libsck.ErrorFilter(err); f != nil {
				o.log(loglvl.ErrorLevel, libsck.ConnectionWrite.String(), f)
				o.eer.Emit(f)
			}
			_ = o.Close()
			return
		}
	}
}

// closeWrite shuts the outgoing half down after a flush, closing the
// whole connection when the incoming half is already gone.
func (o *cnn) closeWrite() {
	o.mu.Lock()

	if o.cld || !o.wrt {
		o.mu.Unlock()
		return
	}

	o.wrt = false
	con := o.con
	rdb := o.rdb
	o.mu.Unlock()

	o.log(loglvl.DebugLevel, libsck.ConnectionCloseWrite.String(), nil)

	if cw, k := con.(closeWriter); k {
		_ = cw.CloseWrite()
	} else if _, k = con.(*net.UDPConn); !k {
		// no half close support, terminate
		rdb = false
	}

	if !rdb {
		_ = o.Close()
	}
}
