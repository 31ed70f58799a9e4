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
	"errors"
	"io"
	"net"
	"os"
	"time"

	loglvl "github.com/nabbar/golib/logger/level"
	libsck "github.com/nabbar/socket"
)

// Pause stops delivery of data events. The read loop parks before its
// next socket read, so bytes still in flight on the socket stay queued in
// the kernel and OS-level flow control applies.
func (o *cnn) Pause() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.rps || o.cld {
		o.rps = true
		return
	}

	o.rps = true

	if o.rdl && o.con != nil {
		// interrupt a pending blocking read
		_ = o.con.SetReadDeadline(time.Now())
	}
}

// Resume restarts delivery of data events, starting the read loop when it
// never ran.
func (o *cnn) Resume() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.cld || !o.rps && o.rdl {
		return
	}

	o.rps = false
	if o.edt.Len() > 0 {
		o.startRead()
	}
	o.prk.Broadcast()
}

// Quiesce pauses the stream and blocks until the read loop is parked,
// leaving the raw socket free for another reader.
func (o *cnn) Quiesce() {
	o.Pause()
	o.waitParked()
}

// waitParked blocks until the read loop is parked or gone. Callers must
// not hold the lock.
func (o *cnn) waitParked() {
	o.mu.Lock()
	defer o.mu.Unlock()

	for o.rdl && !o.rpk {
		o.prk.Wait()
	}
}

// startRead launches the read loop once. Callers must hold the lock.
func (o *cnn) startRead() {
	if o.rdl || o.cld || !o.rdb {
		return
	}

	o.rdl = true
	go o.readLoop()
}

func (o *cnn) readLoop() {
	var buf = make([]byte, libsck.DefaultBufferSize)

	defer func() {
		o.mu.Lock()
		o.rdl = false
		o.rpk = false
		o.prk.Broadcast()
		o.mu.Unlock()
	}()

	for {
		o.mu.Lock()
		for o.rps && !o.cld && o.rdb {
			o.rpk = true
			o.prk.Broadcast()
			o.prk.Wait()
		}
		o.rpk = false

		if o.cld || !o.rdb {
			o.mu.Unlock()
			return
		}

		con := o.con
		o.mu.Unlock()

		_ = con.SetReadDeadline(time.Time{})
		n, err := con.Read(buf)

		if n > 0 {
			p := make([]byte, n)
			copy(p, buf[:n])
			o.edt.Emit(p)
		}

		if err == nil {
			continue
		}

		if isPauseKick(err) {
			continue
		}

		if errors.Is(err, io.EOF) {
			o.endRead()
			return
		}

		if f := libsck.ErrorFilter(err); f != nil {
			o.log(loglvl.ErrorLevel, libsck.ConnectionRead.String(), f)
			o.eer.Emit(f)
		}

		_ = o.Close()
		return
	}
}

// endRead handles the remote end of stream: the incoming half closes, the
// end event fires, then the connection closes once pending writes are
// flushed.
func (o *cnn) endRead() {
	o.mu.Lock()

	if o.cld || !o.rdb {
		o.mu.Unlock()
		return
	}

	o.rdb = false
	flush := o.wlp && (len(o.wbf) > 0 || o.wnd)
	o.mu.Unlock()

	o.log(loglvl.DebugLevel, libsck.ConnectionCloseRead.String(), nil)
	o.end.Emit(struct{}{})

	if !flush {
		_ = o.Close()
	}
}

// isPauseKick reports whether the read error is only the deadline used to
// interrupt a blocking read on pause or close.
func isPauseKick(err error) bool {
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}

	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return true
	}

	return false
}
