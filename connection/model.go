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
	"net/netip"
	"sync"
	"time"

	liblog "github.com/nabbar/golib/logger"
	loglvl "github.com/nabbar/golib/logger/level"
	libsck "github.com/nabbar/socket"
	sckevt "github.com/nabbar/socket/event"
)

type cnn struct {
	mu  sync.Mutex
	prk sync.Cond

	con net.Conn
	sch string
	lgr liblog.FuncLog
	snm string

	rdb bool // incoming half open
	wrt bool // outgoing half open
	cld bool // closed

	rdl bool // read loop running
	rps bool // read paused
	rpk bool // read loop parked

	wbf []byte // pending outgoing bytes
	wnd bool   // end requested
	wlp bool   // write loop running
	wbp bool   // backpressure reported, drain owed
	wkk chan struct{}

	edt sckevt.Listeners[[]byte]
	end sckevt.Listeners[struct{}]
	eer sckevt.Listeners[error]
	ecl sckevt.Listeners[struct{}]
	edr sckevt.Listeners[struct{}]
	epp sckevt.Listeners[libsck.Connection]
}

func (o *cnn) log(lvl loglvl.Level, msg string, err error) {
	if o.lgr == nil {
		return
	} else if l := o.lgr(); l == nil {
		return
	} else {
		ent := l.Entry(lvl, msg)
		ent = ent.FieldAdd("local", o.addr(true)).FieldAdd("remote", o.addr(false))
		if err != nil {
			ent = ent.ErrorAdd(true, err)
		}
		ent.Log()
	}
}

func (o *cnn) IsReadable() bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.rdb && !o.cld
}

func (o *cnn) IsWritable() bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.wrt && !o.cld
}

func (o *cnn) ServerName() string {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.snm
}

func (o *cnn) SetServerName(name string) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.snm = name
}

func (o *cnn) NetConn() net.Conn {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.con
}

func (o *cnn) Swap(con net.Conn, scheme string) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.con = con
	o.sch = scheme
}

func (o *cnn) addr(local bool) string {
	if o.cld || o.con == nil {
		return ""
	}

	var adr net.Addr
	if local {
		adr = o.con.LocalAddr()
	} else {
		adr = o.con.RemoteAddr()
	}

	return formatAddr(o.sch, adr)
}

func (o *cnn) LocalAddr() string {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.addr(true)
}

func (o *cnn) RemoteAddr() string {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.addr(false)
}

// formatAddr renders a net.Addr in the canonical URI form, bracketing
// IPv6 hosts.
func formatAddr(scheme string, adr net.Addr) string {
	if adr == nil {
		return ""
	}

	if u, k := adr.(*net.UnixAddr); k {
		return "unix://" + u.Name
	}

	h, p, e := net.SplitHostPort(adr.String())
	if e != nil {
		return scheme + "://" + adr.String()
	}

	if ip, er := netip.ParseAddr(h); er == nil && !ip.Unmap().Is4() {
		h = "[" + h + "]"
	}

	return scheme + "://" + h + ":" + p
}

func (o *cnn) Close() error {
	o.mu.Lock()

	if o.cld {
		o.mu.Unlock()
		return nil
	}

	o.cld = true
	o.rdb = false
	o.wrt = false
	o.wbf = nil

	con := o.con
	var err error

	if con != nil {
		// interrupt a read loop blocked on the socket
		_ = con.SetReadDeadline(time.Now())
		err = con.Close()
	}

	o.prk.Broadcast()
	o.kick()
	o.mu.Unlock()

	o.log(loglvl.DebugLevel, libsck.ConnectionClose.String(), err)
	o.ecl.Emit(struct{}{})

	return err
}

// OnData registers the listener and starts the read loop when this is the
// first data listener and the stream is not explicitly paused.
func (o *cnn) OnData(fct libsck.FuncData) func() {
	rmv := o.edt.Register(func(p []byte) { fct(p) })

	o.mu.Lock()
	if !o.rps {
		o.startRead()
	}
	o.mu.Unlock()

	return rmv
}

func (o *cnn) OnEnd(fct libsck.FuncEvent) func() {
	return o.end.Register(func(struct{}) { fct() })
}

func (o *cnn) OnError(fct libsck.FuncError) func() {
	return o.eer.Register(func(e error) { fct(e) })
}

func (o *cnn) OnClose(fct libsck.FuncEvent) func() {
	return o.ecl.Register(func(struct{}) { fct() })
}

func (o *cnn) OnDrain(fct libsck.FuncEvent) func() {
	return o.edr.Register(func(struct{}) { fct() })
}

func (o *cnn) OnPipe(fct libsck.FuncPipe) func() {
	return o.epp.Register(func(c libsck.Connection) { fct(c) })
}

// Pipe forwards data to the destination, pausing this connection while
// the destination reports backpressure and ending it when this stream
// ends.
func (o *cnn) Pipe(dst libsck.Connection) libsck.Connection {
	dst.OnDrain(func() {
		o.Resume()
	})

	o.OnData(func(p []byte) {
		if !dst.Write(p) {
			o.Pause()
		}
	})

	o.OnEnd(func() {
		dst.End()
	})

	o.epp.Emit(dst)

	return dst
}
