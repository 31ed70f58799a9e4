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

package unix

import (
	"context"
	"net"
	"os"
	"sync"
	"sync/atomic"
	"time"

	liblog "github.com/nabbar/golib/logger"
	loglvl "github.com/nabbar/golib/logger/level"
	libsck "github.com/nabbar/socket"
	sckadr "github.com/nabbar/socket/address"
	sckcon "github.com/nabbar/socket/connection"
	sckevt "github.com/nabbar/socket/event"
)

const acceptPollDelay = 250 * time.Millisecond

type deadliner interface {
	SetDeadline(t time.Time) error
}

type sux struct {
	mu sync.Mutex

	lst net.Listener
	pth string
	lgr liblog.FuncLog

	run bool
	gon bool
	psd bool

	don chan struct{}
	cnt atomic.Int64

	evc sckevt.Listeners[libsck.Connection]
	eve sckevt.Listeners[error]
	ecl sckevt.Listeners[struct{}]
}

func (o *sux) log(lvl loglvl.Level, msg string, err error) {
	if o.lgr == nil {
		return
	} else if l := o.lgr(); l == nil {
		return
	} else {
		ent := l.Entry(lvl, msg).FieldAdd("path", o.pth)
		if err != nil {
			ent = ent.ErrorAdd(true, err)
		}
		ent.Log()
	}
}

func (o *sux) Address() string {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.gon || o.lst == nil {
		return ""
	}

	return sckadr.SchemeUnix + "://" + o.pth
}

func (o *sux) IsRunning() bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.run
}

func (o *sux) IsGone() bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.gon
}

func (o *sux) Done() <-chan struct{} {
	return o.don
}

func (o *sux) OpenConnections() int64 {
	return o.cnt.Load()
}

func (o *sux) OnConnection(fct libsck.FuncConnection) func() {
	return o.evc.Register(func(c libsck.Connection) { fct(c) })
}

func (o *sux) OnError(fct libsck.FuncError) func() {
	return o.eve.Register(func(e error) { fct(e) })
}

func (o *sux) OnClose(fct libsck.FuncEvent) func() {
	return o.ecl.Register(func(struct{}) { fct() })
}

func (o *sux) Pause() {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.psd = true
}

func (o *sux) Resume() {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.psd = false
}

func (o *sux) Close() error {
	o.mu.Lock()

	if o.gon {
		o.mu.Unlock()
		return nil
	}

	o.gon = true
	lst := o.lst
	run := o.run
	o.mu.Unlock()

	var err error
	if lst != nil {
		err = lst.Close()
	}

	// removal failures of the socket file are silenced
	_ = os.Remove(o.pth)

	o.log(loglvl.InfoLevel, "server closed", err)
	o.ecl.Emit(struct{}{})

	o.evc.Clear()
	o.eve.Clear()
	o.ecl.Clear()

	if !run {
		o.finish()
	}

	return err
}

func (o *sux) finish() {
	select {
	case <-o.don:
	default:
		close(o.don)
	}
}

func (o *sux) Listen(ctx context.Context) error {
	o.mu.Lock()

	if o.gon {
		o.mu.Unlock()
		return ErrorServerClosed.Error(nil)
	} else if o.run {
		o.mu.Unlock()
		return ErrorServerRunning.Error(nil)
	}

	o.run = true
	o.mu.Unlock()

	o.log(loglvl.InfoLevel, "server is starting", nil)

	defer func() {
		o.mu.Lock()
		o.run = false
		o.mu.Unlock()
		o.finish()
	}()

	for {
		o.mu.Lock()
		psd := o.psd
		gon := o.gon
		lst := o.lst
		o.mu.Unlock()

		if gon || ctx.Err() != nil {
			break
		}

		if psd {
			select {
			case <-time.After(acceptPollDelay):
			case <-ctx.Done():
			}
			continue
		}

		if d, k := lst.(deadliner); k {
			_ = d.SetDeadline(time.Now().Add(acceptPollDelay))
		}

		cnn, err := lst.Accept()

		if err != nil {
			if n, k := err.(net.Error); k && n.Timeout() {
				continue
			}

			if o.IsGone() || ctx.Err() != nil {
				break
			}

			o.log(loglvl.ErrorLevel, "accept failed", err)
			o.eve.Emit(ErrorAcceptFailed.Error(err))
			continue
		}

		con := sckcon.New(cnn, sckadr.SchemeUnix, o.lgr)

		o.cnt.Add(1)
		con.OnClose(func() {
			o.cnt.Add(-1)
		})

		o.log(loglvl.DebugLevel, libsck.ConnectionNew.String(), nil)
		o.evc.Emit(con)
	}

	_ = o.Close()

	return nil
}
