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

package limit

import (
	"context"
	"sync"

	liblog "github.com/nabbar/golib/logger"
	loglvl "github.com/nabbar/golib/logger/level"
	libsck "github.com/nabbar/socket"
	sckevt "github.com/nabbar/socket/event"
)

type slm struct {
	mu sync.Mutex

	srv libsck.Server
	lim int64
	pol bool
	lgr liblog.FuncLog

	set map[libsck.Connection]struct{}
	apd bool // paused automatically at the cap
	mpd bool // paused manually

	evc sckevt.Listeners[libsck.Connection]
	eve sckevt.Listeners[error]
}

func (o *slm) log(lvl loglvl.Level, msg string) {
	if o.lgr == nil {
		return
	} else if l := o.lgr(); l == nil {
		return
	} else {
		l.Entry(lvl, msg).FieldAdd("open", o.OpenConnections()).FieldAdd("limit", o.lim).Log()
	}
}

// accept tracks one upstream connection, rejecting or pausing at the
// cap.
func (o *slm) accept(con libsck.Connection) {
	o.mu.Lock()

	if o.lim > 0 && int64(len(o.set)) >= o.lim {
		o.mu.Unlock()

		o.log(loglvl.WarnLevel, "connection rejected on limit")
		o.eve.Emit(ErrorLimitReached.Error(nil))
		_ = con.Close()
		return
	}

	o.set[con] = struct{}{}

	if o.pol && o.lim > 0 && int64(len(o.set)) >= o.lim && !o.apd {
		o.apd = true
		o.srv.Pause()
		o.log(loglvl.InfoLevel, "upstream paused on limit")
	}

	o.mu.Unlock()

	con.OnClose(func() {
		o.release(con)
	})

	o.evc.Emit(con)
}

// release drops a closed connection from the set and resumes the
// upstream when the automatic pause no longer holds.
func (o *slm) release(con libsck.Connection) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if _, k := o.set[con]; !k {
		return
	}

	delete(o.set, con)

	if o.apd && int64(len(o.set)) < o.lim {
		o.apd = false

		if !o.mpd {
			o.srv.Resume()
			o.log(loglvl.InfoLevel, "upstream resumed below limit")
		}
	}
}

func (o *slm) Listen(ctx context.Context) error {
	return o.srv.Listen(ctx)
}

func (o *slm) Address() string {
	return o.srv.Address()
}

// Pause pauses the upstream manually, independent of the automatic
// pause.
func (o *slm) Pause() {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.mpd = true
	o.srv.Pause()
}

// Resume lifts the manual pause. The upstream stays paused while the
// automatic pause holds.
func (o *slm) Resume() {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.mpd = false

	if !o.apd {
		o.srv.Resume()
	}
}

func (o *slm) Close() error {
	err := o.srv.Close()

	o.evc.Clear()
	o.eve.Clear()

	return err
}

func (o *slm) IsRunning() bool {
	return o.srv.IsRunning()
}

func (o *slm) IsGone() bool {
	return o.srv.IsGone()
}

func (o *slm) Done() <-chan struct{} {
	return o.srv.Done()
}

func (o *slm) OpenConnections() int64 {
	o.mu.Lock()
	defer o.mu.Unlock()

	return int64(len(o.set))
}

func (o *slm) OnConnection(fct libsck.FuncConnection) func() {
	return o.evc.Register(func(c libsck.Connection) { fct(c) })
}

func (o *slm) OnError(fct libsck.FuncError) func() {
	return o.eve.Register(func(e error) { fct(e) })
}

func (o *slm) OnClose(fct libsck.FuncEvent) func() {
	return o.srv.OnClose(fct)
}
