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

package secure

import (
	"context"
	"crypto/tls"
	"strings"
	"time"

	liblog "github.com/nabbar/golib/logger"
	loglvl "github.com/nabbar/golib/logger/level"
	libsck "github.com/nabbar/socket"
	sckadr "github.com/nabbar/socket/address"
	sckevt "github.com/nabbar/socket/event"
	sckhsk "github.com/nabbar/socket/handshake"
)

// handshakeTimeout bounds the server side handshake so a stalled client
// cannot hold the upgrade forever.
const handshakeTimeout = 30 * time.Second

type ssl struct {
	srv libsck.Server
	cfg *tls.Config
	lgr liblog.FuncLog

	evc sckevt.Listeners[libsck.Connection]
	eve sckevt.Listeners[error]
}

func (o *ssl) log(lvl loglvl.Level, msg string, remote string, err error) {
	if o.lgr == nil {
		return
	} else if l := o.lgr(); l == nil {
		return
	} else {
		ent := l.Entry(lvl, msg).FieldAdd("remote", remote)
		if err != nil {
			ent = ent.ErrorAdd(true, err)
		}
		ent.Log()
	}
}

// upgrade drives the server side handshake of one accepted plaintext
// connection.
func (o *ssl) upgrade(con libsck.Connection) {
	go func() {
		// the remote may be unobtainable after a failed handshake
		rmt := con.RemoteAddr()

		ctx, cnl := context.WithTimeout(context.Background(), handshakeTimeout)
		defer cnl()

		sec, err := sckhsk.New(con, true, o.lgr).Enable(ctx, o.cfg)

		if err != nil {
			o.log(loglvl.ErrorLevel, libsck.ConnectionHandshake.String(), rmt, err)
			ler := ErrorEncryptionFailed.Errorf(rmt, err.Error())
			ler.Add(err)
			o.eve.Emit(ler)
			_ = con.Close()
			return
		}

		o.evc.Emit(sec)
	}()
}

func (o *ssl) Listen(ctx context.Context) error {
	return o.srv.Listen(ctx)
}

// Address reports the underlying address relabelled with the tls scheme.
func (o *ssl) Address() string {
	adr := o.srv.Address()

	if len(adr) < 1 {
		return ""
	}

	return strings.Replace(adr, sckadr.SchemeTCP+"://", sckadr.SchemeTLS+"://", 1)
}

func (o *ssl) Pause() {
	o.srv.Pause()
}

func (o *ssl) Resume() {
	o.srv.Resume()
}

func (o *ssl) Close() error {
	err := o.srv.Close()

	o.evc.Clear()
	o.eve.Clear()

	return err
}

func (o *ssl) IsRunning() bool {
	return o.srv.IsRunning()
}

func (o *ssl) IsGone() bool {
	return o.srv.IsGone()
}

func (o *ssl) Done() <-chan struct{} {
	return o.srv.Done()
}

func (o *ssl) OpenConnections() int64 {
	return o.srv.OpenConnections()
}

func (o *ssl) OnConnection(fct libsck.FuncConnection) func() {
	return o.evc.Register(func(c libsck.Connection) { fct(c) })
}

func (o *ssl) OnError(fct libsck.FuncError) func() {
	return o.eve.Register(func(e error) { fct(e) })
}

func (o *ssl) OnClose(fct libsck.FuncEvent) func() {
	return o.srv.OnClose(fct)
}
