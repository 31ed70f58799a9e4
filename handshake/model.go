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

import (
	"context"
	"crypto/tls"
	"errors"
	"io"

	libatm "github.com/nabbar/golib/atomic"
	liberr "github.com/nabbar/golib/errors"
	liblog "github.com/nabbar/golib/logger"
	loglvl "github.com/nabbar/golib/logger/level"
	libsck "github.com/nabbar/socket"
	sckadr "github.com/nabbar/socket/address"
	sckcon "github.com/nabbar/socket/connection"
)

type drv struct {
	con libsck.Connection
	srv bool
	lgr liblog.FuncLog
	fin libatm.Value[Status]
}

func (o *drv) log(lvl loglvl.Level, msg string, err error) {
	if o.lgr == nil {
		return
	} else if l := o.lgr(); l == nil {
		return
	} else {
		ent := l.Entry(lvl, msg)
		ent = ent.FieldAdd("remote", o.con.RemoteAddr()).FieldAdd("server", o.srv)
		if err != nil {
			ent = ent.ErrorAdd(true, err)
		}
		ent.Log()
	}
}

func (o *drv) Status() Status {
	return o.fin.Load()
}

func (o *drv) Enable(ctx context.Context, cfg *tls.Config) (libsck.Connection, liberr.Error) {
	if o.fin.Load() != StatusIdle {
		return nil, ErrorHandshakeDone.Error(nil)
	}

	o.fin.Store(StatusHandshaking)

	upg, k := o.con.(sckcon.Upgrader)
	if !k {
		o.fin.Store(StatusFailed)
		return nil, ErrorNotUpgradable.Error(nil)
	}

	if cfg == nil {
		cfg = &tls.Config{}
	}

	raw := upg.NetConn()

	if _, k = raw.(*tls.Conn); k {
		o.fin.Store(StatusFailed)
		return nil, ErrorAlreadyEncrypted.Error(nil)
	}

	// no application byte must flow while the handshake owns the socket
	upg.Quiesce()

	if !o.srv && len(cfg.ServerName) < 1 {
		if n := o.con.ServerName(); len(n) > 0 {
			c := cfg.Clone()
			c.ServerName = n
			cfg = c
		}
	}

	var tcn *tls.Conn
	if o.srv {
		tcn = tls.Server(raw, cfg)
	} else {
		tcn = tls.Client(raw, cfg)
	}

	o.log(loglvl.DebugLevel, libsck.ConnectionHandshake.String(), nil)

	if err := tcn.HandshakeContext(ctx); err != nil {
		if ctx.Err() != nil {
			// cancellation is not a failure, the socket stays with the caller
			o.fin.Store(StatusFailed)
			return nil, libsck.ErrorCancelled.Error(ctx.Err())
		}

		o.fin.Store(StatusFailed)
		o.con.Resume()

		if isConnectionLost(err) {
			return nil, ErrorConnectionLost.Error(nil)
		}

		ler := ErrorHandshakeFailed.Errorf(err.Error())
		ler.Add(err)
		return nil, ler
	}

	upg.Swap(tcn, sckadr.SchemeTLS)
	o.fin.Store(StatusDone)
	o.con.Resume()

	return o.con, nil
}

func (o *drv) Disable(ctx context.Context) (libsck.Connection, liberr.Error) {
	return nil, ErrorDisableUnsupported.Error(nil)
}

// isConnectionLost reports whether the peer vanished during the
// handshake, with no TLS alert to report.
func isConnectionLost(err error) bool {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}

	if len(err.Error()) < 1 {
		return true
	}

	return false
}
