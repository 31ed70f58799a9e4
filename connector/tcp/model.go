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

import (
	"context"
	"net"

	liberr "github.com/nabbar/golib/errors"
	liblog "github.com/nabbar/golib/logger"
	loglvl "github.com/nabbar/golib/logger/level"
	libptc "github.com/nabbar/golib/network/protocol"
	libsck "github.com/nabbar/socket"
	sckadr "github.com/nabbar/socket/address"
	sckcon "github.com/nabbar/socket/connection"
)

type crt struct {
	cfg Config
	lgr liblog.FuncLog
}

func (o *crt) log(lvl loglvl.Level, msg string, uri string, err error) {
	if o.lgr == nil {
		return
	} else if l := o.lgr(); l == nil {
		return
	} else {
		ent := l.Entry(lvl, msg).FieldAdd("uri", uri)
		if err != nil {
			ent = ent.ErrorAdd(true, err)
		}
		ent.Log()
	}
}

func (o *crt) Connect(ctx context.Context, uri string) (libsck.Connection, error) {
	adr, err := sckadr.Parse(uri, sckadr.SchemeTCP)

	if err != nil {
		return nil, err
	} else if adr.Scheme != sckadr.SchemeTCP {
		return nil, ErrorBadScheme.Errorf(adr.Scheme)
	} else if !adr.IsLiteral() {
		return nil, ErrorHostNotIP.Errorf(adr.Host)
	} else if len(adr.Port) < 1 {
		return nil, ErrorPortMissing.Errorf(sckadr.StripHostnameQuery(adr.String()))
	}

	dlr := net.Dialer{KeepAlive: o.cfg.KeepAlive.Time()}

	if len(o.cfg.LocalAddress) > 0 {
		if lad, e := net.ResolveTCPAddr(libptc.NetworkTCP.Code(), o.cfg.LocalAddress); e != nil {
			ler := ErrorLocalAddress.Errorf(o.cfg.LocalAddress)
			ler.Add(e)
			return nil, ler
		} else {
			dlr.LocalAddr = lad
		}
	}

	o.log(loglvl.DebugLevel, libsck.ConnectionDial.String(), uri, nil)

	cnn, e := dlr.DialContext(ctx, libptc.NetworkTCP.Code(), adr.HostPort())

	if e != nil {
		if ctx.Err() != nil {
			return nil, libsck.ErrorCancelled.Error(ctx.Err())
		}

		return nil, o.failed(adr, e)
	}

	con := sckcon.New(cnn, sckadr.SchemeTCP, o.lgr)

	if h := adr.Hostname(); len(h) > 0 {
		con.SetServerName(h)
	}

	o.log(loglvl.DebugLevel, libsck.ConnectionNew.String(), uri, nil)

	return con, nil
}

func (o *crt) failed(adr *sckadr.Address, e error) liberr.Error {
	ler := ErrorConnectionFailed.Errorf(
		sckadr.StripHostnameQuery(adr.String()),
		reason(e),
	)
	ler.Add(e)

	return ler
}

// reason extracts the OS level detail of a dial failure, skipping the
// redundant net.OpError prefix.
func reason(e error) string {
	if op, k := e.(*net.OpError); k && op.Err != nil {
		return op.Err.Error()
	}

	return e.Error()
}
