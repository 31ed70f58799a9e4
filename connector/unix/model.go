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

	liblog "github.com/nabbar/golib/logger"
	loglvl "github.com/nabbar/golib/logger/level"
	libptc "github.com/nabbar/golib/network/protocol"
	libsck "github.com/nabbar/socket"
	sckadr "github.com/nabbar/socket/address"
	sckcon "github.com/nabbar/socket/connection"
)

type cux struct {
	lgr liblog.FuncLog
}

func (o *cux) log(lvl loglvl.Level, msg string, pth string, err error) {
	if o.lgr == nil {
		return
	} else if l := o.lgr(); l == nil {
		return
	} else {
		ent := l.Entry(lvl, msg).FieldAdd("path", pth)
		if err != nil {
			ent = ent.ErrorAdd(true, err)
		}
		ent.Log()
	}
}

func (o *cux) Connect(ctx context.Context, uri string) (libsck.Connection, error) {
	adr, err := sckadr.Parse(uri, sckadr.SchemeUnix)

	if err != nil {
		return nil, err
	} else if adr.Scheme != sckadr.SchemeUnix {
		return nil, ErrorBadScheme.Errorf(adr.Scheme)
	}

	pth := adr.Path

	if inf, e := os.Stat(pth); e != nil {
		if os.IsNotExist(e) {
			ler := ErrorSocketMissing.Errorf(pth)
			ler.Add(e)
			return nil, ler
		}
		ler := ErrorSocketStat.Errorf(pth)
		ler.Add(e)
		return nil, ler
	} else if inf.Mode()&os.ModeSocket == 0 {
		return nil, ErrorNotSocket.Errorf(pth)
	}

	o.log(loglvl.DebugLevel, libsck.ConnectionDial.String(), pth, nil)

	var dlr net.Dialer

	cnn, e := dlr.DialContext(ctx, libptc.NetworkUnix.Code(), pth)

	if e != nil {
		if ctx.Err() != nil {
			return nil, libsck.ErrorCancelled.Error(ctx.Err())
		}

		ler := ErrorConnectionFailed.Errorf(pth)
		ler.Add(e)
		return nil, ler
	}

	o.log(loglvl.DebugLevel, libsck.ConnectionNew.String(), pth, nil)

	return sckcon.New(cnn, sckadr.SchemeUnix, o.lgr), nil
}
