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

package eyeballs

import (
	"context"

	liblog "github.com/nabbar/golib/logger"
	loglvl "github.com/nabbar/golib/logger/level"
	libsck "github.com/nabbar/socket"
	sckadr "github.com/nabbar/socket/address"
	sckres "github.com/nabbar/socket/resolver"
)

type ceb struct {
	con libsck.Connector
	res sckres.Resolver
	cfg Config
	lgr liblog.FuncLog
}

func (o *ceb) log(lvl loglvl.Level, msg string, uri string, err error) {
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

func (o *ceb) Connect(ctx context.Context, uri string) (libsck.Connection, error) {
	adr, err := sckadr.Parse(uri, sckadr.SchemeTCP)

	if err != nil {
		return nil, err
	}

	if adr.IsLiteral() {
		return o.con.Connect(ctx, uri)
	}

	if len(adr.Port) < 1 {
		return nil, ErrorPortMissing.Errorf(sckadr.StripHostnameQuery(adr.String()))
	}

	skip6 := o.cfg.IPv6Precheck && !ipv6Routable(ctx)

	if skip6 {
		o.log(loglvl.DebugLevel, "IPv6 not routable, racing IPv4 only", uri, nil)
	}

	st := newState(ctx, o, adr, skip6)
	defer st.cleanup()

	st.start()

	select {
	case r := <-st.win:
		if r.err != nil {
			o.log(loglvl.ErrorLevel, libsck.ConnectionDial.String(), uri, r.err)
			return nil, r.err
		}
		return r.con, nil

	case <-ctx.Done():
		st.cancel()

		// a success racing the cancellation on the same tick is closed
		select {
		case r := <-st.win:
			if r.con != nil {
				_ = r.con.Close()
			}
		default:
		}

		return nil, libsck.ErrorCancelled.Error(ctx.Err())
	}
}
