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

package dns

import (
	"context"

	liblog "github.com/nabbar/golib/logger"
	loglvl "github.com/nabbar/golib/logger/level"
	libsck "github.com/nabbar/socket"
	sckadr "github.com/nabbar/socket/address"
	sckres "github.com/nabbar/socket/resolver"
)

type cdn struct {
	con libsck.Connector
	res sckres.Resolver
	lgr liblog.FuncLog
}

func (o *cdn) log(host string, ip string, err error) {
	if o.lgr == nil {
		return
	} else if l := o.lgr(); l == nil {
		return
	} else {
		ent := l.Entry(loglvl.DebugLevel, "DNS lookup").FieldAdd("host", host).FieldAdd("ip", ip)
		if err != nil {
			ent = ent.ErrorAdd(true, err)
		}
		ent.Log()
	}
}

func (o *cdn) Connect(ctx context.Context, uri string) (libsck.Connection, error) {
	adr, err := sckadr.Parse(uri, sckadr.SchemeTCP)

	if err != nil {
		return nil, err
	}

	if adr.IsLiteral() {
		return o.con.Connect(ctx, uri)
	}

	ip, e := o.res.Resolve(ctx, adr.Host)

	if e != nil {
		o.log(adr.Host, "", e)

		if ctx.Err() != nil {
			return nil, libsck.ErrorCancelled.Error(ctx.Err())
		}

		ler := ErrorDNSLookup.Errorf(sckadr.StripHostnameQuery(adr.String()), e.Error())
		ler.Add(e)
		return nil, ler
	}

	o.log(adr.Host, ip.String(), nil)

	return o.con.Connect(ctx, adr.WithHost(ip).String())
}
