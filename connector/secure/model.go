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

	liblog "github.com/nabbar/golib/logger"
	loglvl "github.com/nabbar/golib/logger/level"
	libsck "github.com/nabbar/socket"
	sckadr "github.com/nabbar/socket/address"
	sckhsk "github.com/nabbar/socket/handshake"
	sckcfg "github.com/nabbar/socket/tlscfg"
)

type cse struct {
	con libsck.Connector
	opt sckcfg.Options
	tls *tls.Config
	lgr liblog.FuncLog
}

func (o *cse) log(lvl loglvl.Level, msg string, uri string, err error) {
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

func (o *cse) Connect(ctx context.Context, uri string) (libsck.Connection, error) {
	adr, err := sckadr.Parse(uri, sckadr.SchemeTLS)

	if err != nil {
		return nil, err
	} else if adr.Scheme != sckadr.SchemeTLS {
		return nil, ErrorBadScheme.Errorf(adr.Scheme)
	}

	org := sckadr.StripHostnameQuery(adr.String())

	ptx := *adr
	ptx.Scheme = sckadr.SchemeTCP

	con, e := o.con.Connect(ctx, ptx.String())

	if e != nil {
		if libsck.IsCancelled(e) {
			return nil, e
		}

		ler := ErrorConnectionFailed.Errorf(org, sckadr.StripHostnameQuery(e.Error()))
		ler.Add(e)
		return nil, ler
	}

	if len(con.ServerName()) < 1 {
		con.SetServerName(adr.Host)
	}

	cfg := o.tls
	if cfg == nil {
		if cfg, err = o.opt.Client(); err != nil {
			_ = con.Close()
			return nil, err
		}
	}

	sec, he := sckhsk.New(con, false, o.lgr).Enable(ctx, cfg)

	if he != nil {
		_ = con.Close()

		if libsck.IsCancelled(he) {
			return nil, he
		}

		o.log(loglvl.ErrorLevel, libsck.ConnectionHandshake.String(), org, he)

		ler := ErrorEncryptionFailed.Errorf(org, sckadr.StripHostnameQuery(he.Error()))
		ler.Add(he)
		return nil, ler
	}

	o.log(loglvl.DebugLevel, libsck.ConnectionNew.String(), org, nil)

	return sec, nil
}
