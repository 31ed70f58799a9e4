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

package connector

import (
	"context"

	libdur "github.com/nabbar/golib/duration"
	liblog "github.com/nabbar/golib/logger"
	libsck "github.com/nabbar/socket"
	sckdns "github.com/nabbar/socket/connector/dns"
	sckeyb "github.com/nabbar/socket/connector/eyeballs"
	sckscn "github.com/nabbar/socket/connector/secure"
	scktcp "github.com/nabbar/socket/connector/tcp"
	scktmo "github.com/nabbar/socket/connector/timeout"
	sckunx "github.com/nabbar/socket/connector/unix"
	sckadr "github.com/nabbar/socket/address"
	sckres "github.com/nabbar/socket/resolver"
)

type cnt struct {
	cfg Config
	lgr liblog.FuncLog
	res sckres.Resolver
	dsp map[string]libsck.Connector
	ovr map[string]libsck.Connector
}

// timeout resolves the configured connect time bound: nil applies the
// default, a non positive value disables the decorator.
func (o *cnt) timeout() libdur.Duration {
	if o.cfg.Timeout == nil {
		return DefaultTimeout
	} else if *o.cfg.Timeout > 0 {
		return *o.cfg.Timeout
	}

	return 0
}

func (o *cnt) eyeballs() bool {
	return o.cfg.HappyEyeballs == nil || *o.cfg.HappyEyeballs
}

// build composes the dispatch table once. The table is never mutated
// afterwards.
func (o *cnt) build() {
	tmo := o.timeout()

	if !o.cfg.TCP.Disabled {
		base := libsck.Connector(scktcp.New(o.cfg.TCP.Config, o.lgr))

		if !o.cfg.DNS.Disabled {
			res := o.res
			if res == nil {
				res = sckres.New(o.cfg.DNS.Nameservers, o.cfg.DNS.Timeout)
			}

			if o.eyeballs() {
				base = sckeyb.New(base, res, sckeyb.Config{
					IPv6Precheck: o.cfg.IPv6Precheck,
				}, o.lgr)
			} else {
				base = sckdns.New(base, res, o.lgr)
			}
		}

		o.dsp[sckadr.SchemeTCP] = scktmo.New(base, tmo, o.lgr)

		if !o.cfg.TLS.Disabled {
			sec := sckscn.New(base, o.cfg.TLS.Options, o.lgr)
			o.dsp[sckadr.SchemeTLS] = scktmo.New(sec, tmo, o.lgr)
		}
	}

	if !o.cfg.Unix.Disabled {
		o.dsp[sckadr.SchemeUnix] = scktmo.New(sckunx.New(o.lgr), tmo, o.lgr)
	}

	for s, c := range o.ovr {
		o.dsp[s] = c
	}
}

func (o *cnt) Connect(ctx context.Context, uri string) (libsck.Connection, error) {
	adr, err := sckadr.Parse(uri, sckadr.SchemeTCP)

	if err != nil {
		return nil, err
	}

	con, ok := o.dsp[adr.Scheme]
	if !ok {
		return nil, ErrorSchemeUnsupported.Errorf(adr.Scheme)
	}

	return con.Connect(ctx, uri)
}
