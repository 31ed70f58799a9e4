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

package resolver

import (
	"context"
	"net"
	"net/netip"
	"time"

	"github.com/miekg/dns"
	libdur "github.com/nabbar/golib/duration"
)

const defaultExchangeTimeout = 5 * time.Second

// xcg resolves by exchanging queries directly with a nameserver list,
// trying each server in order until one answers.
type xcg struct {
	srv []string
	tmo libdur.Duration
}

func normalize(srv []string) []string {
	var r = make([]string, 0, len(srv))

	for _, s := range srv {
		if len(s) < 1 {
			continue
		}
		if _, _, e := net.SplitHostPort(s); e != nil {
			s = net.JoinHostPort(s, "53")
		}
		r = append(r, s)
	}

	return r
}

func (o *xcg) timeout() time.Duration {
	if o.tmo > 0 {
		return o.tmo.Time()
	}

	return defaultExchangeTimeout
}

func (o *xcg) exchange(ctx context.Context, host string, qtype uint16) ([]netip.Addr, error) {
	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(host), qtype)
	msg.RecursionDesired = true

	cli := &dns.Client{Timeout: o.timeout()}

	var lst error
	for _, s := range o.srv {
		rsp, _, e := cli.ExchangeContext(ctx, msg, s)

		if e != nil {
			lst = e
			continue
		} else if rsp.Rcode == dns.RcodeNameError {
			return nil, ErrorNoSuchHost.Errorf(host)
		} else if rsp.Rcode != dns.RcodeSuccess {
			lst = ErrorBadRcode.Errorf(dns.RcodeToString[rsp.Rcode], host)
			continue
		}

		var r = make([]netip.Addr, 0, len(rsp.Answer))
		for _, ans := range rsp.Answer {
			switch v := ans.(type) {
			case *dns.A:
				if ip, k := netip.AddrFromSlice(v.A.To4()); k {
					r = append(r, ip)
				}
			case *dns.AAAA:
				if ip, k := netip.AddrFromSlice(v.AAAA); k {
					r = append(r, ip.Unmap())
				}
			}
		}

		return r, nil
	}

	if lst == nil {
		lst = ErrorNoNameserver.Error(nil)
	}

	ler := ErrorResolve.Errorf(host)
	ler.Add(lst)
	return nil, ler
}

func (o *xcg) Resolve(ctx context.Context, host string) (netip.Addr, error) {
	if l, e := o.exchange(ctx, host, dns.TypeA); e != nil {
		return netip.Addr{}, e
	} else if len(l) < 1 {
		return netip.Addr{}, ErrorNoRecord.Errorf(host)
	} else {
		return l[0], nil
	}
}

func (o *xcg) ResolveAll(ctx context.Context, host string, fam Family) ([]netip.Addr, error) {
	var qtype = dns.TypeA

	if fam == IPv6 {
		qtype = dns.TypeAAAA
	}

	return o.exchange(ctx, host, qtype)
}
