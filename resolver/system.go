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
)

type sys struct {
	res *net.Resolver
}

func (o *sys) Resolve(ctx context.Context, host string) (netip.Addr, error) {
	if l, e := o.res.LookupNetIP(ctx, IPv4.Network(), host); e != nil {
		ler := ErrorResolve.Errorf(host)
		ler.Add(e)
		return netip.Addr{}, ler
	} else if len(l) < 1 {
		return netip.Addr{}, ErrorNoRecord.Errorf(host)
	} else {
		return l[0].Unmap(), nil
	}
}

func (o *sys) ResolveAll(ctx context.Context, host string, fam Family) ([]netip.Addr, error) {
	l, e := o.res.LookupNetIP(ctx, fam.Network(), host)

	if e != nil {
		if d, k := e.(*net.DNSError); k && d.IsNotFound {
			return nil, nil
		}
		ler := ErrorResolve.Errorf(host)
		ler.Add(e)
		return nil, ler
	}

	var r = make([]netip.Addr, 0, len(l))
	for _, i := range l {
		r = append(r, i.Unmap())
	}

	return r, nil
}
