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

package eyeballs_test

import (
	"context"
	"fmt"
	"net/netip"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	libsck "github.com/nabbar/socket"
	sckres "github.com/nabbar/socket/resolver"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestEyeballs(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Happy Eyeballs Suite")
}

// scriptResolver answers scripted per family results after scripted
// delays and records whether each family was queried.
type scriptResolver struct {
	mu sync.Mutex

	ip4 []netip.Addr
	ip6 []netip.Addr
	er4 error
	er6 error
	dl4 time.Duration
	dl6 time.Duration

	qry map[sckres.Family]int
}

func newScriptResolver() *scriptResolver {
	return &scriptResolver{
		qry: make(map[sckres.Family]int),
	}
}

func (o *scriptResolver) calls(fam sckres.Family) int {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.qry[fam]
}

func (o *scriptResolver) Resolve(ctx context.Context, host string) (netip.Addr, error) {
	l, e := o.ResolveAll(ctx, host, sckres.IPv4)

	if e != nil {
		return netip.Addr{}, e
	} else if len(l) < 1 {
		return netip.Addr{}, fmt.Errorf("no address for %s", host)
	}

	return l[0], nil
}

func (o *scriptResolver) ResolveAll(ctx context.Context, host string, fam sckres.Family) ([]netip.Addr, error) {
	o.mu.Lock()
	o.qry[fam]++

	var (
		ips []netip.Addr
		err error
		dly time.Duration
	)

	if fam == sckres.IPv6 {
		ips, err, dly = o.ip6, o.er6, o.dl6
	} else {
		ips, err, dly = o.ip4, o.er4, o.dl4
	}
	o.mu.Unlock()

	if dly > 0 {
		select {
		case <-time.After(dly):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return ips, err
}

// outcome scripts the behaviour of one candidate address in the fake
// connector.
type outcome struct {
	dly time.Duration
	err error
	lat bool // completes after dly even when the attempt was cancelled
}

// scriptConnector resolves each attempt according to the scripted per
// host outcome, recording every attempt URI with its start time.
type scriptConnector struct {
	mu sync.Mutex

	out map[string]outcome

	uris  []string
	times []time.Time
	conns []*stubConn
}

func newScriptConnector() *scriptConnector {
	return &scriptConnector{
		out: make(map[string]outcome),
	}
}

func (o *scriptConnector) attempts() []string {
	o.mu.Lock()
	defer o.mu.Unlock()

	return append([]string{}, o.uris...)
}

func (o *scriptConnector) attemptTimes() []time.Time {
	o.mu.Lock()
	defer o.mu.Unlock()

	return append([]time.Time{}, o.times...)
}

func (o *scriptConnector) Connect(ctx context.Context, uri string) (libsck.Connection, error) {
	o.mu.Lock()
	o.uris = append(o.uris, uri)
	o.times = append(o.times, time.Now())

	var res outcome
	for k, v := range o.out {
		if strings.Contains(uri, k) {
			res = v
			break
		}
	}
	o.mu.Unlock()

	if res.dly > 0 && res.lat {
		time.Sleep(res.dly)
	} else if res.dly > 0 {
		select {
		case <-time.After(res.dly):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if res.err != nil {
		return nil, res.err
	}

	if ctx.Err() != nil && !res.lat {
		return nil, ctx.Err()
	}

	con := &stubConn{uri: uri}

	o.mu.Lock()
	o.conns = append(o.conns, con)
	o.mu.Unlock()

	return con, nil
}

// stubConn is a minimal established connection for racing tests.
type stubConn struct {
	uri string
	cls atomic.Bool
	snm string
}

func (o *stubConn) IsReadable() bool                          { return !o.cls.Load() }
func (o *stubConn) IsWritable() bool                          { return !o.cls.Load() }
func (o *stubConn) Pause()                                    {}
func (o *stubConn) Resume()                                   {}
func (o *stubConn) Write(p []byte) bool                       { return !o.cls.Load() }
func (o *stubConn) End(p ...[]byte)                           {}
func (o *stubConn) Close() error                              { o.cls.Store(true); return nil }
func (o *stubConn) Pipe(d libsck.Connection) libsck.Connection { return d }
func (o *stubConn) LocalAddr() string                         { return "" }
func (o *stubConn) RemoteAddr() string                        { return o.uri }
func (o *stubConn) ServerName() string                        { return o.snm }
func (o *stubConn) SetServerName(n string)                    { o.snm = n }
func (o *stubConn) OnData(libsck.FuncData) func()             { return func() {} }
func (o *stubConn) OnEnd(libsck.FuncEvent) func()             { return func() {} }
func (o *stubConn) OnError(libsck.FuncError) func()           { return func() {} }
func (o *stubConn) OnClose(libsck.FuncEvent) func()           { return func() {} }
func (o *stubConn) OnDrain(libsck.FuncEvent) func()           { return func() {} }
func (o *stubConn) OnPipe(libsck.FuncPipe) func()             { return func() {} }

func mustAddr(s string) netip.Addr {
	return netip.MustParseAddr(s)
}
