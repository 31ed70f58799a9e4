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
	"net/netip"
	"sync"
	"time"

	loglvl "github.com/nabbar/golib/logger/level"
	libsck "github.com/nabbar/socket"
	sckadr "github.com/nabbar/socket/address"
	sckres "github.com/nabbar/socket/resolver"
)

// target is one queued connection candidate.
type target struct {
	ip  netip.Addr
	fam sckres.Family
}

type result struct {
	con libsck.Connection
	err error
}

// ebs is the state of one in flight Happy Eyeballs connect. It lives
// exactly one attempt; done is terminal.
type ebs struct {
	mu sync.Mutex

	bld *ceb
	adr *sckadr.Address

	ctx context.Context
	cnl context.CancelFunc

	que []target      // interleaved candidates, alternating families
	inf int           // attempts currently in flight
	rsv [2]bool       // per family resolution arrived (success or failure)
	ips int           // total candidates discovered
	fld int           // candidates failed
	ler [2]error      // last error per family
	lfm sckres.Family // family of the most recent failure
	ach chan struct{} // closed when the AAAA answer arrived
	one sync.Once     // closes ach exactly once
	atm *time.Timer   // connection attempt delay timer
	apd bool          // attempt timer armed
	don bool          // terminal
	skp bool          // IPv6 skipped by pre-check

	win chan result
}

func newState(ctx context.Context, bld *ceb, adr *sckadr.Address, skip6 bool) *ebs {
	sub, cnl := context.WithCancel(ctx)

	return &ebs{
		bld: bld,
		adr: adr,
		ctx: sub,
		cnl: cnl,
		ach: make(chan struct{}),
		skp: skip6,
		win: make(chan result, 1),
	}
}

// start launches the dual-stack resolution. With the IPv6 pre-check
// negative, the AAAA side is marked resolved empty and the A answer is
// processed without the resolution delay.
func (o *ebs) start() {
	if o.skp {
		o.mu.Lock()
		o.rsv[sckres.IPv6] = true
		o.mu.Unlock()
		o.one.Do(func() { close(o.ach) })
	} else {
		go o.resolve(sckres.IPv6)
	}

	go o.resolve(sckres.IPv4)
}

func (o *ebs) resolve(fam sckres.Family) {
	ips, err := o.bld.res.ResolveAll(o.ctx, o.adr.Host, fam)

	if fam == sckres.IPv4 {
		o.holdIPv4()
	}

	o.deliver(fam, ips, err)
}

// holdIPv4 delays the A answer until the AAAA answer arrived or the
// resolution delay elapsed, whichever comes first.
func (o *ebs) holdIPv4() {
	o.mu.Lock()
	done := o.rsv[sckres.IPv6] || o.don
	o.mu.Unlock()

	if done {
		return
	}

	tmr := time.NewTimer(ResolutionDelay)
	defer tmr.Stop()

	select {
	case <-o.ach:
	case <-tmr.C:
	case <-o.ctx.Done():
	}
}

// deliver merges a resolution answer into the state: the batch is
// shuffled, interleaved into the queue starting with the incoming batch,
// and the attempt engine kicked.
func (o *ebs) deliver(fam sckres.Family, ips []netip.Addr, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if fam == sckres.IPv6 {
		o.one.Do(func() { close(o.ach) })
	}

	if o.don || o.rsv[fam] {
		return
	}

	o.rsv[fam] = true

	if err != nil {
		o.ler[fam] = err
		o.lfm = fam
	}

	if len(ips) > 0 {
		o.que = interleave(batch(ips, fam), o.que)
		o.ips += len(ips)
	}

	o.attemptNextLocked()
	o.checkExhaustedLocked()
}

// attemptNextLocked starts the next queued attempt when none is gated by
// the pacing timer, then arms the timer: one attempt start per delay
// window, independent of each attempt's outcome.
func (o *ebs) attemptNextLocked() {
	if o.don || o.apd || len(o.que) < 1 {
		return
	}

	t := o.que[0]
	o.que = o.que[1:]
	o.inf++

	go o.attempt(t)

	o.apd = true
	o.atm = time.AfterFunc(ConnectionAttemptDelay, o.attemptTimer)
}

// attemptTimer releases the pacing gate and starts the next queued
// attempt when any.
func (o *ebs) attemptTimer() {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.apd = false
	o.attemptNextLocked()
}

func (o *ebs) attempt(t target) {
	uri := o.adr.WithHost(t.ip).String()

	o.bld.log(loglvl.DebugLevel, libsck.ConnectionDial.String(), uri, nil)

	con, err := o.bld.con.Connect(o.ctx, uri)

	o.mu.Lock()
	o.inf--

	if o.don {
		o.mu.Unlock()
		// a race already resolved, a late success must be closed
		if con != nil {
			_ = con.Close()
		}
		return
	}

	if err != nil {
		o.fld++
		o.ler[t.fam] = err
		o.lfm = t.fam
		o.attemptNextLocked()
		o.checkExhaustedLocked()
		o.mu.Unlock()
		return
	}

	o.don = true
	o.mu.Unlock()

	// release losers in reverse registration order: pacing timer first,
	// then pending attempts and the opposite family lookup
	o.cleanup()

	o.win <- result{con: con}
}

// checkExhaustedLocked rejects only when both families answered, the
// queue is drained and every discovered candidate failed.
func (o *ebs) checkExhaustedLocked() {
	if o.don || !o.rsv[sckres.IPv4] || !o.rsv[sckres.IPv6] {
		return
	}

	if len(o.que) > 0 || o.inf > 0 {
		return
	}

	if o.ips > 0 && o.fld < o.ips {
		return
	}

	o.don = true

	uri := sckadr.StripHostnameQuery(o.adr.String())

	if o.ips < 1 {
		o.win <- result{err: ErrorDNSExhausted.Errorf(uri, o.detailLocked())}
	} else {
		o.win <- result{err: ErrorExhausted.Errorf(uri, o.detailLocked())}
	}
}

// cancel runs the terminal cleanup on external cancellation: drain the
// queue, cancel pending attempts and lookups, release timers.
func (o *ebs) cancel() {
	o.mu.Lock()
	o.don = true
	o.que = nil
	o.mu.Unlock()

	o.cleanup()
}

func (o *ebs) cleanup() {
	o.mu.Lock()
	if o.atm != nil {
		o.atm.Stop()
		o.atm = nil
	}
	o.apd = false
	o.mu.Unlock()

	o.cnl()
}
