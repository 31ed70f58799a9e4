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
	"net"
	"sync"
	"time"
)

const (
	probeTTL     = 60 * time.Second
	probeTimeout = 500 * time.Millisecond
	probeTarget  = "[2001:4860:4860::8888]:53"
)

var (
	prbMux sync.Mutex
	prbAge time.Time
	prbRes bool
	prbFct func(ctx context.Context) bool
)

// SetProbe overrides the IPv6 routability probe, mainly for tests. A nil
// function restores the default probe. The cached result is dropped.
func SetProbe(fct func(ctx context.Context) bool) {
	prbMux.Lock()
	defer prbMux.Unlock()

	prbFct = fct
	prbAge = time.Time{}
}

// ipv6Routable reports whether the host has IPv6 connectivity, caching
// the probe result process-wide.
func ipv6Routable(ctx context.Context) bool {
	prbMux.Lock()
	defer prbMux.Unlock()

	if !prbAge.IsZero() && time.Since(prbAge) < probeTTL {
		return prbRes
	}

	fct := prbFct
	if fct == nil {
		fct = defaultProbe
	}

	prbRes = fct(ctx)
	prbAge = time.Now()

	return prbRes
}

// defaultProbe opens a connected UDP socket towards a well known public
// IPv6 address. No packet is sent: the kernel only has to find a route
// and a source address.
func defaultProbe(ctx context.Context) bool {
	dlr := net.Dialer{Timeout: probeTimeout}

	con, err := dlr.DialContext(ctx, "udp6", probeTarget)
	if err != nil {
		return false
	}

	_ = con.Close()
	return true
}
