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

// Package resolver defines the DNS resolution contract consumed by the
// connector stack and ships two backends.
//
// The System backend delegates to the operating system resolver through
// net.Resolver. The Exchange backend queries an explicit list of nameservers
// directly with github.com/miekg/dns, one exchange per server until one
// answers.
//
// Key Features:
//   - Single-result Resolve for simple substitution
//   - Per-family ResolveAll for dual-stack Happy Eyeballs racing
//   - Context cancellation on every lookup
package resolver

import (
	"context"
	"net"
	"net/netip"

	libdur "github.com/nabbar/golib/duration"
)

// Family selects the address family of a lookup.
type Family uint8

const (
	// IPv4 selects A records.
	IPv4 Family = iota
	// IPv6 selects AAAA records.
	IPv6
)

func (f Family) String() string {
	if f == IPv6 {
		return "IPv6"
	}

	return "IPv4"
}

// Network returns the net.Resolver network filter for the family.
func (f Family) Network() string {
	if f == IPv6 {
		return "ip6"
	}

	return "ip4"
}

// Resolver resolves hostnames into IP addresses.
type Resolver interface {
	// Resolve returns the first IPv4 address of the given host for
	// single-stack substitution. Only IPv4 records are looked up: a host
	// with IPv6 records only yields an error.
	Resolve(ctx context.Context, host string) (netip.Addr, error)

	// ResolveAll returns every address of the given family for the host.
	// An empty slice with a nil error means no record of that family was
	// found. The system backend also answers a name that does not exist
	// this way; the exchange backend reports it as ErrorNoSuchHost.
	ResolveAll(ctx context.Context, host string, fam Family) ([]netip.Addr, error)
}

// New returns a resolver backed by the operating system, or by a direct
// exchange with the given nameservers when any are supplied. The timeout
// bounds each single exchange, zero meaning the package default.
func New(nameservers []string, timeout libdur.Duration) Resolver {
	if len(nameservers) > 0 {
		return &xcg{srv: normalize(nameservers), tmo: timeout}
	}

	return &sys{res: net.DefaultResolver}
}

// NewSystem returns a resolver backed by the given net.Resolver, or the
// default one when nil.
func NewSystem(res *net.Resolver) Resolver {
	if res == nil {
		res = net.DefaultResolver
	}

	return &sys{res: res}
}
