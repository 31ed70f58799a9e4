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

// Package eyeballs decorates a connector with the Happy Eyeballs
// (RFC 8305) dual-stack connection strategy.
//
// For a hostname, the AAAA and A queries run in parallel. A records are
// held back until the AAAA answer arrives or the resolution delay
// elapses. Addresses are shuffled within their batch and merged into one
// attempt queue alternating families, so one failing family cannot starve
// the other. Connection attempts race: a new attempt starts each
// connection attempt delay regardless of the previous attempt's outcome.
// The first connection that completes wins, every other pending attempt
// is cancelled and any attempt completing later is closed. Only when both
// families have answered, the queue is drained and every candidate has
// failed is a composite error reported, naming the last error of each
// family.
//
// An optional pre-check probes IPv6 routability through a process-wide
// cache before racing, degrading directly to IPv4 on hosts without IPv6
// connectivity.
package eyeballs

import (
	"time"

	liblog "github.com/nabbar/golib/logger"
	libsck "github.com/nabbar/socket"
	sckres "github.com/nabbar/socket/resolver"
)

const (
	// ResolutionDelay is the grace period before processing A records
	// while the AAAA query is still pending (RFC 8305 section 3).
	ResolutionDelay = 50 * time.Millisecond

	// ConnectionAttemptDelay is the minimum spacing between launching
	// successive connection attempts (RFC 8305 section 5).
	ConnectionAttemptDelay = 250 * time.Millisecond
)

// Config tunes the Happy Eyeballs builder.
type Config struct {
	// IPv6Precheck probes IPv6 routability before racing, skipping the
	// AAAA query and the resolution delay on hosts without IPv6
	// connectivity. The probe result is cached process-wide.
	IPv6Precheck bool `mapstructure:"ipv6_precheck" json:"ipv6_precheck" yaml:"ipv6_precheck" toml:"ipv6_precheck"`
}

// New decorates the given connector with Happy Eyeballs racing over the
// given resolver. A nil resolver falls back to the system one. The logger
// function may be nil.
func New(con libsck.Connector, res sckres.Resolver, cfg Config, log liblog.FuncLog) libsck.Connector {
	if res == nil {
		res = sckres.NewSystem(nil)
	}

	return &ceb{
		con: con,
		res: res,
		cfg: cfg,
		lgr: log,
	}
}
