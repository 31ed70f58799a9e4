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

package resolver_test

import (
	"context"
	"testing"

	sckres "github.com/nabbar/socket/resolver"
)

// TestFamilyLabels tests the family rendering used in composite errors
// and lookups.
func TestFamilyLabels(t *testing.T) {
	if sckres.IPv4.String() != "IPv4" {
		t.Errorf("IPv4.String() = %q", sckres.IPv4.String())
	}

	if sckres.IPv6.String() != "IPv6" {
		t.Errorf("IPv6.String() = %q", sckres.IPv6.String())
	}

	if sckres.IPv4.Network() != "ip4" {
		t.Errorf("IPv4.Network() = %q", sckres.IPv4.Network())
	}

	if sckres.IPv6.Network() != "ip6" {
		t.Errorf("IPv6.Network() = %q", sckres.IPv6.Network())
	}
}

// TestSystemResolverLoopback tests the system backend on the loopback
// name that every host resolves.
func TestSystemResolverLoopback(t *testing.T) {
	res := sckres.NewSystem(nil)

	ip, err := res.Resolve(context.Background(), "localhost")
	if err != nil {
		t.Skipf("system resolver unavailable: %v", err)
	}

	if !ip.IsLoopback() {
		t.Errorf("localhost resolved to %s, want loopback", ip)
	}
}

// TestNewSelectsBackend tests backend selection by the nameserver list.
func TestNewSelectsBackend(t *testing.T) {
	if r := sckres.New(nil, 0); r == nil {
		t.Fatal("nil system resolver")
	}

	if r := sckres.New([]string{"192.0.2.53"}, 0); r == nil {
		t.Fatal("nil exchange resolver")
	}
}
