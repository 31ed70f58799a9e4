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

package address

import (
	"net/netip"
	"net/url"
	"regexp"
	"strings"
)

var reHostnameQuery = regexp.MustCompile(`[?&]hostname=[^&#\s]*`)

// Kind returns the classification of the host part.
func (a *Address) Kind() HostKind {
	if ip, e := netip.ParseAddr(a.Host); e != nil {
		return HostName
	} else if ip.Is4() || ip.Is4In6() {
		return HostIPv4
	} else {
		return HostIPv6
	}
}

// IsLiteral reports whether the host is a literal IP address.
func (a *Address) IsLiteral() bool {
	return a.Kind() != HostName
}

// HostPort returns the host:port pair with IPv6 hosts bracketed, or the
// bare host when no port is set.
func (a *Address) HostPort() string {
	h := a.Host

	if a.Kind() == HostIPv6 {
		h = "[" + h + "]"
	}

	if len(a.Port) > 0 {
		return h + ":" + a.Port
	}

	return h
}

// String re-serializes the address, preserving every part verbatim.
func (a *Address) String() string {
	var b strings.Builder

	b.WriteString(a.Scheme)
	b.WriteString("://")

	if len(a.User) > 0 || a.HasPass {
		if a.HasPass {
			b.WriteString(url.UserPassword(a.User, a.Pass).String())
		} else {
			b.WriteString(url.User(a.User).String())
		}
		b.WriteString("@")
	}

	b.WriteString(a.HostPort())
	b.WriteString(a.Path)

	if len(a.RawQuery) > 0 {
		b.WriteString("?")
		b.WriteString(a.RawQuery)
	}

	if len(a.Fragment) > 0 {
		b.WriteString("#")
		b.WriteString(a.Fragment)
	}

	return b.String()
}

// WithHost returns a copy of the address with the host replaced by the
// given resolved IP. The original hostname is appended to the query as an
// URL-encoded hostname parameter when not already present, so downstream
// TLS layers keep verifying against the user-supplied name.
func (a *Address) WithHost(ip netip.Addr) *Address {
	c := *a
	c.Host = ip.Unmap().String()

	if a.Kind() == HostName && !strings.Contains(a.RawQuery, QueryHostname+"=") {
		h := QueryHostname + "=" + url.QueryEscape(a.Host)
		if len(c.RawQuery) > 0 {
			c.RawQuery += "&" + h
		} else {
			c.RawQuery = h
		}
	}

	return &c
}

// Hostname returns the hostname hint carried by the query, or the host
// itself when the query carries none and the host is not a literal IP.
func (a *Address) Hostname() string {
	if v, e := url.ParseQuery(a.RawQuery); e == nil {
		if h := v.Get(QueryHostname); len(h) > 0 {
			return h
		}
	}

	if a.Kind() == HostName {
		return a.Host
	}

	return ""
}

// StripHostnameQuery removes the transient hostname query parameter from
// URIs embedded in the given message, so re-wrapped errors show the
// address the caller supplied.
func StripHostnameQuery(msg string) string {
	return reHostnameQuery.ReplaceAllString(msg, "")
}

func isValidHost(h string) bool {
	if _, e := netip.ParseAddr(h); e == nil {
		return true
	}

	if strings.ContainsAny(h, " \t\r\n/@") {
		return false
	}

	for _, l := range strings.Split(h, ".") {
		if len(l) < 1 {
			return false
		}
	}

	return true
}
