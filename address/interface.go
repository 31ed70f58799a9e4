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

// Package address parses and re-emits the URIs consumed and produced by the
// socket library.
//
// Accepted strings have the form
//
//	[scheme://][user[:pass]@]host[:port][/path][?query][#fragment]
//
// The host is normalized: surrounding brackets are stripped and a
// classification (literal IPv4, literal IPv6 or hostname) is derived. Unknown
// parts pass through unchanged when re-serialized. When a resolved IP is
// substituted for a hostname, the original hostname is preserved as an
// URL-encoded hostname query parameter so downstream TLS layers can use it
// for SNI and peer verification.
package address

import (
	"net/url"
	"strings"

	liberr "github.com/nabbar/golib/errors"
)

const (
	// SchemeTCP is the scheme of plain TCP addresses.
	SchemeTCP = "tcp"
	// SchemeTLS is the scheme of TLS addresses.
	SchemeTLS = "tls"
	// SchemeUnix is the scheme of Unix domain socket addresses.
	SchemeUnix = "unix"

	// QueryHostname is the query parameter carrying the original hostname
	// through IP substitution.
	QueryHostname = "hostname"
)

// HostKind classifies the host part of an address.
type HostKind uint8

const (
	// HostName is a host that requires DNS resolution.
	HostName HostKind = iota
	// HostIPv4 is a literal IPv4 host.
	HostIPv4
	// HostIPv6 is a literal IPv6 host.
	HostIPv6
)

func (h HostKind) String() string {
	switch h {
	case HostIPv4:
		return "literal_ipv4"
	case HostIPv6:
		return "literal_ipv6"
	}

	return "hostname"
}

// Address is a parsed socket URI.
//
// Host is stored without surrounding brackets. RawQuery and Fragment keep
// their original encoding so re-serialization preserves them verbatim.
type Address struct {
	Scheme   string
	User     string
	Pass     string
	HasPass  bool
	Host     string
	Port     string
	Path     string
	RawQuery string
	Fragment string
}

// Parse parses the given raw URI, assuming defScheme when the scheme is
// absent. It fails with an invalid URI error when the host is absent or
// syntactically malformed.
func Parse(raw string, defScheme string) (*Address, liberr.Error) {
	if len(raw) < 1 {
		return nil, ErrorAddressEmpty.Error(nil)
	}

	if defScheme == "" {
		defScheme = SchemeTCP
	}

	if !strings.Contains(raw, "://") {
		raw = defScheme + "://" + raw
	}

	u, e := url.Parse(raw)
	if e != nil {
		ler := ErrorAddressInvalid.Errorf(raw)
		ler.Add(e)
		return nil, ler
	}

	a := &Address{
		Scheme:   u.Scheme,
		Host:     u.Hostname(),
		Port:     u.Port(),
		Path:     u.Path,
		RawQuery: u.RawQuery,
		Fragment: u.Fragment,
	}

	if u.User != nil {
		a.User = u.User.Username()
		a.Pass, a.HasPass = u.User.Password()
	}

	if a.Scheme == SchemeUnix {
		if len(a.Host) > 0 && len(a.Path) < 1 {
			// unix://relative.sock parses the path into the host part
			a.Path, a.Host = a.Host, ""
		}
		if len(a.Path) < 1 {
			return nil, ErrorAddressHostMissing.Errorf(raw)
		}
		return a, nil
	}

	if len(a.Host) < 1 {
		return nil, ErrorAddressHostMissing.Errorf(raw)
	} else if !isValidHost(a.Host) {
		return nil, ErrorAddressInvalid.Errorf(raw)
	}

	return a, nil
}
