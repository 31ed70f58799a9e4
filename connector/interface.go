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

// Package connector is the unified client facade of the socket library.
//
// The facade composes the decorator stack once at construction and
// dispatches each Connect by URI scheme: tcp URIs run DNS resolution with
// Happy Eyeballs racing (or plain resolution when racing is disabled)
// around the TCP leaf, tls URIs add the TLS upgrade on top, unix URIs go
// to the Unix leaf. A connect timeout bounds every scheme when enabled.
//
// Key Features:
//   - Scheme dispatch table built once, no mutation after construction
//   - Typed configuration plus an option map entry point rejecting
//     unknown keys
//   - Prebuilt connector and resolver injection for composition and tests
//
// Example:
//
//	cnt, err := connector.New(connector.Config{}, nil)
//	if err != nil {
//	    return err
//	}
//
//	con, err := cnt.Connect(ctx, "tls://example.com:443")
package connector

import (
	"time"

	libdur "github.com/nabbar/golib/duration"
	liberr "github.com/nabbar/golib/errors"
	liblog "github.com/nabbar/golib/logger"
	libsck "github.com/nabbar/socket"
	scktcp "github.com/nabbar/socket/connector/tcp"
	sckres "github.com/nabbar/socket/resolver"
	sckcfg "github.com/nabbar/socket/tlscfg"
)

// DefaultTimeout is the connect time bound applied when the timeout
// option asks for the system default.
const DefaultTimeout = libdur.Duration(60 * time.Second)

// ConfigTCP toggles and tunes the TCP leaf.
type ConfigTCP struct {
	Disabled      bool `mapstructure:"disabled" json:"disabled" yaml:"disabled" toml:"disabled"`
	scktcp.Config `mapstructure:",squash" json:",inline" yaml:",inline" toml:",inline"`
}

// ConfigTLS toggles and tunes the TLS decorator.
type ConfigTLS struct {
	Disabled       bool `mapstructure:"disabled" json:"disabled" yaml:"disabled" toml:"disabled"`
	sckcfg.Options `mapstructure:",squash" json:",inline" yaml:",inline" toml:",inline"`
}

// ConfigUnix toggles the Unix domain socket leaf.
type ConfigUnix struct {
	Disabled bool `mapstructure:"disabled" json:"disabled" yaml:"disabled" toml:"disabled"`
}

// ConfigDNS toggles and tunes hostname resolution. With nameservers set,
// lookups exchange directly with them instead of the system resolver.
type ConfigDNS struct {
	Disabled    bool            `mapstructure:"disabled" json:"disabled" yaml:"disabled" toml:"disabled"`
	Nameservers []string        `mapstructure:"nameservers" json:"nameservers" yaml:"nameservers" toml:"nameservers"`
	Timeout     libdur.Duration `mapstructure:"timeout" json:"timeout" yaml:"timeout" toml:"timeout"`
}

// Config is the facade configuration. The zero value composes the full
// default stack: TCP, TLS and Unix enabled, system DNS with Happy
// Eyeballs racing, the default connect timeout, no IPv6 pre-check.
type Config struct {
	TCP  ConfigTCP  `mapstructure:"tcp" json:"tcp" yaml:"tcp" toml:"tcp"`
	TLS  ConfigTLS  `mapstructure:"tls" json:"tls" yaml:"tls" toml:"tls"`
	Unix ConfigUnix `mapstructure:"unix" json:"unix" yaml:"unix" toml:"unix"`
	DNS  ConfigDNS  `mapstructure:"dns" json:"dns" yaml:"dns" toml:"dns"`

	// Timeout bounds the total connect time. Nil applies DefaultTimeout,
	// a non positive value disables the bound.
	Timeout *libdur.Duration `mapstructure:"timeout" json:"timeout" yaml:"timeout" toml:"timeout"`

	// HappyEyeballs toggles dual-stack racing, enabled when nil.
	HappyEyeballs *bool `mapstructure:"happy_eyeballs" json:"happy_eyeballs" yaml:"happy_eyeballs" toml:"happy_eyeballs"`

	// IPv6Precheck probes IPv6 routability before racing.
	IPv6Precheck bool `mapstructure:"ipv6_precheck" json:"ipv6_precheck" yaml:"ipv6_precheck" toml:"ipv6_precheck"`
}

// Option injects prebuilt parts into the facade.
type Option func(o *cnt)

// WithResolver replaces the resolver built from the DNS options.
func WithResolver(res sckres.Resolver) Option {
	return func(o *cnt) {
		o.res = res
	}
}

// WithConnector replaces the whole stack of one scheme with a prebuilt
// connector.
func WithConnector(scheme string, con libsck.Connector) Option {
	return func(o *cnt) {
		o.ovr[scheme] = con
	}
}

// New composes the decorator stack described by the configuration and
// returns the facade. The logger function may be nil.
func New(cfg Config, log liblog.FuncLog, opt ...Option) (libsck.Connector, liberr.Error) {
	if err := cfg.TCP.Validate(); err != nil {
		return nil, err
	}

	o := &cnt{
		cfg: cfg,
		lgr: log,
		dsp: make(map[string]libsck.Connector),
		ovr: make(map[string]libsck.Connector),
	}

	for _, f := range opt {
		f(o)
	}

	o.build()

	return o, nil
}
