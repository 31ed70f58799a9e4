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

// Package server is the unified server facade of the socket library.
//
// One call dispatches a listen URI to the right composition: tcp URIs and
// bare host:port forms bind a plaintext TCP server, a pure numeric input
// binds 127.0.0.1 on that port, tls URIs terminate TLS on top of the TCP
// server, unix URIs bind a Unix domain socket server and fd/<N> serves an
// inherited descriptor.
//
// Example:
//
//	srv, err := server.New("tcp://127.0.0.1:0", server.Config{}, nil)
//	if err != nil {
//	    return err
//	}
//
//	srv.OnConnection(func(con libsck.Connection) {
//	    con.OnData(func(p []byte) {
//	        con.Write(p)
//	    })
//	})
//
//	go srv.Listen(ctx)
package server

import (
	"strconv"
	"strings"

	liberr "github.com/nabbar/golib/errors"
	libprm "github.com/nabbar/golib/file/perm"
	liblog "github.com/nabbar/golib/logger"
	libsck "github.com/nabbar/socket"
	sckadr "github.com/nabbar/socket/address"
	srvsfd "github.com/nabbar/socket/server/fd"
	srvssl "github.com/nabbar/socket/server/secure"
	srvtcp "github.com/nabbar/socket/server/tcp"
	srvunx "github.com/nabbar/socket/server/unix"
	sckcfg "github.com/nabbar/socket/tlscfg"
)

// ConfigUnix tunes the unix scheme of the facade.
type ConfigUnix struct {
	// PermFile is the permission applied to the bound socket file.
	PermFile libprm.Perm `mapstructure:"perm_file" json:"perm_file" yaml:"perm_file" toml:"perm_file"`
}

// Config carries the per scheme options of the facade.
type Config struct {
	TLS  sckcfg.Options `mapstructure:"tls" json:"tls" yaml:"tls" toml:"tls"`
	Unix ConfigUnix     `mapstructure:"unix" json:"unix" yaml:"unix" toml:"unix"`
}

// New binds a server for the given listen URI with the given per scheme
// options. The logger function may be nil.
func New(uri string, cfg Config, log liblog.FuncLog) (libsck.Server, liberr.Error) {
	if len(uri) < 1 {
		return nil, ErrorInvalidURI.Errorf(uri)
	}

	// a pure numeric input is a port on the loopback interface
	if p, e := strconv.Atoi(uri); e == nil {
		if p < 0 || p > 65535 {
			return nil, ErrorInvalidURI.Errorf(uri)
		}
		uri = sckadr.SchemeTCP + "://127.0.0.1:" + strconv.Itoa(p)
	}

	if strings.HasPrefix(uri, srvsfd.URIPrefix) {
		return srvsfd.NewURI(uri, log)
	}

	adr, err := sckadr.Parse(uri, sckadr.SchemeTCP)

	if err != nil {
		return nil, err
	}

	switch adr.Scheme {
	case sckadr.SchemeTCP:
		return srvtcp.New(srvtcp.Config{Address: adr.HostPort()}, log)

	case sckadr.SchemeTLS:
		srv, er := srvtcp.New(srvtcp.Config{Address: adr.HostPort()}, log)
		if er != nil {
			return nil, er
		}

		sec, es := srvssl.New(srv, cfg.TLS, log)
		if es != nil {
			_ = srv.Close()
			return nil, es
		}

		return sec, nil

	case sckadr.SchemeUnix:
		return srvunx.New(srvunx.Config{
			Address:  adr.Path,
			PermFile: cfg.Unix.PermFile,
		}, log)
	}

	return nil, ErrorSchemeUnsupported.Errorf(adr.Scheme)
}
