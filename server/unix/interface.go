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

// Package unix is the plaintext Unix domain socket server.
//
// Before binding, a socket file already present at the path is probed
// with a short-timeout client connect: a live peer means the address is
// in use, a dead one is a stale file and is unlinked. The listener binds
// at construction, optionally applying a file permission to the socket
// file; closing the server removes the socket file, with removal
// failures silenced.
package unix

import (
	"errors"
	"net"
	"os"
	"syscall"
	"time"

	liberr "github.com/nabbar/golib/errors"
	libprm "github.com/nabbar/golib/file/perm"
	liblog "github.com/nabbar/golib/logger"
	libptc "github.com/nabbar/golib/network/protocol"
	libsck "github.com/nabbar/socket"
	sckevt "github.com/nabbar/socket/event"
)

const probeTimeout = 100 * time.Millisecond

// Config is the Unix domain socket server configuration.
type Config struct {
	// Address is the socket file path to bind.
	Address string `mapstructure:"address" json:"address" yaml:"address" toml:"address" validate:"required"`

	// PermFile is the permission applied to the socket file after bind,
	// zero keeping the system default.
	PermFile libprm.Perm `mapstructure:"perm_file" json:"perm_file" yaml:"perm_file" toml:"perm_file"`
}

// New binds the given socket path and returns the server. The logger
// function may be nil.
func New(cfg Config, log liblog.FuncLog) (libsck.Server, liberr.Error) {
	if len(cfg.Address) < 1 {
		return nil, ErrorInvalidAddress.Errorf(cfg.Address)
	}

	if err := probe(cfg.Address); err != nil {
		return nil, err
	}

	lst, e := net.Listen(libptc.NetworkUnix.Code(), cfg.Address)

	if e != nil {
		if errors.Is(e, syscall.EADDRINUSE) {
			ler := ErrorAddressInUse.Errorf(cfg.Address)
			ler.Add(e)
			return nil, ler
		}

		ler := ErrorBindFailed.Errorf(cfg.Address)
		ler.Add(e)
		return nil, ler
	}

	if cfg.PermFile > 0 {
		// socket file permission failures are not fatal to the bind
		_ = os.Chmod(cfg.Address, cfg.PermFile.FileMode())
	}

	return &sux{
		lst: lst,
		pth: cfg.Address,
		lgr: log,
		don: make(chan struct{}),
		evc: sckevt.New[libsck.Connection](),
		eve: sckevt.New[error](),
		ecl: sckevt.New[struct{}](),
	}, nil
}

// probe rejects a path whose socket file answers a connect, and unlinks
// a stale file left behind by a dead server.
func probe(path string) liberr.Error {
	inf, e := os.Stat(path)

	if e != nil {
		if os.IsNotExist(e) {
			return nil
		}
		ler := ErrorInvalidAddress.Errorf(path)
		ler.Add(e)
		return ler
	}

	if inf.Mode()&os.ModeSocket == 0 {
		return ErrorNotSocket.Errorf(path)
	}

	if con, er := net.DialTimeout(libptc.NetworkUnix.Code(), path, probeTimeout); er == nil {
		_ = con.Close()
		return ErrorAddressInUse.Errorf(path)
	}

	if er := os.Remove(path); er != nil {
		ler := ErrorBindFailed.Errorf(path)
		ler.Add(er)
		return ler
	}

	return nil
}
