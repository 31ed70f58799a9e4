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

// Package fd is the inherited descriptor server.
//
// It serves a file descriptor already bound and listened on by a
// supervising process, given as a number or as an fd/<N> URI. The
// descriptor must refer to a listening TCP or Unix stream socket: a
// connected endpoint or a datagram socket is rejected. The reported
// address and the scheme of accepted connections follow the socket
// family of the descriptor.
package fd

import (
	"net"
	"os"
	"strconv"
	"strings"
	"syscall"

	liberr "github.com/nabbar/golib/errors"
	liblog "github.com/nabbar/golib/logger"
	libsck "github.com/nabbar/socket"
	sckadr "github.com/nabbar/socket/address"
	sckevt "github.com/nabbar/socket/event"
)

// URIPrefix is the scheme-like prefix of inherited descriptor URIs.
const URIPrefix = "fd/"

// ParseURI extracts the descriptor number of an fd/<N> URI.
func ParseURI(uri string) (uintptr, liberr.Error) {
	if !strings.HasPrefix(uri, URIPrefix) {
		return 0, ErrorInvalidURI.Errorf(uri)
	}

	n, e := strconv.Atoi(strings.TrimPrefix(uri, URIPrefix))
	if e != nil || n < 0 {
		return 0, ErrorInvalidURI.Errorf(uri)
	}

	return uintptr(n), nil
}

// NewURI builds the server for an fd/<N> URI.
func NewURI(uri string, log liblog.FuncLog) (libsck.Server, liberr.Error) {
	n, err := ParseURI(uri)

	if err != nil {
		return nil, err
	}

	return New(n, log)
}

// New builds the server for the given inherited descriptor. The logger
// function may be nil.
func New(fd uintptr, log liblog.FuncLog) (libsck.Server, liberr.Error) {
	if err := checkListening(fd); err != nil {
		return nil, err
	}

	fil := os.NewFile(fd, "listener")
	if fil == nil {
		return nil, ErrorInvalidDescriptor.Errorf(int(fd))
	}

	lst, e := net.FileListener(fil)

	// FileListener duplicates the descriptor, the original can go
	_ = fil.Close()

	if e != nil {
		ler := ErrorInvalidDescriptor.Errorf(int(fd))
		ler.Add(e)
		return nil, ler
	}

	sch := sckadr.SchemeTCP
	if _, k := lst.Addr().(*net.UnixAddr); k {
		sch = sckadr.SchemeUnix
	}

	return &sfd{
		lst: lst,
		lgr: log,
		sch: sch,
		don: make(chan struct{}),
		evc: sckevt.New[libsck.Connection](),
		eve: sckevt.New[error](),
		ecl: sckevt.New[struct{}](),
	}, nil
}

// checkListening verifies the descriptor refers to a listening socket,
// not a connected endpoint.
func checkListening(fd uintptr) liberr.Error {
	v, e := syscall.GetsockoptInt(int(fd), syscall.SOL_SOCKET, syscall.SO_ACCEPTCONN)

	if e != nil {
		ler := ErrorInvalidDescriptor.Errorf(int(fd))
		ler.Add(e)
		return ler
	}

	if v == 0 {
		return ErrorNotListening.Errorf(int(fd))
	}

	return nil
}
