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

package unix_test

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	sckunx "github.com/nabbar/socket/connector/unix"
)

// TestConnectLive tests connecting to a live unix domain socket.
func TestConnectLive(t *testing.T) {
	pth := filepath.Join(t.TempDir(), "live.sock")

	lst, err := net.Listen("unix", pth)
	if err != nil {
		t.Fatalf("cannot bind test socket: %v", err)
	}
	defer func() { _ = lst.Close() }()

	go func() {
		for {
			c, e := lst.Accept()
			if e != nil {
				return
			}
			_ = c
		}
	}()

	ctx, cnl := context.WithTimeout(context.Background(), 5*time.Second)
	defer cnl()

	cnt := sckunx.New(nil)

	con, err := cnt.Connect(ctx, "unix://"+pth)
	if err != nil {
		t.Fatalf("connect failed: %v", err)
	}
	defer func() { _ = con.Close() }()

	if con.RemoteAddr() != "unix://"+pth {
		t.Errorf("RemoteAddr = %q, want %q", con.RemoteAddr(), "unix://"+pth)
	}
}

// TestConnectMissing tests the specific error for an absent socket path.
func TestConnectMissing(t *testing.T) {
	pth := filepath.Join(t.TempDir(), "missing.sock")

	cnt := sckunx.New(nil)

	_, err := cnt.Connect(context.Background(), "unix://"+pth)
	if err == nil {
		t.Fatal("expected an error for a missing socket")
	}

	if !strings.Contains(err.Error(), "ENOENT") {
		t.Errorf("unexpected message: %q", err.Error())
	}
}

// TestConnectNotSocket tests the specific error for a regular file.
func TestConnectNotSocket(t *testing.T) {
	pth := filepath.Join(t.TempDir(), "plain.txt")

	if err := os.WriteFile(pth, []byte("not a socket"), 0o600); err != nil {
		t.Fatalf("cannot write test file: %v", err)
	}

	cnt := sckunx.New(nil)

	_, err := cnt.Connect(context.Background(), "unix://"+pth)
	if err == nil {
		t.Fatal("expected an error for a regular file")
	}

	if !strings.Contains(err.Error(), "ENOTSOCK") {
		t.Errorf("unexpected message: %q", err.Error())
	}
}

// TestConnectBadScheme tests rejection of a foreign scheme.
func TestConnectBadScheme(t *testing.T) {
	cnt := sckunx.New(nil)

	_, err := cnt.Connect(context.Background(), "tcp://127.0.0.1:80")
	if err == nil {
		t.Fatal("expected an error for a tcp uri")
	}
}
