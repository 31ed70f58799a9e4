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
	"sync/atomic"
	"testing"
	"time"

	libsck "github.com/nabbar/socket"
	srvunx "github.com/nabbar/socket/server/unix"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestSocketServerUnix(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Socket Server Unix Suite")
}

func tmpSock() string {
	dir, err := os.MkdirTemp("", "sck-unix-*")
	Expect(err).ToNot(HaveOccurred())

	DeferCleanup(func() {
		_ = os.RemoveAll(dir)
	})

	return filepath.Join(dir, "srv.sock")
}

var _ = Describe("Unix Server", func() {
	var (
		c   context.Context
		cnl context.CancelFunc
	)

	BeforeEach(func() {
		c, cnl = context.WithTimeout(context.Background(), 30*time.Second)
	})

	AfterEach(func() {
		cnl()
	})

	Context("binding", func() {
		It("should bind, accept and remove the socket file on close", func() {
			pth := tmpSock()

			srv, err := srvunx.New(srvunx.Config{Address: pth}, nil)
			Expect(err).ToNot(HaveOccurred())
			Expect(srv.Address()).To(Equal("unix://" + pth))

			go func() {
				defer GinkgoRecover()
				_ = srv.Listen(c)
			}()

			Eventually(srv.IsRunning, 2*time.Second, 10*time.Millisecond).Should(BeTrue())

			var cnt atomic.Int64
			srv.OnConnection(func(con libsck.Connection) {
				cnt.Add(1)
			})

			cli, err := net.Dial("unix", pth)
			Expect(err).ToNot(HaveOccurred())
			defer func() { _ = cli.Close() }()

			Eventually(cnt.Load, 2*time.Second, 10*time.Millisecond).Should(Equal(int64(1)))

			Expect(srv.Close()).To(Succeed())

			Eventually(func() bool {
				_, e := os.Stat(pth)
				return os.IsNotExist(e)
			}, 2*time.Second, 10*time.Millisecond).Should(BeTrue())
		})

		It("should unlink a stale socket file before binding", func() {
			pth := tmpSock()

			old, err := net.Listen("unix", pth)
			Expect(err).ToNot(HaveOccurred())

			// leave a stale file behind without unlinking it
			old.(*net.UnixListener).SetUnlinkOnClose(false)
			Expect(old.Close()).To(Succeed())

			_, e := os.Stat(pth)
			Expect(e).ToNot(HaveOccurred())

			srv, er := srvunx.New(srvunx.Config{Address: pth}, nil)
			Expect(er).ToNot(HaveOccurred())
			defer func() { _ = srv.Close() }()

			Expect(srv.Address()).To(Equal("unix://" + pth))
		})

		It("should reject a path served by a live server", func() {
			pth := tmpSock()

			live, err := net.Listen("unix", pth)
			Expect(err).ToNot(HaveOccurred())
			defer func() { _ = live.Close() }()

			go func() {
				for {
					cn, e := live.Accept()
					if e != nil {
						return
					}
					_ = cn.Close()
				}
			}()

			_, er := srvunx.New(srvunx.Config{Address: pth}, nil)
			Expect(er).To(HaveOccurred())
			Expect(er.Error()).To(ContainSubstring("EADDRINUSE"))
		})

		It("should reject a path occupied by a regular file", func() {
			pth := tmpSock()
			Expect(os.WriteFile(pth, []byte("plain"), 0o600)).To(Succeed())

			_, err := srvunx.New(srvunx.Config{Address: pth}, nil)
			Expect(err).To(HaveOccurred())
		})

		It("should apply the configured socket file permission", func() {
			pth := tmpSock()

			srv, err := srvunx.New(srvunx.Config{Address: pth, PermFile: 0600}, nil)
			Expect(err).ToNot(HaveOccurred())
			defer func() { _ = srv.Close() }()

			inf, e := os.Stat(pth)
			Expect(e).ToNot(HaveOccurred())
			Expect(inf.Mode().Perm()).To(Equal(os.FileMode(0o600)))
		})
	})
})
