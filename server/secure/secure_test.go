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

package secure_test

import (
	"context"
	"crypto/tls"
	"io"
	"net"
	"strings"
	"sync/atomic"
	"time"

	libsck "github.com/nabbar/socket"
	srvsec "github.com/nabbar/socket/server/secure"
	srvtcp "github.com/nabbar/socket/server/tcp"
	sckcfg "github.com/nabbar/socket/tlscfg"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Secure Server", func() {
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

	newSecure := func() (libsck.Server, string) {
		base, err := srvtcp.New(srvtcp.Config{Address: "127.0.0.1:0"}, nil)
		Expect(err).ToNot(HaveOccurred())

		srv, er := srvsec.NewWithTLS(base, &tls.Config{
			Certificates: []tls.Certificate{generateCertificate()},
		}, nil)
		Expect(er).ToNot(HaveOccurred())

		go func() {
			defer GinkgoRecover()
			_ = srv.Listen(c)
		}()

		Eventually(srv.IsRunning, 2*time.Second, 10*time.Millisecond).Should(BeTrue())

		return srv, strings.TrimPrefix(srv.Address(), "tls://")
	}

	Context("with a TLS client", func() {
		It("should terminate TLS and echo application bytes", func() {
			srv, adr := newSecure()
			defer func() { _ = srv.Close() }()

			Expect(srv.Address()).To(HavePrefix("tls://"))

			srv.OnConnection(func(con libsck.Connection) {
				con.OnData(func(p []byte) {
					con.Write(p)
				})
			})

			cli, err := tls.Dial("tcp", adr, &tls.Config{InsecureSkipVerify: true})
			Expect(err).ToNot(HaveOccurred())
			defer func() { _ = cli.Close() }()

			msg := []byte("secured")
			_, err = cli.Write(msg)
			Expect(err).ToNot(HaveOccurred())

			buf := make([]byte, len(msg))
			_, err = io.ReadFull(cli, buf)
			Expect(err).ToNot(HaveOccurred())
			Expect(buf).To(Equal(msg))
		})
	})

	Context("with a plaintext client", func() {
		It("should emit an encryption error and close only that connection", func() {
			srv, adr := newSecure()
			defer func() { _ = srv.Close() }()

			var (
				fld atomic.Int64
				acc atomic.Int64
			)

			srv.OnConnection(func(con libsck.Connection) {
				acc.Add(1)
				con.OnData(func(p []byte) {
					con.Write(p)
				})
			})

			srv.OnError(func(e error) {
				if strings.Contains(e.Error(), "TLS handshake") {
					fld.Add(1)
				}
			})

			raw, err := net.DialTimeout("tcp", adr, time.Second)
			Expect(err).ToNot(HaveOccurred())

			_, _ = raw.Write([]byte("this is not a client hello\r\n"))
			_ = raw.Close()

			Eventually(fld.Load, 5*time.Second, 20*time.Millisecond).Should(Equal(int64(1)))
			Expect(acc.Load()).To(BeZero())

			// the server keeps accepting after the failed upgrade
			cli, er := tls.Dial("tcp", adr, &tls.Config{InsecureSkipVerify: true})
			Expect(er).ToNot(HaveOccurred())
			defer func() { _ = cli.Close() }()

			Eventually(acc.Load, 2*time.Second, 10*time.Millisecond).Should(Equal(int64(1)))
		})
	})

	Context("without a certificate", func() {
		It("should refuse construction", func() {
			base, err := srvtcp.New(srvtcp.Config{Address: "127.0.0.1:0"}, nil)
			Expect(err).ToNot(HaveOccurred())
			defer func() { _ = base.Close() }()

			_, er := srvsec.New(base, sckcfg.Options{}, nil)
			Expect(er).To(HaveOccurred())
		})
	})
})
