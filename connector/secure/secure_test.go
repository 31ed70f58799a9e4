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
	"net"
	"strings"
	"sync"
	"time"

	scksec "github.com/nabbar/socket/connector/secure"
	scktcp "github.com/nabbar/socket/connector/tcp"
	sckcfg "github.com/nabbar/socket/tlscfg"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Secure Connector", func() {
	var (
		ctx context.Context
		cnl context.CancelFunc
	)

	BeforeEach(func() {
		ctx, cnl = context.WithTimeout(context.Background(), 10*time.Second)
	})

	AfterEach(func() {
		cnl()
	})

	Context("against a live TLS listener", func() {
		It("should upgrade and advertise the tls scheme", func() {
			lst, adr := newTLSListener()
			defer func() { _ = lst.Close() }()

			cnt := scksec.New(
				scktcp.New(scktcp.Config{}, nil),
				sckcfg.Options{AllowSelfSigned: true},
				nil,
			)

			con, err := cnt.Connect(ctx, "tls://"+adr)
			Expect(err).ToNot(HaveOccurred())
			defer func() { _ = con.Close() }()

			Expect(con.RemoteAddr()).To(Equal("tls://" + adr))
		})

		It("should carry application bytes after the upgrade", func() {
			lst, adr := newTLSListener()
			defer func() { _ = lst.Close() }()

			cnt := scksec.New(
				scktcp.New(scktcp.Config{}, nil),
				sckcfg.Options{AllowSelfSigned: true},
				nil,
			)

			con, err := cnt.Connect(ctx, "tls://"+adr)
			Expect(err).ToNot(HaveOccurred())
			defer func() { _ = con.Close() }()

			var mu sync.Mutex
			var got strings.Builder

			con.OnData(func(p []byte) {
				mu.Lock()
				got.Write(p)
				mu.Unlock()
			})

			Expect(con.Write([]byte("over tls"))).To(BeTrue())

			Eventually(func() string {
				mu.Lock()
				defer mu.Unlock()
				return got.String()
			}, 2*time.Second, 10*time.Millisecond).Should(Equal("over tls"))
		})

		It("should fail peer verification against a self signed peer by default", func() {
			lst, adr := newTLSListener()
			defer func() { _ = lst.Close() }()

			cnt := scksec.New(
				scktcp.New(scktcp.Config{}, nil),
				sckcfg.Options{},
				nil,
			)

			_, err := cnt.Connect(ctx, "tls://"+adr)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("TLS handshake"))
		})
	})

	Context("against a plaintext peer closing at once", func() {
		It("should reject with the handshake failure naming the target", func() {
			lst, err := net.Listen("tcp", "127.0.0.1:0")
			Expect(err).ToNot(HaveOccurred())
			defer func() { _ = lst.Close() }()

			go func() {
				for {
					c, e := lst.Accept()
					if e != nil {
						return
					}
					_ = c.Close()
				}
			}()

			cnt := scksec.New(
				scktcp.New(scktcp.Config{}, nil),
				sckcfg.Options{AllowSelfSigned: true},
				nil,
			)

			_, er := cnt.Connect(ctx, "tls://"+lst.Addr().String())
			Expect(er).To(HaveOccurred())
			Expect(er.Error()).To(ContainSubstring("tls://" + lst.Addr().String()))
		})
	})

	Context("with a dead target", func() {
		It("should wrap the plaintext failure naming the tls uri", func() {
			lst, err := net.Listen("tcp", "127.0.0.1:0")
			Expect(err).ToNot(HaveOccurred())

			adr := lst.Addr().String()
			_ = lst.Close()

			cnt := scksec.New(
				scktcp.New(scktcp.Config{}, nil),
				sckcfg.Options{AllowSelfSigned: true},
				nil,
			)

			_, er := cnt.Connect(ctx, "tls://"+adr)
			Expect(er).To(HaveOccurred())
			Expect(er.Error()).To(ContainSubstring("Connection to tls://" + adr))
		})
	})
})
