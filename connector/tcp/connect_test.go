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

package tcp_test

import (
	"context"
	"time"

	scktcp "github.com/nabbar/socket/connector/tcp"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("TCP Connector", func() {
	var (
		ctx context.Context
		cnl context.CancelFunc
	)

	BeforeEach(func() {
		ctx, cnl = context.WithTimeout(context.Background(), 5*time.Second)
	})

	AfterEach(func() {
		cnl()
	})

	Context("connecting to a live listener", func() {
		It("should return an established connection with canonical addresses", func() {
			lst, adr := newListener()
			defer func() { _ = lst.Close() }()

			cnt := scktcp.New(scktcp.Config{}, nil)

			con, err := cnt.Connect(ctx, "tcp://"+adr)
			Expect(err).ToNot(HaveOccurred())
			defer func() { _ = con.Close() }()

			Expect(con.RemoteAddr()).To(Equal("tcp://" + adr))
			Expect(con.IsReadable()).To(BeTrue())
			Expect(con.IsWritable()).To(BeTrue())
		})

		It("should attach the hostname hint as server name", func() {
			lst, adr := newListener()
			defer func() { _ = lst.Close() }()

			cnt := scktcp.New(scktcp.Config{}, nil)

			con, err := cnt.Connect(ctx, "tcp://"+adr+"?hostname=example.com")
			Expect(err).ToNot(HaveOccurred())
			defer func() { _ = con.Close() }()

			Expect(con.ServerName()).To(Equal("example.com"))
		})
	})

	Context("with invalid input", func() {
		It("should reject a hostname", func() {
			cnt := scktcp.New(scktcp.Config{}, nil)

			_, err := cnt.Connect(ctx, "tcp://example.com:80")
			Expect(err).To(HaveOccurred())
		})

		It("should reject a missing port", func() {
			cnt := scktcp.New(scktcp.Config{}, nil)

			_, err := cnt.Connect(ctx, "tcp://127.0.0.1")
			Expect(err).To(HaveOccurred())
		})

		It("should reject a foreign scheme", func() {
			cnt := scktcp.New(scktcp.Config{}, nil)

			_, err := cnt.Connect(ctx, "unix:///tmp/demo.sock")
			Expect(err).To(HaveOccurred())
		})
	})

	Context("connecting to a dead port", func() {
		It("should reject with the connection failure naming the target", func() {
			lst, adr := newListener()
			_ = lst.Close()

			cnt := scktcp.New(scktcp.Config{}, nil)

			_, err := cnt.Connect(ctx, "tcp://"+adr)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("Connection to tcp://" + adr))
		})
	})
})
