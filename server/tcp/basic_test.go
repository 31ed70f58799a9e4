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

// basic_test.go provides fundamental operational tests for the TCP
// server: lifecycle, accept flow, echo through the evented connection,
// pause and resume, and close idempotence.
package tcp_test

import (
	"context"
	"io"
	"strings"
	"sync/atomic"
	"time"

	libsck "github.com/nabbar/socket"
	srvtcp "github.com/nabbar/socket/server/tcp"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("TCP Server Basic Operations", func() {
	var (
		srv libsck.Server
		c   context.Context
		cnl context.CancelFunc
	)

	BeforeEach(func() {
		var err error
		srv, err = srvtcp.New(srvtcp.Config{Address: "127.0.0.1:0"}, nil)
		Expect(err).ToNot(HaveOccurred())

		c, cnl = context.WithCancel(globalCtx)
	})

	AfterEach(func() {
		if srv != nil {
			_ = srv.Close()
		}
		if cnl != nil {
			cnl()
		}
	})

	Context("binding", func() {
		It("should report the real bound port for port zero", func() {
			adr := srv.Address()
			Expect(adr).To(HavePrefix("tcp://127.0.0.1:"))
			Expect(adr).ToNot(HaveSuffix(":0"))
		})

		It("should reject a second bind of the same address", func() {
			adr := strings.TrimPrefix(srv.Address(), "tcp://")

			_, err := srvtcp.New(srvtcp.Config{Address: adr}, nil)
			Expect(err).To(HaveOccurred())
		})

		It("should reject an invalid address", func() {
			_, err := srvtcp.New(srvtcp.Config{Address: "not an address"}, nil)
			Expect(err).To(HaveOccurred())
		})
	})

	Context("starting and stopping", func() {
		It("should start successfully", func() {
			startServerInBackground(c, srv)
			waitForServer(srv, 2*time.Second)

			Expect(srv.IsRunning()).To(BeTrue())
			Expect(srv.IsGone()).To(BeFalse())
		})

		It("should accept connections when running", func() {
			startServerInBackground(c, srv)
			waitForServer(srv, 2*time.Second)

			var cnt atomic.Int64
			srv.OnConnection(func(con libsck.Connection) {
				cnt.Add(1)
			})

			con := connectToServer(srv)
			defer func() { _ = con.Close() }()

			Eventually(cnt.Load, 2*time.Second, 10*time.Millisecond).Should(Equal(int64(1)))
			Eventually(srv.OpenConnections, 2*time.Second, 10*time.Millisecond).Should(Equal(int64(1)))
		})

		It("should echo through the evented connection", func() {
			startServerInBackground(c, srv)
			waitForServer(srv, 2*time.Second)

			srv.OnConnection(func(con libsck.Connection) {
				con.OnData(func(p []byte) {
					con.Write(p)
				})
			})

			cli := connectToServer(srv)
			defer func() { _ = cli.Close() }()

			msg := []byte("Hello, World!")
			_, err := cli.Write(msg)
			Expect(err).ToNot(HaveOccurred())

			buf := make([]byte, len(msg))
			_, err = io.ReadFull(cli, buf)
			Expect(err).ToNot(HaveOccurred())
			Expect(buf).To(Equal(msg))
		})

		It("should stop with context cancellation", func() {
			tct, tcn := context.WithCancel(c)
			startServerInBackground(tct, srv)
			waitForServer(srv, 2*time.Second)

			tcn()

			waitForServerStopped(srv, 2*time.Second)
			Expect(srv.IsRunning()).To(BeFalse())
		})

		It("should refuse a second concurrent accept loop", func() {
			startServerInBackground(c, srv)
			waitForServer(srv, 2*time.Second)

			Expect(srv.Listen(c)).To(HaveOccurred())
		})
	})

	Context("pausing", func() {
		It("should stop accepting while paused and resume afterwards", func() {
			startServerInBackground(c, srv)
			waitForServer(srv, 2*time.Second)

			var cnt atomic.Int64
			srv.OnConnection(func(con libsck.Connection) {
				cnt.Add(1)
			})

			srv.Pause()
			time.Sleep(300 * time.Millisecond)

			con := connectToServer(srv)
			defer func() { _ = con.Close() }()

			Consistently(cnt.Load, 400*time.Millisecond, 20*time.Millisecond).Should(BeZero())

			srv.Resume()

			Eventually(cnt.Load, 2*time.Second, 10*time.Millisecond).Should(Equal(int64(1)))
		})
	})

	Context("closing", func() {
		It("should be idempotent and drop the address", func() {
			startServerInBackground(c, srv)
			waitForServer(srv, 2*time.Second)

			Expect(srv.Close()).To(Succeed())
			Expect(srv.Close()).To(Succeed())
			Expect(srv.IsGone()).To(BeTrue())
			Expect(srv.Address()).To(BeEmpty())

			waitForServerStopped(srv, 2*time.Second)

			select {
			case <-srv.Done():
			case <-time.After(2 * time.Second):
				Fail("done channel not closed")
			}
		})
	})
})
