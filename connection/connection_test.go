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

package connection_test

import (
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	libsck "github.com/nabbar/socket"
	sckcon "github.com/nabbar/socket/connection"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Connection", func() {
	Context("addresses", func() {
		It("should report canonical tcp addresses and none once closed", func() {
			c, s := tcpPair()
			defer func() { _ = s.Close() }()

			con := sckcon.New(c, "tcp", nil)

			Expect(con.RemoteAddr()).To(HavePrefix("tcp://127.0.0.1:"))
			Expect(con.LocalAddr()).To(HavePrefix("tcp://127.0.0.1:"))

			Expect(con.Close()).To(Succeed())
			Expect(con.RemoteAddr()).To(BeEmpty())
			Expect(con.LocalAddr()).To(BeEmpty())
		})
	})

	Context("reading", func() {
		It("should deliver data events once a listener is attached", func() {
			c, s := tcpPair()
			defer func() { _ = s.Close() }()

			con := sckcon.New(c, "tcp", nil)
			defer func() { _ = con.Close() }()

			var mu sync.Mutex
			var got strings.Builder

			con.OnData(func(p []byte) {
				mu.Lock()
				got.Write(p)
				mu.Unlock()
			})

			_, err := s.Write([]byte("hello"))
			Expect(err).ToNot(HaveOccurred())

			Eventually(func() string {
				mu.Lock()
				defer mu.Unlock()
				return got.String()
			}, time.Second, 5*time.Millisecond).Should(Equal("hello"))
		})

		It("should stop delivering while paused and catch up on resume", func() {
			c, s := tcpPair()
			defer func() { _ = s.Close() }()

			con := sckcon.New(c, "tcp", nil)
			defer func() { _ = con.Close() }()

			var cnt atomic.Int64

			con.OnData(func(p []byte) {
				cnt.Add(int64(len(p)))
			})

			con.Pause()
			time.Sleep(20 * time.Millisecond)

			_, err := s.Write([]byte("abc"))
			Expect(err).ToNot(HaveOccurred())

			Consistently(func() int64 {
				return cnt.Load()
			}, 100*time.Millisecond, 10*time.Millisecond).Should(BeZero())

			con.Resume()

			Eventually(func() int64 {
				return cnt.Load()
			}, time.Second, 5*time.Millisecond).Should(Equal(int64(3)))
		})

		It("should emit end then close on remote end of stream", func() {
			c, s := tcpPair()

			con := sckcon.New(c, "tcp", nil)

			var end, cls atomic.Bool

			con.OnData(func(p []byte) {})
			con.OnEnd(func() { end.Store(true) })
			con.OnClose(func() { cls.Store(true) })

			_ = s.Close()

			Eventually(end.Load, time.Second, 5*time.Millisecond).Should(BeTrue())
			Eventually(cls.Load, time.Second, 5*time.Millisecond).Should(BeTrue())
			Expect(con.IsReadable()).To(BeFalse())
		})
	})

	Context("writing", func() {
		It("should flush queued bytes to the peer", func() {
			c, s := tcpPair()
			defer func() { _ = s.Close() }()

			con := sckcon.New(c, "tcp", nil)
			defer func() { _ = con.Close() }()

			Expect(con.Write([]byte("ping"))).To(BeTrue())

			buf := make([]byte, 4)
			_, err := io.ReadFull(s, buf)
			Expect(err).ToNot(HaveOccurred())
			Expect(string(buf)).To(Equal("ping"))
		})

		It("should close the write half after End flushed", func() {
			c, s := tcpPair()
			defer func() { _ = s.Close() }()

			con := sckcon.New(c, "tcp", nil)

			con.End([]byte("bye"))

			all, err := io.ReadAll(s)
			Expect(err).ToNot(HaveOccurred())
			Expect(string(all)).To(Equal("bye"))

			Eventually(con.IsWritable, time.Second, 5*time.Millisecond).Should(BeFalse())
		})

		It("should refuse writes after End", func() {
			c, s := tcpPair()
			defer func() { _ = s.Close() }()

			con := sckcon.New(c, "tcp", nil)
			defer func() { _ = con.Close() }()

			con.End()
			Expect(con.Write([]byte("late"))).To(BeFalse())
		})
	})

	Context("closing", func() {
		It("should be idempotent and emit close once", func() {
			c, s := tcpPair()
			defer func() { _ = s.Close() }()

			con := sckcon.New(c, "tcp", nil)

			var cnt atomic.Int64
			con.OnClose(func() { cnt.Add(1) })

			Expect(con.Close()).To(Succeed())
			Expect(con.Close()).To(Succeed())

			Consistently(func() int64 {
				return cnt.Load()
			}, 50*time.Millisecond, 10*time.Millisecond).Should(Equal(int64(1)))

			Expect(con.IsReadable()).To(BeFalse())
			Expect(con.IsWritable()).To(BeFalse())
		})
	})

	Context("server name hint", func() {
		It("should keep the attached hostname", func() {
			c, s := tcpPair()
			defer func() { _ = s.Close() }()

			con := sckcon.New(c, "tcp", nil)
			defer func() { _ = con.Close() }()

			Expect(con.ServerName()).To(BeEmpty())
			con.SetServerName("example.com")
			Expect(con.ServerName()).To(Equal("example.com"))
		})
	})

	Context("piping", func() {
		It("should forward data and end to the destination", func() {
			c1, s1 := tcpPair()
			c2, s2 := tcpPair()
			defer func() { _ = s2.Close() }()

			src := sckcon.New(c1, "tcp", nil)
			dst := sckcon.New(c2, "tcp", nil)

			var piped atomic.Bool
			src.OnPipe(func(d libsck.Connection) { piped.Store(true) })

			src.Pipe(dst)
			Expect(piped.Load()).To(BeTrue())

			_, err := s1.Write([]byte("flow"))
			Expect(err).ToNot(HaveOccurred())
			_ = s1.Close()

			buf := make([]byte, 4)
			_, err = io.ReadFull(s2, buf)
			Expect(err).ToNot(HaveOccurred())
			Expect(string(buf)).To(Equal("flow"))
		})
	})
})
