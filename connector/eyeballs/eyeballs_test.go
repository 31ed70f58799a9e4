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

package eyeballs_test

import (
	"context"
	"fmt"
	"time"

	libsck "github.com/nabbar/socket"
	sckeyb "github.com/nabbar/socket/connector/eyeballs"
	sckres "github.com/nabbar/socket/resolver"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

const (
	testV6 = "2606:2800:220:1:248:1893:25c8:1946"
	testV4 = "93.184.216.34"
)

var _ = Describe("Happy Eyeballs Builder", func() {
	var (
		res *scriptResolver
		con *scriptConnector
		ctx context.Context
		cnl context.CancelFunc
	)

	BeforeEach(func() {
		res = newScriptResolver()
		con = newScriptConnector()
		ctx, cnl = context.WithTimeout(context.Background(), 10*time.Second)
	})

	AfterEach(func() {
		cnl()
	})

	Context("with a literal IP host", func() {
		It("should delegate without resolving", func() {
			bld := sckeyb.New(con, res, sckeyb.Config{}, nil)

			c, err := bld.Connect(ctx, "tcp://127.0.0.1:8080")
			Expect(err).ToNot(HaveOccurred())
			Expect(c).ToNot(BeNil())

			Expect(res.calls(sckres.IPv4)).To(BeZero())
			Expect(res.calls(sckres.IPv6)).To(BeZero())
			Expect(con.attempts()).To(Equal([]string{"tcp://127.0.0.1:8080"}))
		})
	})

	Context("with both families answering immediately", func() {
		It("should attempt the IPv6 candidate first and win on it", func() {
			res.ip6 = append(res.ip6, mustAddr(testV6))
			res.ip4 = append(res.ip4, mustAddr(testV4))

			bld := sckeyb.New(con, res, sckeyb.Config{}, nil)

			c, err := bld.Connect(ctx, "tcp://example.com:80")
			Expect(err).ToNot(HaveOccurred())
			Expect(c.RemoteAddr()).To(ContainSubstring("[" + testV6 + "]"))

			att := con.attempts()
			Expect(att).ToNot(BeEmpty())
			Expect(att[0]).To(ContainSubstring("[" + testV6 + "]:80"))
			Expect(att[0]).To(ContainSubstring("hostname=example.com"))
		})
	})

	Context("with IPv6 refused and IPv4 accepting", func() {
		It("should fall back to IPv4 with exactly two attempts", func() {
			res.ip6 = append(res.ip6, mustAddr(testV6))
			res.ip4 = append(res.ip4, mustAddr(testV4))
			con.out[testV6] = outcome{err: fmt.Errorf("connection refused")}

			bld := sckeyb.New(con, res, sckeyb.Config{}, nil)

			t0 := time.Now()
			c, err := bld.Connect(ctx, "tcp://example.com:80")
			Expect(err).ToNot(HaveOccurred())
			Expect(c.RemoteAddr()).To(ContainSubstring(testV4))

			Expect(con.attempts()).To(HaveLen(2))
			Expect(time.Since(t0)).To(BeNumerically(">=", sckeyb.ConnectionAttemptDelay))
		})
	})

	Context("with every candidate failing", func() {
		It("should pace three IPv6 attempts and reject after the last", func() {
			res.ip6 = append(res.ip6,
				mustAddr("2001:db8::1"),
				mustAddr("2001:db8::2"),
				mustAddr("2001:db8::3"),
			)
			con.out["2001:db8"] = outcome{err: fmt.Errorf("connection refused")}

			bld := sckeyb.New(con, res, sckeyb.Config{}, nil)

			t0 := time.Now()
			_, err := bld.Connect(ctx, "tcp://example.com:80")
			ela := time.Since(t0)

			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("IPv6"))
			Expect(err.Error()).To(ContainSubstring("connection refused"))
			Expect(con.attempts()).To(HaveLen(3))
			Expect(ela).To(BeNumerically(">=", 2*sckeyb.ConnectionAttemptDelay))
			Expect(ela).To(BeNumerically("<", 650*time.Millisecond))
		})

		It("should name both family labels when both fail differently", func() {
			res.ip6 = append(res.ip6, mustAddr(testV6))
			res.ip4 = append(res.ip4, mustAddr(testV4))
			con.out[testV6] = outcome{err: fmt.Errorf("no route to host")}
			con.out[testV4] = outcome{err: fmt.Errorf("connection refused")}

			bld := sckeyb.New(con, res, sckeyb.Config{}, nil)

			_, err := bld.Connect(ctx, "tcp://example.com:80")
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("IPv6"))
			Expect(err.Error()).To(ContainSubstring("IPv4"))
			Expect(err.Error()).To(ContainSubstring("no route to host"))
			Expect(err.Error()).To(ContainSubstring("connection refused"))
		})

		It("should collapse identical family errors to one text", func() {
			res.ip6 = append(res.ip6, mustAddr(testV6))
			res.ip4 = append(res.ip4, mustAddr(testV4))
			con.out[testV6] = outcome{err: fmt.Errorf("connection refused")}
			con.out[testV4] = outcome{err: fmt.Errorf("connection refused")}

			bld := sckeyb.New(con, res, sckeyb.Config{}, nil)

			_, err := bld.Connect(ctx, "tcp://example.com:80")
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).ToNot(ContainSubstring("Previous error"))
		})
	})

	Context("with no address in either family", func() {
		It("should reject naming the DNS phase", func() {
			bld := sckeyb.New(con, res, sckeyb.Config{}, nil)

			_, err := bld.Connect(ctx, "tcp://example.com:80")
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("DNS lookup"))
			Expect(con.attempts()).To(BeEmpty())
		})
	})

	Context("with the AAAA answer delayed", func() {
		It("should hold the A answer until the AAAA answer arrives", func() {
			res.ip6 = append(res.ip6, mustAddr(testV6))
			res.dl6 = 30 * time.Millisecond
			res.ip4 = append(res.ip4, mustAddr(testV4))

			bld := sckeyb.New(con, res, sckeyb.Config{}, nil)

			t0 := time.Now()
			c, err := bld.Connect(ctx, "tcp://example.com:80")
			Expect(err).ToNot(HaveOccurred())
			Expect(c).ToNot(BeNil())

			tms := con.attemptTimes()
			Expect(tms).ToNot(BeEmpty())
			Expect(tms[0].Sub(t0)).To(BeNumerically(">=", 25*time.Millisecond))

			att := con.attempts()
			Expect(att[0]).To(ContainSubstring("[" + testV6 + "]"))
		})

		It("should release the A answer after the resolution delay", func() {
			res.ip6 = append(res.ip6, mustAddr(testV6))
			res.dl6 = 200 * time.Millisecond
			res.ip4 = append(res.ip4, mustAddr(testV4))

			bld := sckeyb.New(con, res, sckeyb.Config{}, nil)

			t0 := time.Now()
			c, err := bld.Connect(ctx, "tcp://example.com:80")
			Expect(err).ToNot(HaveOccurred())
			Expect(c.RemoteAddr()).To(ContainSubstring(testV4))

			tms := con.attemptTimes()
			Expect(tms[0].Sub(t0)).To(BeNumerically(">=", sckeyb.ResolutionDelay))
			Expect(tms[0].Sub(t0)).To(BeNumerically("<", 150*time.Millisecond))
		})
	})

	Context("when racing attempts", func() {
		It("should keep the first success and close the late winner", func() {
			res.ip6 = append(res.ip6, mustAddr("2001:db8::1"), mustAddr("2001:db8::2"))
			con.out["2001:db8"] = outcome{dly: 400 * time.Millisecond, lat: true}

			bld := sckeyb.New(con, res, sckeyb.Config{}, nil)

			c, err := bld.Connect(ctx, "tcp://example.com:80")
			Expect(err).ToNot(HaveOccurred())
			Expect(c).ToNot(BeNil())

			// the slower sibling completes after the winner and must be closed
			Eventually(func() int {
				n := 0
				con.mu.Lock()
				defer con.mu.Unlock()
				for _, s := range con.conns {
					if s.cls.Load() {
						n++
					}
				}
				return n
			}, 2*time.Second, 10*time.Millisecond).Should(Equal(1))

			Expect(con.attempts()).To(HaveLen(2))
		})
	})

	Context("when cancelled", func() {
		It("should report the cancellation condition", func() {
			res.ip6 = append(res.ip6, mustAddr(testV6))
			res.ip4 = append(res.ip4, mustAddr(testV4))
			con.out[testV6] = outcome{dly: 5 * time.Second}
			con.out[testV4] = outcome{dly: 5 * time.Second}

			bld := sckeyb.New(con, res, sckeyb.Config{}, nil)

			sub, stop := context.WithCancel(ctx)

			go func() {
				time.Sleep(100 * time.Millisecond)
				stop()
			}()

			t0 := time.Now()
			_, err := bld.Connect(sub, "tcp://example.com:80")
			Expect(err).To(HaveOccurred())
			Expect(libsck.IsCancelled(err)).To(BeTrue())
			Expect(time.Since(t0)).To(BeNumerically("<", time.Second))
		})
	})

	Context("with the IPv6 pre-check negative", func() {
		It("should race IPv4 only without the resolution delay", func() {
			sckeyb.SetProbe(func(ctx context.Context) bool { return false })
			defer sckeyb.SetProbe(nil)

			res.ip4 = append(res.ip4, mustAddr(testV4))

			bld := sckeyb.New(con, res, sckeyb.Config{IPv6Precheck: true}, nil)

			t0 := time.Now()
			c, err := bld.Connect(ctx, "tcp://example.com:80")
			Expect(err).ToNot(HaveOccurred())
			Expect(c.RemoteAddr()).To(ContainSubstring(testV4))

			Expect(res.calls(sckres.IPv6)).To(BeZero())

			tms := con.attemptTimes()
			Expect(tms[0].Sub(t0)).To(BeNumerically("<", sckeyb.ResolutionDelay))
		})
	})
})
