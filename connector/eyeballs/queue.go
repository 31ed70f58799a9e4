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

package eyeballs

import (
	"math/rand"
	"net/netip"

	sckres "github.com/nabbar/socket/resolver"
)

// batch shuffles the answer of one family into connection candidates.
// Shuffling within the batch spreads load across a round robin answer
// set without reordering across families.
func batch(ips []netip.Addr, fam sckres.Family) []target {
	var r = make([]target, 0, len(ips))

	for _, ip := range ips {
		r = append(r, target{ip: ip, fam: fam})
	}

	rand.Shuffle(len(r), func(i, j int) {
		r[i], r[j] = r[j], r[i]
	})

	return r
}

// interleave merges the incoming batch with the already queued candidates
// by alternating entries, starting with the batch that just arrived: the
// first incoming, the first queued, the second incoming, and so on. One
// failing family can then not starve the other.
func interleave(in []target, old []target) []target {
	var r = make([]target, 0, len(in)+len(old))

	for len(in) > 0 || len(old) > 0 {
		if len(in) > 0 {
			r = append(r, in[0])
			in = in[1:]
		}

		if len(old) > 0 {
			r = append(r, old[0])
			old = old[1:]
		}
	}

	return r
}
