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
	"fmt"

	liberr "github.com/nabbar/golib/errors"
	sckadr "github.com/nabbar/socket/address"
	sckres "github.com/nabbar/socket/resolver"
)

const (
	ErrorExhausted liberr.CodeError = iota + liberr.MinAvailable + 160
	ErrorDNSExhausted
	ErrorPortMissing
)

var isCodeError = false

func IsCodeError() bool {
	return isCodeError
}

func init() {
	isCodeError = liberr.ExistInMapMessage(ErrorExhausted)
	liberr.RegisterIdFctMessage(ErrorExhausted, getMessage)
}

func getMessage(code liberr.CodeError) (message string) {
	switch code {
	case liberr.UNK_ERROR:
		return ""
	case ErrorExhausted:
		return "Connection to %s failed: %s"
	case ErrorDNSExhausted:
		return "Connection to %s failed during DNS lookup: %s"
	case ErrorPortMissing:
		return "invalid uri '%s': missing port"
	}

	return ""
}

// detailLocked composes the per family failure detail: the last error of
// the losing family first, the other family second, collapsed to one
// entry when both families report the same text.
func (o *ebs) detailLocked() string {
	lst := o.lfm
	oth := sckres.IPv4
	if lst == sckres.IPv4 {
		oth = sckres.IPv6
	}

	txl := errText(o.ler[lst])
	txo := errText(o.ler[oth])

	switch {
	case len(txl) < 1 && len(txo) < 1:
		return "no addresses found for IPv6 and IPv4"
	case len(txo) < 1:
		return fmt.Sprintf("Last error for %s: %s", lst.String(), txl)
	case len(txl) < 1:
		return fmt.Sprintf("Last error for %s: %s", oth.String(), txo)
	case txl == txo:
		return txl
	}

	return fmt.Sprintf(
		"Last error for %s: %s. Previous error for %s: %s",
		lst.String(), txl, oth.String(), txo,
	)
}

func errText(e error) string {
	if e == nil {
		return ""
	}

	return sckadr.StripHostnameQuery(e.Error())
}
