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

package tlscfg

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"os"

	liberr "github.com/nabbar/golib/errors"
	libtls "github.com/nabbar/golib/certificates"
	tlsvrs "github.com/nabbar/golib/certificates/tlsversion"
)

func (o Options) build(server bool) (*tls.Config, liberr.Error) {
	cfg := libtls.New()

	if o.CryptoMethod != tlsvrs.VersionUnknown {
		cfg.SetVersionMin(o.CryptoMethod)
	}

	if len(o.CAFile) > 0 {
		if e := cfg.AddRootCAFile(o.CAFile); e != nil {
			ler := ErrorCertificateLoad.Errorf(o.CAFile)
			ler.Add(e)
			return nil, ler
		}
	}

	if len(o.LocalCert) > 0 {
		if e := o.loadPair(cfg); e != nil {
			return nil, e
		}
	}

	tcn := cfg.TlsConfig(o.PeerName)

	if server {
		return tcn, nil
	}

	vrp := o.VerifyPeer == nil || *o.VerifyPeer
	vrn := o.VerifyPeerName == nil || *o.VerifyPeerName

	switch {
	case !vrp || o.AllowSelfSigned:
		tcn.InsecureSkipVerify = true
	case !vrn:
		// verify the chain but skip the name check
		tcn.InsecureSkipVerify = true
		tcn.VerifyConnection = verifyChainOnly(tcn.RootCAs)
	}

	return tcn, nil
}

// loadPair loads the local certificate, decrypting the private key when a
// passphrase is given.
func (o Options) loadPair(cfg libtls.TLSConfig) liberr.Error {
	key := o.LocalKey
	if len(key) < 1 {
		key = o.LocalCert
	}

	if len(o.Passphrase) < 1 {
		if e := cfg.AddCertificatePairFile(key, o.LocalCert); e != nil {
			ler := ErrorCertificateLoad.Errorf(o.LocalCert)
			ler.Add(e)
			return ler
		}
		return nil
	}

	raw, e := os.ReadFile(key)
	if e != nil {
		ler := ErrorCertificateLoad.Errorf(key)
		ler.Add(e)
		return ler
	}

	blk, _ := pem.Decode(raw)
	if blk == nil {
		return ErrorCertificateLoad.Errorf(key)
	}

	//nolint staticcheck
	der, e := x509.DecryptPEMBlock(blk, []byte(o.Passphrase))
	if e != nil {
		ler := ErrorKeyDecrypt.Errorf(key)
		ler.Add(e)
		return ler
	}

	crt, e := os.ReadFile(o.LocalCert)
	if e != nil {
		ler := ErrorCertificateLoad.Errorf(o.LocalCert)
		ler.Add(e)
		return ler
	}

	dec := pem.EncodeToMemory(&pem.Block{Type: blk.Type, Bytes: der})
	if e = cfg.AddCertificatePairString(string(dec), string(crt)); e != nil {
		ler := ErrorCertificateLoad.Errorf(o.LocalCert)
		ler.Add(e)
		return ler
	}

	return nil
}

// verifyChainOnly checks the peer chain against the given roots without
// matching the peer name.
func verifyChainOnly(roots *x509.CertPool) func(tls.ConnectionState) error {
	return func(cs tls.ConnectionState) error {
		if len(cs.PeerCertificates) < 1 {
			return ErrorNoPeerCertificate.Error(nil)
		}

		opt := x509.VerifyOptions{
			Roots:         roots,
			Intermediates: x509.NewCertPool(),
		}

		for _, c := range cs.PeerCertificates[1:] {
			opt.Intermediates.AddCert(c)
		}

		_, e := cs.PeerCertificates[0].Verify(opt)
		return e
	}
}
