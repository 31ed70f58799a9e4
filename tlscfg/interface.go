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

// Package tlscfg maps the TLS context options of the socket library onto
// the platform TLS configuration.
//
// Recognized keys are local_cert / local_pk / passphrase for the server
// certificate, verify_peer / verify_peer_name / allow_self_signed / cafile
// for peer verification, peer_name for the SNI and verification target,
// and crypto_method to select the minimum TLS version. The peer name is
// set automatically from the hostname hint of the connection when the
// option is absent. Unrecognized behaviour passes through to the platform
// configuration untouched.
package tlscfg

import (
	"crypto/tls"

	liberr "github.com/nabbar/golib/errors"
	tlsvrs "github.com/nabbar/golib/certificates/tlsversion"
)

// Options is the TLS context option set consumed by the secure connector
// and the secure server.
type Options struct {
	// LocalCert is the path to the PEM server certificate. When LocalKey
	// is empty the file must also carry the private key.
	LocalCert string `mapstructure:"local_cert" json:"local_cert" yaml:"local_cert" toml:"local_cert"`

	// LocalKey is the path to the PEM private key of LocalCert.
	LocalKey string `mapstructure:"local_pk" json:"local_pk" yaml:"local_pk" toml:"local_pk"`

	// Passphrase decrypts the private key when it is PEM encrypted.
	Passphrase string `mapstructure:"passphrase" json:"passphrase" yaml:"passphrase" toml:"passphrase"`

	// VerifyPeer enables peer certificate verification. Nil means the
	// side default: on for clients, off for servers.
	VerifyPeer *bool `mapstructure:"verify_peer" json:"verify_peer" yaml:"verify_peer" toml:"verify_peer"`

	// VerifyPeerName enables the peer name check against PeerName.
	VerifyPeerName *bool `mapstructure:"verify_peer_name" json:"verify_peer_name" yaml:"verify_peer_name" toml:"verify_peer_name"`

	// AllowSelfSigned accepts self signed peer certificates.
	AllowSelfSigned bool `mapstructure:"allow_self_signed" json:"allow_self_signed" yaml:"allow_self_signed" toml:"allow_self_signed"`

	// CAFile is the path of a PEM bundle of trusted roots.
	CAFile string `mapstructure:"cafile" json:"cafile" yaml:"cafile" toml:"cafile"`

	// PeerName is the SNI and peer verification target. It overrides the
	// hostname hint of the connection.
	PeerName string `mapstructure:"peer_name" json:"peer_name" yaml:"peer_name" toml:"peer_name"`

	// CryptoMethod selects the minimum TLS version.
	CryptoMethod tlsvrs.Version `mapstructure:"crypto_method" json:"crypto_method" yaml:"crypto_method" toml:"crypto_method"`
}

// Client builds the platform configuration for the client side of a
// handshake.
func (o Options) Client() (*tls.Config, liberr.Error) {
	return o.build(false)
}

// Server builds the platform configuration for the server side of a
// handshake.
func (o Options) Server() (*tls.Config, liberr.Error) {
	return o.build(true)
}
