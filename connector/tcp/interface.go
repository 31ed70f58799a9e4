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

// Package tcp is the plain TCP leaf connector.
//
// It only accepts tcp URIs whose host is a literal IP address with a port;
// hostnames are the business of the DNS and Happy Eyeballs decorators above
// it. The hostname hint carried by the query is attached to the produced
// connection so a later TLS upgrade verifies against the user-supplied
// name.
package tcp

import (
	"net"

	libdur "github.com/nabbar/golib/duration"
	liberr "github.com/nabbar/golib/errors"
	liblog "github.com/nabbar/golib/logger"
	libval "github.com/go-playground/validator/v10"
	libsck "github.com/nabbar/socket"
)

// Config is the TCP leaf connector configuration.
type Config struct {
	// LocalAddress optionally binds outgoing sockets to a local
	// host:port.
	LocalAddress string `mapstructure:"local_address" json:"local_address" yaml:"local_address" toml:"local_address"`

	// KeepAlive is the TCP keep alive period, zero for the platform
	// default, negative to disable.
	KeepAlive libdur.Duration `mapstructure:"keep_alive" json:"keep_alive" yaml:"keep_alive" toml:"keep_alive"`
}

// Validate checks the configuration consistency.
func (c Config) Validate() liberr.Error {
	err := ErrorValidatorError.Error(nil)

	if er := libval.New().Struct(c); er != nil {
		if e, k := er.(*libval.InvalidValidationError); k {
			err.Add(e)
		} else {
			for _, e := range er.(libval.ValidationErrors) {
				err.Add(e)
			}
		}
	}

	if len(c.LocalAddress) > 0 {
		if _, er := net.ResolveTCPAddr("tcp", c.LocalAddress); er != nil {
			err.Add(er)
		}
	}

	if err.HasParent() {
		return err
	}

	return nil
}

// New returns a TCP leaf connector. The logger function may be nil.
func New(cfg Config, log liblog.FuncLog) libsck.Connector {
	return &crt{
		cfg: cfg,
		lgr: log,
	}
}
