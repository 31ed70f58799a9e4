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

package connector

import (
	"reflect"
	"time"

	libdur "github.com/nabbar/golib/duration"
	liberr "github.com/nabbar/golib/errors"
	liblog "github.com/nabbar/golib/logger"
	libmap "github.com/mitchellh/mapstructure"
	libsck "github.com/nabbar/socket"
)

// NewFromMap builds the facade from a free-form option map. Unknown keys
// are rejected. Boolean values toggle whole parts (tcp, tls, unix, dns,
// timeout), numbers are read as seconds for timeouts, a bare list of
// nameservers enables direct DNS exchange.
func NewFromMap(m map[string]interface{}, log liblog.FuncLog, opt ...Option) (libsck.Connector, liberr.Error) {
	var cfg Config

	dec, e := libmap.NewDecoder(&libmap.DecoderConfig{
		Result:      &cfg,
		ErrorUnused: true,
		DecodeHook: libmap.ComposeDecodeHookFunc(
			hookPartToggle(),
			hookDuration(),
			hookNameservers(),
		),
	})

	if e != nil {
		ler := ErrorUnknownOption.Errorf(e.Error())
		ler.Add(e)
		return nil, ler
	}

	if e = dec.Decode(m); e != nil {
		ler := ErrorUnknownOption.Errorf(e.Error())
		ler.Add(e)
		return nil, ler
	}

	return New(cfg, log, opt...)
}

// hookPartToggle maps a bare boolean onto a part config: true keeps the
// defaults, false disables the part.
func hookPartToggle() libmap.DecodeHookFuncType {
	var (
		tTCP  = reflect.TypeOf(ConfigTCP{})
		tTLS  = reflect.TypeOf(ConfigTLS{})
		tUnix = reflect.TypeOf(ConfigUnix{})
		tDNS  = reflect.TypeOf(ConfigDNS{})
	)

	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if from.Kind() != reflect.Bool {
			return data, nil
		}

		b := data.(bool)

		switch to {
		case tTCP:
			return ConfigTCP{Disabled: !b}, nil
		case tTLS:
			return ConfigTLS{Disabled: !b}, nil
		case tUnix:
			return ConfigUnix{Disabled: !b}, nil
		case tDNS:
			return ConfigDNS{Disabled: !b}, nil
		}

		return data, nil
	}
}

// hookDuration maps booleans and numbers onto durations: true is the
// default bound, false disables it, numbers are seconds.
func hookDuration() libmap.DecodeHookFuncType {
	tDur := reflect.TypeOf(libdur.Duration(0))

	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != tDur {
			return data, nil
		}

		switch from.Kind() {
		case reflect.Bool:
			if data.(bool) {
				return DefaultTimeout, nil
			}
			return libdur.Duration(-1), nil

		case reflect.Float64:
			return libdur.Duration(data.(float64) * float64(time.Second)), nil

		case reflect.Int:
			return libdur.Duration(time.Duration(data.(int)) * time.Second), nil

		case reflect.Int64:
			return libdur.Duration(time.Duration(data.(int64)) * time.Second), nil

		case reflect.String:
			d, e := libdur.Parse(data.(string))
			return d, e
		}

		return data, nil
	}
}

// hookNameservers maps a bare list onto the DNS part config.
func hookNameservers() libmap.DecodeHookFuncType {
	tDNS := reflect.TypeOf(ConfigDNS{})

	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != tDNS || from.Kind() != reflect.Slice {
			return data, nil
		}

		lst, k := data.([]interface{})
		if !k {
			if s, k2 := data.([]string); k2 {
				return ConfigDNS{Nameservers: s}, nil
			}
			return data, nil
		}

		var srv = make([]string, 0, len(lst))
		for _, i := range lst {
			if s, k2 := i.(string); k2 {
				srv = append(srv, s)
			}
		}

		return ConfigDNS{Nameservers: srv}, nil
	}
}
