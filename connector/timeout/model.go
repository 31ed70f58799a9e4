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

package timeout

import (
	"context"
	"time"

	liblog "github.com/nabbar/golib/logger"
	loglvl "github.com/nabbar/golib/logger/level"
	libsck "github.com/nabbar/socket"
	sckadr "github.com/nabbar/socket/address"
)

type cto struct {
	con libsck.Connector
	tmo time.Duration
	lgr liblog.FuncLog
}

func (o *cto) Connect(ctx context.Context, uri string) (libsck.Connection, error) {
	sub, cnl := context.WithTimeout(ctx, o.tmo)
	defer cnl()

	con, err := o.con.Connect(sub, uri)

	if err == nil {
		return con, nil
	}

	if sub.Err() == context.DeadlineExceeded && ctx.Err() == nil {
		if o.lgr != nil {
			if l := o.lgr(); l != nil {
				l.Entry(loglvl.WarnLevel, "connect timeout").FieldAdd("uri", uri).Log()
			}
		}

		ler := ErrorTimeout.Errorf(
			sckadr.StripHostnameQuery(uri),
			seconds(o.tmo),
		)
		ler.Add(err)

		return nil, ler
	}

	if ctx.Err() != nil {
		return nil, libsck.ErrorCancelled.Error(ctx.Err())
	}

	return nil, err
}
