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

package event

import (
	"sync"
)

type itm[T any] struct {
	i uint64
	f func(T)
}

type lst[T any] struct {
	m sync.Mutex
	n uint64
	l []itm[T]
}

func (o *lst[T]) Register(fct func(T)) func() {
	if fct == nil {
		return func() {}
	}

	o.m.Lock()
	defer o.m.Unlock()

	o.n++
	id := o.n
	o.l = append(o.l, itm[T]{i: id, f: fct})

	return func() {
		o.m.Lock()
		defer o.m.Unlock()

		for k, v := range o.l {
			if v.i == id {
				o.l = append(o.l[:k], o.l[k+1:]...)
				return
			}
		}
	}
}

func (o *lst[T]) Emit(v T) {
	o.m.Lock()
	cpy := make([]itm[T], len(o.l))
	copy(cpy, o.l)
	o.m.Unlock()

	for _, i := range cpy {
		i.f(v)
	}
}

func (o *lst[T]) Clear() {
	o.m.Lock()
	defer o.m.Unlock()

	o.l = nil
}

func (o *lst[T]) Len() int {
	o.m.Lock()
	defer o.m.Unlock()

	return len(o.l)
}
