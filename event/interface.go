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

// Package event provides the typed listener lists backing the fixed event
// sets of connections and servers.
//
// A list holds zero or more listeners for one event. Registering returns the
// function that removes the listener again. Emission snapshots the listener
// list, so a listener may register or unregister listeners of the same list
// without deadlocking.
package event

// Listeners is a thread-safe ordered list of listeners for one event
// carrying a payload of type T.
type Listeners[T any] interface {
	// Register appends the given listener and returns the function
	// removing it. A nil listener is ignored and yields a no-op remover.
	Register(fct func(T)) func()

	// Emit calls every registered listener in registration order with
	// the given payload.
	Emit(v T)

	// Clear removes every registered listener.
	Clear()

	// Len returns the number of registered listeners.
	Len() int
}

// New returns an empty listener list for payloads of type T.
func New[T any]() Listeners[T] {
	return &lst[T]{}
}
