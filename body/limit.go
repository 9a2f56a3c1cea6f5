// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package body

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"reflect"

	"rivaas.dev/dispatch/router"
)

// Limit wraps d so that at most n bytes of the body are read. Longer bodies
// fail with a *TooLargeError.
func Limit(n int64, d router.BodyDecoder) router.BodyDecoder {
	return &limited{limit: n, next: d}
}

type limited struct {
	limit int64
	next  router.BodyDecoder
}

func (l *limited) Context() reflect.Type { return l.next.Context() }

func (l *limited) DecodeBody(ctx context.Context, head *http.Request, body io.Reader, sub any) (any, error) {
	if head.ContentLength > l.limit {
		return nil, &TooLargeError{Limit: l.limit}
	}

	capped := &countingReader{r: io.LimitReader(body, l.limit+1)}
	v, err := l.next.DecodeBody(ctx, head, capped, sub)
	if capped.n > l.limit {
		return nil, &TooLargeError{Limit: l.limit, Err: err}
	}
	if err != nil {
		return nil, err
	}

	return v, nil
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)

	return n, err
}

// peek reports whether r has at least one byte and returns a reader
// yielding the whole of r.
func peek(r io.Reader) (io.Reader, bool, error) {
	var first [1]byte
	n, err := io.ReadFull(r, first[:])
	if n == 0 {
		if errors.Is(err, io.EOF) {
			return r, false, nil
		}

		return r, false, err
	}

	return io.MultiReader(bytes.NewReader(first[:]), r), true, nil
}
