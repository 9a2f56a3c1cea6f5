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
	"context"
	"io"
	"net/http"
	"reflect"

	"rivaas.dev/validation"

	"rivaas.dev/dispatch/router"
)

// Validated wraps d so that the decoded value is checked with
// validation.Validate. Failures are *validation.Error values, reported with
// status 422.
func Validated(d router.BodyDecoder, opts ...validation.Option) router.BodyDecoder {
	return &validated{next: d, opts: opts}
}

type validated struct {
	next router.BodyDecoder
	opts []validation.Option
}

func (v *validated) Context() reflect.Type { return v.next.Context() }

func (v *validated) DecodeBody(ctx context.Context, head *http.Request, body io.Reader, sub any) (any, error) {
	value, err := v.next.DecodeBody(ctx, head, body, sub)
	if err != nil {
		return nil, err
	}
	if err = validation.Validate(ctx, value, v.opts...); err != nil {
		return nil, err
	}

	return value, nil
}
