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

package guard

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"slices"
	"strings"

	"rivaas.dev/dispatch/router"
)

// Header returns a guard requiring the named header. Its value is the first
// header value. Missing headers are rejected with 400.
func Header(name string) router.Guard {
	canonical := http.CanonicalHeaderKey(name)

	return router.GuardFunc[router.NoContext, string](func(_ context.Context, head *http.Request, _ router.NoContext) (string, error) {
		v := head.Header.Get(canonical)
		if v == "" {
			return "", deny(http.StatusBadRequest, "missing_header", fmt.Errorf("%w: %s", ErrMissingHeader, canonical))
		}

		return v, nil
	})
}

// OptionalHeader returns a guard that never fails. Its value is the first
// value of the named header, or "".
func OptionalHeader(name string) router.Guard {
	return router.GuardFunc[router.NoContext, string](func(_ context.Context, head *http.Request, _ router.NoContext) (string, error) {
		return head.Header.Get(name), nil
	})
}

// ContentType returns a guard accepting only the listed media types.
// Parameters are ignored and comparison is case-insensitive. Its value is
// the media type. Other types are rejected with 415.
func ContentType(allowed ...string) router.Guard {
	normalized := make([]string, len(allowed))
	for i, a := range allowed {
		normalized[i] = strings.ToLower(a)
	}

	return router.GuardFunc[router.NoContext, string](func(_ context.Context, head *http.Request, _ router.NoContext) (string, error) {
		mediaType, _, err := mime.ParseMediaType(head.Header.Get("Content-Type"))
		if err != nil || !slices.Contains(normalized, mediaType) {
			d := deny(http.StatusUnsupportedMediaType, "unsupported_media_type",
				fmt.Errorf("%w: %q", ErrUnsupportedMedia, head.Header.Get("Content-Type")))
			d.Header.Set("Accept", strings.Join(allowed, ", "))

			return "", d
		}

		return mediaType, nil
	})
}
