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

package pattern

import (
	"net/url"
	"strings"
)

// EscapeSegment returns the canonical escaped form of one path segment.
// It is the form url.URL.EscapedPath produces for the segment, with '/'
// escaped as well so the result never spans segments. Literal segments are
// compiled from this form.
func EscapeSegment(s string) string {
	escaped := (&url.URL{Path: s}).EscapedPath()

	return strings.ReplaceAll(escaped, "/", "%2F")
}

// CanonicalPath rewrites an escaped request path so that every segment is
// in the form returned by EscapeSegment. Patterns match canonical paths, so
// "/caf%c3%a9", "/caf%C3%A9" and "/%63af%C3%A9" all reach the literal
// "café". Segments that are not valid escapes are left unchanged.
func CanonicalPath(escaped string) string {
	if isCanonical(escaped) {
		return escaped
	}

	segments := strings.Split(escaped, "/")
	for i, seg := range segments {
		if isCanonical(seg) {
			continue
		}
		if s, err := url.PathUnescape(seg); err == nil {
			segments[i] = EscapeSegment(s)
		}
	}

	return strings.Join(segments, "/")
}

// isCanonical reports whether s holds only bytes EscapeSegment never
// rewrites.
func isCanonical(s string) bool {
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case strings.IndexByte("-._~$&+,:;=@/", c) >= 0:
		default:
			return false
		}
	}

	return true
}
