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

import "strings"

// segmentAt returns the i-th segment with a trailing rest segment repeating
// forever. The second result is false once the pattern is exhausted.
func (p *Pattern) segmentAt(i int) (Segment, bool) {
	if i < len(p.segments) {
		return p.segments[i], true
	}
	if p.HasRest() {
		return p.segments[len(p.segments)-1], true
	}

	return Segment{}, false
}

// FindOverlap returns a concrete path accepted by both p and other.
// The second result is false when no such path exists.
//
// Segments are compared pairwise. Literals overlap only when equal, a
// placeholder overlaps any non-empty literal and any placeholder, and a rest
// placeholder overlaps everything. Two rest placeholders end the comparison
// at once, yielding the shortest example. The asterisk pattern overlaps
// only itself.
//
// The result is symmetric: p.FindOverlap(q) succeeds exactly when
// q.FindOverlap(p) does.
func (p *Pattern) FindOverlap(other *Pattern) (string, bool) {
	if p.asterisk || other.asterisk {
		if p.asterisk && other.asterisk {
			return Asterisk, true
		}

		return "", false
	}

	var (
		example strings.Builder
		sawRest bool
	)

	for i := 0; ; i++ {
		a, okA := p.segmentAt(i)
		b, okB := other.segmentAt(i)
		if !okA || !okB {
			break
		}

		switch {
		case a.Kind == KindRest && b.Kind == KindRest:
			example.WriteByte('/')
			example.WriteString(a.sample())

			return example.String(), true

		case a.Kind == KindRest:
			sawRest = true
			example.WriteByte('/')
			example.WriteString(b.sample())

		case b.Kind == KindRest:
			sawRest = true
			example.WriteByte('/')
			example.WriteString(a.sample())

		case a.Kind == KindPlaceholder && b.Kind == KindPlaceholder:
			example.WriteByte('/')
			example.WriteString(a.Value)

		case a.Kind == KindPlaceholder:
			// A placeholder never accepts an empty segment.
			if b.Value == "" {
				return "", false
			}
			example.WriteByte('/')
			example.WriteString(b.Value)

		case b.Kind == KindPlaceholder:
			if a.Value == "" {
				return "", false
			}
			example.WriteByte('/')
			example.WriteString(a.Value)

		default:
			if a.Value != b.Value {
				return "", false
			}
			example.WriteByte('/')
			example.WriteString(a.Value)
		}
	}

	if sawRest || len(p.segments) == len(other.segments) {
		return example.String(), true
	}

	return "", false
}
