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

package compiler

import (
	"errors"
	"fmt"
	"strings"

	"rivaas.dev/dispatch/pattern"
)

const (
	// minRoutesForIndexing is the number of dynamic groups from which the
	// first-byte index is built.
	minRoutesForIndexing = 10

	// bloomBitsPerRoute sizes the static bloom filter.
	bloomBitsPerRoute = 16

	// bloomHashFuncs is the number of hash functions of the static bloom filter.
	bloomHashFuncs = 3
)

// ErrAmbiguousMatch is the panic value (wrapped) raised when two groups
// accept the same path.
var ErrAmbiguousMatch = errors.New("path matches more than one route pattern")

// entry is a compiled dynamic group.
type entry struct {
	index    int
	pattern  *pattern.Pattern
	segments []pattern.Segment // literal values in escaped form
	minSlash int  // number of '/' the path must contain at least
	rest     bool // whether more slashes are allowed
}

// matches walks path segment by segment. It accepts exactly the paths the
// pattern's regular expression accepts.
func (e *entry) matches(path string) bool {
	slashes := strings.Count(path, "/")
	if slashes < e.minSlash || (!e.rest && slashes != e.minSlash) {
		return false
	}

	remaining := path[1:]
	last := len(e.segments) - 1
	for i, seg := range e.segments {
		if seg.Kind == pattern.KindRest {
			return true
		}

		part, tail, found := strings.Cut(remaining, "/")
		if i == last && found {
			return false
		}
		if i < last && !found {
			return false
		}

		switch seg.Kind {
		case pattern.KindLiteral:
			if part != seg.Value {
				return false
			}
		case pattern.KindPlaceholder:
			if part == "" {
				return false
			}
		}
		remaining = tail
	}

	return true
}

// Matcher maps request paths to pattern group indexes.
// It is immutable after New and safe for concurrent use.
type Matcher struct {
	asterisk int // -1 when no group is "*"

	static      map[string]int
	staticBloom *BloomFilter

	dynamic []*entry

	firstByteIndex [128][]*entry
	unindexed      []*entry
	indexed        bool
}

// Stats summarizes a Matcher for diagnostics.
type Stats struct {
	Static   int  // Fully literal groups
	Dynamic  int  // Groups with placeholders
	Rest     int  // Dynamic groups ending in a rest placeholder
	Asterisk bool // Whether a "*" group exists
	Indexed  bool // Whether the first-byte index is in use
}

// New compiles groups into a Matcher. The index of each pattern in groups is
// what Match returns. Patterns must not overlap one another; equivalent
// patterns must already be merged into one group.
func New(groups []*pattern.Pattern) *Matcher {
	m := &Matcher{
		asterisk: -1,
		static:   make(map[string]int),
	}

	var staticPaths []string
	for i, p := range groups {
		switch {
		case p.IsAsterisk():
			m.asterisk = i
		case !p.HasPlaceholders():
			path, _ := p.StaticPath()
			m.static[path] = i
			staticPaths = append(staticPaths, path)
		default:
			m.dynamic = append(m.dynamic, compileEntry(i, p))
		}
	}

	//nolint:gosec // G115: route counts are small
	m.staticBloom = NewBloomFilter(uint64(len(staticPaths)*bloomBitsPerRoute+64), bloomHashFuncs)
	for _, path := range staticPaths {
		m.staticBloom.Add(path)
	}

	if len(m.dynamic) >= minRoutesForIndexing {
		m.buildFirstByteIndex()
	}

	return m
}

func compileEntry(index int, p *pattern.Pattern) *entry {
	// Request paths arrive escaped, so literals are compared escaped too.
	segs := p.Segments()
	for i, seg := range segs {
		if seg.Kind == pattern.KindLiteral {
			segs[i].Value = pattern.EscapeSegment(seg.Value)
		}
	}

	return &entry{
		index:    index,
		pattern:  p,
		segments: segs,
		minSlash: len(segs),
		rest:     p.HasRest(),
	}
}

func (m *Matcher) buildFirstByteIndex() {
	for _, e := range m.dynamic {
		first := e.segments[0]
		if first.Kind != pattern.KindLiteral || first.Value == "" {
			m.unindexed = append(m.unindexed, e)
			continue
		}
		c := first.Value[0]
		m.firstByteIndex[c] = append(m.firstByteIndex[c], e)
	}
	m.indexed = true
}

// Match returns the index of the group accepting path.
// The second result is false when no group accepts it.
func (m *Matcher) Match(path string) (int, bool) {
	if path == pattern.Asterisk {
		return m.asterisk, m.asterisk >= 0
	}
	if path == "" || path[0] != '/' {
		return -1, false
	}

	if m.staticBloom.MayContain(path) {
		if idx, ok := m.static[path]; ok {
			return idx, true
		}
	}

	if !m.indexed {
		return m.scan(path, m.dynamic, nil)
	}

	var byFirst []*entry
	if len(path) > 1 && path[1] < 128 {
		byFirst = m.firstByteIndex[path[1]]
	}

	return m.scan(path, byFirst, m.unindexed)
}

// scan tests every candidate so that a second match is detected.
func (m *Matcher) scan(path string, lists ...[]*entry) (int, bool) {
	var found *entry
	for _, list := range lists {
		for _, e := range list {
			if !e.matches(path) {
				continue
			}
			if found != nil {
				panic(fmt.Errorf("%w: %q matches %q and %q",
					ErrAmbiguousMatch, path, found.pattern, e.pattern))
			}
			found = e
		}
	}

	if found == nil {
		return -1, false
	}

	return found.index, true
}

// Stats returns counts describing the compiled matcher.
func (m *Matcher) Stats() Stats {
	s := Stats{
		Static:   len(m.static),
		Dynamic:  len(m.dynamic),
		Asterisk: m.asterisk >= 0,
		Indexed:  m.indexed,
	}
	for _, e := range m.dynamic {
		if e.rest {
			s.Rest++
		}
	}

	return s
}
