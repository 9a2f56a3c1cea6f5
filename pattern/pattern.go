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
	"fmt"
	"regexp"
	"strings"
)

// Asterisk is the special pattern matching only the request target "*",
// as used by "OPTIONS *".
const Asterisk = "*"

// Kind identifies the type of a segment.
type Kind uint8

const (
	// KindLiteral matches its text exactly.
	KindLiteral Kind = iota

	// KindPlaceholder matches one non-empty segment.
	KindPlaceholder

	// KindRest matches everything after the preceding slash.
	KindRest
)

// String returns a lowercase name for the kind.
func (k Kind) String() string {
	switch k {
	case KindLiteral:
		return "literal"
	case KindPlaceholder:
		return "placeholder"
	case KindRest:
		return "rest"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Segment is one slash-delimited piece of a pattern.
// Value holds the literal text for literals and the name for placeholders.
type Segment struct {
	Kind  Kind
	Value string
}

// sample returns text accepted by the segment, used to build overlap examples.
func (s Segment) sample() string {
	if s.Kind == KindRest {
		return s.Value + "..."
	}

	return s.Value
}

// expr returns the regular expression fragment for the segment, slash included.
func (s Segment) expr() string {
	switch s.Kind {
	case KindPlaceholder:
		return "/([^/]+)"
	case KindRest:
		return "/(.*)"
	default:
		return "/" + regexp.QuoteMeta(EscapeSegment(s.Value))
	}
}

// Pattern is a parsed, compiled route path. It is immutable and safe for
// concurrent use.
type Pattern struct {
	raw      string
	asterisk bool
	segments []Segment
	names    []string
	key      string
	re       *regexp.Regexp
}

var asteriskExpr = "^" + regexp.QuoteMeta(Asterisk) + "$"

// Parse parses raw into a Pattern.
func Parse(raw string) (*Pattern, error) {
	if raw == Asterisk {
		return &Pattern{
			raw:      raw,
			asterisk: true,
			key:      asteriskExpr,
			re:       regexp.MustCompile(asteriskExpr),
		}, nil
	}

	if !strings.HasPrefix(raw, "/") {
		return nil, &ParseError{Pattern: raw, Err: ErrMissingLeadingSlash}
	}

	parts := strings.Split(raw[1:], "/")
	p := &Pattern{
		raw:      raw,
		segments: make([]Segment, 0, len(parts)),
	}

	var expr strings.Builder
	expr.WriteByte('^')

	for i, part := range parts {
		seg, err := parseSegment(part)
		if err != nil {
			return nil, &ParseError{Pattern: raw, Segment: part, Err: err}
		}

		if seg.Kind != KindLiteral {
			for _, name := range p.names {
				if name == seg.Value {
					return nil, &ParseError{Pattern: raw, Segment: part, Err: ErrDuplicatePlaceholder}
				}
			}
			p.names = append(p.names, seg.Value)
		}

		if seg.Kind == KindRest && i != len(parts)-1 {
			return nil, &ParseError{Pattern: raw, Segment: part, Err: ErrRestNotLast}
		}

		p.segments = append(p.segments, seg)
		expr.WriteString(seg.expr())
	}

	expr.WriteByte('$')
	p.key = expr.String()
	p.re = regexp.MustCompile(p.key)

	return p, nil
}

// MustParse is like Parse but panics on error.
// It is intended for patterns known at compile time.
func MustParse(raw string) *Pattern {
	p, err := Parse(raw)
	if err != nil {
		panic(fmt.Sprintf("pattern.MustParse: %v", err))
	}

	return p
}

func parseSegment(s string) (Segment, error) {
	if escaped, ok := strings.CutPrefix(s, `\`); ok {
		return Segment{Kind: KindLiteral, Value: escaped}, nil
	}

	if !strings.HasPrefix(s, "{") {
		return Segment{Kind: KindLiteral, Value: s}, nil
	}

	if len(s) < 2 || !strings.HasSuffix(s, "}") {
		return Segment{}, ErrUnclosedPlaceholder
	}

	name := s[1 : len(s)-1]
	kind := KindPlaceholder
	if trimmed, ok := strings.CutSuffix(name, "..."); ok {
		name = trimmed
		kind = KindRest
	}

	if name == "" {
		return Segment{}, ErrEmptyPlaceholder
	}
	if !isIdentifier(name) {
		return Segment{}, ErrInvalidPlaceholder
	}

	return Segment{Kind: kind, Value: name}, nil
}

// isIdentifier reports whether s is [A-Za-z_][A-Za-z0-9_]* and not "_" alone.
func isIdentifier(s string) bool {
	if s == "" || s == "_" {
		return false
	}

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '_', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9' && i > 0:
		default:
			return false
		}
	}

	return true
}

// String returns the pattern as it was given to Parse.
func (p *Pattern) String() string {
	return p.raw
}

// Key returns the source of the compiled expression. Patterns with equal keys
// accept the same set of paths.
func (p *Pattern) Key() string {
	return p.key
}

// Regexp returns the compiled, anchored expression for the pattern.
func (p *Pattern) Regexp() *regexp.Regexp {
	return p.re
}

// IsAsterisk reports whether p is the "*" pattern.
func (p *Pattern) IsAsterisk() bool {
	return p.asterisk
}

// Segments returns a copy of the parsed segments. The asterisk pattern has none.
func (p *Pattern) Segments() []Segment {
	out := make([]Segment, len(p.segments))
	copy(out, p.segments)

	return out
}

// Placeholders returns placeholder and rest names in left-to-right order.
func (p *Pattern) Placeholders() []string {
	out := make([]string, len(p.names))
	copy(out, p.names)

	return out
}

// HasPlaceholders reports whether the pattern captures anything.
func (p *Pattern) HasPlaceholders() bool {
	return len(p.names) > 0
}

// HasRest reports whether the pattern ends in a rest placeholder.
func (p *Pattern) HasRest() bool {
	n := len(p.segments)
	return n > 0 && p.segments[n-1].Kind == KindRest
}

// StaticPath returns the single path accepted by a pattern without
// placeholders, in canonical escaped form. The second result is false for patterns with placeholders.
func (p *Pattern) StaticPath() (string, bool) {
	if p.HasPlaceholders() {
		return "", false
	}
	if p.asterisk {
		return Asterisk, true
	}

	var b strings.Builder
	for _, seg := range p.segments {
		b.WriteByte('/')
		b.WriteString(EscapeSegment(seg.Value))
	}

	return b.String(), true
}

// Equivalent reports whether p and other accept exactly the same paths.
func (p *Pattern) Equivalent(other *Pattern) bool {
	return p.key == other.key
}

// Matches reports whether path is accepted by the pattern. Like Match it
// expects a path in the form returned by CanonicalPath.
func (p *Pattern) Matches(path string) bool {
	return p.re.MatchString(path)
}

// Match returns the captured placeholder values in placeholder order.
// The path is escaped, as returned by CanonicalPath, and captures stay
// escaped. The second result is false when path does not match.
func (p *Pattern) Match(path string) ([]string, bool) {
	m := p.re.FindStringSubmatch(path)
	if m == nil {
		return nil, false
	}

	return m[1:], true
}
