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

// Package pattern parses route path patterns and detects overlap between them.
//
// A pattern is either the asterisk "*" or a slash-delimited sequence of
// segments, each of which is one of:
//
//   - a literal, matched byte for byte ("users")
//   - a placeholder "{name}", matching exactly one non-empty segment
//   - a rest placeholder "{name...}", matching the remainder of the path,
//     slashes included; only allowed as the last segment
//
// A literal segment starting with a backslash has the backslash removed, so
// `\{id}` matches the literal text "{id}".
//
// Every pattern compiles to an anchored regular expression. Two patterns are
// equivalent when their expressions are identical, which means they accept
// exactly the same paths regardless of how their placeholders are named.
//
// Basic usage:
//
//	p := pattern.MustParse("/users/{id}/files/{path...}")
//	captures, ok := p.Match("/users/42/files/a/b.txt")
//	// captures == []string{"42", "a/b.txt"}, ok == true
//
// Overlap detection:
//
//	a := pattern.MustParse("/users/{id}")
//	b := pattern.MustParse("/users/me")
//	example, ok := a.FindOverlap(b)
//	// example == "/users/me", ok == true
package pattern
