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

// Package compiler builds the path matcher used by route tables.
//
// A Matcher is compiled once from a list of pattern groups whose patterns are
// known not to overlap. It answers a single question: which group, if any,
// accepts a request path.
//
// # Architecture
//
// Matching uses three tiers:
//
//  1. The asterisk group, compared directly against "*"
//  2. Fully literal groups, looked up in a map behind a bloom filter
//  3. Groups with placeholders, scanned by segment walking
//
// # Bloom Filter
//
// Literal paths are added to a bloom filter at compile time. A path the
// filter rejects is definitely not a literal route, which skips the map
// lookup for the common miss case.
//
// # First-Byte Index
//
// Once a table has at least minRoutesForIndexing placeholder groups, those
// starting with a literal segment are indexed by the first byte of that
// literal:
//
//	/users/{id}     -> index['u']
//	/posts/{pid}    -> index['p']
//	/{tenant}/info  -> always scanned
//
// Groups starting with a placeholder, or with a non-ASCII literal, are always
// scanned.
//
// # Ambiguity
//
// Route tables reject overlapping patterns, so at most one dynamic group can
// accept any path. The matcher still checks every candidate and panics with
// ErrAmbiguousMatch when two accept the same path; that can only happen if a
// caller builds a Matcher from overlapping patterns.
package compiler
