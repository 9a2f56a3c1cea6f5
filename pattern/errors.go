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
	"errors"
	"fmt"
)

var (
	// ErrMissingLeadingSlash indicates a pattern that neither starts with "/" nor is "*".
	ErrMissingLeadingSlash = errors.New("pattern must start with '/' or be '*'")

	// ErrEmptyPlaceholder indicates a placeholder without a name, such as "{}" or "{...}".
	ErrEmptyPlaceholder = errors.New("placeholder name is empty")

	// ErrInvalidPlaceholder indicates a placeholder name that is not a valid identifier.
	ErrInvalidPlaceholder = errors.New("placeholder name is not a valid identifier")

	// ErrUnclosedPlaceholder indicates a segment starting with '{' that does not end with '}'.
	ErrUnclosedPlaceholder = errors.New("placeholder is not closed")

	// ErrDuplicatePlaceholder indicates the same placeholder name used twice in one pattern.
	ErrDuplicatePlaceholder = errors.New("duplicate placeholder name")

	// ErrRestNotLast indicates a rest placeholder followed by more segments.
	ErrRestNotLast = errors.New("rest placeholder must be the last segment")
)

// ParseError describes why a pattern could not be parsed.
type ParseError struct {
	Pattern string // The pattern as given to Parse
	Segment string // Offending segment, empty when the whole pattern is at fault
	Err     error  // One of the Err* sentinels
}

// Error implements error.
func (e *ParseError) Error() string {
	if e.Segment == "" {
		return fmt.Sprintf("invalid pattern %q: %v", e.Pattern, e.Err)
	}

	return fmt.Sprintf("invalid pattern %q at segment %q: %v", e.Pattern, e.Segment, e.Err)
}

// Unwrap returns the sentinel so callers can use errors.Is.
func (e *ParseError) Unwrap() error {
	return e.Err
}
