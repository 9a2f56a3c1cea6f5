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

package manifest

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownFormat indicates a file extension or format name that is not YAML, TOML, or JSON.
	ErrUnknownFormat = errors.New("unknown manifest format")

	// ErrSchema indicates a document that does not satisfy the manifest schema.
	ErrSchema = errors.New("manifest does not match schema")

	// ErrInvalidRoute indicates a route entry that is not of the form "METHOD /path".
	ErrInvalidRoute = errors.New("invalid route entry")

	// ErrUnknownCapability indicates a capability name missing from the registry.
	ErrUnknownCapability = errors.New("unknown capability")

	// ErrInvalidArgs indicates capability arguments that could not be decoded or are out of range.
	ErrInvalidArgs = errors.New("invalid capability arguments")

	// ErrDuplicateName indicates a capability registered twice under the same name.
	ErrDuplicateName = errors.New("capability already registered")

	// ErrNilFactory indicates a nil factory or an empty name passed to a Register method.
	ErrNilFactory = errors.New("capability factory is nil or unnamed")

	// ErrIncludeCycle indicates manifests that include each other.
	ErrIncludeCycle = errors.New("manifest include cycle")

	// ErrUnresolvedInclude indicates a forward include that was never loaded.
	// Includes are resolved by Load, not by Parse.
	ErrUnresolvedInclude = errors.New("manifest include not resolved")
)

// Error locates a manifest failure.
type Error struct {
	Source string // File name, or the manifest name for documents not read from disk
	Where  string // Location inside the document, such as "variants[2].body"
	Err    error
}

// Error implements error.
func (e *Error) Error() string {
	switch {
	case e.Source != "" && e.Where != "":
		return fmt.Sprintf("manifest %s: %s: %v", e.Source, e.Where, e.Err)
	case e.Source != "":
		return fmt.Sprintf("manifest %s: %v", e.Source, e.Err)
	case e.Where != "":
		return fmt.Sprintf("manifest: %s: %v", e.Where, e.Err)
	default:
		return fmt.Sprintf("manifest: %v", e.Err)
	}
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}
