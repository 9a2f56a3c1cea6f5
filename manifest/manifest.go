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
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/go-viper/mapstructure/v2"
	"github.com/goccy/go-yaml"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Manifest is the decoded form of a route configuration file.
type Manifest struct {
	Name     string    `mapstructure:"name"`
	Variants []Variant `mapstructure:"variants"`
	Fallback *Variant  `mapstructure:"fallback"`

	source string
}

// Variant describes one route variant. Routes are written "METHOD /path".
type Variant struct {
	Name    string           `mapstructure:"name"`
	Routes  []string         `mapstructure:"routes"`
	Path    map[string]Field `mapstructure:"path"`
	Query   *Field           `mapstructure:"query"`
	Guards  []Field          `mapstructure:"guards"`
	Body    *Field           `mapstructure:"body"`
	Forward *Forward         `mapstructure:"forward"`
}

// Field binds a field name to a registered capability. Path fields are keyed
// by name and may be written as just the capability name ("id: int").
type Field struct {
	Name string `mapstructure:"name"`
	Use  string `mapstructure:"use"`
	With Args   `mapstructure:"with"`
}

// Forward hands the rest of the request to a nested manifest, given inline
// or as a file path relative to the including file.
type Forward struct {
	Name     string    `mapstructure:"name"`
	Manifest *Manifest `mapstructure:"manifest"`
	Include  string    `mapstructure:"include"`
}

// Source returns the file the manifest was loaded from, or "".
func (m *Manifest) Source() string {
	return m.source
}

func (m *Manifest) label() string {
	if m.source != "" {
		return m.source
	}

	return m.Name
}

// forwards yields the forward fields of the manifest's own variants.
func (m *Manifest) forwards() iter.Seq[*Forward] {
	return func(yield func(*Forward) bool) {
		for i := range m.Variants {
			if f := m.Variants[i].Forward; f != nil && !yield(f) {
				return
			}
		}
		if m.Fallback != nil && m.Fallback.Forward != nil {
			yield(m.Fallback.Forward)
		}
	}
}

// Format names a manifest encoding.
type Format string

// Supported formats.
const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
)

var extensionFormats = map[string]Format{
	".yaml": FormatYAML,
	".yml":  FormatYAML,
	".toml": FormatTOML,
	".json": FormatJSON,
}

// FormatOf detects the format of a manifest file from its extension.
func FormatOf(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if f, ok := extensionFormats[ext]; ok {
		return f, nil
	}

	return "", fmt.Errorf("%w: cannot detect format from extension %q", ErrUnknownFormat, ext)
}

//go:embed schema.json
var schemaJSON []byte

const schemaURL = "https://rivaas.dev/schemas/dispatch/manifest.json"

var compiledSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaJSON))
	if err != nil {
		return nil, err
	}

	c := jsonschema.NewCompiler()
	if err = c.AddResource(schemaURL, doc); err != nil {
		return nil, err
	}

	return c.Compile(schemaURL)
})

// Schema returns the JSON Schema every manifest is validated against.
func Schema() []byte {
	return slices.Clone(schemaJSON)
}

// Parse decodes and validates a manifest. Forward includes are left
// unresolved; use Load for manifests that include other files.
func Parse(data []byte, format Format) (*Manifest, error) {
	doc, err := decodeDocument(data, format)
	if err != nil {
		return nil, &Error{Err: err}
	}

	schema, err := compiledSchema()
	if err != nil {
		return nil, &Error{Where: "schema", Err: err}
	}
	if err = schema.Validate(doc); err != nil {
		return nil, &Error{Err: fmt.Errorf("%w: %w", ErrSchema, err)}
	}

	var m Manifest
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &m,
		ErrorUnused: true,
		DecodeHook:  mapstructure.ComposeDecodeHookFunc(fieldShorthand),
	})
	if err != nil {
		return nil, &Error{Err: err}
	}
	if err = dec.Decode(doc); err != nil {
		return nil, &Error{Err: err}
	}

	return &m, nil
}

// Load reads a manifest file, detecting the format from its extension, and
// resolves forward includes relative to it.
func Load(path string) (*Manifest, error) {
	return load(path, nil)
}

func load(path string, stack []string) (*Manifest, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, &Error{Source: path, Err: err}
	}
	if slices.Contains(stack, abs) {
		chain := append(slices.Clone(stack), abs)
		return nil, &Error{Source: path, Err: fmt.Errorf("%w: %s", ErrIncludeCycle, strings.Join(chain, " -> "))}
	}

	format, err := FormatOf(path)
	if err != nil {
		return nil, &Error{Source: path, Err: err}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Source: path, Err: err}
	}

	m, err := Parse(data, format)
	if err != nil {
		if me, ok := err.(*Error); ok && me.Source == "" {
			me.Source = path
		}
		return nil, err
	}
	m.setSource(path)

	if err = resolveIncludes(m, filepath.Dir(abs), append(stack, abs)); err != nil {
		return nil, err
	}

	return m, nil
}

func (m *Manifest) setSource(path string) {
	m.source = path
	for f := range m.forwards() {
		if f.Manifest != nil {
			f.Manifest.setSource(path)
		}
	}
}

func resolveIncludes(m *Manifest, dir string, stack []string) error {
	for f := range m.forwards() {
		switch {
		case f.Manifest != nil:
			if err := resolveIncludes(f.Manifest, dir, stack); err != nil {
				return err
			}
		case f.Include != "":
			path := f.Include
			if !filepath.IsAbs(path) {
				path = filepath.Join(dir, path)
			}
			nested, err := load(path, stack)
			if err != nil {
				return err
			}
			f.Manifest = nested
		}
	}

	return nil
}

// decodeDocument turns any supported encoding into the JSON value model
// expected by the schema validator.
func decodeDocument(data []byte, format Format) (any, error) {
	var doc any
	switch format {
	case FormatJSON:
		return jsonschema.UnmarshalJSON(bytes.NewReader(data))
	case FormatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
	case FormatTOML:
		var table map[string]any
		if err := toml.Unmarshal(data, &table); err != nil {
			return nil, err
		}
		doc = table
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}

	return jsonschema.UnmarshalJSON(bytes.NewReader(raw))
}

var fieldType = reflect.TypeFor[Field]()

// fieldShorthand expands "id: int" into a Field using capability "int".
func fieldShorthand(from, to reflect.Type, data any) (any, error) {
	if from.Kind() == reflect.String && to == fieldType {
		return map[string]any{"use": data}, nil
	}

	return data, nil
}
