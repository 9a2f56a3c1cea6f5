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

// Package manifest builds route tables from declarative configuration files.
//
// A manifest lists variants by name, their routes, and the capabilities that
// decode their fields. Capabilities are referenced by name and resolved
// against a Registry, so a manifest never contains code:
//
//	name: site
//	variants:
//	  - name: Item
//	    routes: ["GET /items/{id}", "PATCH /items/{id}"]
//	    path:
//	      id: int
//	    guards:
//	      - name: user
//	        use: basic_auth
//	        with: {users: {admin: secret}}
//	    body: {name: payload, use: json, with: {limit: 65536}}
//
// Manifests are YAML, TOML, or JSON. Every document is checked against an
// embedded JSON Schema before it is decoded, and Build reports unknown
// capability names and invalid arguments with the location that caused
// them (for example "variants[0].guards[0]").
//
// The resulting table decodes requests into a Match, which carries the
// variant name and the decoded field values.
//
//	m, err := manifest.Load("routes.yaml")
//	if err != nil {
//		return err
//	}
//	routes, err := manifest.Build(m, manifest.DefaultRegistry())
//	if err != nil {
//		return err
//	}
//	defer routes.Close()
package manifest
