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

// Package body provides request body decoders for router tables.
//
// Each decoder turns the request body into a typed value using the rivaas
// binding packages. Decoders compose: Negotiate picks one by Content-Type,
// Limit caps the number of bytes read, and Validated checks the decoded
// value with rivaas validation.
//
// Example:
//
//	type CreateUser struct {
//	    Name  string `json:"name" validate:"required"`
//	    Email string `json:"email" validate:"required,email"`
//	}
//
//	router.Leaf("CreateUser", newCreateUser,
//	    router.POST("/users"),
//	    router.Body("user", body.Limit(1<<20,
//	        body.Validated(body.JSON[CreateUser]()),
//	    )),
//	)
//
// Decoding failures carry an HTTP status through the HTTPStatus method:
// 400 for malformed bodies, 413 for oversized ones, 415 for unsupported
// media types, and 422 for validation failures.
package body
