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

package service

import (
	"net/http"
)

// responseWriter records the status and drops bodies of HEAD responses.
type responseWriter struct {
	http.ResponseWriter
	status  int
	written bool
	head    bool
}

func newResponseWriter(w http.ResponseWriter, head bool) *responseWriter {
	return &responseWriter{ResponseWriter: w, head: head}
}

func (w *responseWriter) WriteHeader(status int) {
	if w.written {
		return
	}
	w.status = status
	w.written = true
	w.ResponseWriter.WriteHeader(status)
}

func (w *responseWriter) Write(b []byte) (int, error) {
	if !w.written {
		w.WriteHeader(http.StatusOK)
	}
	if w.head {
		return len(b), nil
	}

	return w.ResponseWriter.Write(b)
}

// Status returns the status written so far, 200 if none.
func (w *responseWriter) Status() int {
	if w.status == 0 {
		return http.StatusOK
	}

	return w.status
}

// Written reports whether the header has been sent.
func (w *responseWriter) Written() bool {
	return w.written
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (w *responseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
