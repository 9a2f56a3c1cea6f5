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
	"encoding/json"
	"errors"
	"net/http"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"rivaas.dev/dispatch/router"
)

// headerCarrier is implemented by errors that ask for response headers,
// such as guard denials.
type headerCarrier interface {
	ResponseHeaders() http.Header
}

// writeError renders err with the configured formatter.
func (s *Service[T, C]) writeError(w *responseWriter, r *http.Request, err error) {
	resp := s.formatter.Format(r, err)

	s.logFailure(r.Context(), r, resp.Status, err)
	if resp.Status >= http.StatusInternalServerError {
		span := trace.SpanFromContext(r.Context())
		span.RecordError(err)
		span.SetStatus(codes.Error, http.StatusText(resp.Status))
	}

	h := w.Header()
	for k, v := range resp.Headers {
		for _, val := range v {
			h.Add(k, val)
		}
	}

	var carrier headerCarrier
	if errors.As(err, &carrier) {
		for k, v := range carrier.ResponseHeaders() {
			for _, val := range v {
				h.Add(k, val)
			}
		}
	}

	var de *router.Error
	if errors.As(err, &de) && de.Kind == router.KindWrongMethod {
		h.Set("Allow", de.AllowHeader())
	}

	h.Set("Content-Type", resp.ContentType)
	h.Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(resp.Status)

	if resp.Body == nil {
		return
	}
	if encErr := json.NewEncoder(w).Encode(resp.Body); encErr != nil {
		s.logger.ErrorContext(r.Context(), "failed to write error response", "error", encErr)
	}
}
