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

package router

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	rerrors "rivaas.dev/errors"
)

type statusErr int

func (e statusErr) Error() string   { return fmt.Sprintf("status %d", int(e)) }
func (e statusErr) HTTPStatus() int { return int(e) }

func TestErrorStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  *Error
		want int
	}{
		{"no matching route", &Error{Kind: KindNoMatchingRoute}, http.StatusNotFound},
		{"wrong method", &Error{Kind: KindWrongMethod, Allowed: []string{"GET"}}, http.StatusMethodNotAllowed},
		{"path segment", &Error{Kind: KindPathSegment, Field: "id", Err: errors.New("bad")}, http.StatusNotFound},
		{"query", &Error{Kind: KindQueryParam, Err: errors.New("bad")}, http.StatusBadRequest},
		{"guard with status", &Error{Kind: KindGuard, Field: "auth", Err: statusErr(http.StatusUnauthorized)}, http.StatusUnauthorized},
		{"guard wrapped status", &Error{Kind: KindGuard, Field: "auth", Err: fmt.Errorf("token: %w", statusErr(http.StatusForbidden))}, http.StatusForbidden},
		{"guard without status", &Error{Kind: KindGuard, Field: "auth", Err: errors.New("boom")}, http.StatusInternalServerError},
		{"body with status", &Error{Kind: KindBody, Field: "data", Err: statusErr(http.StatusUnsupportedMediaType)}, http.StatusUnsupportedMediaType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.err.HTTPStatus())
		})
	}
}

func TestErrorInterfaces(t *testing.T) {
	t.Parallel()

	var err error = &Error{Kind: KindWrongMethod, Allowed: []string{"GET", "HEAD"}}

	var typed rerrors.ErrorType
	assert.ErrorAs(t, err, &typed)
	var coded rerrors.ErrorCode
	assert.ErrorAs(t, err, &coded)
	assert.Equal(t, "wrong_method", coded.Code())
	var detailed rerrors.ErrorDetails
	assert.ErrorAs(t, err, &detailed)
	assert.Equal(t, map[string]any{"allowed": []string{"GET", "HEAD"}}, detailed.Details())

	guard := &Error{Kind: KindGuard, Field: "auth", Err: errors.New("denied")}
	assert.Equal(t, map[string]any{"field": "auth"}, guard.Details())
	assert.Empty(t, guard.AllowHeader())
	assert.Nil(t, (&Error{Kind: KindNoMatchingRoute}).Details())
}

func TestErrorUnwrap(t *testing.T) {
	t.Parallel()

	source := errors.New("denied")
	err := &Error{Kind: KindGuard, Field: "auth", Err: source}

	assert.ErrorIs(t, err, ErrGuard)
	assert.ErrorIs(t, err, source)
	assert.NotErrorIs(t, err, ErrBody)
	assert.True(t, IsKind(fmt.Errorf("wrapped: %w", err), KindGuard))
	assert.False(t, IsKind(source, KindGuard))
}

func TestErrorMessages(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "no matching route", (&Error{Kind: KindNoMatchingRoute}).Error())
	assert.Equal(t, `invalid path segment "id": bad`,
		(&Error{Kind: KindPathSegment, Field: "id", Err: errors.New("bad")}).Error())
	assert.Equal(t, "invalid query parameters: bad",
		(&Error{Kind: KindQueryParam, Field: "q", Err: errors.New("bad")}).Error())
	assert.Equal(t, "kind(99)", Kind(99).String())
}

func TestConfigErrorMessage(t *testing.T) {
	t.Parallel()

	err := &ConfigError{Variant: "V", Err: ErrDuplicateField}
	assert.Equal(t, "router: duplicate field name (variant `V`)", err.Error())
	assert.ErrorIs(t, err, ErrDuplicateField)
}
