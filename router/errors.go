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
	"strings"

	rerrors "rivaas.dev/errors"
)

// Configuration errors. Table construction wraps one of these in a
// *ConfigError; use errors.Is to classify.
var (
	// ErrInvalidPattern indicates a route path that failed to parse.
	ErrInvalidPattern = errors.New("invalid route pattern")

	// ErrInvalidMethod indicates an empty or malformed HTTP method token.
	ErrInvalidMethod = errors.New("invalid HTTP method")

	// ErrOverlappingRoutes indicates two non-equivalent patterns accepting a common path.
	ErrOverlappingRoutes = errors.New("overlapping routes")

	// ErrDuplicateRoute indicates two routes with equivalent patterns and the same method.
	ErrDuplicateRoute = errors.New("duplicate route")

	// ErrMultipleFallbacks indicates more than one fallback variant.
	ErrMultipleFallbacks = errors.New("cannot define multiple fallback variants")

	// ErrBodyAndForward indicates a variant with both a body and a forward field.
	ErrBodyAndForward = errors.New("body and forward fields cannot be combined")

	// ErrMultipleBodies indicates a variant with more than one body or forward field.
	ErrMultipleBodies = errors.New("only one field may consume the request body")

	// ErrMultipleQueries indicates a variant with more than one query field.
	ErrMultipleQueries = errors.New("only one query field is allowed")

	// ErrPlaceholderMismatch indicates routes on one variant using different placeholders.
	ErrPlaceholderMismatch = errors.New("different placeholders used on variant")

	// ErrUnknownPlaceholder indicates a placeholder without a matching path field.
	ErrUnknownPlaceholder = errors.New("placeholder does not refer to a path field")

	// ErrUnusedPathField indicates a path field that no placeholder fills.
	ErrUnusedPathField = errors.New("path field is not a placeholder of any route")

	// ErrDuplicateField indicates two fields with the same name on one variant.
	ErrDuplicateField = errors.New("duplicate field name")

	// ErrNotConstructible indicates a variant that can never be produced.
	ErrNotConstructible = errors.New("variant is not constructible")

	// ErrFallbackFields indicates a fallback declaring fields that need a matched route.
	ErrFallbackFields = errors.New("fallback variants cannot have routes or path, query, or body fields")

	// ErrNilCapability indicates a field declared with a nil capability.
	ErrNilCapability = errors.New("field capability is nil")

	// ErrContextUnavailable indicates a capability whose required context
	// cannot be obtained from the request context.
	ErrContextUnavailable = errors.New("required context is not available")
)

// Decode errors. Every *Error unwraps to the sentinel of its kind as well as
// to its source error.
var (
	// ErrNoMatchingRoute indicates that no pattern accepts the request path.
	ErrNoMatchingRoute = errors.New("no matching route")

	// ErrWrongMethod indicates that the path matched but the method did not.
	ErrWrongMethod = errors.New("method not allowed")

	// ErrPathSegment indicates a placeholder value that failed to parse.
	ErrPathSegment = errors.New("invalid path segment")

	// ErrQueryParam indicates a query string that failed to decode.
	ErrQueryParam = errors.New("invalid query parameters")

	// ErrGuard indicates a failed guard.
	ErrGuard = errors.New("guard failed")

	// ErrBody indicates a body that failed to decode.
	ErrBody = errors.New("body decoding failed")
)

// ConfigError reports an invalid route table. It is returned by New and is
// never produced while decoding requests.
type ConfigError struct {
	Variant string // Variant being added when the problem was found
	Route   string // "METHOD /path" of the offending route, if any
	Err     error  // One of the configuration sentinels
	Detail  string // Human readable explanation
}

// Error implements error.
func (e *ConfigError) Error() string {
	var b strings.Builder
	b.WriteString("router: ")
	if e.Detail != "" {
		b.WriteString(e.Detail)
	} else {
		b.WriteString(e.Err.Error())
	}
	if e.Variant != "" && !strings.Contains(e.Detail, "`"+e.Variant+"`") {
		fmt.Fprintf(&b, " (variant `%s`)", e.Variant)
	}

	return b.String()
}

// Unwrap returns the sentinel.
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Kind classifies a decode failure.
type Kind uint8

const (
	// KindNoMatchingRoute means no pattern accepted the path and there is no fallback.
	KindNoMatchingRoute Kind = iota + 1

	// KindWrongMethod means the path matched but not with the request method.
	KindWrongMethod

	// KindPathSegment means a placeholder value could not be parsed.
	KindPathSegment

	// KindQueryParam means the query string could not be decoded.
	KindQueryParam

	// KindGuard means a guard rejected the request.
	KindGuard

	// KindBody means the body could not be decoded.
	KindBody
)

var kindNames = map[Kind]string{
	KindNoMatchingRoute: "no_matching_route",
	KindWrongMethod:     "wrong_method",
	KindPathSegment:     "path_segment",
	KindQueryParam:      "query_param",
	KindGuard:           "guard",
	KindBody:            "body",
}

var kindSentinels = map[Kind]error{
	KindNoMatchingRoute: ErrNoMatchingRoute,
	KindWrongMethod:     ErrWrongMethod,
	KindPathSegment:     ErrPathSegment,
	KindQueryParam:      ErrQueryParam,
	KindGuard:           ErrGuard,
	KindBody:            ErrBody,
}

// String returns the snake_case name used in error codes and metrics.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}

	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Error is the single error type returned by decoding.
//
// PathSegment failures report "not found": an unparsable identifier is
// treated like a resource that does not exist, not like a malformed request.
type Error struct {
	Kind    Kind
	Field   string   // Field that failed, for PathSegment, Guard, and Body
	Allowed []string // Allowed methods, for WrongMethod
	Err     error    // Source error, for PathSegment, QueryParam, Guard, and Body
}

// Error implements error.
func (e *Error) Error() string {
	switch e.Kind {
	case KindNoMatchingRoute:
		return ErrNoMatchingRoute.Error()
	case KindWrongMethod:
		return fmt.Sprintf("%s (allowed: %s)", ErrWrongMethod, strings.Join(e.Allowed, ", "))
	case KindQueryParam:
		return fmt.Sprintf("%s: %v", ErrQueryParam, e.Err)
	}

	sentinel := kindSentinels[e.Kind]
	if sentinel == nil {
		sentinel = errors.New(e.Kind.String())
	}
	if e.Field == "" {
		return fmt.Sprintf("%s: %v", sentinel, e.Err)
	}

	return fmt.Sprintf("%s %q: %v", sentinel, e.Field, e.Err)
}

// Unwrap exposes both the kind sentinel and the source error.
func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	if sentinel, ok := kindSentinels[e.Kind]; ok {
		errs = append(errs, sentinel)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}

	return errs
}

// HTTPStatus implements rivaas.dev/errors.ErrorType.
// Guard and body failures use the status of their source error when it has
// one and 500 otherwise.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindNoMatchingRoute, KindPathSegment:
		return http.StatusNotFound
	case KindWrongMethod:
		return http.StatusMethodNotAllowed
	case KindQueryParam:
		return http.StatusBadRequest
	}

	var typed rerrors.ErrorType
	if e.Err != nil && errors.As(e.Err, &typed) {
		return typed.HTTPStatus()
	}

	return http.StatusInternalServerError
}

// Code implements rivaas.dev/errors.ErrorCode.
func (e *Error) Code() string {
	return e.Kind.String()
}

// Details implements rivaas.dev/errors.ErrorDetails for method and field
// information.
func (e *Error) Details() any {
	switch {
	case e.Kind == KindWrongMethod:
		return map[string]any{"allowed": e.Allowed}
	case e.Field != "":
		return map[string]any{"field": e.Field}
	default:
		return nil
	}
}

// AllowHeader returns the value for an Allow response header, or "" when the
// error is not a WrongMethod error.
func (e *Error) AllowHeader() string {
	if e.Kind != KindWrongMethod {
		return ""
	}

	return strings.Join(e.Allowed, ", ")
}

// IsKind reports whether err is a decode *Error of kind k.
func IsKind(err error, k Kind) bool {
	var de *Error
	return errors.As(err, &de) && de.Kind == k
}
