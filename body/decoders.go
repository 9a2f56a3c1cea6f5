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

package body

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"reflect"

	"rivaas.dev/binding"
	"rivaas.dev/binding/msgpack"
	bproto "rivaas.dev/binding/proto"
	"rivaas.dev/binding/toml"
	"rivaas.dev/binding/yaml"

	"rivaas.dev/dispatch/router"
)

// Format names used in DecodeError.
const (
	FormatJSON    = "json"
	FormatXML     = "xml"
	FormatForm    = "form"
	FormatYAML    = "yaml"
	FormatTOML    = "toml"
	FormatMsgPack = "msgpack"
	FormatProto   = "protobuf"
	FormatText    = "text"
	FormatRaw     = "raw"
)

// decoder wraps fn as a body decoder that needs no request context.
func decoder[V any](format string, fn func(io.Reader) (V, error)) router.BodyDecoder {
	return router.BodyFunc[router.NoContext, V](
		func(_ context.Context, _ *http.Request, body io.Reader, _ router.NoContext) (V, error) {
			v, err := fn(body)
			if err != nil {
				var zero V
				return zero, &DecodeError{Format: format, Err: err}
			}

			return v, nil
		})
}

// JSON decodes a JSON body into V.
func JSON[V any](opts ...binding.Option) router.BodyDecoder {
	return decoder(FormatJSON, func(r io.Reader) (V, error) {
		return binding.JSONReader[V](r, opts...)
	})
}

// XML decodes an XML body into V.
func XML[V any](opts ...binding.Option) router.BodyDecoder {
	return decoder(FormatXML, func(r io.Reader) (V, error) {
		return binding.XMLReader[V](r, opts...)
	})
}

// Form decodes an application/x-www-form-urlencoded body into V using its
// `form` tags.
func Form[V any](opts ...binding.Option) router.BodyDecoder {
	return decoder(FormatForm, func(r io.Reader) (V, error) {
		raw, err := io.ReadAll(r)
		if err != nil {
			var zero V
			return zero, err
		}
		values, err := url.ParseQuery(string(raw))
		if err != nil {
			var zero V
			return zero, err
		}

		return binding.Form[V](values, opts...)
	})
}

// YAML decodes a YAML body into V.
func YAML[V any](opts ...yaml.Option) router.BodyDecoder {
	return decoder(FormatYAML, func(r io.Reader) (V, error) {
		return yaml.YAMLReader[V](r, opts...)
	})
}

// TOML decodes a TOML body into V.
func TOML[V any](opts ...toml.Option) router.BodyDecoder {
	return decoder(FormatTOML, func(r io.Reader) (V, error) {
		return toml.TOMLReader[V](r, opts...)
	})
}

// MsgPack decodes a MessagePack body into V.
func MsgPack[V any](opts ...msgpack.Option) router.BodyDecoder {
	return decoder(FormatMsgPack, func(r io.Reader) (V, error) {
		return msgpack.MsgPackReader[V](r, opts...)
	})
}

// Proto decodes a Protocol Buffers body into V, a pointer to a generated
// message type.
//
//	router.Body("user", body.Proto[*pb.User]())
func Proto[V bproto.Message](opts ...bproto.Option) router.BodyDecoder {
	return decoder(FormatProto, func(r io.Reader) (V, error) {
		return bproto.ProtoReader[V](r, opts...)
	})
}

// Text reads the whole body as a string.
var Text = decoder(FormatText, func(r io.Reader) (string, error) {
	b, err := io.ReadAll(r)
	return string(b), err
})

// Bytes reads the whole body.
var Bytes = decoder(FormatRaw, io.ReadAll)

// NonEmpty wraps d so that an empty body fails with ErrEmptyBody instead of
// reaching d.
func NonEmpty(d router.BodyDecoder) router.BodyDecoder {
	return &nonEmpty{next: d}
}

type nonEmpty struct {
	next router.BodyDecoder
}

func (n *nonEmpty) Context() reflect.Type { return n.next.Context() }

func (n *nonEmpty) DecodeBody(ctx context.Context, head *http.Request, body io.Reader, sub any) (any, error) {
	peeked, ok, err := peek(body)
	if err != nil {
		return nil, &DecodeError{Format: "body", Err: err}
	}
	if !ok {
		return nil, &DecodeError{Format: "body", Err: ErrEmptyBody}
	}

	return n.next.DecodeBody(ctx, head, peeked, sub)
}
