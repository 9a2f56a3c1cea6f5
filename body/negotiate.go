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
	"fmt"
	"io"
	"mime"
	"net/http"
	"reflect"
	"strings"

	"rivaas.dev/dispatch/router"
)

// Common media types.
const (
	MediaJSON     = "application/json"
	MediaXML      = "application/xml"
	MediaForm     = "application/x-www-form-urlencoded"
	MediaYAML     = "application/yaml"
	MediaTOML     = "application/toml"
	MediaMsgPack  = "application/msgpack"
	MediaProto    = "application/x-protobuf"
	MediaText     = "text/plain"
	MediaAnything = "*/*"
)

// Media pairs a media type with the decoder used for it.
type Media struct {
	Type    string
	Decoder router.BodyDecoder
}

// Negotiator selects a decoder from the Content-Type header.
type Negotiator struct {
	media    []Media
	byType   map[string]router.BodyDecoder
	optional bool
	ctx      reflect.Type
}

// NegotiateOption configures a Negotiator.
type NegotiateOption func(*Negotiator)

// DefaultToFirst makes requests without a Content-Type use the first media
// type instead of failing.
func DefaultToFirst() NegotiateOption {
	return func(n *Negotiator) {
		n.optional = true
	}
}

// Negotiate returns a decoder dispatching on Content-Type. Parameters such
// as charset are ignored and matching is case-insensitive. A "*/*" entry
// accepts any media type not listed.
//
// It panics when media is empty or when the decoders need different request
// contexts.
//
//	body.Negotiate([]body.Media{
//	    {Type: body.MediaJSON, Decoder: body.JSON[Order]()},
//	    {Type: body.MediaXML, Decoder: body.XML[Order]()},
//	})
func Negotiate(media []Media, opts ...NegotiateOption) *Negotiator {
	if len(media) == 0 {
		panic("body.Negotiate: no media types")
	}

	n := &Negotiator{
		media:  media,
		byType: make(map[string]router.BodyDecoder, len(media)),
		ctx:    media[0].Decoder.Context(),
	}
	for _, m := range media {
		if m.Decoder.Context() != n.ctx {
			panic(fmt.Sprintf("body.Negotiate: %s needs context %v, %s needs %v",
				media[0].Type, n.ctx, m.Type, m.Decoder.Context()))
		}
		key := strings.ToLower(m.Type)
		if _, dup := n.byType[key]; !dup {
			n.byType[key] = m.Decoder
		}
	}
	for _, opt := range opts {
		opt(n)
	}

	return n
}

// Context implements router.BodyDecoder.
func (n *Negotiator) Context() reflect.Type {
	return n.ctx
}

// DecodeBody implements router.BodyDecoder.
func (n *Negotiator) DecodeBody(ctx context.Context, head *http.Request, body io.Reader, sub any) (any, error) {
	d, err := n.pick(head.Header.Get("Content-Type"))
	if err != nil {
		return nil, err
	}

	return d.DecodeBody(ctx, head, body, sub)
}

// Supported lists the media types in declaration order.
func (n *Negotiator) Supported() []string {
	out := make([]string, len(n.media))
	for i, m := range n.media {
		out[i] = m.Type
	}

	return out
}

func (n *Negotiator) pick(header string) (router.BodyDecoder, error) {
	if header == "" {
		if n.optional {
			return n.media[0].Decoder, nil
		}

		return nil, &UnsupportedMediaTypeError{Supported: n.Supported()}
	}

	mediaType, _, err := mime.ParseMediaType(header)
	if err != nil {
		return nil, &UnsupportedMediaTypeError{MediaType: header, Supported: n.Supported()}
	}
	if d, ok := n.byType[mediaType]; ok {
		return d, nil
	}
	if d, ok := n.byType[MediaAnything]; ok {
		return d, nil
	}

	return nil, &UnsupportedMediaTypeError{MediaType: mediaType, Supported: n.Supported()}
}
