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
	"fmt"
	"strings"
	"time"

	"rivaas.dev/dispatch/body"
	"rivaas.dev/dispatch/guard"
	"rivaas.dev/dispatch/router"
)

// Document is the value produced by the built-in structured body decoders.
type Document = map[string]any

func registerBuiltins(r *Registry) {
	for name, p := range map[string]router.Parser{
		"string":  router.String,
		"int":     router.Int,
		"int64":   router.Int64,
		"uint":    router.Uint,
		"uint32":  router.Uint32,
		"uint64":  router.Uint64,
		"float64": router.Float64,
		"bool":    router.Bool,
		"uuid":    router.UUID,
	} {
		mustRegister(r.RegisterParser(name, Static(p)))
	}
	mustRegister(r.RegisterParser("enum", enumParser))
	mustRegister(r.RegisterParser("time", timeParser))
	mustRegister(r.RegisterParser("duration", durationParser))

	mustRegister(r.RegisterQuery("raw", Static(router.RawQuery)))

	mustRegister(r.RegisterGuard("basic_auth", basicAuthGuard))
	mustRegister(r.RegisterGuard("header", headerGuard(guard.Header)))
	mustRegister(r.RegisterGuard("optional_header", headerGuard(guard.OptionalHeader)))
	mustRegister(r.RegisterGuard("content_type", contentTypeGuard))
	mustRegister(r.RegisterGuard("rate_limit", rateLimitGuard))
	mustRegister(r.RegisterGuard("request_id", requestIDGuard))

	structured := map[string]router.BodyDecoder{
		"json":    body.JSON[Document](),
		"yaml":    body.YAML[Document](),
		"toml":    body.TOML[Document](),
		"msgpack": body.MsgPack[Document](),
	}
	structured["auto"] = body.Negotiate([]body.Media{
		{Type: body.MediaJSON, Decoder: structured["json"]},
		{Type: body.MediaYAML, Decoder: structured["yaml"]},
		{Type: body.MediaTOML, Decoder: structured["toml"]},
		{Type: body.MediaMsgPack, Decoder: structured["msgpack"]},
	}, body.DefaultToFirst())
	structured["text"] = body.Text
	structured["bytes"] = body.Bytes
	for name, d := range structured {
		mustRegister(r.RegisterBody(name, bodyFactory(d)))
	}
}

func mustRegister(err error) {
	if err != nil {
		panic(err)
	}
}

func enumParser(args Args) (router.Parser, error) {
	var cfg struct {
		Values []string `mapstructure:"values"`
	}
	if err := args.Decode(&cfg); err != nil {
		return nil, err
	}
	if len(cfg.Values) == 0 {
		return nil, fmt.Errorf("%w: values must not be empty", ErrInvalidArgs)
	}

	return router.Enum(cfg.Values...), nil
}

func timeParser(args Args) (router.Parser, error) {
	var cfg struct {
		Layouts []string `mapstructure:"layouts"`
	}
	if err := args.Decode(&cfg); err != nil {
		return nil, err
	}
	if len(cfg.Layouts) == 0 {
		cfg.Layouts = []string{time.RFC3339}
	}

	return router.Time(cfg.Layouts...), nil
}

func durationParser(args Args) (router.Parser, error) {
	var cfg struct {
		Aliases map[string]time.Duration `mapstructure:"aliases"`
	}
	if err := args.Decode(&cfg); err != nil {
		return nil, err
	}

	return router.Duration(cfg.Aliases), nil
}

func basicAuthGuard(args Args) (router.Guard, error) {
	var cfg struct {
		Users map[string]string `mapstructure:"users"`
		Realm string            `mapstructure:"realm"`
	}
	if err := args.Decode(&cfg); err != nil {
		return nil, err
	}
	if len(cfg.Users) == 0 {
		return nil, fmt.Errorf("%w: users must not be empty", ErrInvalidArgs)
	}

	opts := []guard.BasicOption{guard.WithUsers(cfg.Users)}
	if cfg.Realm != "" {
		opts = append(opts, guard.WithRealm(cfg.Realm))
	}

	return guard.BasicAuth(opts...), nil
}

func headerGuard(build func(name string) router.Guard) Factory[router.Guard] {
	return func(args Args) (router.Guard, error) {
		var cfg struct {
			Header string `mapstructure:"header"`
		}
		if err := args.Decode(&cfg); err != nil {
			return nil, err
		}
		if cfg.Header == "" {
			return nil, fmt.Errorf("%w: header is required", ErrInvalidArgs)
		}

		return build(cfg.Header), nil
	}
}

func contentTypeGuard(args Args) (router.Guard, error) {
	var cfg struct {
		Types []string `mapstructure:"types"`
	}
	if err := args.Decode(&cfg); err != nil {
		return nil, err
	}
	if len(cfg.Types) == 0 {
		return nil, fmt.Errorf("%w: types must not be empty", ErrInvalidArgs)
	}

	return guard.ContentType(cfg.Types...), nil
}

func rateLimitGuard(args Args) (router.Guard, error) {
	var cfg struct {
		Rate           int           `mapstructure:"rate"`
		Burst          int           `mapstructure:"burst"`
		Key            string        `mapstructure:"key"`
		Cleanup        time.Duration `mapstructure:"cleanup"`
		TrustedProxies []string      `mapstructure:"trusted_proxies"`
		ProxyHeaders   []string      `mapstructure:"proxy_headers"`
		MaxHops        int           `mapstructure:"max_hops"`
	}
	if err := args.Decode(&cfg); err != nil {
		return nil, err
	}
	if cfg.Rate <= 0 {
		return nil, fmt.Errorf("%w: rate must be positive", ErrInvalidArgs)
	}
	if cfg.Burst == 0 {
		cfg.Burst = cfg.Rate
	}

	var key guard.KeyFunc
	switch name, found := strings.CutPrefix(cfg.Key, "header:"); {
	case (cfg.Key == "" || cfg.Key == "ip") && len(cfg.TrustedProxies) > 0:
		opts := []guard.ProxyOption{guard.WithProxyMaxHops(cfg.MaxHops)}
		if len(cfg.ProxyHeaders) > 0 {
			opts = append(opts, guard.WithProxyHeaders(cfg.ProxyHeaders...))
		}
		k, err := guard.TrustedClientIP(cfg.TrustedProxies, opts...)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidArgs, err)
		}
		key = k
	case cfg.Key == "" || cfg.Key == "ip":
		key = guard.ClientIP
	case found && name != "":
		key = guard.HeaderKey(name)
	default:
		return nil, fmt.Errorf("%w: key must be \"ip\" or \"header:<name>\", got %q", ErrInvalidArgs, cfg.Key)
	}

	return guard.RateLimit(cfg.Rate, cfg.Burst,
		guard.WithKey(key),
		guard.WithCleanupInterval(cfg.Cleanup),
	), nil
}

func requestIDGuard(args Args) (router.Guard, error) {
	var cfg struct {
		Header        string `mapstructure:"header"`
		AllowClientID *bool  `mapstructure:"allow_client_id"`
	}
	if err := args.Decode(&cfg); err != nil {
		return nil, err
	}

	var opts []guard.RequestIDOption
	if cfg.Header != "" {
		opts = append(opts, guard.WithIDHeader(cfg.Header))
	}
	if cfg.AllowClientID != nil {
		opts = append(opts, guard.WithAllowClientID(*cfg.AllowClientID))
	}

	return guard.RequestID(opts...), nil
}

func bodyFactory(d router.BodyDecoder) Factory[router.BodyDecoder] {
	return func(args Args) (router.BodyDecoder, error) {
		var cfg struct {
			Limit    int64 `mapstructure:"limit"`
			Required bool  `mapstructure:"required"`
		}
		if err := args.Decode(&cfg); err != nil {
			return nil, err
		}
		if cfg.Limit < 0 {
			return nil, fmt.Errorf("%w: limit must not be negative", ErrInvalidArgs)
		}

		out := d
		if cfg.Required {
			out = body.NonEmpty(out)
		}
		if cfg.Limit > 0 {
			out = body.Limit(cfg.Limit, out)
		}

		return out, nil
	}
}
