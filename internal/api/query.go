package api

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"time"

	"github.com/inisoye/halver-sub001/internal/cache"
)

// readOptions is the freshness window applied to validated resource reads:
// remounting a screen within the window reuses the last result instead of
// refetching. Slow-moving resources override it (see bankListOptions).
var readOptions = cache.Options{StaleTime: time.Minute}

// queryOptions configure one read operation.
type queryOptions struct {
	// cacheOpts override the cache defaults for large or slow-moving
	// resources (e.g. the bank list keeps a 10 minute staleness window).
	cacheOpts cache.Options

	// passthrough skips response schema validation. Reserved for the
	// high-volume list endpoints where validating every element was
	// judged too costly; see DESIGN.md before widening this set.
	passthrough bool

	// auth selects the tokenless or authenticated request path.
	auth authMode

	// sessionScoped marks a conditional-auth query: disabled entirely
	// without a token, and an auth rejection tears the session down.
	sessionScoped bool
}

// runQuery is the single read path. Cache hit within the staleness window
// returns without touching the network; otherwise one fetch runs per key,
// with concurrent identical reads collapsed onto it, and the validated
// result repopulates the cache.
func runQuery[T any](ctx context.Context, c *Client, key cache.Key, path string, opts queryOptions) (T, error) {
	var zero T

	if opts.sessionScoped && !c.TokenSet() {
		return zero, ErrNoToken
	}

	if v, res := c.cache.Get(key); res == cache.Fresh {
		if typed, ok := v.(T); ok {
			return typed, nil
		}
	}

	v, err, _ := c.group.Do(key.String(), func() (any, error) {
		reqCtx := withAuthMode(ctx, opts.auth)
		data, err := c.doRead(reqCtx, path)
		if err != nil {
			if opts.sessionScoped && IsAuthRejection(err) {
				c.teardown(err)
			}
			return nil, err
		}

		out, err := decodeResponse[T](c, data, opts.passthrough)
		if err != nil {
			return nil, err
		}

		c.cache.Set(key, out, opts.cacheOpts)
		return out, nil
	})
	if err != nil {
		return zero, err
	}
	return v.(T), nil
}

// prefetchQuery warms the cache ahead of navigation and discards the value.
// Failures are logged, never surfaced; the later mounted read will retry.
func prefetchQuery[T any](ctx context.Context, c *Client, key cache.Key, path string, opts queryOptions) {
	if _, err := runQuery[T](ctx, c, key, path, opts); err != nil {
		c.logger.Debug("prefetch failed", "key", key.String(), "error", err)
	}
}

// runMutation performs one write. The response is decoded into Resp (an
// empty body is allowed for delete-style endpoints), and on success every
// prefix declared for the mutation name is marked stale. Nothing is
// invalidated on failure.
func runMutation[Req, Resp any](ctx context.Context, c *Client, name, method, path string, payload Req, opts queryOptions) (Resp, error) {
	var out Resp

	reqCtx := withAuthMode(ctx, opts.auth)
	data, err := c.do(reqCtx, method, path, payload)
	if err != nil {
		return out, err
	}

	if len(data) > 0 {
		if err := json.Unmarshal(data, &out); err != nil {
			return out, fmt.Errorf("%w: decode %s response: %v", ErrInvalidResponse, name, err)
		}
	}

	set := invalidations[name]
	for _, prefix := range set {
		c.cache.Invalidate(prefix)
	}
	if len(set) > 0 {
		c.logger.Debug("mutation invalidated cached reads", "mutation", name, "prefixes", len(set))
	}

	return out, nil
}

// decodeResponse parses a response body into its typed shape and validates
// it against the declared schema unless the endpoint is pass-through. A
// payload that fails validation is never returned as valid data.
func decodeResponse[T any](c *Client, data []byte, passthrough bool) (T, error) {
	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if !passthrough {
		if err := c.validateShape(out); err != nil {
			return out, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
		}
	}
	return out, nil
}

// validateShape applies struct-tag validation to a decoded payload. List
// responses are validated element by element since the validator only
// accepts structs at the top level.
func (c *Client) validateShape(v any) error {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			if err := c.validateShape(rv.Index(i).Interface()); err != nil {
				return err
			}
		}
		return nil
	case reflect.Struct:
		return c.validate.Struct(rv.Interface())
	default:
		return nil
	}
}

// Page is the server's pagination envelope. Next is nil on the final page;
// consumers request successive pages until it is absent.
type Page[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results" validate:"dive"`
}

// HasNext reports whether another page exists.
func (p Page[T]) HasNext() bool {
	return p.Next != nil
}
