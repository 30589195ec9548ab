// Package client is a typed Go client for the listings API. It is driven by
// the same route registry the server binds, caches reads until a write
// invalidates them, and sends credentials through a cookie jar.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ahmetcoskunkizilkaya/roomfinder-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/roomfinder-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/roomfinder-backend/internal/registry"
	"github.com/ahmetcoskunkizilkaya/roomfinder-backend/internal/validation"
	"golang.org/x/sync/singleflight"
)

// APIError is an error answer, or a success status the registry does not
// declare for the operation.
type APIError struct {
	Status  int
	Message string
	Field   string
}

func (e *APIError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("api error %d: %s (field %s)", e.Status, e.Message, e.Field)
	}
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// IsNotFound reports whether err is a 404 APIError.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

type Client struct {
	base          *url.URL
	http          *http.Client
	registry      *registry.Registry
	sessionCookie string

	group singleflight.Group
	mu    sync.Mutex
	cache map[string]interface{}
	// gen is bumped by every invalidation; fetches started under an older
	// generation do not store their result.
	gen uint64
}

type Option func(*Client)

// WithHTTPClient replaces the default HTTP client. Its Jar is replaced when nil.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithSessionCookie sets the name of the session cookie (default "session").
func WithSessionCookie(name string) Option {
	return func(c *Client) { c.sessionCookie = name }
}

func New(baseURL string, reg *registry.Registry, opts ...Option) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	c := &Client{
		base:          base,
		http:          &http.Client{Timeout: 15 * time.Second},
		registry:      reg,
		sessionCookie: "session",
		cache:         make(map[string]interface{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, err
		}
		c.http.Jar = jar
	}
	return c, nil
}

// WithSession installs the session token as a cookie for the API origin.
// Cached reads are dropped since they were made under another identity.
func (c *Client) WithSession(token string) {
	c.http.Jar.SetCookies(c.base, []*http.Cookie{{Name: c.sessionCookie, Value: token, Path: "/"}})
	c.Invalidate()
}

func (c *Client) ListListings(ctx context.Context, filter dto.ListingFilter) ([]models.Listing, error) {
	return c.list(ctx, registry.OpList, filter)
}

// ListOwnListings lists the session owner's listings.
func (c *Client) ListOwnListings(ctx context.Context, filter dto.ListingFilter) ([]models.Listing, error) {
	return c.list(ctx, registry.OpListOwned, filter)
}

func (c *Client) list(ctx context.Context, op registry.Op, filter dto.ListingFilter) ([]models.Listing, error) {
	query := registry.EncodeFilter(filter)
	key := cacheKey(op, c.registry.Route(op).Path, query.Encode())

	v, err := c.cached(ctx, key, func(ctx context.Context) (interface{}, error) {
		var listings []models.Listing
		if err := c.do(ctx, op, nil, query, nil, &listings); err != nil {
			return nil, err
		}
		return listings, nil
	})
	if err != nil {
		return nil, err
	}
	return append([]models.Listing{}, v.([]models.Listing)...), nil
}

// GetListing returns nil without an error when the listing does not exist.
func (c *Client) GetListing(ctx context.Context, id int64) (*models.Listing, error) {
	params := idParams(id)
	key := cacheKey(registry.OpGet, registry.BuildURL(c.registry.Route(registry.OpGet).Path, params), "")

	v, err := c.cached(ctx, key, func(ctx context.Context) (interface{}, error) {
		var listing models.Listing
		if err := c.do(ctx, registry.OpGet, params, nil, nil, &listing); err != nil {
			if IsNotFound(err) {
				return (*models.Listing)(nil), nil
			}
			return nil, err
		}
		return &listing, nil
	})
	if err != nil {
		return nil, err
	}
	listing := v.(*models.Listing)
	if listing == nil {
		return nil, nil
	}
	cp := *listing
	return &cp, nil
}

func (c *Client) CreateListing(ctx context.Context, req dto.CreateListingRequest) (*models.Listing, error) {
	if fe := validation.Struct(req); fe != nil {
		return nil, fe
	}
	var listing models.Listing
	if err := c.do(ctx, registry.OpCreate, nil, nil, req, &listing); err != nil {
		return nil, err
	}
	c.invalidateAfterWrite(listing.ID)
	return &listing, nil
}

func (c *Client) UpdateListing(ctx context.Context, id int64, req dto.UpdateListingRequest) (*models.Listing, error) {
	if fe := validation.Struct(req); fe != nil {
		return nil, fe
	}
	var listing models.Listing
	if err := c.do(ctx, registry.OpUpdate, idParams(id), nil, req, &listing); err != nil {
		return nil, err
	}
	c.invalidateAfterWrite(id)
	return &listing, nil
}

func (c *Client) DeleteListing(ctx context.Context, id int64) error {
	if err := c.do(ctx, registry.OpDelete, idParams(id), nil, nil, nil); err != nil {
		return err
	}
	c.invalidateAfterWrite(id)
	return nil
}

// Invalidate drops every cached read.
func (c *Client) Invalidate() {
	c.mu.Lock()
	c.cache = make(map[string]interface{})
	c.gen++
	c.mu.Unlock()
}

// invalidateAfterWrite drops all cached lists and the get entry for id.
func (c *Client) invalidateAfterWrite(id int64) {
	getKey := cacheKey(registry.OpGet, registry.BuildURL(c.registry.Route(registry.OpGet).Path, idParams(id)), "")

	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	for key := range c.cache {
		if key == getKey || strings.HasPrefix(key, string(registry.OpList)+"|") || strings.HasPrefix(key, string(registry.OpListOwned)+"|") {
			delete(c.cache, key)
		}
	}
}

// cached serves key from the cache, or runs fetch once for all concurrent
// callers of the current generation and stores the result. The fetch is
// detached from the caller's cancellation so one caller giving up does not
// fail the others; each caller still returns early on its own ctx.
func (c *Client) cached(ctx context.Context, key string, fetch func(context.Context) (interface{}, error)) (interface{}, error) {
	c.mu.Lock()
	if v, ok := c.cache[key]; ok {
		c.mu.Unlock()
		return v, nil
	}
	gen := c.gen
	c.mu.Unlock()

	fetchCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key+"#"+strconv.FormatUint(gen, 10), func() (interface{}, error) {
		if v, ok := c.lookup(key); ok {
			return v, nil
		}
		v, err := fetch(fetchCtx)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		if c.gen == gen {
			c.cache[key] = v
		}
		c.mu.Unlock()
		return v, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		return res.Val, res.Err
	}
}

func (c *Client) lookup(key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.cache[key]
	return v, ok
}

// do sends one request for op and decodes the declared response into out.
func (c *Client) do(ctx context.Context, op registry.Op, params map[string]string, query url.Values, body, out interface{}) error {
	route := c.registry.Route(op)

	target := c.base.String() + registry.BuildURL(route.Path, params)
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode %s request: %w", op, err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, route.Method, target, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", route.Method, route.Path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read %s response: %w", op, err)
	}

	if resp.StatusCode >= 400 {
		var er dto.ErrorResponse
		if err := json.Unmarshal(raw, &er); err != nil || er.Message == "" {
			er.Message = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Message: er.Message, Field: er.Field}
	}
	schema, declared := route.Expects(resp.StatusCode)
	if !declared {
		return &APIError{Status: resp.StatusCode, Message: "undeclared response status for " + string(op)}
	}
	return decode(schema, raw, out)
}

func decode(schema registry.Schema, raw []byte, out interface{}) error {
	switch schema {
	case registry.SchemaListing:
		listing, ok := out.(*models.Listing)
		if !ok {
			return fmt.Errorf("cannot decode %s into %T", schema, out)
		}
		if err := json.Unmarshal(raw, listing); err != nil {
			return fmt.Errorf("malformed %s response: %w", schema, err)
		}
		if fe := validation.Struct(listing); fe != nil {
			return fmt.Errorf("invalid listing in response: %w", fe)
		}
	case registry.SchemaListingList:
		listings, ok := out.(*[]models.Listing)
		if !ok {
			return fmt.Errorf("cannot decode %s into %T", schema, out)
		}
		if err := json.Unmarshal(raw, listings); err != nil {
			return fmt.Errorf("malformed %s response: %w", schema, err)
		}
		if *listings == nil {
			*listings = []models.Listing{}
		}
		for i := range *listings {
			if fe := validation.Struct(&(*listings)[i]); fe != nil {
				return fmt.Errorf("invalid listing %d in response: %w", i, fe)
			}
		}
	}
	return nil
}

func idParams(id int64) map[string]string {
	return map[string]string{"id": strconv.FormatInt(id, 10)}
}

func cacheKey(op registry.Op, path, query string) string {
	return string(op) + "|" + path + "?" + query
}
