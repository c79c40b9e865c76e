// Package api is the data-access layer for the Halver backend. Each backend
// endpoint gets one operation composed from the HTTP client, its response
// schema, and the query-key registry; reads go through the shared query
// cache and mutations apply their declared invalidation sets on success.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"sync"

	"github.com/go-playground/validator"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/inisoye/halver-sub001/internal/cache"
	"github.com/inisoye/halver-sub001/internal/config"
	"github.com/inisoye/halver-sub001/internal/store"
)

// authMode selects whether a request carries the session token. Pre-auth
// endpoints (login, registration, social sign-in) use authNone; everything
// else requires the token header.
type authMode int

const (
	authNone authMode = iota
	authRequired
)

// AlertFunc is called to surface a user-facing dialog. The only hard-coded
// caller is session teardown on an authentication rejection.
type AlertFunc func(title, message string)

// Client is the single configured HTTP client for the backend, shared by
// every operation. It owns the mutable session-token slot, the query cache
// handle, and the persistent store handle so that session teardown can
// coordinate all three. Constructed once at process start and passed down;
// safe for concurrent use.
type Client struct {
	baseURL  string
	http     *http.Client
	store    *store.Store
	cache    *cache.Store
	validate *validator.Validate
	logger   *slog.Logger
	alert    AlertFunc
	retry    retryPolicy
	group    singleflight.Group

	mu    sync.RWMutex
	token string
}

// NewClient builds the client from configuration. Any token already
// persisted in the store is attached immediately, so a previously signed-in
// user stays authenticated across launches.
func NewClient(cfg config.APIConfig, st *store.Store, qc *cache.Store, logger *slog.Logger, alert AlertFunc) *Client {
	c := &Client{
		baseURL: cfg.BaseURL,
		http: &http.Client{
			Timeout: cfg.Timeout,
		},
		store:    st,
		cache:    qc,
		validate: validator.New(),
		logger:   logger,
		alert:    alert,
		retry:    newRetryPolicy(cfg.Retry),
	}
	if token, ok := st.Token(); ok {
		c.token = token
	}
	return c
}

// TokenSet reports whether a session token is currently attached.
func (c *Client) TokenSet() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token != ""
}

// SetToken attaches the token to subsequent authenticated requests and
// persists it. Called immediately after a login mutation succeeds.
func (c *Client) SetToken(token string) error {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
	return c.store.SetToken(token)
}

// ClearToken detaches the token from subsequent requests and removes it
// from the store.
func (c *Client) ClearToken() error {
	c.mu.Lock()
	c.token = ""
	c.mu.Unlock()
	return c.store.ClearToken()
}

func (c *Client) currentToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// do performs one JSON request. Non-2xx responses come back as *APIError
// with status and body; transport failures are wrapped and returned as-is.
// Mutating methods carry an Idempotency-Key header so an interrupted write
// can be retried by the backend without double-applying.
func (c *Client) do(ctx context.Context, method, path string, body any) ([]byte, error) {
	// struct{} payloads mean "no request body" (logout, deletes).
	if _, empty := body.(struct{}); empty {
		body = nil
	}

	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("error marshalling json: %w", err)
		}
		reader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method != http.MethodGet {
		req.Header.Set("Idempotency-Key", uuid.New().String())
	}
	if mode := authModeFromContext(ctx); mode == authRequired {
		if token := c.currentToken(); token != "" {
			req.Header.Set("Authorization", "Token "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Body:       data,
			Message:    http.StatusText(resp.StatusCode),
		}
	}

	return data, nil
}

// doMultipart performs a file-bearing request with multipart encoding. Used
// by the upload mutations only.
func (c *Client) doMultipart(ctx context.Context, method, path, field, filename string, r io.Reader) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fw, err := mw.CreateFormFile(field, filename)
	if err != nil {
		return fmt.Errorf("error building multipart body: %w", err)
	}
	if _, err := io.Copy(fw, r); err != nil {
		return fmt.Errorf("error reading upload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("error finalizing multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Idempotency-Key", uuid.New().String())
	if token := c.currentToken(); token != "" {
		req.Header.Set("Authorization", "Token "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(resp.Body)
		return &APIError{
			StatusCode: resp.StatusCode,
			Body:       data,
			Message:    http.StatusText(resp.StatusCode),
		}
	}
	return nil
}

// authModeKey scopes the per-request auth flag to the context, standing in
// for the second tokenless client instance of the original design.
type authModeKey struct{}

func withAuthMode(ctx context.Context, mode authMode) context.Context {
	return context.WithValue(ctx, authModeKey{}, mode)
}

func authModeFromContext(ctx context.Context) authMode {
	if mode, ok := ctx.Value(authModeKey{}).(authMode); ok {
		return mode
	}
	return authRequired
}

// teardown is the coordinated response to the server rejecting our
// credential: drop the whole cache, detach the token, wipe local storage,
// and surface one alert. Idempotent while signed out, so concurrent
// rejections produce a single alert.
func (c *Client) teardown(cause error) {
	c.mu.Lock()
	had := c.token != ""
	c.token = ""
	c.mu.Unlock()

	if !had {
		return
	}

	c.cache.Clear()
	if err := c.store.Wipe(); err != nil {
		c.logger.Error("failed to wipe local store during teardown", "error", err)
	}
	c.logger.Warn("session rejected by server, signed out", "cause", cause)

	if c.alert != nil {
		c.alert("Signed out", "Your session has expired. Please sign in again.")
	}
}

// signOutLocally clears token, cache, and store without contacting the
// server. Shared by logout and teardown-adjacent flows.
func (c *Client) signOutLocally() error {
	c.cache.Clear()
	if err := c.ClearToken(); err != nil {
		return err
	}
	return c.store.Wipe()
}
