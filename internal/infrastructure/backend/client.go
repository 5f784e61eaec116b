package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/sangkips/trademate-console/internal/config"
	"github.com/sangkips/trademate-console/internal/domain/entity"
	"github.com/sangkips/trademate-console/internal/logging"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/oauth2"
)

type credentialsKey struct{}

type credentials struct {
	baseURL string
	token   string
}

// WithCredentials attaches the signed-in user's backend base URL and bearer token to ctx.
// Every call made with the returned context is authenticated as that user.
func WithCredentials(ctx context.Context, baseURL, token string) context.Context {
	return context.WithValue(ctx, credentialsKey{}, credentials{baseURL: baseURL, token: token})
}

func credentialsFrom(ctx context.Context) credentials {
	if c, ok := ctx.Value(credentialsKey{}).(credentials); ok {
		return c
	}
	return credentials{}
}

// Client talks to the TradeMate REST API. One Client serves every session.
type Client struct {
	http    *http.Client
	baseURL string
}

// NewClient creates a traced client for the configured backend
func NewClient(cfg *config.BackendConfig) *Client {
	transport := &http.Transport{
		MaxIdleConns:        50,
		MaxIdleConnsPerHost: 20,
		IdleConnTimeout:     90 * time.Second,
	}
	return NewClientWithTransport(cfg, transport)
}

// NewClientWithTransport lets tests substitute the underlying round tripper
func NewClientWithTransport(cfg *config.BackendConfig, base http.RoundTripper) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		http: &http.Client{
			Transport: otelhttp.NewTransport(base),
			Timeout:   timeout,
		},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
	}
}

// BaseURL returns the default backend URL stored in new sessions
func (c *Client) BaseURL() string {
	return c.baseURL
}

// httpFor returns a client that adds the context's bearer token, and the base URL to call.
func (c *Client) httpFor(ctx context.Context) (*http.Client, string) {
	cred := credentialsFrom(ctx)
	base := c.baseURL
	if cred.baseURL != "" {
		base = strings.TrimRight(cred.baseURL, "/")
	}
	if cred.token == "" {
		return c.http, base
	}
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cred.token, TokenType: "Bearer"})
	return &http.Client{
		Transport: &oauth2.Transport{Source: src, Base: c.http.Transport},
		Timeout:   c.http.Timeout,
	}, base
}

// do sends a request and decodes a 2xx JSON response into out (when out is non-nil).
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string, out any) error {
	client, base := c.httpFor(ctx)
	target := base + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("backend: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		logging.FromContext(ctx).Warn("backend request failed", "method", method, "path", path, "error", err)
		return &Error{Method: method, Path: path, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Method: method, Path: path, Status: resp.StatusCode, Err: err}
	}

	logging.FromContext(ctx).Debug("backend request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"latency", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return parseError(method, path, resp.StatusCode, data)
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &Error{Method: method, Path: path, Status: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, "", out)
}

func (c *Client) sendJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("backend: encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}
	return c.do(ctx, method, path, nil, body, "application/json", out)
}

// formField is one text part of a multipart body. Order is kept.
type formField struct {
	name  string
	value string
}

func (c *Client) sendMultipart(ctx context.Context, method, path string, fields []formField, files []entity.Upload, out any) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, f := range fields {
		if err := w.WriteField(f.name, f.value); err != nil {
			return fmt.Errorf("backend: write field %s: %w", f.name, err)
		}
	}
	for _, f := range files {
		if len(f.Data) == 0 {
			continue
		}
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, f.Field, f.Filename))
		ct := f.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h.Set("Content-Type", ct)
		part, err := w.CreatePart(h)
		if err != nil {
			return fmt.Errorf("backend: create part %s: %w", f.Field, err)
		}
		if _, err := part.Write(f.Data); err != nil {
			return fmt.Errorf("backend: write part %s: %w", f.Field, err)
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("backend: close multipart: %w", err)
	}
	return c.do(ctx, method, path, nil, &buf, w.FormDataContentType(), out)
}
