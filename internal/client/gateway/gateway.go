// Package gateway is the single point of outbound calls to the backing
// service. It attaches the bearer credential, classifies every failure and
// surfaces each classified failure exactly once before re-raising it.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/safetrail/safetrail/internal/notification"
)

// Gateway performs authenticated calls against the backing service.
type Gateway struct {
	baseURL    string
	httpClient *http.Client
	notifier   notification.Notifier
	logger     *slog.Logger

	tokenSource      func() string
	unauthorizedHook func(context.Context)
}

// New builds a gateway for the given base URL (for example
// "http://localhost:8080/api").
func New(baseURL string, httpClient *http.Client, notifier notification.Notifier, logger *slog.Logger) *Gateway {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Gateway{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		notifier:   notifier,
		logger:     logger,
	}
}

// SetTokenSource registers the credential source consulted on every request.
// Calls proceed unauthenticated when it returns "".
func (g *Gateway) SetTokenSource(fn func() string) {
	g.tokenSource = fn
}

// SetUnauthorizedHook registers the session-teardown hook invoked on a 401.
// The gateway never mutates the credential itself, it only signals.
func (g *Gateway) SetUnauthorizedHook(fn func(context.Context)) {
	g.unauthorizedHook = fn
}

// Get issues a GET request and decodes the response into out.
func (g *Gateway) Get(ctx context.Context, path string, out any) error {
	return g.Do(ctx, http.MethodGet, path, nil, out)
}

// Post issues a POST request with a JSON body and decodes the response into out.
func (g *Gateway) Post(ctx context.Context, path string, body, out any) error {
	return g.Do(ctx, http.MethodPost, path, body, out)
}

// Put issues a PUT request with a JSON body and decodes the response into out.
func (g *Gateway) Put(ctx context.Context, path string, body, out any) error {
	return g.Do(ctx, http.MethodPut, path, body, out)
}

// Do performs one request. Every failure comes back as *Error with a
// classified kind, after having been surfaced once on the notifier.
func (g *Gateway) Do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if g.tokenSource != nil {
		if token := g.tokenSource(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return g.fail(ctx, &Error{Kind: KindNetworkUnavailable, cause: err})
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return g.fail(ctx, &Error{Kind: KindNetworkUnavailable, cause: err})
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out != nil && len(respBody) > 0 {
			if err := json.Unmarshal(respBody, out); err != nil {
				return fmt.Errorf("decode response: %w", err)
			}
		}
		return nil
	}

	gerr := classify(resp.StatusCode, respBody)
	if gerr.Kind == KindUnauthorized && g.unauthorizedHook != nil {
		g.unauthorizedHook(ctx)
	}
	return g.fail(ctx, gerr)
}

// fail surfaces the classified error exactly once and re-raises it.
func (g *Gateway) fail(ctx context.Context, gerr *Error) error {
	if g.logger != nil {
		g.logger.Error("api call failed",
			slog.String("kind", gerr.Kind.String()),
			slog.Int("status", gerr.Status),
			slog.String("detail", gerr.Detail),
		)
	}
	if g.notifier != nil {
		_ = g.notifier.Send(ctx, notification.Message{Kind: notification.KindError, Body: gerr.Surface()})
	}
	return gerr
}

// classify maps a non-2xx response to the error taxonomy. A structured detail
// message, when present, is carried for verbatim surfacing.
func classify(status int, body []byte) *Error {
	var payload struct {
		Detail string `json:"detail"`
	}
	_ = json.Unmarshal(body, &payload)

	kind := KindRequestFailed
	switch {
	case status == http.StatusUnauthorized:
		kind = KindUnauthorized
	case status == http.StatusForbidden:
		kind = KindForbidden
	case status >= 500:
		kind = KindServerError
	}
	return &Error{Kind: kind, Status: status, Detail: payload.Detail}
}
