// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package messaging

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/time/rate"

	"github.com/bureau-foundation/timezoner/lib/clock"
	"github.com/bureau-foundation/timezoner/lib/secret"
)

// maxResponseSize caps how much of a response body is read. A busy
// initial sync is the largest response timezoner sees.
const maxResponseSize = 32 << 20

// ClientConfig configures a Client.
type ClientConfig struct {
	// HomeserverURL is the base URL, e.g. "https://matrix.example.org".
	HomeserverURL string

	// HTTPClient defaults to http.DefaultClient. Its timeout must exceed
	// the sync long-poll timeout.
	HTTPClient *http.Client

	// SendRate is the sustained outbound events per second. Zero means
	// unlimited.
	SendRate float64

	// SendBurst defaults to 1 when SendRate is set.
	SendBurst int

	// Clock times retry waits. Defaults to the system clock.
	Clock clock.Clock

	Logger *slog.Logger
}

// Client is the unauthenticated part of a Matrix connection, shared by
// sessions.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	clock      clock.Clock
	logger     *slog.Logger
}

// NewClient validates config and creates a Client.
func NewClient(config ClientConfig) (*Client, error) {
	if config.HomeserverURL == "" {
		return nil, fmt.Errorf("messaging: HomeserverURL is required")
	}
	parsed, err := url.Parse(config.HomeserverURL)
	if err != nil {
		return nil, fmt.Errorf("messaging: invalid HomeserverURL %q: %w", config.HomeserverURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("messaging: HomeserverURL %q must be http or https", config.HomeserverURL)
	}

	client := &Client{
		baseURL:    strings.TrimRight(config.HomeserverURL, "/"),
		httpClient: config.HTTPClient,
		limiter:    rate.NewLimiter(rate.Inf, 0),
		clock:      config.Clock,
		logger:     config.Logger,
	}
	if client.httpClient == nil {
		client.httpClient = http.DefaultClient
	}
	if config.SendRate > 0 {
		client.limiter = rate.NewLimiter(rate.Limit(config.SendRate), max(config.SendBurst, 1))
	}
	if client.clock == nil {
		client.clock = clock.Real()
	}
	if client.logger == nil {
		client.logger = slog.Default()
	}
	return client, nil
}

// doRequest sends a JSON request and returns the body of a 2xx
// response. Other statuses become *MatrixError. accessToken and query
// may be nil.
func (c *Client) doRequest(ctx context.Context, method, path string, accessToken *secret.Buffer, requestBody any, query url.Values) ([]byte, error) {
	requestURL := c.baseURL + path
	if len(query) > 0 {
		requestURL += "?" + query.Encode()
	}

	var bodyReader io.Reader
	if requestBody != nil {
		encoded, err := json.Marshal(requestBody)
		if err != nil {
			return nil, fmt.Errorf("messaging: encoding request body: %w", err)
		}
		bodyReader = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, requestURL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("messaging: building request: %w", err)
	}
	if requestBody != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if accessToken != nil {
		request.Header.Set("Authorization", "Bearer "+accessToken.String())
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("messaging: %s %s: %w", method, path, err)
	}
	defer response.Body.Close()

	responseBody, err := io.ReadAll(io.LimitReader(response.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("messaging: reading response body: %w", err)
	}
	if response.StatusCode >= 200 && response.StatusCode < 300 {
		return responseBody, nil
	}

	var matrixErr MatrixError
	if err := json.Unmarshal(responseBody, &matrixErr); err != nil || matrixErr.Code == "" {
		matrixErr = MatrixError{Code: ErrCodeUnknown, Message: strings.TrimSpace(string(responseBody))}
	}
	matrixErr.StatusCode = response.StatusCode
	return nil, &matrixErr
}
