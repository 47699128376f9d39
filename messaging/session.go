// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/bureau-foundation/timezoner/lib/secret"
)

// Session is the Matrix surface the rest of timezoner uses.
// *DirectSession implements it.
type Session interface {
	UserID() string
	WhoAmI(ctx context.Context) (string, error)
	Sync(ctx context.Context, options SyncOptions) (*SyncResponse, error)
	JoinRoom(ctx context.Context, roomID string) (string, error)
	SendEvent(ctx context.Context, roomID, eventType string, content any) (string, error)
	SendMessage(ctx context.Context, roomID string, content MessageContent) (string, error)
}

// maxSendAttempts bounds retries of a send rejected with
// M_LIMIT_EXCEEDED.
const maxSendAttempts = 3

// DirectSession talks to the homeserver with an access token.
type DirectSession struct {
	client      *Client
	accessToken *secret.Buffer
	userID      string
}

// SessionFromToken builds a session for userID. accessToken is owned by
// the session and wiped by Close. The token is not validated here; call
// WhoAmI.
func (c *Client) SessionFromToken(userID string, accessToken *secret.Buffer) *DirectSession {
	return &DirectSession{client: c, accessToken: accessToken, userID: userID}
}

func (s *DirectSession) UserID() string { return s.userID }

// Close wipes the access token.
func (s *DirectSession) Close() error {
	return s.accessToken.Close()
}

// WhoAmI returns the user the access token belongs to.
func (s *DirectSession) WhoAmI(ctx context.Context) (string, error) {
	body, err := s.client.doRequest(ctx, http.MethodGet, "/_matrix/client/v3/account/whoami", s.accessToken, nil, nil)
	if err != nil {
		return "", fmt.Errorf("messaging: whoami: %w", err)
	}
	var response whoAmIResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return "", fmt.Errorf("messaging: parsing whoami response: %w", err)
	}
	return response.UserID, nil
}

// Sync performs one /sync request. With options.SetTimeout the server
// holds the request open up to options.Timeout milliseconds.
func (s *DirectSession) Sync(ctx context.Context, options SyncOptions) (*SyncResponse, error) {
	query := url.Values{}
	if options.Since != "" {
		query.Set("since", options.Since)
	}
	if options.SetTimeout {
		query.Set("timeout", strconv.Itoa(options.Timeout))
	}
	if options.Filter != "" {
		query.Set("filter", options.Filter)
	}

	body, err := s.client.doRequest(ctx, http.MethodGet, "/_matrix/client/v3/sync", s.accessToken, nil, query)
	if err != nil {
		return nil, fmt.Errorf("messaging: sync: %w", err)
	}
	var response SyncResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("messaging: parsing sync response: %w", err)
	}
	return &response, nil
}

// JoinRoom joins roomID, which also accepts a pending invite.
func (s *DirectSession) JoinRoom(ctx context.Context, roomID string) (string, error) {
	path := "/_matrix/client/v3/join/" + url.PathEscape(roomID)
	body, err := s.client.doRequest(ctx, http.MethodPost, path, s.accessToken, struct{}{}, nil)
	if err != nil {
		return "", fmt.Errorf("messaging: joining %s: %w", roomID, err)
	}
	var response joinResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return "", fmt.Errorf("messaging: parsing join response: %w", err)
	}
	return response.RoomID, nil
}

// SendMessage sends an m.room.message.
func (s *DirectSession) SendMessage(ctx context.Context, roomID string, content MessageContent) (string, error) {
	return s.SendEvent(ctx, roomID, "m.room.message", content)
}

// SendEvent sends a timeline event and returns its event ID. Sends wait
// for the client's rate limiter. A rate-limited send is retried with the
// same transaction ID, so the homeserver deduplicates it.
func (s *DirectSession) SendEvent(ctx context.Context, roomID, eventType string, content any) (string, error) {
	transactionID := "timezoner-" + uuid.NewString()
	path := fmt.Sprintf("/_matrix/client/v3/rooms/%s/send/%s/%s",
		url.PathEscape(roomID), url.PathEscape(eventType), url.PathEscape(transactionID))

	var lastErr error
	for attempt := 1; attempt <= maxSendAttempts; attempt++ {
		if err := s.client.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("messaging: waiting to send: %w", err)
		}
		body, err := s.client.doRequest(ctx, http.MethodPut, path, s.accessToken, content, nil)
		if err == nil {
			var response sendEventResponse
			if err := json.Unmarshal(body, &response); err != nil {
				return "", fmt.Errorf("messaging: parsing send response: %w", err)
			}
			return response.EventID, nil
		}
		lastErr = err

		var matrixErr *MatrixError
		if !errors.As(err, &matrixErr) || matrixErr.Code != ErrCodeLimitExceeded || attempt == maxSendAttempts {
			break
		}
		delay := matrixErr.RetryAfter()
		if delay <= 0 {
			delay = time.Second
		}
		s.client.logger.Warn("send rate limited by homeserver",
			"room_id", roomID,
			"retry_after", delay,
			"attempt", attempt,
		)
		select {
		case <-ctx.Done():
			return "", fmt.Errorf("messaging: waiting to retry send: %w", ctx.Err())
		case <-s.client.clock.After(delay):
		}
	}
	return "", fmt.Errorf("messaging: sending %s to %s: %w", eventType, roomID, lastErr)
}
