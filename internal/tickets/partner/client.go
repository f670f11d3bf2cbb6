// Package partner provides the HTTP client for the external ticketing
// system that owns forwarded ticket actions.
package partner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"salesdesk_backend/platform/apperr"
	"salesdesk_backend/platform/config"
	"salesdesk_backend/platform/logger"
)

const (
	msgNotFound     = "not_found"
	msgAuthFailed   = "upstream_auth_failed"
	msgUpstream     = "upstream_error"
	msgServerError  = "server_error"
	maxDetailLength = 300
)

// Client calls the partner ticketing API with cached bearer auth.
type Client struct {
	baseURL      string
	clientID     string
	clientSecret string
	http         *http.Client
	cache        *TokenCache
	log          *logger.Logger
	now          func() time.Time
}

// NewClient creates a partner API client. Returns nil when no partner URL is
// configured; callers treat a nil client as "forwarding disabled".
func NewClient(cfg config.PartnerConfig, cache *TokenCache, log *logger.Logger) *Client {
	if !cfg.IsPartnerEnabled() {
		return nil
	}

	return &Client{
		baseURL:      strings.TrimRight(cfg.GetPartnerBaseURL(), "/"),
		clientID:     cfg.GetPartnerClientID(),
		clientSecret: cfg.GetPartnerClientSecret(),
		http:         &http.Client{Timeout: cfg.GetPartnerTimeout()},
		cache:        cache,
		log:          log,
		now:          time.Now,
	}
}

// AddTags appends tags to a partner ticket.
func (c *Client) AddTags(ctx context.Context, ticketID uuid.UUID, tags []string) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/tickets/%s/tags", ticketID), map[string]any{"tags": tags})
}

// RemoveTags removes tags from a partner ticket.
func (c *Client) RemoveTags(ctx context.Context, ticketID uuid.UUID, tags []string) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/tickets/%s/tags", ticketID), map[string]any{"tags": tags})
}

// Close closes a partner ticket, optionally carrying a resolution text.
func (c *Client) Close(ctx context.Context, ticketID uuid.UUID, resolution string) error {
	body := map[string]any{}
	if resolution != "" {
		body["resolution"] = resolution
	}
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/tickets/%s/close", ticketID), body)
}

// UpdateFields patches ticket fields on the partner side.
func (c *Client) UpdateFields(ctx context.Context, ticketID uuid.UUID, fields map[string]string) error {
	return c.do(ctx, http.MethodPatch, fmt.Sprintf("/tickets/%s", ticketID), map[string]any{"fields": fields})
}

type tokenResponse struct {
	AccessToken string `json:"accessToken"`
	ExpiresIn   int    `json:"expiresIn"`
}

// token returns a usable bearer token, fetching a fresh one when the cache
// misses.
func (c *Client) token(ctx context.Context) (string, error) {
	if tok, ok := c.cache.Get(c.now()); ok {
		return tok, nil
	}

	body, err := json.Marshal(map[string]string{
		"clientId":     c.clientID,
		"clientSecret": c.clientSecret,
	})
	if err != nil {
		return "", apperr.Wrap(apperr.KindInternal, msgServerError, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/oauth/token", bytes.NewReader(body))
	if err != nil {
		return "", apperr.Wrap(apperr.KindInternal, msgServerError, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", apperr.Wrap(apperr.KindInternal, msgServerError, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		c.log.UpstreamError("partner token", resp.StatusCode, fmt.Errorf("token endpoint returned %d", resp.StatusCode))
		return "", apperr.Upstream(msgAuthFailed)
	}

	var tok tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil || tok.AccessToken == "" {
		return "", apperr.Wrap(apperr.KindInternal, msgServerError, fmt.Errorf("decode token response: %w", err))
	}

	expiresAt := c.now().Add(time.Duration(tok.ExpiresIn) * time.Second)
	c.cache.Set(tok.AccessToken, expiresAt)
	return tok.AccessToken, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload any) error {
	tok, err := c.token(ctx)
	if err != nil {
		return err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, msgServerError, err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, msgServerError, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+tok)

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.UpstreamError("partner "+method+" "+path, 0, err)
		return apperr.Wrap(apperr.KindInternal, msgServerError, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < http.StatusBadRequest {
		return nil
	}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	c.log.UpstreamError("partner "+method+" "+path, resp.StatusCode, fmt.Errorf("%s", strings.TrimSpace(string(raw))))

	switch resp.StatusCode {
	case http.StatusNotFound:
		return apperr.NotFound(msgNotFound)
	case http.StatusUnauthorized, http.StatusForbidden:
		// The cached token is stale or revoked; drop it so the next call
		// re-authenticates.
		c.cache.Clear()
		return apperr.Upstream(msgAuthFailed)
	default:
		return apperr.Upstream(msgUpstream).WithDetails(partnerMessage(raw))
	}
}

// partnerMessage extracts a human-readable message from a partner error
// body, truncated so oversized upstream bodies never reach clients.
func partnerMessage(raw []byte) string {
	var parsed struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	message := strings.TrimSpace(string(raw))
	if err := json.Unmarshal(raw, &parsed); err == nil {
		if parsed.Message != "" {
			message = parsed.Message
		} else if parsed.Error != "" {
			message = parsed.Error
		}
	}
	if len(message) > maxDetailLength {
		message = message[:maxDetailLength]
	}
	return message
}
