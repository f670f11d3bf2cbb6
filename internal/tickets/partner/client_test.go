package partner

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"salesdesk_backend/platform/apperr"
	"salesdesk_backend/platform/config"
	"salesdesk_backend/platform/logger"
)

type fakePartner struct {
	tokenCalls int
	status     int
	body       string
}

func (f *fakePartner) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		f.tokenCalls++
		_ = json.NewEncoder(w).Encode(map[string]any{"accessToken": "tok-1", "expiresIn": 3600})
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(f.status)
		_, _ = w.Write([]byte(f.body))
	})
	return mux
}

func testClient(t *testing.T, f *fakePartner) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(f.handler())
	t.Cleanup(server.Close)

	cfg := &config.Config{
		PartnerBaseURL:      server.URL,
		PartnerClientID:     "client",
		PartnerClientSecret: "secret",
		PartnerTimeout:      2 * time.Second,
	}
	client := NewClient(cfg, NewTokenCache(), logger.New("development"))
	if client == nil {
		t.Fatal("expected enabled client")
	}
	return client, server
}

func TestClient_TokenIsCachedAcrossCalls(t *testing.T) {
	f := &fakePartner{status: http.StatusOK}
	client, _ := testClient(t, f)
	ctx := context.Background()
	id := uuid.New()

	if err := client.AddTags(ctx, id, []string{"vip"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := client.Close(ctx, id, "resolvido"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.tokenCalls != 1 {
		t.Fatalf("expected one token fetch, got %d", f.tokenCalls)
	}
}

func TestClient_NotFound(t *testing.T) {
	f := &fakePartner{status: http.StatusNotFound}
	client, _ := testClient(t, f)

	err := client.UpdateFields(context.Background(), uuid.New(), map[string]string{"status": "done"})
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err.Error() != "not_found" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestClient_AuthFailureClearsToken(t *testing.T) {
	f := &fakePartner{status: http.StatusForbidden}
	client, _ := testClient(t, f)
	ctx := context.Background()

	err := client.AddTags(ctx, uuid.New(), []string{"vip"})
	if !apperr.Is(err, apperr.KindUpstream) || err.Error() != "upstream_auth_failed" {
		t.Fatalf("expected upstream auth failure, got %v", err)
	}

	// The stale token was dropped, so the next call re-authenticates.
	f.status = http.StatusOK
	if err := client.AddTags(ctx, uuid.New(), []string{"vip"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.tokenCalls != 2 {
		t.Fatalf("expected token re-fetch after auth failure, got %d calls", f.tokenCalls)
	}
}

func TestClient_UpstreamErrorTruncatesMessage(t *testing.T) {
	long := strings.Repeat("x", 1000)
	f := &fakePartner{status: http.StatusUnprocessableEntity, body: `{"message":"` + long + `"}`}
	client, _ := testClient(t, f)

	err := client.Close(context.Background(), uuid.New(), "")
	if !apperr.Is(err, apperr.KindUpstream) || err.Error() != "upstream_error" {
		t.Fatalf("expected upstream error, got %v", err)
	}

	domainErr := err.(*apperr.Error)
	details, ok := domainErr.Details.(string)
	if !ok {
		t.Fatalf("expected string details, got %T", domainErr.Details)
	}
	if len(details) != maxDetailLength {
		t.Fatalf("expected details truncated to %d chars, got %d", maxDetailLength, len(details))
	}
}

func TestClient_NetworkErrorIsInternal(t *testing.T) {
	f := &fakePartner{status: http.StatusOK}
	client, server := testClient(t, f)
	server.Close()

	err := client.AddTags(context.Background(), uuid.New(), []string{"vip"})
	if !apperr.Is(err, apperr.KindInternal) {
		t.Fatalf("expected internal error for network failure, got %v", err)
	}
}

func TestNewClient_DisabledWithoutBaseURL(t *testing.T) {
	if c := NewClient(&config.Config{}, NewTokenCache(), logger.New("development")); c != nil {
		t.Fatal("expected nil client when partner API is not configured")
	}
}
