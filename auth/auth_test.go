package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func tokenServer(t *testing.T, calls *int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if r.Form.Get("scope") != "https://example.sharepoint.com/.default" {
			t.Errorf("unexpected scope %q", r.Form.Get("scope"))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"token123","token_type":"bearer","expires_in":3600}`))
	}))
}

func TestGetTokenCachesAndSetAuthHeader(t *testing.T) {
	var calls int32
	server := tokenServer(t, &calls)
	defer server.Close()

	client := NewClientCred(Conf{
		ClientID: "id", ClientSecret: "secret", TokenURL: server.URL,
		Scopes: []string{"https://example.sharepoint.com/.default"},
	})
	ctx := context.Background()
	token, err := client.GetToken(ctx)
	if err != nil {
		t.Fatalf("GetToken returned error: %v", err)
	}
	if token != "token123" {
		t.Fatalf("unexpected token %s", token)
	}
	req, _ := http.NewRequest(http.MethodGet, "http://example.com", nil)
	if err := client.SetAuthHeader(ctx, req); err != nil {
		t.Fatalf("SetAuthHeader returned error: %v", err)
	}
	if got := req.Header.Get("Authorization"); got != "Bearer token123" {
		t.Fatalf("unexpected Authorization header %q", got)
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Fatalf("expected one token request, got %d", n)
	}
	client.Invalidate()
	if _, err := client.GetToken(ctx); err != nil {
		t.Fatalf("GetToken after invalidate: %v", err)
	}
	if n := atomic.LoadInt32(&calls); n != 2 {
		t.Fatalf("expected a second token request, got %d", n)
	}
}

func TestGetTokenError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	}))
	defer server.Close()
	client := NewClientCred(Conf{ClientID: "id", TokenURL: server.URL})
	if _, err := client.GetToken(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestConfEnabled(t *testing.T) {
	if (Conf{}).Enabled() {
		t.Fatal("empty conf must be disabled")
	}
	if !(Conf{ClientID: "a", TokenURL: "b"}).Enabled() {
		t.Fatal("expected enabled")
	}
}
