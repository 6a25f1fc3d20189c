package mailer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	t.Setenv("MAILER_API_KEY", "test_key")
	t.Setenv("MAILER_API_BASE_URL", baseURL)
	t.Setenv("MAILER_FROM_EMAIL", "bestuur@example.org")
	t.Setenv("MAILER_FROM_NAME", "Bestuur")

	client, err := NewClient()
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client
}

func TestSend(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/messages" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var req sendRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.FromEmail != "bestuur@example.org" || req.ToEmail != "lid@example.org" {
			t.Fatalf("unexpected addresses %+v", req)
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	err := client.Send(context.Background(), &Message{
		ToEmail:  "lid@example.org",
		ToName:   "Jan Jansen",
		Subject:  "Nieuwsbrief",
		BodyHtml: "<p>Beste Jan,</p>",
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
}

func TestSend_ProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	err := client.Send(context.Background(), &Message{ToEmail: "lid@example.org"})
	if err == nil {
		t.Fatal("expected error for 429 response")
	}
}

func TestNewClient_MissingConfig(t *testing.T) {
	t.Setenv("MAILER_API_KEY", "")
	t.Setenv("MAILER_API_BASE_URL", "")
	t.Setenv("MAILER_FROM_EMAIL", "")
	if _, err := NewClient(); err == nil {
		t.Fatal("expected error without configuration")
	}
}
