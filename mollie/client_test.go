package mollie

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
)

func TestGetPayment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/payments/tr_test123" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test_key" {
			t.Fatalf("unexpected authorization header %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":     "tr_test123",
			"status": "paid",
			"amount": map[string]string{"currency": "EUR", "value": "25.00"},
		})
	}))
	defer srv.Close()

	t.Setenv("MOLLIE_API_BASE_URL", srv.URL)
	client, err := NewClientWithKey("test_key")
	if err != nil {
		t.Fatalf("NewClientWithKey: %v", err)
	}

	payment, err := client.GetPayment(context.Background(), "tr_test123")
	if err != nil {
		t.Fatalf("GetPayment: %v", err)
	}
	if payment.Id != "tr_test123" || payment.Status != "paid" {
		t.Fatalf("unexpected payment %+v", payment)
	}
	if payment.Amount.Value != "25.00" {
		t.Fatalf("unexpected amount %+v", payment.Amount)
	}
}

func TestCreatePayment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v2/payments" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var req createPaymentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Amount.Value != "42.50" || req.Amount.Currency != "EUR" {
			t.Fatalf("unexpected amount %+v", req.Amount)
		}
		if req.WebhookUrl != "https://example.org/webhooks/mollie/donations" {
			t.Fatalf("unexpected webhook url %q", req.WebhookUrl)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":     "tr_new",
			"status": "open",
			"_links": map[string]interface{}{
				"checkout": map[string]string{"href": "https://pay.example/checkout", "type": "text/html"},
			},
		})
	}))
	defer srv.Close()

	t.Setenv("MOLLIE_API_BASE_URL", srv.URL)
	client, err := NewClientWithKey("test_key")
	if err != nil {
		t.Fatalf("NewClientWithKey: %v", err)
	}

	payment, err := client.CreatePayment(context.Background(), &NewPayment{
		Amount:      decimal.RequireFromString("42.5"),
		Description: "Donatie",
		RedirectUrl: "https://example.org/bedankt",
		WebhookUrl:  "https://example.org/webhooks/mollie/donations",
	})
	if err != nil {
		t.Fatalf("CreatePayment: %v", err)
	}
	if payment.Id != "tr_new" {
		t.Fatalf("unexpected payment id %q", payment.Id)
	}
	if payment.CheckoutUrl() != "https://pay.example/checkout" {
		t.Fatalf("unexpected checkout url %q", payment.CheckoutUrl())
	}
}

func TestGetPayment_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"not found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	t.Setenv("MOLLIE_API_BASE_URL", srv.URL)
	client, err := NewClientWithKey("test_key")
	if err != nil {
		t.Fatalf("NewClientWithKey: %v", err)
	}

	if _, err := client.GetPayment(context.Background(), "tr_missing"); err == nil {
		t.Fatal("expected error for 404 response")
	}
}

func TestNewClientWithKey_EmptyKey(t *testing.T) {
	if _, err := NewClientWithKey("  "); err == nil {
		t.Fatal("expected error for empty api key")
	}
}
