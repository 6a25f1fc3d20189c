package mollie

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// Client is a thin wrapper around the Mollie payments REST API. The webhook
// payload only carries a payment id, so every delivery is verified with a
// GetPayment round trip.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewClient() (*Client, error) {
	return NewClientWithKey(os.Getenv("MOLLIE_API_KEY"))
}

func NewClientWithKey(apiKey string) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("mollie api key is empty")
	}
	baseURL := strings.TrimSpace(os.Getenv("MOLLIE_API_BASE_URL"))
	if baseURL == "" {
		baseURL = "https://api.mollie.com"
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 30 * time.Second},
	}, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload interface{}, out interface{}) error {
	var reqBody io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("mollie api error %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return err
		}
	}
	return nil
}

// CreatePayment registers a payment with Mollie and returns it, including
// the checkout URL the payer is redirected to.
func (c *Client) CreatePayment(ctx context.Context, input *NewPayment) (*Payment, error) {
	req := createPaymentRequest{
		Amount:      PaymentAmount{Currency: "EUR", Value: input.Amount.StringFixed(2)},
		Description: input.Description,
		RedirectUrl: input.RedirectUrl,
		WebhookUrl:  input.WebhookUrl,
		Metadata:    input.Metadata,
	}
	var payment Payment
	if err := c.do(ctx, http.MethodPost, "/v2/payments", req, &payment); err != nil {
		return nil, err
	}
	return &payment, nil
}

// GetPayment fetches the authoritative payment state by id.
func (c *Client) GetPayment(ctx context.Context, paymentId string) (*Payment, error) {
	if strings.TrimSpace(paymentId) == "" {
		return nil, errors.New("payment id is empty")
	}
	var payment Payment
	if err := c.do(ctx, http.MethodGet, "/v2/payments/"+paymentId, nil, &payment); err != nil {
		return nil, err
	}
	return &payment, nil
}
