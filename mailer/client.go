package mailer

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

// Client talks to the transactional email provider's REST API. One message
// per request; bulk mailings loop over recipients on our side.
type Client struct {
	baseURL   string
	apiKey    string
	fromEmail string
	fromName  string
	http      *http.Client
}

type Message struct {
	ToEmail  string `json:"to_email"`
	ToName   string `json:"to_name"`
	Subject  string `json:"subject"`
	BodyHtml string `json:"body_html"`
}

type sendRequest struct {
	FromEmail string `json:"from_email"`
	FromName  string `json:"from_name"`
	ToEmail   string `json:"to_email"`
	ToName    string `json:"to_name"`
	Subject   string `json:"subject"`
	BodyHtml  string `json:"body_html"`
}

func NewClient() (*Client, error) {
	apiKey := strings.TrimSpace(os.Getenv("MAILER_API_KEY"))
	if apiKey == "" {
		return nil, errors.New("mailer api key is empty")
	}
	baseURL := strings.TrimSpace(os.Getenv("MAILER_API_BASE_URL"))
	if baseURL == "" {
		return nil, errors.New("mailer base url is empty")
	}
	fromEmail := strings.TrimSpace(os.Getenv("MAILER_FROM_EMAIL"))
	if fromEmail == "" {
		return nil, errors.New("mailer from address is empty")
	}
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		apiKey:    apiKey,
		fromEmail: fromEmail,
		fromName:  strings.TrimSpace(os.Getenv("MAILER_FROM_NAME")),
		http:      &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// Send delivers a single message; a non-2xx provider response is an error.
func (c *Client) Send(ctx context.Context, msg *Message) error {
	payload := sendRequest{
		FromEmail: c.fromEmail,
		FromName:  c.fromName,
		ToEmail:   msg.ToEmail,
		ToName:    msg.ToName,
		Subject:   msg.Subject,
		BodyHtml:  msg.BodyHtml,
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(encoded))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("mailer api error %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}
