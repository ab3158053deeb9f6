package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Address はメールの宛先・差出人を表します。
type Address struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// Message はトランザクショナルメール API へ送信するペイロードです。
type Message struct {
	Sender      Address   `json:"sender"`
	To          []Address `json:"to"`
	Subject     string    `json:"subject"`
	TextContent string    `json:"textContent,omitempty"`
	HTMLContent string    `json:"htmlContent,omitempty"`
}

// Client は Brevo 互換のトランザクショナルメール API クライアントです。
type Client struct {
	endpoint string
	apiKey   string
	sender   Address
	client   *http.Client
}

// NewClient は Client を生成します。
func NewClient(endpoint, apiKey string, sender Address) *Client {
	return &Client{
		endpoint: endpoint,
		apiKey:   apiKey,
		sender:   sender,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

// SendText はテキストメールを 1 通送信します。
func (c *Client) SendText(ctx context.Context, to Address, subject, text string) error {
	msg := Message{
		Sender:      c.sender,
		To:          []Address{to},
		Subject:     subject,
		TextContent: text,
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("email: marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("email: build request: %w", err)
	}
	req.Header.Set("api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	res, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("email: send request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode >= http.StatusBadRequest {
		errBody, readErr := io.ReadAll(io.LimitReader(res.Body, 4096))
		if readErr != nil {
			errBody = []byte("unable to read body")
		}
		return fmt.Errorf("email: got status code %d when sending email: %s", res.StatusCode, string(errBody))
	}

	return nil
}
