// Package gateway talks to the QR payment gateway. Transactions are
// created against a project and correlated by a client-generated order id;
// confirmation is a status poll keyed by order id and amount.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"
)

// Transaction status values the gateway reports as paid.
const (
	StatusSuccess   = "success"
	StatusCompleted = "completed"
)

// Client is a payment gateway API client.
type Client struct {
	BaseURL    string
	Project    string
	APIKey     string
	HTTPClient *http.Client
}

// NewClient builds a client from the environment.
func NewClient() *Client {
	return &Client{
		BaseURL: os.Getenv("GATEWAY_BASE_URL"),
		Project: os.Getenv("GATEWAY_PROJECT"),
		APIKey:  os.Getenv("GATEWAY_API_KEY"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// CreateResponse is the gateway's reply to a transaction create request.
type CreateResponse struct {
	Payment struct {
		PaymentCode string `json:"payment_code"`
	} `json:"payment"`
	Error   bool   `json:"error"`
	Message string `json:"message"`
}

// Transaction is the gateway's view of a payment attempt.
type Transaction struct {
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
	Amount  int64  `json:"amount"`
}

type statusResponse struct {
	Transaction Transaction `json:"transaction"`
	Error       bool        `json:"error"`
	Message     string      `json:"message"`
}

// IsSuccess reports whether a gateway status string means the payment went
// through.
func IsSuccess(status string) bool {
	return status == StatusSuccess || status == StatusCompleted
}

// CreateTransaction registers a new QR transaction and returns the
// scannable payment code.
func (c *Client) CreateTransaction(ctx context.Context, orderID string, amount int64) (string, error) {
	payload := map[string]interface{}{
		"project":  c.Project,
		"order_id": orderID,
		"amount":   amount,
		"api_key":  c.APIKey,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/api/transactions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	var out CreateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("gateway returned invalid response: %w", err)
	}
	if out.Error || resp.StatusCode != http.StatusOK {
		if out.Message == "" {
			out.Message = fmt.Sprintf("gateway returned status %d", resp.StatusCode)
		}
		return "", fmt.Errorf("%s", out.Message)
	}
	if out.Payment.PaymentCode == "" {
		return "", fmt.Errorf("gateway returned empty payment code")
	}
	return out.Payment.PaymentCode, nil
}

// TransactionStatus fetches the current status of a transaction. The
// amount is part of the gateway's lookup key.
func (c *Client) TransactionStatus(ctx context.Context, orderID string, amount int64) (*Transaction, error) {
	params := url.Values{}
	params.Set("project", c.Project)
	params.Set("amount", strconv.FormatInt(amount, 10))
	params.Set("order_id", orderID)
	params.Set("api_key", c.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/api/transaction?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	var out statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("gateway returned invalid response: %w", err)
	}
	if out.Error || resp.StatusCode != http.StatusOK {
		if out.Message == "" {
			out.Message = fmt.Sprintf("gateway returned status %d", resp.StatusCode)
		}
		return nil, fmt.Errorf("%s", out.Message)
	}
	return &out.Transaction, nil
}
