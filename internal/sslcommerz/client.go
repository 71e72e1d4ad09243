package sslcommerz

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"bazarpay-be/internal/logger"

	"go.uber.org/zap"
)

// The gateway takes its time; match its processing latency rather than the
// usual API timeout.
const requestTimeout = 60 * time.Second

// Client talks to the SSLCommerz HTTP API. It holds no per-request state,
// so one instance is safe to share across goroutines.
type Client struct {
	creds      Credentials
	httpClient *http.Client
}

func NewClient(creds Credentials) *Client {
	return &Client{
		creds: creds,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
	}
}

// InitiatePayment posts the payment-initiation form and returns the decoded
// session response. A decoded response whose status is not SUCCESS is still
// a normal result: the caller inspects it.
func (c *Client) InitiatePayment(ctx context.Context, payload url.Values) (Response, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("tran_id", payload.Get("tran_id")),
		zap.String("amount", payload.Get("total_amount")),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.creds.BaseURL()+paymentPath, strings.NewReader(payload.Encode()))
	if err != nil {
		return nil, fmt.Errorf("sslcommerz: build payment request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	log.Info("Initiating SSLCommerz payment session")
	return c.do(req)
}

// ValidateOrder calls the server-side validation API for a callback's
// val_id. The returned payload carries the gateway's own record of the
// transaction, which is what amount reconciliation should trust.
func (c *Client) ValidateOrder(ctx context.Context, valID string) (Response, error) {
	if valID == "" {
		return nil, &MissingFieldError{Field: "val_id"}
	}

	q := url.Values{}
	q.Set("val_id", valID)
	q.Set("store_id", c.creds.StoreID)
	q.Set("store_passwd", c.creds.StorePassword)
	q.Set("format", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.creds.BaseURL()+validationPath+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("sslcommerz: build validation request: %w", err)
	}

	logger.FromCtx(ctx).Info("Validating order with SSLCommerz", zap.String("val_id", valID))
	return c.do(req)
}

func (c *Client) do(req *http.Request) (Response, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sslcommerz: %s: %w", req.URL.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("sslcommerz: read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		logger.FromCtx(req.Context()).Error("SSLCommerz returned non-success status",
			zap.String("path", req.URL.Path),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("response", body),
		)
		return nil, fmt.Errorf("sslcommerz: %s returned HTTP %d", req.URL.Path, resp.StatusCode)
	}

	if len(bytes.TrimSpace(body)) == 0 {
		return nil, ErrEmptyResponse
	}

	return ParseResponse(body)
}
