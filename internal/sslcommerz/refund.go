package sslcommerz

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"bazarpay-be/internal/logger"

	"go.uber.org/zap"
)

// Refunds are two independent round trips against the transaction-status
// API. No refund state is kept locally: the gateway is the source of truth
// and is re-queried on demand.

// RefundPayment asks the gateway to refund a settled payment, identified by
// the bank transaction id it assigned. The decoded response is returned
// as-is; a non-SUCCESS status is a normal result for the caller to inspect.
func (c *Client) RefundPayment(ctx context.Context, bankTranID string, amount float64, reason string) (Response, error) {
	if bankTranID == "" {
		return nil, &MissingFieldError{Field: "bank_tran_id"}
	}

	q := url.Values{}
	q.Set("store_id", c.creds.StoreID)
	q.Set("store_passwd", c.creds.StorePassword)
	q.Set("bank_tran_id", bankTranID)
	q.Set("refund_amount", strconv.FormatFloat(amount, 'f', 2, 64))
	q.Set("refund_remarks", reason)
	q.Set("format", "json")

	logger.FromCtx(ctx).Info("Requesting SSLCommerz refund",
		zap.String("bank_tran_id", bankTranID),
		zap.Float64("amount", amount),
	)
	return c.refundCall(ctx, q)
}

// CheckRefundStatus queries the state of a previously initiated refund by
// its refund reference id. Read-only and naturally idempotent.
func (c *Client) CheckRefundStatus(ctx context.Context, refundRefID string) (Response, error) {
	if refundRefID == "" {
		return nil, &MissingFieldError{Field: "refund_ref_id"}
	}

	q := url.Values{}
	q.Set("store_id", c.creds.StoreID)
	q.Set("store_passwd", c.creds.StorePassword)
	q.Set("refund_ref_id", refundRefID)

	logger.FromCtx(ctx).Info("Checking SSLCommerz refund status", zap.String("refund_ref_id", refundRefID))
	return c.refundCall(ctx, q)
}

// QueryTransactionStatus re-verifies a transaction directly against the
// gateway's record, outside the callback flow.
func (c *Client) QueryTransactionStatus(ctx context.Context, tranID string) (Response, error) {
	if tranID == "" {
		return nil, &MissingFieldError{Field: "tran_id"}
	}

	q := url.Values{}
	q.Set("store_id", c.creds.StoreID)
	q.Set("store_passwd", c.creds.StorePassword)
	q.Set("tran_id", tranID)
	q.Set("format", "json")

	logger.FromCtx(ctx).Info("Querying SSLCommerz transaction status", zap.String("tran_id", tranID))
	return c.refundCall(ctx, q)
}

func (c *Client) refundCall(ctx context.Context, q url.Values) (Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.creds.BaseURL()+refundPath+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("sslcommerz: build transaction-status request: %w", err)
	}
	return c.do(req)
}
