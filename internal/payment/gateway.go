package payment

import (
	"context"
	"net/url"

	"bazarpay-be/internal/sslcommerz"
)

// Gateway is the slice of the SSLCommerz client the payment service needs.
// *sslcommerz.Client satisfies it; tests substitute their own.
type Gateway interface {
	InitiatePayment(ctx context.Context, payload url.Values) (sslcommerz.Response, error)
	ValidateOrder(ctx context.Context, valID string) (sslcommerz.Response, error)
	RefundPayment(ctx context.Context, bankTranID string, amount float64, reason string) (sslcommerz.Response, error)
	CheckRefundStatus(ctx context.Context, refundRefID string) (sslcommerz.Response, error)
	QueryTransactionStatus(ctx context.Context, tranID string) (sslcommerz.Response, error)
}
