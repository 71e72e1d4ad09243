package sslcommerz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	expected := ExpectedTransaction{TranID: "TXN100", Amount: 500.00, Currency: "BDT"}

	t.Run("ValidWithinTolerance", func(t *testing.T) {
		resp := Response{"status": "VALID", "tran_id": "TXN100", "amount": "500.40"}
		outcome := Validate(resp, expected)
		assert.True(t, outcome.Valid)
	})

	t.Run("EmptyResponse", func(t *testing.T) {
		outcome := Validate(Response{}, expected)
		assert.False(t, outcome.Valid)
		assert.Equal(t, ReasonEmptyResponse, outcome.Reason)

		outcome = Validate(nil, expected)
		assert.Equal(t, ReasonEmptyResponse, outcome.Reason)
	})

	t.Run("MissingFields", func(t *testing.T) {
		outcome := Validate(Response{"status": "VALID", "tran_id": "TXN100"}, expected)
		assert.False(t, outcome.Valid)
		assert.Equal(t, ReasonMissingFields, outcome.Reason)

		outcome = Validate(Response{"status": "VALID", "amount": "500"}, expected)
		assert.Equal(t, ReasonMissingFields, outcome.Reason)

		outcome = Validate(Response{"tran_id": "TXN100", "amount": "500"}, expected)
		assert.Equal(t, ReasonMissingFields, outcome.Reason)
	})

	t.Run("GatewayRejected", func(t *testing.T) {
		// Rejection wins even when the amount matches perfectly.
		resp := Response{"status": "INVALID_TRANSACTION", "tran_id": "TXN100", "amount": "500.00"}
		outcome := Validate(resp, expected)
		assert.False(t, outcome.Valid)
		assert.Equal(t, ReasonGatewayRejected, outcome.Reason)
	})

	t.Run("TranIDTrimsOuterWhitespaceOnly", func(t *testing.T) {
		resp := Response{"status": "VALID", "tran_id": " TXN100 ", "amount": "500.00"}
		assert.True(t, Validate(resp, expected).Valid)

		resp = Response{"status": "VALID", "tran_id": "txn100", "amount": "500.00"}
		outcome := Validate(resp, expected)
		assert.False(t, outcome.Valid)
		assert.Equal(t, ReasonTranIDMismatch, outcome.Reason)

		resp = Response{"status": "VALID", "tran_id": "TXN 100", "amount": "500.00"}
		assert.Equal(t, ReasonTranIDMismatch, Validate(resp, expected).Reason)
	})

	t.Run("AmountToleranceBoundary", func(t *testing.T) {
		// 0.99 under the recorded amount is still fine.
		resp := Response{"status": "VALID", "tran_id": "TXN100", "amount": "499.01"}
		assert.True(t, Validate(resp, expected).Valid)

		// Exactly 1.00 off is already a mismatch: the boundary is strict.
		resp = Response{"status": "VALID", "tran_id": "TXN100", "amount": "499.00"}
		outcome := Validate(resp, expected)
		assert.False(t, outcome.Valid)
		assert.Equal(t, ReasonAmountMismatch, outcome.Reason)

		resp = Response{"status": "VALID", "tran_id": "TXN100", "amount": "502.00"}
		assert.Equal(t, ReasonAmountMismatch, Validate(resp, expected).Reason)
	})

	t.Run("AmountNotNumeric", func(t *testing.T) {
		resp := Response{"status": "VALID", "tran_id": "TXN100", "amount": "abc"}
		outcome := Validate(resp, expected)
		assert.False(t, outcome.Valid)
		assert.Equal(t, ReasonAmountMismatch, outcome.Reason)
	})

	t.Run("ForeignCurrency", func(t *testing.T) {
		usd := ExpectedTransaction{TranID: "TXN200", Amount: 50.00, Currency: "USD"}

		resp := Response{
			"status":          "VALID",
			"tran_id":         "TXN200",
			"currency_type":   "USD",
			"currency_amount": "50.25",
		}
		assert.True(t, Validate(resp, usd).Valid)

		// Wrong settlement currency fails the amount check.
		resp["currency_type"] = "EUR"
		outcome := Validate(resp, usd)
		assert.False(t, outcome.Valid)
		assert.Equal(t, ReasonAmountMismatch, outcome.Reason)

		// Missing converted fields are a field problem, not an amount one.
		resp = Response{"status": "VALID", "tran_id": "TXN200", "amount": "50.00"}
		assert.Equal(t, ReasonMissingFields, Validate(resp, usd).Reason)
	})

	t.Run("Deterministic", func(t *testing.T) {
		resp := Response{"status": "VALID", "tran_id": "TXN100", "amount": "500.40"}
		first := Validate(resp, expected)
		second := Validate(resp, expected)
		assert.Equal(t, first, second)
	})
}
