package sslcommerz

import (
	"math"
	"strings"
)

// Reason explains why a callback/validation payload was rejected.
type Reason string

const (
	ReasonEmptyResponse   Reason = "EMPTY_RESPONSE"
	ReasonMissingFields   Reason = "MISSING_FIELDS"
	ReasonGatewayRejected Reason = "GATEWAY_REJECTED"
	ReasonTranIDMismatch  Reason = "TRAN_ID_MISMATCH"
	ReasonAmountMismatch  Reason = "AMOUNT_MISMATCH"
)

// Outcome is the terminal result of validating a gateway payload. It is a
// value, never an error: callers branch on Valid and persist what they need.
type Outcome struct {
	Valid  bool
	Reason Reason
}

func invalid(reason Reason) Outcome {
	return Outcome{Valid: false, Reason: reason}
}

// The gateway's base settlement currency. Amounts in this currency are
// reconciled directly against the recorded transaction; anything else goes
// through the converted currency_type/currency_amount pair.
const baseCurrency = "BDT"

// amountTolerance absorbs the gateway's rounding and fee artifacts. The
// comparison is strictly less-than: a whole unit of drift is already a
// mismatch.
const amountTolerance = 1.0

const statusInvalidTransaction = "INVALID_TRANSACTION"

// Validate reconciles a gateway payload against the locally recorded
// transaction. Checks run in order and stop at the first failure. The
// function is deterministic and performs no I/O.
func Validate(resp Response, expected ExpectedTransaction) Outcome {
	if len(resp) == 0 {
		return invalid(ReasonEmptyResponse)
	}

	if !resp.Has("status", "tran_id") {
		return invalid(ReasonMissingFields)
	}
	amountKey := "amount"
	if expected.Currency != baseCurrency {
		amountKey = "currency_amount"
		if !resp.Has("currency_type") {
			return invalid(ReasonMissingFields)
		}
	}
	if !resp.Has(amountKey) {
		return invalid(ReasonMissingFields)
	}

	status, _ := resp.Get("status")
	if status == statusInvalidTransaction {
		return invalid(ReasonGatewayRejected)
	}

	tranID, _ := resp.Get("tran_id")
	if strings.TrimSpace(tranID) != strings.TrimSpace(expected.TranID) {
		return invalid(ReasonTranIDMismatch)
	}

	if expected.Currency == baseCurrency {
		amount, err := resp.Float("amount")
		if err != nil || math.Abs(expected.Amount-amount) >= amountTolerance {
			return invalid(ReasonAmountMismatch)
		}
		return Outcome{Valid: true}
	}

	currencyType, _ := resp.Get("currency_type")
	if strings.TrimSpace(currencyType) != strings.TrimSpace(expected.Currency) {
		return invalid(ReasonAmountMismatch)
	}
	amount, err := resp.Float("currency_amount")
	if err != nil || math.Abs(expected.Amount-amount) >= amountTolerance {
		return invalid(ReasonAmountMismatch)
	}
	return Outcome{Valid: true}
}
