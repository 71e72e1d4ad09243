package payment

import (
	"time"
)

// PaymentStatus follows the gateway driver's lifecycle: a payment stays
// Pending until a verified callback moves it forward.
type PaymentStatus string

const (
	StatusPending    PaymentStatus = "Pending"
	StatusProcessing PaymentStatus = "Processing"
	StatusComplete   PaymentStatus = "Complete"
	StatusFailed     PaymentStatus = "Failed"
	StatusCancelled  PaymentStatus = "Cancelled"
	StatusRefunded   PaymentStatus = "Refunded"
)

// Payment is one initiation attempt against the gateway. TranID is the
// merchant-assigned id correlating our record with the gateway's; amount and
// currency recorded here are the truth every callback is reconciled against.
type Payment struct {
	ID       uint
	OrderID  uint
	TranID   string
	Amount   float64
	Currency string
	Status   PaymentStatus

	// Filled from a verified success callback / validation response.
	ValID      string
	BankTranID string
	CardType   string

	// Filled when the gateway accepts a refund request.
	RefundRefID string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// InitiateResult is what the checkout frontend needs to redirect the buyer
// to the hosted payment page.
type InitiateResult struct {
	TranID     string `json:"tran_id"`
	GatewayURL string `json:"gateway_url"`
	SessionKey string `json:"session_key,omitempty"`
}
