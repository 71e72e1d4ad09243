package metrics

import (
	"sync/atomic"
)

type Counter struct {
	value uint64
}

func (c *Counter) Inc() {
	atomic.AddUint64(&c.value, 1)
}

func (c *Counter) Load() uint64 {
	return atomic.LoadUint64(&c.value)
}

// Payment counters exposed on /metrics. Simple process-local numbers; good
// enough for a single instance behind the gateway.
var (
	PaymentsInitiated   Counter
	CallbacksReceived   Counter
	SignatureFailures   Counter
	ValidationFailures  Counter
	PaymentsConfirmed   Counter
	RefundsRequested    Counter
)

// Snapshot returns the current counter values keyed by metric name.
func Snapshot() map[string]uint64 {
	return map[string]uint64{
		"payments_initiated":  PaymentsInitiated.Load(),
		"callbacks_received":  CallbacksReceived.Load(),
		"signature_failures":  SignatureFailures.Load(),
		"validation_failures": ValidationFailures.Load(),
		"payments_confirmed":  PaymentsConfirmed.Load(),
		"refunds_requested":   RefundsRequested.Load(),
	}
}
