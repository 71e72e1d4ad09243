package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"bazarpay-be/internal/logger"
	"bazarpay-be/internal/metrics"
	"bazarpay-be/internal/order"
	"bazarpay-be/internal/sslcommerz"
	"bazarpay-be/internal/utils"

	"go.uber.org/zap"
)

type Service interface {
	Initiate(ctx context.Context, orderID uint) (*InitiateResult, error)

	HandleSuccess(ctx context.Context, cb sslcommerz.Response) error
	HandleFailure(ctx context.Context, cb sslcommerz.Response) error
	HandleCancel(ctx context.Context, cb sslcommerz.Response) error
	HandleIPN(ctx context.Context, cb sslcommerz.Response) error

	Refund(ctx context.Context, tranID, reason string) (sslcommerz.Response, error)
	RefundStatus(ctx context.Context, tranID string) (sslcommerz.Response, error)
	TransactionStatus(ctx context.Context, tranID string) (sslcommerz.Response, error)
}

type service struct {
	repo     Repository
	orderSvc order.Service
	gateway  Gateway
	creds    sslcommerz.Credentials
	appName  string
}

func NewService(repo Repository, orderSvc order.Service, gateway Gateway, creds sslcommerz.Credentials, appName string) Service {
	return &service{
		repo:     repo,
		orderSvc: orderSvc,
		gateway:  gateway,
		creds:    creds,
		appName:  appName,
	}
}

// Initiate creates a Pending payment for the order and opens a gateway
// session. The recorded amount and currency become the truth every later
// callback is reconciled against.
func (s *service) Initiate(ctx context.Context, orderID uint) (*InitiateResult, error) {
	ord, err := s.orderSvc.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	p := &Payment{
		OrderID:   ord.ID,
		TranID:    utils.GenerateTranID(),
		Amount:    ord.Total,
		Currency:  s.creds.Currency,
		Status:    StatusPending,
		CreatedAt: time.Now(),
	}
	if err := s.repo.SavePayment(ctx, p); err != nil {
		return nil, fmt.Errorf("save payment: %w", err)
	}

	payload, err := sslcommerz.BuildPaymentRequest(
		sslcommerz.OrderInfo{
			ID:        strconv.FormatUint(uint64(ord.ID), 10),
			PaymentID: strconv.FormatUint(uint64(p.ID), 10),
			AppName:   s.appName,
			CreatedAt: p.CreatedAt,
		},
		toGatewayCustomer(ord.Customer),
		toGatewayShipment(ord.Shipping, len(ord.Items)),
		toGatewayItems(ord.Items),
		sslcommerz.ExpectedTransaction{TranID: p.TranID, Amount: p.Amount, Currency: p.Currency},
		s.creds,
	)
	if err != nil {
		return nil, err
	}

	resp, err := s.gateway.InitiatePayment(ctx, payload)
	if err != nil {
		return nil, err
	}

	if status, _ := resp.Get("status"); status != "SUCCESS" {
		reason, _ := resp.Get("failedreason")
		// Close the row so Pending keeps meaning "awaiting callback".
		if uerr := s.repo.UpdateStatus(ctx, p.TranID, StatusFailed); uerr != nil {
			logger.FromCtx(ctx).Warn("Failed to close declined payment",
				zap.String("tran_id", p.TranID),
				zap.Error(uerr),
			)
		}
		return nil, fmt.Errorf("%w: %s", ErrGatewayDeclined, reason)
	}

	gatewayURL, ok := resp.Get("GatewayPageURL")
	if !ok || gatewayURL == "" {
		return nil, &sslcommerz.MissingFieldError{Field: "GatewayPageURL"}
	}
	sessionKey, _ := resp.Get("sessionkey")

	metrics.PaymentsInitiated.Inc()
	logger.FromCtx(ctx).Info("Payment session created",
		zap.Uint("order_id", ord.ID),
		zap.String("tran_id", p.TranID),
		zap.Float64("amount", p.Amount),
	)

	return &InitiateResult{
		TranID:     p.TranID,
		GatewayURL: gatewayURL,
		SessionKey: sessionKey,
	}, nil
}

// HandleSuccess processes the browser-redirect success callback: verify the
// signature, re-validate the transaction server-side, reconcile against the
// stored payment, then move it to Processing.
func (s *service) HandleSuccess(ctx context.Context, cb sslcommerz.Response) error {
	return s.confirm(ctx, cb, "success")
}

// HandleIPN processes the asynchronous notification. It carries the same
// verification and reconciliation obligations as the success callback.
func (s *service) HandleIPN(ctx context.Context, cb sslcommerz.Response) error {
	return s.confirm(ctx, cb, "ipn")
}

func (s *service) confirm(ctx context.Context, cb sslcommerz.Response, event string) error {
	metrics.CallbacksReceived.Inc()

	tranID, ok := cb.Get("tran_id")
	if !ok || tranID == "" {
		return &sslcommerz.MissingFieldError{Field: "tran_id"}
	}

	verified := sslcommerz.VerifyHash(cb, s.creds.StorePassword)
	s.recordCallback(ctx, event, tranID, cb, verified)

	// No monetary state transition may follow an unverified response,
	// whatever its status field claims.
	if !verified {
		metrics.SignatureFailures.Inc()
		logger.FromCtx(ctx).Warn("Callback signature verification failed",
			zap.String("event", event),
			zap.String("tran_id", tranID),
		)
		return sslcommerz.ErrSignatureVerification
	}

	p, err := s.repo.GetPaymentByTranID(ctx, tranID)
	if err != nil {
		return err
	}
	if p.Status != StatusPending {
		return ErrNotPending
	}

	valID, ok := cb.Get("val_id")
	if !ok || valID == "" {
		return &sslcommerz.MissingFieldError{Field: "val_id"}
	}

	// The callback's own figures are the gateway's claim, not its record.
	// Reconcile against the validation API instead.
	vresp, err := s.gateway.ValidateOrder(ctx, valID)
	if err != nil {
		return err
	}

	expected := sslcommerz.ExpectedTransaction{TranID: p.TranID, Amount: p.Amount, Currency: p.Currency}
	if outcome := sslcommerz.Validate(vresp, expected); !outcome.Valid {
		metrics.ValidationFailures.Inc()
		logger.FromCtx(ctx).Warn("Callback validation rejected",
			zap.String("event", event),
			zap.String("tran_id", tranID),
			zap.String("reason", string(outcome.Reason)),
		)
		return &ValidationError{Reason: outcome.Reason}
	}

	bankTranID, _ := vresp.Get("bank_tran_id")
	cardType, _ := vresp.Get("card_type")
	if err := s.repo.SaveBankDetails(ctx, tranID, valID, bankTranID, cardType); err != nil {
		return err
	}
	if err := s.repo.UpdateStatus(ctx, tranID, StatusProcessing); err != nil {
		return err
	}
	if err := s.orderSvc.SetStatus(ctx, p.OrderID, order.StatusProcessing); err != nil {
		return err
	}

	metrics.PaymentsConfirmed.Inc()
	logger.FromCtx(ctx).Info("Payment confirmed",
		zap.String("event", event),
		zap.String("tran_id", tranID),
		zap.String("bank_tran_id", bankTranID),
	)
	return nil
}

func (s *service) HandleFailure(ctx context.Context, cb sslcommerz.Response) error {
	return s.terminate(ctx, cb, "fail", StatusFailed, order.StatusFailed)
}

func (s *service) HandleCancel(ctx context.Context, cb sslcommerz.Response) error {
	return s.terminate(ctx, cb, "cancel", StatusCancelled, order.StatusCancelled)
}

// terminate handles the fail/cancel callbacks. They report abandonment, not
// money movement, so the signature verdict is recorded but not required.
func (s *service) terminate(ctx context.Context, cb sslcommerz.Response, event string, status PaymentStatus, orderStatus order.OrderStatus) error {
	metrics.CallbacksReceived.Inc()

	tranID, ok := cb.Get("tran_id")
	if !ok || tranID == "" {
		return &sslcommerz.MissingFieldError{Field: "tran_id"}
	}

	verified := sslcommerz.VerifyHash(cb, s.creds.StorePassword)
	s.recordCallback(ctx, event, tranID, cb, verified)

	p, err := s.repo.GetPaymentByTranID(ctx, tranID)
	if err != nil {
		return err
	}
	if p.Status != StatusPending {
		return ErrNotPending
	}

	if err := s.repo.UpdateStatus(ctx, tranID, status); err != nil {
		return err
	}
	if err := s.orderSvc.SetStatus(ctx, p.OrderID, orderStatus); err != nil {
		return err
	}

	logger.FromCtx(ctx).Info("Payment closed by callback",
		zap.String("event", event),
		zap.String("tran_id", tranID),
		zap.String("status", string(status)),
	)
	return nil
}

// Refund asks the gateway to return a settled payment. The gateway is the
// source of truth for refund progress; only the reference id is stored.
func (s *service) Refund(ctx context.Context, tranID, reason string) (sslcommerz.Response, error) {
	p, err := s.repo.GetPaymentByTranID(ctx, tranID)
	if err != nil {
		return nil, err
	}
	if p.BankTranID == "" {
		return nil, ErrNotRefundable
	}

	resp, err := s.gateway.RefundPayment(ctx, p.BankTranID, p.Amount, reason)
	if err != nil {
		return nil, err
	}

	if status, _ := resp.Get("status"); status == "SUCCESS" {
		if refundRefID, ok := resp.Get("refund_ref_id"); ok && refundRefID != "" {
			if err := s.repo.SaveRefundRef(ctx, tranID, refundRefID); err != nil {
				return nil, err
			}
		}
		metrics.RefundsRequested.Inc()
	}

	return resp, nil
}

// RefundStatus re-queries the gateway for a previously initiated refund.
func (s *service) RefundStatus(ctx context.Context, tranID string) (sslcommerz.Response, error) {
	p, err := s.repo.GetPaymentByTranID(ctx, tranID)
	if err != nil {
		return nil, err
	}
	if p.RefundRefID == "" {
		return nil, ErrNoRefundReference
	}
	return s.gateway.CheckRefundStatus(ctx, p.RefundRefID)
}

// TransactionStatus fetches the gateway's current record of a transaction,
// for manual re-verification outside the callback flow.
func (s *service) TransactionStatus(ctx context.Context, tranID string) (sslcommerz.Response, error) {
	if _, err := s.repo.GetPaymentByTranID(ctx, tranID); err != nil {
		return nil, err
	}
	return s.gateway.QueryTransactionStatus(ctx, tranID)
}

func (s *service) recordCallback(ctx context.Context, event, tranID string, cb sslcommerz.Response, verified bool) {
	payload, err := json.Marshal(cb)
	if err != nil {
		payload = []byte("{}")
	}
	if _, err := s.repo.SaveCallbackEvent(ctx, event, tranID, payload, verified); err != nil {
		logger.FromCtx(ctx).Warn("Failed to record callback event",
			zap.String("event", event),
			zap.String("tran_id", tranID),
			zap.Error(err),
		)
	}
}

func toGatewayCustomer(c order.Customer) sslcommerz.Customer {
	return sslcommerz.Customer{
		Name:         c.Name,
		Email:        c.Email,
		AddressLine1: c.AddressLine1,
		AddressLine2: c.AddressLine2,
		City:         c.City,
		State:        c.State,
		Postcode:     c.Postcode,
		Country:      c.Country,
		Phone:        c.Phone,
	}
}

func toGatewayShipment(sh order.Shipping, itemCount int) sslcommerz.Shipment {
	return sslcommerz.Shipment{
		RecipientName: sh.RecipientName,
		AddressLine1:  sh.AddressLine1,
		City:          sh.City,
		State:         sh.State,
		Postcode:      sh.Postcode,
		Country:       sh.Country,
		Method:        sh.Method,
		ItemCount:     itemCount,
	}
}

func toGatewayItems(items []order.OrderItem) []sslcommerz.LineItem {
	out := make([]sslcommerz.LineItem, 0, len(items))
	for _, it := range items {
		out = append(out, sslcommerz.LineItem{
			Name:       it.Name,
			Category:   it.Category,
			IsPhysical: it.IsPhysical,
		})
	}
	return out
}
