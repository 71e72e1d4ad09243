package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"bazarpay-be/internal/order"
	"bazarpay-be/internal/payment"
	"bazarpay-be/internal/sslcommerz"
	"bazarpay-be/internal/utils"

	"github.com/go-chi/chi/v5"
)

// Handler exposes the payment HTTP surface: the checkout initiation API,
// the four gateway callback endpoints, and the refund endpoints.
type Handler struct {
	Svc payment.Service
}

func NewHandler(svc payment.Service) *Handler {
	return &Handler{Svc: svc}
}

type initiateRequest struct {
	OrderID uint `json:"order_id"`
}

func (h *Handler) Initiate(w http.ResponseWriter, r *http.Request) {
	var req initiateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSONError(w, "invalid JSON payload", http.StatusBadRequest)
		return
	}
	if req.OrderID == 0 {
		utils.WriteJSONError(w, "order_id is required", http.StatusBadRequest)
		return
	}

	result, err := h.Svc.Initiate(r.Context(), req.OrderID)
	if err != nil {
		h.writeInitiateError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusCreated, result)
}

func (h *Handler) writeInitiateError(w http.ResponseWriter, err error) {
	var missing *sslcommerz.MissingFieldError
	switch {
	case errors.Is(err, order.ErrOrderNotFound):
		utils.WriteJSONError(w, err.Error(), http.StatusNotFound)
	case errors.As(err, &missing):
		utils.WriteJSONError(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, payment.ErrGatewayDeclined):
		utils.WriteJSONError(w, err.Error(), http.StatusBadGateway)
	default:
		utils.WriteJSONError(w, "failed to initiate payment", http.StatusInternalServerError)
	}
}

// The gateway posts form-encoded bodies to each callback URL. Callbacks are
// answered 200 for every handled outcome so the gateway stops retrying;
// only a broken request or a failed signature says otherwise.

func (h *Handler) Success(w http.ResponseWriter, r *http.Request) {
	h.callback(w, r, h.Svc.HandleSuccess)
}

func (h *Handler) Fail(w http.ResponseWriter, r *http.Request) {
	h.callback(w, r, h.Svc.HandleFailure)
}

func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.callback(w, r, h.Svc.HandleCancel)
}

func (h *Handler) IPN(w http.ResponseWriter, r *http.Request) {
	h.callback(w, r, h.Svc.HandleIPN)
}

func (h *Handler) callback(w http.ResponseWriter, r *http.Request, handle func(context.Context, sslcommerz.Response) error) {
	if err := r.ParseForm(); err != nil {
		utils.WriteJSONError(w, "invalid form body", http.StatusBadRequest)
		return
	}

	cb := sslcommerz.FromForm(r.PostForm)
	err := handle(r.Context(), cb)
	if err == nil {
		utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "success"})
		return
	}

	var missing *sslcommerz.MissingFieldError
	var validation *payment.ValidationError
	switch {
	case errors.As(err, &missing):
		utils.WriteJSONError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, sslcommerz.ErrSignatureVerification):
		utils.WriteJSONError(w, "signature verification failed", http.StatusUnauthorized)
	case errors.Is(err, payment.ErrPaymentNotFound):
		utils.WriteJSONError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, payment.ErrNotPending):
		// Replayed callback; the transition already happened.
		utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ignored"})
	case errors.As(err, &validation):
		utils.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "error",
			"reason": string(validation.Reason),
		})
	default:
		utils.WriteJSONError(w, "failed to process callback", http.StatusInternalServerError)
	}
}

type refundRequest struct {
	Reason string `json:"reason"`
}

func (h *Handler) Refund(w http.ResponseWriter, r *http.Request) {
	tranID := chi.URLParam(r, "tranID")

	var req refundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSONError(w, "invalid JSON payload", http.StatusBadRequest)
		return
	}
	if req.Reason == "" {
		req.Reason = "Customer requested"
	}

	resp, err := h.Svc.Refund(r.Context(), tranID, req.Reason)
	if err != nil {
		h.writeRefundError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) RefundStatus(w http.ResponseWriter, r *http.Request) {
	tranID := chi.URLParam(r, "tranID")

	resp, err := h.Svc.RefundStatus(r.Context(), tranID)
	if err != nil {
		h.writeRefundError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) TransactionStatus(w http.ResponseWriter, r *http.Request) {
	tranID := chi.URLParam(r, "tranID")

	resp, err := h.Svc.TransactionStatus(r.Context(), tranID)
	if err != nil {
		h.writeRefundError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) writeRefundError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, payment.ErrPaymentNotFound):
		utils.WriteJSONError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, payment.ErrNotRefundable), errors.Is(err, payment.ErrNoRefundReference):
		utils.WriteJSONError(w, err.Error(), http.StatusConflict)
	default:
		utils.WriteJSONError(w, "gateway request failed", http.StatusBadGateway)
	}
}
