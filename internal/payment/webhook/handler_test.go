package webhook

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"bazarpay-be/internal/order"
	"bazarpay-be/internal/payment"
	"bazarpay-be/internal/sslcommerz"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Initiate(ctx context.Context, orderID uint) (*payment.InitiateResult, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.InitiateResult), args.Error(1)
}

func (m *MockService) HandleSuccess(ctx context.Context, cb sslcommerz.Response) error {
	return m.Called(ctx, cb).Error(0)
}

func (m *MockService) HandleFailure(ctx context.Context, cb sslcommerz.Response) error {
	return m.Called(ctx, cb).Error(0)
}

func (m *MockService) HandleCancel(ctx context.Context, cb sslcommerz.Response) error {
	return m.Called(ctx, cb).Error(0)
}

func (m *MockService) HandleIPN(ctx context.Context, cb sslcommerz.Response) error {
	return m.Called(ctx, cb).Error(0)
}

func (m *MockService) Refund(ctx context.Context, tranID, reason string) (sslcommerz.Response, error) {
	args := m.Called(ctx, tranID, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(sslcommerz.Response), args.Error(1)
}

func (m *MockService) RefundStatus(ctx context.Context, tranID string) (sslcommerz.Response, error) {
	args := m.Called(ctx, tranID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(sslcommerz.Response), args.Error(1)
}

func (m *MockService) TransactionStatus(ctx context.Context, tranID string) (sslcommerz.Response, error) {
	args := m.Called(ctx, tranID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(sslcommerz.Response), args.Error(1)
}

func newTestRouter(svc payment.Service) http.Handler {
	h := NewHandler(svc)
	r := chi.NewRouter()
	r.Route("/payment", func(r chi.Router) {
		r.Post("/initiate", h.Initiate)
		r.Post("/success", h.Success)
		r.Post("/fail", h.Fail)
		r.Post("/cancel", h.Cancel)
		r.Post("/ipn", h.IPN)
		r.Post("/{tranID}/refund", h.Refund)
		r.Get("/{tranID}/refund-status", h.RefundStatus)
		r.Get("/{tranID}/status", h.TransactionStatus)
	})
	return r
}

func postForm(t *testing.T, router http.Handler, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func postJSON(t *testing.T, router http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHandler_Initiate(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		svc := new(MockService)
		router := newTestRouter(svc)

		svc.On("Initiate", mock.Anything, uint(42)).Return(&payment.InitiateResult{
			TranID:     "TXN-1",
			GatewayURL: "https://sandbox.sslcommerz.com/EasyCheckOut/sess-abc",
			SessionKey: "sess-abc",
		}, nil)

		rec := postJSON(t, router, "/payment/initiate", `{"order_id": 42}`)

		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Contains(t, rec.Body.String(), `"tran_id":"TXN-1"`)
		assert.Contains(t, rec.Body.String(), "EasyCheckOut")
	})

	t.Run("InvalidJSON", func(t *testing.T) {
		svc := new(MockService)
		router := newTestRouter(svc)

		rec := postJSON(t, router, "/payment/initiate", `{broken`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("MissingOrderID", func(t *testing.T) {
		svc := new(MockService)
		router := newTestRouter(svc)

		rec := postJSON(t, router, "/payment/initiate", `{}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		svc.AssertNotCalled(t, "Initiate", mock.Anything, mock.Anything)
	})

	t.Run("OrderNotFound", func(t *testing.T) {
		svc := new(MockService)
		router := newTestRouter(svc)

		svc.On("Initiate", mock.Anything, uint(99)).Return(nil, order.ErrOrderNotFound)

		rec := postJSON(t, router, "/payment/initiate", `{"order_id": 99}`)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("IncompleteOrderData", func(t *testing.T) {
		svc := new(MockService)
		router := newTestRouter(svc)

		svc.On("Initiate", mock.Anything, uint(42)).
			Return(nil, &sslcommerz.MissingFieldError{Field: "cus_phone"})

		rec := postJSON(t, router, "/payment/initiate", `{"order_id": 42}`)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Contains(t, rec.Body.String(), "cus_phone")
	})

	t.Run("GatewayDeclined", func(t *testing.T) {
		svc := new(MockService)
		router := newTestRouter(svc)

		svc.On("Initiate", mock.Anything, uint(42)).Return(nil, payment.ErrGatewayDeclined)

		rec := postJSON(t, router, "/payment/initiate", `{"order_id": 42}`)
		assert.Equal(t, http.StatusBadGateway, rec.Code)
	})
}

func TestHandler_Callbacks(t *testing.T) {
	form := url.Values{}
	form.Set("tran_id", "TXN-1")
	form.Set("status", "VALID")
	form.Set("val_id", "val-123")

	t.Run("SuccessHandled", func(t *testing.T) {
		svc := new(MockService)
		router := newTestRouter(svc)

		svc.On("HandleSuccess", mock.Anything, mock.MatchedBy(func(cb sslcommerz.Response) bool {
			tranID, _ := cb.Get("tran_id")
			return tranID == "TXN-1"
		})).Return(nil)

		rec := postForm(t, router, "/payment/success", form)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"status":"success"`)
		svc.AssertExpectations(t)
	})

	t.Run("SignatureFailure", func(t *testing.T) {
		svc := new(MockService)
		router := newTestRouter(svc)

		svc.On("HandleSuccess", mock.Anything, mock.Anything).
			Return(sslcommerz.ErrSignatureVerification)

		rec := postForm(t, router, "/payment/success", form)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("MissingField", func(t *testing.T) {
		svc := new(MockService)
		router := newTestRouter(svc)

		svc.On("HandleIPN", mock.Anything, mock.Anything).
			Return(&sslcommerz.MissingFieldError{Field: "tran_id"})

		rec := postForm(t, router, "/payment/ipn", url.Values{})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("UnknownPayment", func(t *testing.T) {
		svc := new(MockService)
		router := newTestRouter(svc)

		svc.On("HandleSuccess", mock.Anything, mock.Anything).
			Return(payment.ErrPaymentNotFound)

		rec := postForm(t, router, "/payment/success", form)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("ReplayedCallbackIgnored", func(t *testing.T) {
		svc := new(MockService)
		router := newTestRouter(svc)

		svc.On("HandleIPN", mock.Anything, mock.Anything).Return(payment.ErrNotPending)

		rec := postForm(t, router, "/payment/ipn", form)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"status":"ignored"`)
	})

	t.Run("ValidationRejected", func(t *testing.T) {
		svc := new(MockService)
		router := newTestRouter(svc)

		svc.On("HandleSuccess", mock.Anything, mock.Anything).
			Return(&payment.ValidationError{Reason: sslcommerz.ReasonAmountMismatch})

		rec := postForm(t, router, "/payment/success", form)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"status":"error"`)
		assert.Contains(t, rec.Body.String(), "AMOUNT_MISMATCH")
	})

	t.Run("FailRoutesToHandleFailure", func(t *testing.T) {
		svc := new(MockService)
		router := newTestRouter(svc)

		svc.On("HandleFailure", mock.Anything, mock.Anything).Return(nil)

		rec := postForm(t, router, "/payment/fail", form)
		assert.Equal(t, http.StatusOK, rec.Code)
		svc.AssertExpectations(t)
	})

	t.Run("CancelRoutesToHandleCancel", func(t *testing.T) {
		svc := new(MockService)
		router := newTestRouter(svc)

		svc.On("HandleCancel", mock.Anything, mock.Anything).Return(nil)

		rec := postForm(t, router, "/payment/cancel", form)
		assert.Equal(t, http.StatusOK, rec.Code)
		svc.AssertExpectations(t)
	})
}

func TestHandler_Refund(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		svc := new(MockService)
		router := newTestRouter(svc)

		svc.On("Refund", mock.Anything, "TXN-1", "Item damaged").Return(sslcommerz.Response{
			"status":        "SUCCESS",
			"refund_ref_id": "REF-789",
		}, nil)

		rec := postJSON(t, router, "/payment/TXN-1/refund", `{"reason": "Item damaged"}`)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "REF-789")
	})

	t.Run("DefaultReason", func(t *testing.T) {
		svc := new(MockService)
		router := newTestRouter(svc)

		svc.On("Refund", mock.Anything, "TXN-1", "Customer requested").
			Return(sslcommerz.Response{"status": "SUCCESS"}, nil)

		rec := postJSON(t, router, "/payment/TXN-1/refund", `{}`)

		assert.Equal(t, http.StatusOK, rec.Code)
		svc.AssertExpectations(t)
	})

	t.Run("NotRefundable", func(t *testing.T) {
		svc := new(MockService)
		router := newTestRouter(svc)

		svc.On("Refund", mock.Anything, "TXN-1", mock.Anything).
			Return(nil, payment.ErrNotRefundable)

		rec := postJSON(t, router, "/payment/TXN-1/refund", `{}`)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("NotFound", func(t *testing.T) {
		svc := new(MockService)
		router := newTestRouter(svc)

		svc.On("Refund", mock.Anything, "TXN-404", mock.Anything).
			Return(nil, payment.ErrPaymentNotFound)

		rec := postJSON(t, router, "/payment/TXN-404/refund", `{}`)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestHandler_RefundStatus(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		svc := new(MockService)
		router := newTestRouter(svc)

		svc.On("RefundStatus", mock.Anything, "TXN-1").
			Return(sslcommerz.Response{"status": "refunded"}, nil)

		req := httptest.NewRequest(http.MethodGet, "/payment/TXN-1/refund-status", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "refunded")
	})

	t.Run("NoRefundReference", func(t *testing.T) {
		svc := new(MockService)
		router := newTestRouter(svc)

		svc.On("RefundStatus", mock.Anything, "TXN-1").
			Return(nil, payment.ErrNoRefundReference)

		req := httptest.NewRequest(http.MethodGet, "/payment/TXN-1/refund-status", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestHandler_TransactionStatus(t *testing.T) {
	svc := new(MockService)
	router := newTestRouter(svc)

	svc.On("TransactionStatus", mock.Anything, "TXN-1").
		Return(sslcommerz.Response{"status": "VALID", "tran_id": "TXN-1"}, nil)

	req := httptest.NewRequest(http.MethodGet, "/payment/TXN-1/status", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"tran_id":"TXN-1"`)
}
