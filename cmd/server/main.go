package main

import (
	"net/http"

	"bazarpay-be/internal/config"
	"bazarpay-be/internal/db"
	"bazarpay-be/internal/logger"
	"bazarpay-be/internal/metrics"
	"bazarpay-be/internal/middleware"
	"bazarpay-be/internal/order"
	"bazarpay-be/internal/payment"
	"bazarpay-be/internal/payment/webhook"
	"bazarpay-be/internal/sslcommerz"
	"bazarpay-be/internal/utils"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

func main() {
	cfg := config.LoadConfig()
	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	database := db.InitDB(cfg)
	defer database.Close()

	creds := sslcommerz.NewCredentials(
		cfg.StoreID, cfg.StorePassword, cfg.Sandbox, cfg.Currency,
		cfg.SuccessURL, cfg.FailURL, cfg.CancelURL, cfg.IPNURL,
	)
	gateway := sslcommerz.NewClient(creds)

	orderRepo := order.NewRepository(database)
	orderSvc := order.NewService(orderRepo)

	paymentRepo := payment.NewRepository(database)
	paymentSvc := payment.NewService(paymentRepo, orderSvc, gateway, creds, cfg.AppName)

	h := webhook.NewHandler(paymentSvc)

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(logger.RequestIDMiddleware)
	r.Use(logger.LoggingMiddleware)

	r.Route("/payment", func(r chi.Router) {
		r.With(middleware.StrictRateLimit).Post("/initiate", h.Initiate)

		// Gateway callback endpoints
		r.Group(func(r chi.Router) {
			r.Use(middleware.CallbackRateLimit)
			r.Post("/success", h.Success)
			r.Post("/fail", h.Fail)
			r.Post("/cancel", h.Cancel)
			r.Post("/ipn", h.IPN)
		})

		r.With(middleware.StrictRateLimit).Post("/{tranID}/refund", h.Refund)
		r.Get("/{tranID}/refund-status", h.RefundStatus)
		r.Get("/{tranID}/status", h.TransactionStatus)
	})

	r.Get("/metrics", func(w http.ResponseWriter, req *http.Request) {
		utils.WriteJSON(w, http.StatusOK, metrics.Snapshot())
	})

	logger.L().Info("Payment server listening",
		zap.String("port", cfg.AppPort),
		zap.Bool("sandbox", cfg.Sandbox),
	)
	if err := http.ListenAndServe(":"+cfg.AppPort, r); err != nil {
		logger.L().Fatal("server stopped", zap.Error(err))
	}
}
