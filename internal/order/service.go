package order

import (
	"context"

	"bazarpay-be/internal/logger"

	"go.uber.org/zap"
)

type Service interface {
	GetOrder(ctx context.Context, orderID uint) (*Order, error)
	SetStatus(ctx context.Context, orderID uint, status OrderStatus) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) GetOrder(ctx context.Context, orderID uint) (*Order, error) {
	return s.repo.GetOrderDetail(ctx, orderID)
}

func (s *service) SetStatus(ctx context.Context, orderID uint, status OrderStatus) error {
	if err := s.repo.UpdateOrderStatus(ctx, orderID, status); err != nil {
		return err
	}

	logger.FromCtx(ctx).Info("Order status updated",
		zap.Uint("order_id", orderID),
		zap.String("status", string(status)),
	)
	return nil
}
