package payment

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
)

type Repository interface {
	SavePayment(ctx context.Context, p *Payment) error
	GetPaymentByTranID(ctx context.Context, tranID string) (*Payment, error)
	UpdateStatus(ctx context.Context, tranID string, status PaymentStatus) error
	SaveBankDetails(ctx context.Context, tranID, valID, bankTranID, cardType string) error
	SaveRefundRef(ctx context.Context, tranID, refundRefID string) error

	// SaveCallbackEvent records every received callback with its signature
	// verdict, for audit and replay detection.
	SaveCallbackEvent(ctx context.Context, event, tranID string, payload json.RawMessage, signatureValid bool) (int64, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) SavePayment(ctx context.Context, p *Payment) error {
	return r.db.QueryRowContext(ctx, `
		INSERT INTO payments (order_id, tran_id, amount, currency, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, p.OrderID, p.TranID, p.Amount, p.Currency, p.Status).Scan(&p.ID)
}

func (r *repository) GetPaymentByTranID(ctx context.Context, tranID string) (*Payment, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, order_id, tran_id, amount, currency, status,
		       COALESCE(val_id, ''), COALESCE(bank_tran_id, ''), COALESCE(card_type, ''),
		       COALESCE(refund_ref_id, ''), created_at, updated_at
		FROM payments
		WHERE tran_id = $1
	`, tranID)

	var p Payment
	err := row.Scan(
		&p.ID, &p.OrderID, &p.TranID, &p.Amount, &p.Currency, &p.Status,
		&p.ValID, &p.BankTranID, &p.CardType, &p.RefundRefID, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repository) UpdateStatus(ctx context.Context, tranID string, status PaymentStatus) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE payments SET status = $1, updated_at = now() WHERE tran_id = $2
	`, status, tranID)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrPaymentNotFound
	}
	return nil
}

func (r *repository) SaveBankDetails(ctx context.Context, tranID, valID, bankTranID, cardType string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE payments
		SET val_id = $1, bank_tran_id = $2, card_type = $3, updated_at = now()
		WHERE tran_id = $4
	`, valID, bankTranID, cardType, tranID)
	return err
}

func (r *repository) SaveRefundRef(ctx context.Context, tranID, refundRefID string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE payments SET refund_ref_id = $1, updated_at = now() WHERE tran_id = $2
	`, refundRefID, tranID)
	return err
}

func (r *repository) SaveCallbackEvent(ctx context.Context, event, tranID string, payload json.RawMessage, signatureValid bool) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO payment_callbacks (event, tran_id, payload, signature_valid)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, event, tranID, payload, signatureValid).Scan(&id)
	return id, err
}
