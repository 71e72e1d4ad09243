package order

import (
	"context"
	"database/sql"
	"errors"
)

type Repository interface {
	GetOrderDetail(ctx context.Context, orderID uint) (*Order, error)
	UpdateOrderStatus(ctx context.Context, orderID uint, status OrderStatus) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetOrderDetail(ctx context.Context, orderID uint) (*Order, error) {
	query := `
		SELECT id, total_price, status, created_at, updated_at,
		       customer_name, customer_email, customer_add1, customer_add2,
		       customer_city, customer_state, customer_postcode, customer_country, customer_phone,
		       ship_name, ship_add1, ship_city, ship_state, ship_postcode, ship_country, shipping_method
		FROM orders
		WHERE id = $1
	`

	var o Order
	err := r.db.QueryRowContext(ctx, query, orderID).Scan(
		&o.ID, &o.Total, &o.Status, &o.CreatedAt, &o.UpdatedAt,
		&o.Customer.Name, &o.Customer.Email, &o.Customer.AddressLine1, &o.Customer.AddressLine2,
		&o.Customer.City, &o.Customer.State, &o.Customer.Postcode, &o.Customer.Country, &o.Customer.Phone,
		&o.Shipping.RecipientName, &o.Shipping.AddressLine1, &o.Shipping.City, &o.Shipping.State,
		&o.Shipping.Postcode, &o.Shipping.Country, &o.Shipping.Method,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	items, err := r.getOrderItems(ctx, orderID)
	if err != nil {
		return nil, err
	}
	o.Items = items

	return &o, nil
}

func (r *repository) getOrderItems(ctx context.Context, orderID uint) ([]OrderItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, order_id, name, category, is_physical, quantity, price
		FROM order_items
		WHERE order_id = $1
		ORDER BY id
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []OrderItem
	for rows.Next() {
		var it OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.Name, &it.Category, &it.IsPhysical, &it.Quantity, &it.Price); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *repository) UpdateOrderStatus(ctx context.Context, orderID uint, status OrderStatus) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE orders SET status = $1, updated_at = now() WHERE id = $2
	`, status, orderID)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrOrderNotFound
	}
	return nil
}
