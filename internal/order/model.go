package order

import (
	"time"
)

type OrderStatus string

const (
	StatusPending    OrderStatus = "PENDING"
	StatusProcessing OrderStatus = "PROCESSING"
	StatusComplete   OrderStatus = "COMPLETE"
	StatusFailed     OrderStatus = "FAILED"
	StatusCancelled  OrderStatus = "CANCELLED"
)

type Order struct {
	ID        uint
	Total     float64
	Status    OrderStatus
	CreatedAt time.Time
	UpdatedAt time.Time

	Customer Customer
	Shipping Shipping
	Items    []OrderItem
}

// Customer is the buyer snapshot taken at checkout. The gateway requires
// most of these on every initiation request.
type Customer struct {
	Name         string
	Email        string
	AddressLine1 string
	AddressLine2 string
	City         string
	State        string
	Postcode     string
	Country      string
	Phone        string
}

type Shipping struct {
	RecipientName string
	AddressLine1  string
	City          string
	State         string
	Postcode      string
	Country       string
	Method        string
}

type OrderItem struct {
	ID         uint
	OrderID    uint
	Name       string
	Category   string
	IsPhysical bool
	Quantity   int
	Price      float64
}
