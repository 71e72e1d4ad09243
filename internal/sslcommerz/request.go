package sslcommerz

import (
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Reserved category names that force a gateway product profile.
const (
	categoryAirlineTickets = "Airline Tickets"
	categoryTravelServices = "Travel Services"
	categoryTelecomService = "Telecom Services"
)

// Product profiles the gateway accepts on payment initiation.
const (
	ProfileAirlineTickets  = "airline-tickets"
	ProfileTravelVertical  = "travel-vertical"
	ProfileTelecomVertical = "telecom-vertical"
	ProfilePhysicalGoods   = "physical-goods"
	ProfileNonPhysical     = "non-physical-goods"
)

const defaultShippingMethod = "Courier"

// Customer carries the buyer fields the gateway's form schema requires.
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
	Fax          string
}

// Shipment describes where and how the order ships. Zero values fall back
// to documented defaults during the build.
type Shipment struct {
	RecipientName string
	AddressLine1  string
	City          string
	State         string
	Postcode      string
	Country       string
	Method        string
	ItemCount     int
}

// LineItem is one ordered product, as far as the gateway cares about it.
type LineItem struct {
	Name       string
	Category   string
	IsPhysical bool
}

// OrderInfo identifies the local order behind a payment attempt. It fills
// the gateway's value_a..value_d pass-through fields.
type OrderInfo struct {
	ID        string
	PaymentID string
	AppName   string
	CreatedAt time.Time
}

// ExpectedTransaction is the locally recorded truth for a payment attempt.
// It is the single source for amount, currency and transaction id; line
// items are never summed to recompute money.
type ExpectedTransaction struct {
	TranID   string
	Amount   float64
	Currency string
}

// BuildPaymentRequest assembles the outbound payment-initiation form body.
// It is pure: no I/O, no state. Every field of the gateway's schema is set,
// empty string when there is nothing to say. A required field that is empty
// fails with a MissingFieldError naming the wire field.
func BuildPaymentRequest(order OrderInfo, customer Customer, shipment Shipment, items []LineItem, tx ExpectedTransaction, creds Credentials) (url.Values, error) {
	if err := checkRequired(customer, tx); err != nil {
		return nil, err
	}

	v := url.Values{}

	// Authentication
	v.Set("store_id", creds.StoreID)
	v.Set("store_passwd", creds.StorePassword)

	// Callback URLs. multi_card_name stays empty: no preferred channel.
	v.Set("success_url", creds.SuccessURL)
	v.Set("fail_url", creds.FailURL)
	v.Set("cancel_url", creds.CancelURL)
	v.Set("ipn_url", creds.IPNURL)
	v.Set("multi_card_name", "")

	// Customer
	v.Set("cus_name", customer.Name)
	v.Set("cus_email", customer.Email)
	v.Set("cus_add1", customer.AddressLine1)
	v.Set("cus_add2", customer.AddressLine2)
	v.Set("cus_city", customer.City)
	v.Set("cus_state", customer.State)
	v.Set("cus_postcode", customer.Postcode)
	v.Set("cus_country", customer.Country)
	v.Set("cus_phone", customer.Phone)
	fax := customer.Fax
	if fax == "" {
		fax = customer.Phone
	}
	v.Set("cus_fax", fax)

	// Shipment
	method := shipment.Method
	if method == "" {
		method = defaultShippingMethod
	}
	recipient := shipment.RecipientName
	if recipient == "" {
		recipient = customer.Name
	}
	v.Set("shipping_method", method)
	v.Set("num_of_item", strconv.Itoa(shipment.ItemCount))
	v.Set("ship_name", recipient)
	v.Set("ship_add1", shipment.AddressLine1)
	v.Set("ship_city", shipment.City)
	v.Set("ship_state", shipment.State)
	v.Set("ship_postcode", shipment.Postcode)
	v.Set("ship_country", shipment.Country)

	// Product / transaction identity
	v.Set("total_amount", strconv.FormatFloat(tx.Amount, 'f', 2, 64))
	v.Set("currency", tx.Currency)
	v.Set("tran_id", tx.TranID)
	v.Set("product_name", productNames(items))
	v.Set("product_category", productCategories(items))
	v.Set("product_profile", ProductProfile(items))

	// Pass-through values echoed back on callbacks
	v.Set("value_a", order.ID)
	v.Set("value_b", order.PaymentID)
	v.Set("value_c", order.AppName)
	if !order.CreatedAt.IsZero() {
		v.Set("value_d", order.CreatedAt.Format(time.RFC3339))
	} else {
		v.Set("value_d", "")
	}

	return v, nil
}

func checkRequired(customer Customer, tx ExpectedTransaction) error {
	required := []struct {
		field string
		value string
	}{
		{"cus_name", customer.Name},
		{"cus_email", customer.Email},
		{"cus_add1", customer.AddressLine1},
		{"cus_city", customer.City},
		{"cus_postcode", customer.Postcode},
		{"cus_country", customer.Country},
		{"cus_phone", customer.Phone},
		{"tran_id", tx.TranID},
		{"currency", tx.Currency},
	}
	for _, r := range required {
		if r.value == "" {
			return &MissingFieldError{Field: r.field}
		}
	}
	if tx.Amount <= 0 {
		return &MissingFieldError{Field: "total_amount"}
	}
	return nil
}

func productNames(items []LineItem) string {
	names := make([]string, 0, len(items))
	for _, it := range items {
		names = append(names, it.Name)
	}
	return strings.Join(names, ", ")
}

func productCategories(items []LineItem) string {
	seen := make(map[string]struct{}, len(items))
	distinct := make([]string, 0, len(items))
	for _, it := range items {
		if _, ok := seen[it.Category]; ok {
			continue
		}
		seen[it.Category] = struct{}{}
		distinct = append(distinct, it.Category)
	}
	return strings.Join(distinct, ", ")
}

// ProductProfile classifies the order for the gateway. Priority matters:
// airline beats travel beats telecom, and only when none of the reserved
// categories appear does the physical flag decide.
func ProductProfile(items []LineItem) string {
	hasCategory := func(name string) bool {
		for _, it := range items {
			if it.Category == name {
				return true
			}
		}
		return false
	}

	switch {
	case hasCategory(categoryAirlineTickets):
		return ProfileAirlineTickets
	case hasCategory(categoryTravelServices):
		return ProfileTravelVertical
	case hasCategory(categoryTelecomService):
		return ProfileTelecomVertical
	}

	for _, it := range items {
		if !it.IsPhysical {
			return ProfileNonPhysical
		}
	}
	return ProfilePhysicalGoods
}
