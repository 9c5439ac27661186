package domain

import (
	"time"

	"github.com/google/uuid"
)

// BasketCheckoutEvent is the payload published when a basket is checked out.
// It is a snapshot of the basket at that moment; consumers must treat it as a
// value, never as a reference to live basket state.
type BasketCheckoutEvent struct {
	EventID         string         `json:"eventId"`
	CreatedAt       time.Time      `json:"createdAt"`
	UserName        string         `json:"userName"`
	TotalPriceCents int64          `json:"totalPriceCents"`
	DiscountCents   int64          `json:"discountCents"`
	Items           []CheckoutItem `json:"items"`
	Shipping        ShippingInfo   `json:"shipping"`
	Payment         PaymentInfo    `json:"payment"`
}

type CheckoutItem struct {
	ProductID   string `json:"productId"`
	ProductName string `json:"productName"`
	Quantity    int    `json:"quantity"`
	PriceCents  int64  `json:"priceCents"`
}

type ShippingInfo struct {
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	EmailAddress string `json:"emailAddress"`
	AddressLine  string `json:"addressLine"`
	Country      string `json:"country"`
	State        string `json:"state"`
	ZipCode      string `json:"zipCode"`
}

type PaymentInfo struct {
	CardName      string `json:"cardName"`
	CardNumber    string `json:"cardNumber"`
	Expiration    string `json:"expiration"`
	CVV           string `json:"cvv"`
	PaymentMethod int    `json:"paymentMethod"`
}

// NewBasketCheckoutEvent assigns the event identity and creation timestamp.
func NewBasketCheckoutEvent(userName string, totalCents, discountCents int64, items []CheckoutItem, shipping ShippingInfo, payment PaymentInfo) BasketCheckoutEvent {
	return BasketCheckoutEvent{
		EventID:         uuid.NewString(),
		CreatedAt:       time.Now().UTC(),
		UserName:        userName,
		TotalPriceCents: totalCents,
		DiscountCents:   discountCents,
		Items:           items,
		Shipping:        shipping,
		Payment:         payment,
	}
}
