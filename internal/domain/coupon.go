package domain

// Coupon is a per-product discount amount served by the discount service.
type Coupon struct {
	ID          int64  `json:"id"`
	ProductName string `json:"productName"`
	Description string `json:"description"`
	AmountCents int64  `json:"amountCents"`
}
