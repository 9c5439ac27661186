package domain

import "time"

type Basket struct {
	ID        string       `json:"id"`
	UserName  string       `json:"userName"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
	Items     []BasketItem `json:"items"`
}

type BasketItem struct {
	ID          string `json:"id"`
	BasketID    string `json:"basketId"`
	ProductID   string `json:"productId"`
	ProductName string `json:"productName"`
	Quantity    int    `json:"quantity"`
	PriceCents  int64  `json:"priceCents"`
}

// TotalCents derives the basket total from its items.
func (b Basket) TotalCents() int64 {
	var total int64
	for _, item := range b.Items {
		total += item.PriceCents * int64(item.Quantity)
	}
	return total
}
