package seed

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type couponSeed struct {
	ProductName string
	Description string
	AmountCents int64
}

// Apply inserts coupon seed data for manual testing. It is idempotent via
// ON CONFLICT.
func Apply(ctx context.Context, pool *pgxpool.Pool) error {
	coupons := []couponSeed{
		{
			ProductName: "iPhone 15",
			Description: "Holiday discount",
			AmountCents: 5000,
		},
		{
			ProductName: "Samsung Galaxy S24",
			Description: "Winter campaign",
			AmountCents: 6750,
		},
		{
			ProductName: "MacBook Pro",
			Description: "Student discount",
			AmountCents: 5000,
		},
	}

	for _, c := range coupons {
		if err := upsertCoupon(ctx, pool, c); err != nil {
			return fmt.Errorf("upsert coupon %s: %w", c.ProductName, err)
		}
	}
	return nil
}

func upsertCoupon(ctx context.Context, pool *pgxpool.Pool, c couponSeed) error {
	const q = `
INSERT INTO coupons (product_name, description, amount_cents)
VALUES ($1, $2, $3)
ON CONFLICT (product_name) DO UPDATE
SET description = EXCLUDED.description,
    amount_cents = EXCLUDED.amount_cents
`
	_, err := pool.Exec(ctx, q, c.ProductName, c.Description, c.AmountCents)
	return err
}
