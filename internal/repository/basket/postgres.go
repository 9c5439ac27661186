package basket

import (
	"context"
	"errors"
	"time"

	"microshop/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) GetByUserName(ctx context.Context, userName string) (*domain.Basket, error) {
	const q = `
SELECT id::text, user_name, created_at, updated_at
FROM baskets
WHERE user_name = $1
`
	var b domain.Basket
	err := r.pool.QueryRow(ctx, q, userName).Scan(&b.ID, &b.UserName, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	items, err := r.fetchItems(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	b.Items = items
	return &b, nil
}

func (r *postgresRepo) Save(ctx context.Context, basket *domain.Basket) (*domain.Basket, error) {
	// Delete-all-items-then-insert under one transaction: a partial failure
	// rolls back and never leaves a mixed old/new item set visible.
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	// The upsert takes the basket row lock before the items are touched, so
	// concurrent saves for one user serialize here and the item delete below
	// always sees the competing writer's committed rows. Without the lock
	// first, two savers could each miss the other's items and commit a merged
	// set.
	now := time.Now().UTC()
	err = tx.QueryRow(ctx, `
INSERT INTO baskets (id, user_name, created_at, updated_at)
VALUES ($1, $2, $3, $3)
ON CONFLICT (user_name) DO UPDATE SET updated_at = EXCLUDED.updated_at
RETURNING id::text, created_at
`, uuid.NewString(), basket.UserName, now).Scan(&basket.ID, &basket.CreatedAt)
	if err != nil {
		return nil, err
	}
	basket.UpdatedAt = now

	if _, err := tx.Exec(ctx, `DELETE FROM basket_items WHERE basket_id = $1`, basket.ID); err != nil {
		return nil, err
	}

	for i := range basket.Items {
		item := &basket.Items[i]
		item.ID = uuid.NewString()
		item.BasketID = basket.ID
		if _, err := tx.Exec(ctx, `
INSERT INTO basket_items (id, basket_id, product_id, product_name, quantity, price_cents)
VALUES ($1, $2, $3, $4, $5, $6)
`, item.ID, item.BasketID, item.ProductID, item.ProductName, item.Quantity, item.PriceCents); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return basket, nil
}

func (r *postgresRepo) Delete(ctx context.Context, userName string) (bool, error) {
	// basket_items rows go with the basket via ON DELETE CASCADE.
	cmd, err := r.pool.Exec(ctx, `DELETE FROM baskets WHERE user_name = $1`, userName)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *postgresRepo) fetchItems(ctx context.Context, basketID string) ([]domain.BasketItem, error) {
	const q = `
SELECT id::text, basket_id::text, product_id::text, product_name, quantity, price_cents
FROM basket_items
WHERE basket_id = $1
ORDER BY product_name ASC
`
	rows, err := r.pool.Query(ctx, q, basketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.BasketItem
	for rows.Next() {
		var item domain.BasketItem
		if err := rows.Scan(
			&item.ID,
			&item.BasketID,
			&item.ProductID,
			&item.ProductName,
			&item.Quantity,
			&item.PriceCents,
		); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
