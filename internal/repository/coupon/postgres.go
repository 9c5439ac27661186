package coupon

import (
	"context"
	"errors"

	"microshop/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) GetByProductName(ctx context.Context, productName string) (*domain.Coupon, error) {
	const q = `
SELECT id, product_name, description, amount_cents
FROM coupons
WHERE product_name = $1
`
	var c domain.Coupon
	err := r.pool.QueryRow(ctx, q, productName).Scan(&c.ID, &c.ProductName, &c.Description, &c.AmountCents)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *postgresRepo) List(ctx context.Context) ([]domain.Coupon, error) {
	const q = `
SELECT id, product_name, description, amount_cents
FROM coupons
ORDER BY product_name ASC
`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var coupons []domain.Coupon
	for rows.Next() {
		var c domain.Coupon
		if err := rows.Scan(&c.ID, &c.ProductName, &c.Description, &c.AmountCents); err != nil {
			return nil, err
		}
		coupons = append(coupons, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return coupons, nil
}

func (r *postgresRepo) Create(ctx context.Context, c *domain.Coupon) error {
	const q = `
INSERT INTO coupons (product_name, description, amount_cents)
VALUES ($1, $2, $3)
RETURNING id
`
	err := r.pool.QueryRow(ctx, q, c.ProductName, c.Description, c.AmountCents).Scan(&c.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *postgresRepo) Update(ctx context.Context, c *domain.Coupon) error {
	const q = `
UPDATE coupons
SET product_name = $2, description = $3, amount_cents = $4
WHERE id = $1
`
	cmd, err := r.pool.Exec(ctx, q, c.ID, c.ProductName, c.Description, c.AmountCents)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) DeleteByProductName(ctx context.Context, productName string) (bool, error) {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM coupons WHERE product_name = $1`, productName)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}
