package coupon

import (
	"context"

	"microshop/internal/domain"
)

type Repository interface {
	// GetByProductName returns the coupon for a product, or domain.ErrNotFound.
	GetByProductName(ctx context.Context, productName string) (*domain.Coupon, error)
	List(ctx context.Context) ([]domain.Coupon, error)
	// Create inserts a coupon; domain.ErrAlreadyExists when the product
	// already has one.
	Create(ctx context.Context, c *domain.Coupon) error
	// Update rewrites the coupon identified by c.ID, or domain.ErrNotFound.
	Update(ctx context.Context, c *domain.Coupon) error
	// DeleteByProductName reports whether a coupon existed.
	DeleteByProductName(ctx context.Context, productName string) (bool, error)
}
