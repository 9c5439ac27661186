package order

import (
	"context"

	"microshop/internal/domain"
)

type Repository interface {
	// Create persists the order and all its items in one transaction.
	Create(ctx context.Context, o *domain.Order) error
	// GetByID returns the order with its items, or domain.ErrNotFound.
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	List(ctx context.Context) ([]domain.Order, error)
	ListByUserName(ctx context.Context, userName string) ([]domain.Order, error)
	// UpdateStatus is a compare-and-set from -> to; it reports
	// domain.ErrNotFound when the order is missing or no longer in from.
	UpdateStatus(ctx context.Context, id string, from, to domain.OrderStatus) error
	// Delete removes the order and its items; reports whether a row existed.
	Delete(ctx context.Context, id string) (bool, error)
}
