package basket

import (
	"context"

	"microshop/internal/domain"
)

type Repository interface {
	// GetByUserName returns the basket with its items, or domain.ErrNotFound.
	GetByUserName(ctx context.Context, userName string) (*domain.Basket, error)
	// Save inserts a new basket or replaces the full item set of an existing
	// one, atomically per user name. Identities are assigned on insert.
	Save(ctx context.Context, basket *domain.Basket) (*domain.Basket, error)
	// Delete removes the basket and its items; reports whether a row existed.
	Delete(ctx context.Context, userName string) (bool, error)
}
