package basket

import (
	"context"
	"errors"
	"fmt"

	"microshop/internal/domain"
	"microshop/internal/metrics"

	"go.uber.org/zap"
)

// DiscountSource looks up the per-item discount in cents. Implementations
// absorb every transport or availability failure and answer zero instead;
// checkout never fails because the discount service is down.
type DiscountSource interface {
	DiscountFor(ctx context.Context, productName string) int64
}

type basketStore interface {
	Get(ctx context.Context, userName string) (*domain.Basket, error)
	Delete(ctx context.Context, userName string) (bool, error)
}

type publisher interface {
	Publish(ctx context.Context, key string, payload any) error
}

// Service runs the checkout flow: load basket, aggregate discounts, publish
// the checkout event, retire the basket.
type Service struct {
	store     basketStore
	discounts DiscountSource
	publisher publisher
	logger    *zap.Logger
	metrics   *metrics.Pipeline
}

func NewService(store basketStore, discounts DiscountSource, pub publisher, logger *zap.Logger, m *metrics.Pipeline) *Service {
	return &Service{store: store, discounts: discounts, publisher: pub, logger: logger, metrics: m}
}

type CheckoutInput struct {
	UserName string
	Shipping domain.ShippingInfo
	Payment  domain.PaymentInfo
}

// Checkout publishes exactly one checkout event for a non-empty basket and
// then deletes the basket. The publish must be broker-acknowledged before the
// delete runs; a failed delete is logged and swallowed because the event is
// already durable by then. domain.ErrNotFound and domain.ErrEmptyBasket mark
// the non-retriable "nothing to check out" outcomes; any other error
// leaves the basket untouched so the caller can retry the whole operation.
func (s *Service) Checkout(ctx context.Context, in CheckoutInput) error {
	b, err := s.store.Get(ctx, in.UserName)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.logger.Warn("checkout for missing basket", zap.String("user_name", in.UserName))
			return domain.ErrNotFound
		}
		return fmt.Errorf("load basket: %w", err)
	}
	if len(b.Items) == 0 {
		s.logger.Warn("checkout for empty basket", zap.String("user_name", in.UserName))
		return domain.ErrEmptyBasket
	}

	var discountCents int64
	items := make([]domain.CheckoutItem, 0, len(b.Items))
	for _, item := range b.Items {
		amount := s.discounts.DiscountFor(ctx, item.ProductName)
		if amount > 0 {
			discountCents += amount * int64(item.Quantity)
		}
		items = append(items, domain.CheckoutItem{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			PriceCents:  item.PriceCents,
		})
	}

	// Total comes from the basket itself; the discount rides along as a
	// separate figure and never rewrites the item prices.
	evt := domain.NewBasketCheckoutEvent(b.UserName, b.TotalCents(), discountCents, items, in.Shipping, in.Payment)

	if err := s.publisher.Publish(ctx, evt.UserName, evt); err != nil {
		return fmt.Errorf("publish checkout event: %w", err)
	}
	s.metrics.CheckoutsPublished.Inc()
	s.logger.Info("checkout event published",
		zap.String("event_id", evt.EventID),
		zap.String("user_name", evt.UserName),
		zap.Int64("total_price_cents", evt.TotalPriceCents),
		zap.Int64("discount_cents", evt.DiscountCents),
		zap.Int("item_count", len(evt.Items)))

	if _, err := s.store.Delete(ctx, in.UserName); err != nil {
		// The event is durable; a stale basket is the only consequence.
		s.logger.Warn("basket delete after checkout failed",
			zap.String("user_name", in.UserName), zap.Error(err))
	}
	return nil
}
