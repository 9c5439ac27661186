package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"microshop/internal/domain"
	"microshop/internal/metrics"
	orderrepo "microshop/internal/repository/order"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Service struct {
	repo    orderrepo.Repository
	logger  *zap.Logger
	metrics *metrics.Pipeline
}

func NewService(repo orderrepo.Repository, logger *zap.Logger, m *metrics.Pipeline) *Service {
	return &Service{repo: repo, logger: logger, metrics: m}
}

// CreateFromCheckout maps a checkout event into a new pending order and
// persists it with its items in one transaction. The order id is generated
// here and is never the event id; every item gets a fresh identity too.
func (s *Service) CreateFromCheckout(ctx context.Context, evt domain.BasketCheckoutEvent) (string, error) {
	o := &domain.Order{
		ID:              uuid.NewString(),
		UserName:        evt.UserName,
		TotalPriceCents: evt.TotalPriceCents,
		DiscountCents:   evt.DiscountCents,
		OrderDate:       time.Now().UTC(),
		Status:          domain.OrderStatusPending,
	}
	for _, item := range evt.Items {
		o.Items = append(o.Items, domain.OrderItem{
			ID:          uuid.NewString(),
			OrderID:     o.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			PriceCents:  item.PriceCents,
		})
	}

	if err := s.repo.Create(ctx, o); err != nil {
		return "", fmt.Errorf("persist order: %w", err)
	}
	s.metrics.OrdersCreated.Inc()
	s.logger.Info("order created",
		zap.String("order_id", o.ID),
		zap.String("event_id", evt.EventID),
		zap.String("user_name", o.UserName),
		zap.Int64("total_price_cents", o.TotalPriceCents))
	return o.ID, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Order, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]domain.Order, error) {
	return s.repo.List(ctx)
}

func (s *Service) ListByUser(ctx context.Context, userName string) ([]domain.Order, error) {
	return s.repo.ListByUserName(ctx, userName)
}

// UpdateStatus moves an order along the status machine. The write is a
// compare-and-set against the status that was just read, so a concurrent
// transition makes this one fail rather than skip a step.
func (s *Service) UpdateStatus(ctx context.Context, id string, next domain.OrderStatus) (*domain.Order, error) {
	if !next.Valid() {
		return nil, fmt.Errorf("unknown status %q", next)
	}

	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !o.Status.CanTransitionTo(next) {
		return nil, domain.ErrInvalidTransition
	}

	if err := s.repo.UpdateStatus(ctx, id, o.Status, next); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// Lost the race against another transition.
			return nil, domain.ErrInvalidTransition
		}
		return nil, err
	}
	s.logger.Info("order status changed",
		zap.String("order_id", id),
		zap.String("from", string(o.Status)),
		zap.String("to", string(next)))

	o.Status = next
	return o, nil
}

func (s *Service) Delete(ctx context.Context, id string) (bool, error) {
	return s.repo.Delete(ctx, id)
}
