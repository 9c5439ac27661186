package basket

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"microshop/internal/domain"
	"microshop/internal/metrics"
)

type stubStore struct {
	basket      *domain.Basket
	getErr      error
	deleted     bool
	deleteErr   error
	deleteCalls int
}

func (s *stubStore) Get(_ context.Context, _ string) (*domain.Basket, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.basket, nil
}

func (s *stubStore) Delete(_ context.Context, _ string) (bool, error) {
	s.deleteCalls++
	return s.deleted, s.deleteErr
}

type stubDiscounts struct {
	amounts map[string]int64
}

func (s *stubDiscounts) DiscountFor(_ context.Context, productName string) int64 {
	return s.amounts[productName]
}

type stubPublisher struct {
	err      error
	calls    int
	lastKey  string
	lastSent any
}

func (s *stubPublisher) Publish(_ context.Context, key string, payload any) error {
	s.calls++
	s.lastKey = key
	s.lastSent = payload
	return s.err
}

func checkoutBasket() *domain.Basket {
	return &domain.Basket{
		ID:       "b-1",
		UserName: "alice",
		Items: []domain.BasketItem{
			{ID: "i-1", ProductID: "p-1", ProductName: "iPhone 15", Quantity: 2, PriceCents: 500},
			{ID: "i-2", ProductID: "p-2", ProductName: "MacBook Pro", Quantity: 1, PriceCents: 700},
		},
	}
}

func newTestService(store *stubStore, discounts *stubDiscounts, pub *stubPublisher) *Service {
	if discounts == nil {
		discounts = &stubDiscounts{}
	}
	m := metrics.NewPipeline(prometheus.NewRegistry(), "test")
	return NewService(store, discounts, pub, zap.NewNop(), m)
}

func TestCheckoutPublishesThenDeletes(t *testing.T) {
	store := &stubStore{basket: checkoutBasket(), deleted: true}
	pub := &stubPublisher{}
	svc := newTestService(store, nil, pub)

	err := svc.Checkout(context.Background(), CheckoutInput{UserName: "alice"})
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	if pub.calls != 1 {
		t.Fatalf("expected exactly one publish, got %d", pub.calls)
	}
	if pub.lastKey != "alice" {
		t.Errorf("expected partition key %q, got %q", "alice", pub.lastKey)
	}
	if store.deleteCalls != 1 {
		t.Errorf("expected one delete after publish, got %d", store.deleteCalls)
	}
}

func TestCheckoutEventSnapshot(t *testing.T) {
	store := &stubStore{basket: checkoutBasket()}
	pub := &stubPublisher{}
	svc := newTestService(store, nil, pub)

	if err := svc.Checkout(context.Background(), CheckoutInput{
		UserName: "alice",
		Shipping: domain.ShippingInfo{FirstName: "Alice", Country: "NL"},
	}); err != nil {
		t.Fatalf("Checkout: %v", err)
	}

	evt, ok := pub.lastSent.(domain.BasketCheckoutEvent)
	if !ok {
		t.Fatalf("published payload is %T, want BasketCheckoutEvent", pub.lastSent)
	}
	if evt.EventID == "" {
		t.Error("event id must be assigned at construction")
	}
	if evt.CreatedAt.IsZero() {
		t.Error("created at must be assigned at construction")
	}
	if evt.UserName != "alice" {
		t.Errorf("user name %q", evt.UserName)
	}
	// 2*500 + 1*700
	if evt.TotalPriceCents != 1700 {
		t.Errorf("total %d, want 1700", evt.TotalPriceCents)
	}
	if len(evt.Items) != 2 {
		t.Fatalf("item count %d, want 2", len(evt.Items))
	}
	if evt.Items[0].ProductName != "iPhone 15" || evt.Items[0].Quantity != 2 {
		t.Errorf("unexpected first item: %+v", evt.Items[0])
	}
	if evt.Shipping.Country != "NL" {
		t.Errorf("shipping not carried: %+v", evt.Shipping)
	}
}

func TestCheckoutAggregatesDiscountPerUnit(t *testing.T) {
	store := &stubStore{basket: checkoutBasket()}
	pub := &stubPublisher{}
	discounts := &stubDiscounts{amounts: map[string]int64{"iPhone 15": 3}}
	svc := newTestService(store, discounts, pub)

	if err := svc.Checkout(context.Background(), CheckoutInput{UserName: "alice"}); err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	evt := pub.lastSent.(domain.BasketCheckoutEvent)
	// qty 2 at 3 cents off per unit
	if evt.DiscountCents != 6 {
		t.Errorf("discount %d, want 6", evt.DiscountCents)
	}
	// discount never rewrites the total
	if evt.TotalPriceCents != 1700 {
		t.Errorf("total %d, want 1700", evt.TotalPriceCents)
	}
}

func TestCheckoutMissingBasket(t *testing.T) {
	store := &stubStore{getErr: domain.ErrNotFound}
	pub := &stubPublisher{}
	svc := newTestService(store, nil, pub)

	err := svc.Checkout(context.Background(), CheckoutInput{UserName: "nobody"})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if pub.calls != 0 {
		t.Error("missing basket must not publish")
	}
}

func TestCheckoutEmptyBasket(t *testing.T) {
	store := &stubStore{basket: &domain.Basket{ID: "b-1", UserName: "alice"}}
	pub := &stubPublisher{}
	svc := newTestService(store, nil, pub)

	err := svc.Checkout(context.Background(), CheckoutInput{UserName: "alice"})
	if !errors.Is(err, domain.ErrEmptyBasket) {
		t.Fatalf("expected ErrEmptyBasket, got %v", err)
	}
	if pub.calls != 0 {
		t.Error("empty basket must not publish")
	}
}

func TestCheckoutPublishFailureKeepsBasket(t *testing.T) {
	store := &stubStore{basket: checkoutBasket()}
	pub := &stubPublisher{err: errors.New("broker unavailable")}
	svc := newTestService(store, nil, pub)

	err := svc.Checkout(context.Background(), CheckoutInput{UserName: "alice"})
	if err == nil {
		t.Fatal("expected error when publish fails")
	}
	if store.deleteCalls != 0 {
		t.Error("basket must survive a failed publish so checkout can be retried")
	}
}

func TestCheckoutDeleteFailureStillSucceeds(t *testing.T) {
	store := &stubStore{basket: checkoutBasket(), deleteErr: errors.New("db down")}
	pub := &stubPublisher{}
	svc := newTestService(store, nil, pub)

	if err := svc.Checkout(context.Background(), CheckoutInput{UserName: "alice"}); err != nil {
		t.Fatalf("delete failure after a durable publish must be swallowed: %v", err)
	}
	if pub.calls != 1 {
		t.Fatalf("expected one publish, got %d", pub.calls)
	}
}
