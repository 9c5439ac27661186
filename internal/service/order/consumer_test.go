package order

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"microshop/internal/domain"
	"microshop/internal/metrics"
)

type stubSource struct {
	messages  []kafka.Message
	fetched   int
	committed []int64
}

func (s *stubSource) FetchMessage(ctx context.Context) (kafka.Message, error) {
	if s.fetched >= len(s.messages) {
		// Out of scripted input; behave like a cancelled reader.
		return kafka.Message{}, context.Canceled
	}
	msg := s.messages[s.fetched]
	s.fetched++
	return msg, nil
}

func (s *stubSource) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	for _, m := range msgs {
		s.committed = append(s.committed, m.Offset)
	}
	return nil
}

type stubCreator struct {
	err     error
	created []domain.BasketCheckoutEvent
}

func (s *stubCreator) CreateFromCheckout(_ context.Context, evt domain.BasketCheckoutEvent) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.created = append(s.created, evt)
	return "order-1", nil
}

func checkoutMessage(t *testing.T, offset int64) kafka.Message {
	t.Helper()
	evt := domain.NewBasketCheckoutEvent("alice", 1700, 0,
		[]domain.CheckoutItem{{ProductID: "p-1", ProductName: "iPhone 15", Quantity: 2, PriceCents: 500}},
		domain.ShippingInfo{}, domain.PaymentInfo{})
	data, err := json.Marshal(evt)
	if err != nil {
		t.Fatalf("marshal event: %v", err)
	}
	return kafka.Message{Offset: offset, Key: []byte(evt.UserName), Value: data}
}

func newTestConsumer(source *stubSource, creator *stubCreator) *Consumer {
	m := metrics.NewPipeline(prometheus.NewRegistry(), "test")
	return NewConsumer(source, creator, zap.NewNop(), m)
}

func TestConsumerCommitsAfterPersist(t *testing.T) {
	source := &stubSource{messages: []kafka.Message{checkoutMessage(t, 7)}}
	creator := &stubCreator{}
	c := newTestConsumer(source, creator)

	c.handle(context.Background(), source.messages[0])

	if len(creator.created) != 1 {
		t.Fatalf("expected one order, got %d", len(creator.created))
	}
	if creator.created[0].UserName != "alice" {
		t.Errorf("unexpected event: %+v", creator.created[0])
	}
	if len(source.committed) != 1 || source.committed[0] != 7 {
		t.Errorf("expected offset 7 committed, got %v", source.committed)
	}
}

func TestConsumerLeavesFailedPersistUncommitted(t *testing.T) {
	source := &stubSource{messages: []kafka.Message{checkoutMessage(t, 3)}}
	creator := &stubCreator{err: errors.New("db down")}
	c := newTestConsumer(source, creator)

	c.handle(context.Background(), source.messages[0])

	if len(source.committed) != 0 {
		t.Fatalf("failed persistence must not acknowledge, got commits %v", source.committed)
	}
}

func TestConsumerSkipsUndecodablePayload(t *testing.T) {
	poison := kafka.Message{Offset: 11, Value: []byte("{not json")}
	source := &stubSource{messages: []kafka.Message{poison}}
	creator := &stubCreator{}
	c := newTestConsumer(source, creator)

	c.handle(context.Background(), poison)

	if len(creator.created) != 0 {
		t.Error("poison payload must not create an order")
	}
	if len(source.committed) != 1 || source.committed[0] != 11 {
		t.Errorf("poison payload must be acknowledged, got commits %v", source.committed)
	}
}

type brokenSource struct {
	fetches int
}

func (s *brokenSource) FetchMessage(_ context.Context) (kafka.Message, error) {
	s.fetches++
	return kafka.Message{}, errors.New("broker down")
}

func (s *brokenSource) CommitMessages(_ context.Context, _ ...kafka.Message) error {
	return nil
}

func TestConsumerRunBacksOffOnFetchError(t *testing.T) {
	source := &brokenSource{}
	c := NewConsumer(source, &stubCreator{}, zap.NewNop(), metrics.NewPipeline(prometheus.NewRegistry(), "test"))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("run loop did not stop on cancel during backoff")
	}
	// 50ms against a 1s backoff leaves room for exactly one fetch; an
	// unpaced loop would have retried thousands of times.
	if source.fetches > 2 {
		t.Errorf("fetch retried %d times in 50ms, expected backoff between attempts", source.fetches)
	}
}

func TestConsumerRunStopsOnCancel(t *testing.T) {
	source := &stubSource{messages: []kafka.Message{checkoutMessage(t, 0), checkoutMessage(t, 1)}}
	creator := &stubCreator{}
	c := newTestConsumer(source, creator)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := c.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
