package order

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"microshop/internal/domain"
	"microshop/internal/metrics"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// messageSource is the slice of kafka.Reader the consumer needs; tests
// substitute a stub to observe acknowledgements.
type messageSource interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
}

type orderCreator interface {
	CreateFromCheckout(ctx context.Context, evt domain.BasketCheckoutEvent) (string, error)
}

// Consumer turns checkout events into orders. Per message:
// fetch -> persist -> commit. A message whose persistence fails is never
// committed, so the broker redelivers it; there is no internal retry and no
// deduplication, meaning a redelivered event creates a second order.
type Consumer struct {
	source  messageSource
	orders  orderCreator
	logger  *zap.Logger
	metrics *metrics.Pipeline
}

func NewConsumer(source messageSource, orders orderCreator, logger *zap.Logger, m *metrics.Pipeline) *Consumer {
	return &Consumer{source: source, orders: orders, logger: logger, metrics: m}
}

// fetchBackoff paces retries when the broker is unreachable, so a down
// broker does not turn the run loop into a hot error spin.
const fetchBackoff = time.Second

// Run blocks until ctx is cancelled.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		msg, err := c.source.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.logger.Error("fetch checkout message", zap.Error(err))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(fetchBackoff):
			}
			continue
		}
		c.handle(ctx, msg)
	}
}

func (c *Consumer) handle(ctx context.Context, msg kafka.Message) {
	var evt domain.BasketCheckoutEvent
	if err := json.Unmarshal(msg.Value, &evt); err != nil {
		// Redelivery cannot fix a payload that does not parse; acknowledge
		// and move on.
		c.logger.Error("undecodable checkout event, skipping",
			zap.Int64("offset", msg.Offset), zap.Error(err))
		c.commit(ctx, msg)
		return
	}

	orderID, err := c.orders.CreateFromCheckout(ctx, evt)
	if err != nil {
		c.metrics.OrdersFailed.Inc()
		c.logger.Error("order persistence failed, leaving event unacknowledged",
			zap.String("event_id", evt.EventID),
			zap.String("user_name", evt.UserName),
			zap.Error(err))
		return
	}

	c.logger.Info("checkout event consumed",
		zap.String("event_id", evt.EventID),
		zap.String("order_id", orderID))
	c.commit(ctx, msg)
}

func (c *Consumer) commit(ctx context.Context, msg kafka.Message) {
	if err := c.source.CommitMessages(ctx, msg); err != nil && !errors.Is(err, context.Canceled) {
		c.logger.Error("commit checkout message", zap.Int64("offset", msg.Offset), zap.Error(err))
	}
}
