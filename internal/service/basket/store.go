package basket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"microshop/internal/cache"
	"microshop/internal/domain"
	"microshop/internal/metrics"
	basketrepo "microshop/internal/repository/basket"

	"go.uber.org/zap"
)

const cacheKeyPrefix = "basket:"

// itemCache is the slice of internal/cache.Cache the store needs.
type itemCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) (bool, error)
}

// Store keeps baskets in Postgres with a Redis cache in front of it. The
// database is the source of truth; every cache interaction after a committed
// write is best-effort and never rolls the write back.
type Store struct {
	repo    basketrepo.Repository
	cache   itemCache
	ttl     time.Duration
	logger  *zap.Logger
	metrics *metrics.Pipeline
}

func NewStore(repo basketrepo.Repository, c itemCache, ttl time.Duration, logger *zap.Logger, m *metrics.Pipeline) *Store {
	return &Store{repo: repo, cache: c, ttl: ttl, logger: logger, metrics: m}
}

func cacheKey(userName string) string {
	return cacheKeyPrefix + userName
}

// Get reads through the cache. A cache miss or an unreachable cache falls
// back to the database, and a database hit repopulates the cache with the
// configured expiry.
func (s *Store) Get(ctx context.Context, userName string) (*domain.Basket, error) {
	data, err := s.cache.Get(ctx, cacheKey(userName))
	switch {
	case err == nil:
		var b domain.Basket
		if uerr := json.Unmarshal(data, &b); uerr == nil {
			s.metrics.CacheHits.Inc()
			return &b, nil
		}
		s.logger.Warn("discarding undecodable basket cache entry", zap.String("user_name", userName))
	case errors.Is(err, cache.ErrMiss):
	default:
		s.logger.Warn("basket cache unavailable, reading from database",
			zap.String("user_name", userName), zap.Error(err))
	}
	s.metrics.CacheMisses.Inc()

	b, err := s.repo.GetByUserName(ctx, userName)
	if err != nil {
		return nil, err
	}
	s.writeCache(ctx, b)
	return b, nil
}

// Save validates and persists the basket, replacing the item set wholesale,
// then refreshes the cache. Concurrent saves for one user are not serialized
// here: the last transaction to commit wins.
func (s *Store) Save(ctx context.Context, b *domain.Basket) (*domain.Basket, error) {
	if b.UserName == "" {
		return nil, fmt.Errorf("%w: user name required", domain.ErrInvalid)
	}
	for _, item := range b.Items {
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("%w: item %s: quantity must be positive", domain.ErrInvalid, item.ProductName)
		}
		if item.PriceCents <= 0 {
			return nil, fmt.Errorf("%w: item %s: price must be positive", domain.ErrInvalid, item.ProductName)
		}
	}

	saved, err := s.repo.Save(ctx, b)
	if err != nil {
		return nil, err
	}
	s.writeCache(ctx, saved)
	return saved, nil
}

// Delete removes the basket from both tiers and reports whether either tier
// had it. A failing cache delete does not undo the durable delete.
func (s *Store) Delete(ctx context.Context, userName string) (bool, error) {
	existed, err := s.repo.Delete(ctx, userName)
	if err != nil {
		return false, err
	}

	cached, cerr := s.cache.Delete(ctx, cacheKey(userName))
	if cerr != nil {
		s.logger.Warn("basket cache delete failed, database row already gone",
			zap.String("user_name", userName), zap.Error(cerr))
		return existed, nil
	}
	return existed || cached, nil
}

// writeCache is the fire-and-log cache population used after durable reads
// and writes.
func (s *Store) writeCache(ctx context.Context, b *domain.Basket) {
	data, err := json.Marshal(b)
	if err == nil {
		err = s.cache.Set(ctx, cacheKey(b.UserName), data, s.ttl)
	}
	if err != nil {
		s.logger.Warn("basket cache write failed",
			zap.String("user_name", b.UserName), zap.Error(err))
	}
}
