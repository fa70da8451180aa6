package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/MateiSirbu/warehouse-mgmt-system-backend/internal/domain"
	"github.com/redis/go-redis/v9"
)

// cachedItemService caches reads for a short window. Availability is
// part of the cached payload, so the TTL is kept small; the fulfillment
// path never goes through this cache, it recomputes inside its own
// transaction.
type cachedItemService struct {
	next        ItemService
	redisClient *redis.Client
	cacheTTL    time.Duration
}

func NewCachedItemService(next ItemService, redisClient *redis.Client) ItemService {
	return &cachedItemService{
		next:        next,
		redisClient: redisClient,
		cacheTTL:    30 * time.Second,
	}
}

func (s *cachedItemService) Create(ctx context.Context, item *domain.Item) (int64, error) {
	return s.next.Create(ctx, item)
}

func (s *cachedItemService) GetByID(ctx context.Context, id int64) (*domain.Item, error) {
	key := fmt.Sprintf("item:%d", id)

	val, err := s.redisClient.Get(ctx, key).Result()
	if err == nil {
		var item domain.Item
		if err := json.Unmarshal([]byte(val), &item); err == nil {
			return &item, nil
		}
	}

	item, err := s.next.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(item); err == nil {
		s.redisClient.Set(ctx, key, data, s.cacheTTL)
	}

	return item, nil
}

func (s *cachedItemService) GetBySKU(ctx context.Context, sku string) (*domain.Item, error) {
	return s.next.GetBySKU(ctx, sku)
}

func (s *cachedItemService) List(ctx context.Context) ([]domain.Item, error) {
	return s.next.List(ctx)
}

func (s *cachedItemService) Update(ctx context.Context, id int64, input *domain.UpdateItemInput) error {
	if err := s.next.Update(ctx, id, input); err != nil {
		return err
	}

	s.redisClient.Del(ctx, fmt.Sprintf("item:%d", id))
	return nil
}

func (s *cachedItemService) ReservedStock(ctx context.Context, itemID int64) (int64, error) {
	return s.next.ReservedStock(ctx, itemID)
}

func (s *cachedItemService) AvailableStock(ctx context.Context, itemID int64) (int64, error) {
	return s.next.AvailableStock(ctx, itemID)
}
