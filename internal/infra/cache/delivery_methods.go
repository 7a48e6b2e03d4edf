package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/Shreyr69/indiport/internal/domain/model"
	repo "github.com/Shreyr69/indiport/internal/repository"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

const deliveryMethodsKey = "delivery_methods:active"

// 配送方法は参照データなので Redis に短時間置く。
// repo.DeliveryMethodRepository をそのまま包む。
type DeliveryMethodCache struct {
	next   repo.DeliveryMethodRepository
	client *redis.Client
	ttl    time.Duration
	log    zerolog.Logger
	sfg    singleflight.Group // 同時ミスでDBに殺到しないように
}

var _ repo.DeliveryMethodRepository = (*DeliveryMethodCache)(nil)

// client が nil ならキャッシュせず singleflight だけ効かせる
func NewDeliveryMethodCache(next repo.DeliveryMethodRepository, client *redis.Client, ttl time.Duration, log zerolog.Logger) *DeliveryMethodCache {
	return &DeliveryMethodCache{next: next, client: client, ttl: ttl, log: log}
}

func (c *DeliveryMethodCache) ListActive(ctx context.Context) ([]model.DeliveryMethod, error) {
	v, err, _ := c.sfg.Do(deliveryMethodsKey, func() (interface{}, error) {
		if list, ok := c.get(ctx); ok {
			return list, nil
		}

		list, err := c.next.ListActive(ctx)
		if err != nil {
			return nil, err
		}
		c.set(ctx, list)
		return list, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]model.DeliveryMethod), nil
}

// 有効なものはキャッシュから、無効・未知のものはDBを見る
func (c *DeliveryMethodCache) FindByID(ctx context.Context, id string) (model.DeliveryMethod, error) {
	if list, err := c.ListActive(ctx); err == nil {
		for _, m := range list {
			if m.ID == id {
				return m, nil
			}
		}
	}
	return c.next.FindByID(ctx, id)
}

func (c *DeliveryMethodCache) get(ctx context.Context) ([]model.DeliveryMethod, bool) {
	if c.client == nil {
		return nil, false
	}
	data, err := c.client.Get(ctx, deliveryMethodsKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		c.log.Warn().Err(err).Msg("delivery method cache get failed")
		return nil, false
	}

	var list []model.DeliveryMethod
	if err := json.Unmarshal(data, &list); err != nil {
		c.log.Warn().Err(err).Msg("delivery method cache is broken")
		return nil, false
	}
	return list, true
}

func (c *DeliveryMethodCache) set(ctx context.Context, list []model.DeliveryMethod) {
	if c.client == nil {
		return
	}
	data, err := json.Marshal(list)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, deliveryMethodsKey, data, c.ttl).Err(); err != nil {
		c.log.Warn().Err(err).Msg("delivery method cache set failed")
	}
}
