package storage

import (
	"context"

	"github.com/redis/go-redis/v9"
)

const stockKeyPrefix = "stock:"

var reserveStockScript = redis.NewScript(`
local key = KEYS[1]
local quantity = tonumber(ARGV[1])

local current = redis.call('GET', key)
if not current then
	return 0
end

current = tonumber(current)
if current >= quantity then
	redis.call('DECRBY', key, quantity)
	return 1
end

return 0
`)

type RedisStockReserver struct {
	client *redis.Client
}

func NewRedisStockReserver(client *redis.Client) *RedisStockReserver {
	return &RedisStockReserver{client: client}
}

func (r *RedisStockReserver) Reserve(ctx context.Context, productID string, quantity int) (bool, error) {
	key := stockKeyPrefix + productID

	result, err := reserveStockScript.Run(ctx, r.client, []string{key}, quantity).Int()
	if err != nil {
		return false, err
	}

	return result == 1, nil
}

func (r *RedisStockReserver) Release(ctx context.Context, productID string, quantity int) error {
	key := stockKeyPrefix + productID
	return r.client.IncrBy(ctx, key, int64(quantity)).Err()
}

func (r *RedisStockReserver) SetStock(ctx context.Context, productID string, quantity int) error {
	key := stockKeyPrefix + productID
	return r.client.Set(ctx, key, quantity, 0).Err()
}
