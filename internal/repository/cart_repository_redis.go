package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/picklemart/internal/cart"

	"github.com/redis/go-redis/v9"
)

const redisCartMaxRetries = 5

// RedisCartRepository Redis 实现，每个 cart key 存一份 JSON 文档
type RedisCartRepository struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisCartRepository 创建 Redis 购物车仓库
func NewRedisCartRepository(client *redis.Client, prefix string, ttl time.Duration) *RedisCartRepository {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = "pm"
	}
	return &RedisCartRepository{client: client, prefix: prefix, ttl: ttl}
}

// Get 获取购物车行
func (r *RedisCartRepository) Get(ctx context.Context, key string) ([]cart.Line, error) {
	return r.read(ctx, r.client, r.redisKey(key))
}

// Add 乐观锁（WATCH）下读改写，每次加购重置过期时间
func (r *RedisCartRepository) Add(ctx context.Context, key string, line cart.Line, policy cart.Policy) error {
	return r.update(ctx, key, r.ttl, func(lines []cart.Line) []cart.Line {
		return cart.Apply(lines, line, policy)
	})
}

// Remove 删除名称完全相同的行，保留原有过期时间
func (r *RedisCartRepository) Remove(ctx context.Context, key, name string) error {
	return r.update(ctx, key, redis.KeepTTL, func(lines []cart.Line) []cart.Line {
		return cart.RemoveByName(lines, name)
	})
}

// Clear 清空购物车
func (r *RedisCartRepository) Clear(ctx context.Context, key string) error {
	if r.client == nil {
		return errors.New("redis client not initialized")
	}
	return r.client.Del(ctx, r.redisKey(key)).Err()
}

func (r *RedisCartRepository) update(ctx context.Context, key string, ttl time.Duration, mutate func([]cart.Line) []cart.Line) error {
	if r.client == nil {
		return errors.New("redis client not initialized")
	}
	redisKey := r.redisKey(key)
	txf := func(tx *redis.Tx) error {
		lines, err := r.read(ctx, tx, redisKey)
		if err != nil {
			return err
		}
		next := mutate(lines)
		payload, err := json.Marshal(next)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if len(next) == 0 {
				pipe.Del(ctx, redisKey)
				return nil
			}
			pipe.Set(ctx, redisKey, payload, ttl)
			return nil
		})
		return err
	}
	for attempt := 0; attempt < redisCartMaxRetries; attempt++ {
		err := r.client.Watch(ctx, txf, redisKey)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return fmt.Errorf("cart %s: %w", key, redis.TxFailedErr)
}

func (r *RedisCartRepository) read(ctx context.Context, getter redis.Cmdable, redisKey string) ([]cart.Line, error) {
	if getter == nil {
		return nil, errors.New("redis client not initialized")
	}
	raw, err := getter.Get(ctx, redisKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return []cart.Line{}, nil
	}
	if err != nil {
		return nil, err
	}
	var lines []cart.Line
	if err := json.Unmarshal(raw, &lines); err != nil {
		return nil, fmt.Errorf("decode cart %s: %w", redisKey, err)
	}
	return lines, nil
}

func (r *RedisCartRepository) redisKey(key string) string {
	return fmt.Sprintf("%s:cart:%s", r.prefix, strings.TrimSpace(key))
}
