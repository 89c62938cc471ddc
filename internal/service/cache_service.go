package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss 键不存在
var ErrCacheMiss = errors.New("cache miss")

// CacheService 缓存服务接口。实现必须保证 get/set/delete 原子，
// 但不要求任何跨键事务能力。
type CacheService interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// RedisCacheService Redis 实现
type RedisCacheService struct {
	client *redis.Client
}

func NewRedisCacheService(addr, password string, db int) *RedisCacheService {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		// 缓存不可用不阻止启动，读写时按空缓存降级
		log.Println("Redis ping failed:", err)
	} else {
		log.Println("Redis connected")
	}

	return &RedisCacheService{client: client}
}

func (s *RedisCacheService) Get(ctx context.Context, key string) (string, error) {
	val, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrCacheMiss
	}
	return val, err
}

func (s *RedisCacheService) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return s.client.Set(ctx, key, value, ttl).Err()
}

func (s *RedisCacheService) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}
