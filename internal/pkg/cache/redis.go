package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"reel/internal/config"
	"reel/internal/pkg/id"
)

var (
	// ErrMiss 缓存未命中
	ErrMiss = errors.New("cache: miss")
	// ErrLocked 锁已被其他进程持有
	ErrLocked = errors.New("cache: lock held by another owner")
)

// 只有持有者才能释放锁
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisCache Redis 缓存与分布式锁封装
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache 创建 Redis 客户端并测试连接
func NewRedisCache(cfg *config.RedisConfig) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return &RedisCache{client: client}, nil
}

// Set 以 JSON 写入缓存
func (c *RedisCache) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, expiration).Err()
}

// Get 读取缓存，未命中返回 ErrMiss
func (c *RedisCache) Get(ctx context.Context, key string, dest any) error {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrMiss
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

// Delete 删除缓存
func (c *RedisCache) Delete(ctx context.Context, keys ...string) error {
	return c.client.Del(ctx, keys...).Err()
}

// Lock 用 SETNX 获取锁，返回释放函数
func (c *RedisCache) Lock(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, error) {
	token := id.NewShort()
	ok, err := c.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrLocked
	}

	unlock := func(ctx context.Context) error {
		return unlockScript.Run(ctx, c.client, []string{key}, token).Err()
	}
	return unlock, nil
}

// Ping 就绪检查
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close 关闭连接
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// 脚本相关 key
const (
	ScriptCacheKeyPrefix = "reel:script:"
	ScriptLockKeyPrefix  = "reel:lock:script:"
)

// ScriptCacheKey 定稿文档缓存 key
func ScriptCacheKey(id string) string {
	return ScriptCacheKeyPrefix + id
}

// ScriptLockKey 定稿流程锁 key
func ScriptLockKey(id string) string {
	return ScriptLockKeyPrefix + id
}
