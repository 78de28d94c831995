package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dujiao-next/storefront/internal/config"

	"github.com/redis/go-redis/v9"
)

const (
	defaultPrefix = "sf"
	pingTimeout   = 3 * time.Second
)

// store 进程内唯一的 Redis 连接；未启用时 client 为 nil，所有操作降级为空操作
var store struct {
	client *redis.Client
	prefix string
}

// InitRedis 连接 Redis。
// 未启用时静默降级；启用但连不上时返回错误且保持降级状态，调用方决定是否继续启动。
func InitRedis(cfg *config.RedisConfig) error {
	store.client = nil
	store.prefix = defaultPrefix
	if cfg == nil || !cfg.Enabled {
		return nil
	}
	if prefix := strings.TrimSpace(cfg.Prefix); prefix != "" {
		store.prefix = prefix
	}
	host := strings.TrimSpace(cfg.Host)
	if host == "" {
		host = "127.0.0.1"
	}
	port := cfg.Port
	if port <= 0 {
		port = 6379
	}
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return fmt.Errorf("redis ping %s:%d failed: %w", host, port, err)
	}
	store.client = client
	return nil
}

// Enabled 缓存是否可用
func Enabled() bool {
	return store.client != nil
}

// Client 返回底层客户端，未启用时为 nil
func Client() *redis.Client {
	return store.client
}

// GetJSON 读取 JSON 缓存，未命中返回 false
func GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	if !Enabled() {
		return false, nil
	}
	raw, err := store.client.Get(ctx, buildKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		// 旧结构残留，当作未命中
		_ = store.client.Del(ctx, buildKey(key)).Err()
		return false, nil
	}
	return true, nil
}

// SetJSON 写入 JSON 缓存
func SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if !Enabled() {
		return nil
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return store.client.Set(ctx, buildKey(key), payload, ttl).Err()
}

// Del 删除缓存
func Del(ctx context.Context, keys ...string) error {
	if !Enabled() || len(keys) == 0 {
		return nil
	}
	full := make([]string, 0, len(keys))
	for _, key := range keys {
		full = append(full, buildKey(key))
	}
	return store.client.Del(ctx, full...).Err()
}

func buildKey(key string) string {
	prefix := store.prefix
	if prefix == "" {
		prefix = defaultPrefix
	}
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return prefix
	}
	return prefix + ":" + trimmed
}
