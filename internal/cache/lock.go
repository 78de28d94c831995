package cache

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseLockScript 仅当持有者令牌一致时才删除锁
var releaseLockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Lock 分布式锁句柄
type Lock struct {
	key   string
	token string
}

// AcquireLock 尝试获取分布式锁。
// Redis 未启用时返回一个空锁并视为获取成功，由数据库行锁兜底。
func AcquireLock(ctx context.Context, key string, ttl time.Duration) (*Lock, bool, error) {
	if !Enabled() {
		return &Lock{}, true, nil
	}
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	lock := &Lock{
		key:   buildKey("lock:" + key),
		token: uuid.NewString(),
	}
	ok, err := store.client.SetNX(ctx, lock.key, lock.token, ttl).Result()
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}
	return lock, true, nil
}

// Release 释放锁
func (l *Lock) Release(ctx context.Context) error {
	if l == nil || l.key == "" || !Enabled() {
		return nil
	}
	return releaseLockScript.Run(ctx, store.client, []string{l.key}, l.token).Err()
}
