package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"csoportal/backend/internal/config"
)

// ErrCacheMiss 缓存未命中错误
var ErrCacheMiss = errors.New("cache miss")

// 未读数缓存有效期。写路径会主动失效，TTL 只兜底异常情况。
const unreadCountTTL = 5 * time.Minute

// Cache 基于 Redis 的未读数缓存。
// 仅作为旁路缓存使用，任何 Redis 故障都不应阻断主流程。
type Cache struct {
	rdb *goredis.Client
}

// New 创建 Redis 缓存并验证连接
func New(cfg config.RedisConfig) (*Cache, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Cache{rdb: rdb}, nil
}

// Close 关闭 Redis 连接
func (c *Cache) Close() error {
	return c.rdb.Close()
}

// Ping 测试 Redis 连接
func (c *Cache) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

func unreadCountKey(csoID int64) string {
	return fmt.Sprintf("letters:unread:%d", csoID)
}

// GetUnreadCount 读取某组织的未读数缓存
func (c *Cache) GetUnreadCount(ctx context.Context, csoID int64) (int, error) {
	val, err := c.rdb.Get(ctx, unreadCountKey(csoID)).Result()
	if errors.Is(err, goredis.Nil) {
		return 0, ErrCacheMiss
	}
	if err != nil {
		return 0, err
	}

	count, err := strconv.Atoi(val)
	if err != nil {
		return 0, ErrCacheMiss
	}
	return count, nil
}

// SetUnreadCount 写入某组织的未读数缓存
func (c *Cache) SetUnreadCount(ctx context.Context, csoID int64, count int) error {
	return c.rdb.Set(ctx, unreadCountKey(csoID), count, unreadCountTTL).Err()
}

// InvalidateUnreadCount 使若干组织的未读数缓存失效
func (c *Cache) InvalidateUnreadCount(ctx context.Context, csoIDs ...int64) error {
	if len(csoIDs) == 0 {
		return nil
	}
	keys := make([]string, len(csoIDs))
	for i, id := range csoIDs {
		keys[i] = unreadCountKey(id)
	}
	return c.rdb.Del(ctx, keys...).Err()
}

// InvalidateAllUnreadCounts 使全部未读数缓存失效。
// 广播信函的变更会影响所有组织，此时整体清空。
func (c *Cache) InvalidateAllUnreadCounts(ctx context.Context) error {
	iter := c.rdb.Scan(ctx, 0, "letters:unread:*", 100).Iterator()
	keys := make([]string, 0)
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.rdb.Del(ctx, keys...).Err()
}
