package cache

import (
	"sync"
	"time"
)

// TTLCache 进程内 TTL 缓存。
// 读取走 sync.Map 无锁路径，过期条目由后台循环清理。
type TTLCache struct {
	data sync.Map
	ttl  time.Duration
	stop chan struct{}
	once sync.Once
}

type entry struct {
	value     any
	expiresAt time.Time
}

// NewTTLCache 创建缓存并启动清理循环
func NewTTLCache(ttl time.Duration) *TTLCache {
	c := &TTLCache{
		ttl:  ttl,
		stop: make(chan struct{}),
	}
	go c.cleanupLoop()
	return c
}

// Get 读取缓存值，过期视为不存在
func (c *TTLCache) Get(key string) (any, bool) {
	val, ok := c.data.Load(key)
	if !ok {
		return nil, false
	}

	e := val.(*entry)
	if time.Now().After(e.expiresAt) {
		c.data.Delete(key)
		return nil, false
	}
	return e.value, true
}

// Set 写入缓存值，按默认 TTL 过期
func (c *TTLCache) Set(key string, value any) {
	c.data.Store(key, &entry{
		value:     value,
		expiresAt: time.Now().Add(c.ttl),
	})
}

// Delete 删除缓存值
func (c *TTLCache) Delete(key string) {
	c.data.Delete(key)
}

// Close 停止后台清理
func (c *TTLCache) Close() {
	c.once.Do(func() { close(c.stop) })
}

func (c *TTLCache) cleanupLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			now := time.Now()
			c.data.Range(func(key, value any) bool {
				if now.After(value.(*entry).expiresAt) {
					c.data.Delete(key)
				}
				return true
			})
		}
	}
}
