package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"
)

var cacheTracer = otel.Tracer("redis.cache")

// Loader 缓存未命中时加载原始字节
type Loader func(ctx context.Context) ([]byte, error)

// Cache 原始字节缓存，值按原样读写（不做 JSON 编码），便于运维直接写入覆盖值
type Cache struct {
	rdb   redis.UniversalClient
	group singleflight.Group
}

// NewCache 创建缓存服务
func NewCache(client *Client) *Cache {
	return NewCacheWithRedis(client.rdb)
}

// NewCacheWithRedis 基于任意 go-redis 客户端创建缓存
func NewCacheWithRedis(rdb redis.UniversalClient) *Cache {
	return &Cache{rdb: rdb}
}

// GetOrLoadSafe Read-Through，singleflight 合并同一 key 的并发加载。
// loaded 表示值来自 loader 而非缓存，合并等待的调用者同样如此。
func (c *Cache) GetOrLoadSafe(ctx context.Context, key string, ttl time.Duration, loader Loader) (val []byte, loaded bool, err error) {
	ctx, span := cacheTracer.Start(ctx, "cache.GetOrLoadSafe",
		trace.WithAttributes(attribute.String("cache.key", key)))
	defer span.End()

	val, err = c.rdb.Get(ctx, key).Bytes()
	if err == nil {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return val, false, nil
	}
	if !IsNil(err) {
		span.RecordError(err)
		return nil, false, err
	}

	span.SetAttributes(attribute.Bool("cache.hit", false))

	result, err, shared := c.group.Do(key, func() (interface{}, error) {
		// 再次检查缓存（可能已被其他请求填充）
		if val, err := c.rdb.Get(ctx, key).Bytes(); err == nil {
			return loadResult{val: val}, nil
		}

		data, err := loader(ctx)
		if err != nil {
			return nil, err
		}

		if err := c.rdb.Set(ctx, key, data, ttl).Err(); err != nil {
			// 回填失败不影响返回结果
			span.RecordError(err)
		}
		return loadResult{val: data, loaded: true}, nil
	})

	span.SetAttributes(attribute.Bool("cache.shared", shared))
	if err != nil {
		span.RecordError(err)
		return nil, false, err
	}
	r := result.(loadResult)
	return r.val, r.loaded, nil
}

// loadResult singleflight 共享结果，等待者与执行者看到相同的 loaded
type loadResult struct {
	val    []byte
	loaded bool
}
