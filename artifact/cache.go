package artifact

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/rushteam/recserve/core"
)

// LoadFunc 是 Bundle 的装载函数，可注入以便测试（装载计数、注入失败）。
type LoadFunc func(ctx context.Context, kind Kind) (*Bundle, error)

// Cache 是进程级的产物缓存：每个策略家族懒加载、恰好物化一次。
//
// 并发语义：
//   - 命中后是纯读路径，任意并发安全
//   - 冷缓存下并发的首批调用经 singleflight 合并，只有一次真实装载，
//     其余调用共享同一结果，不会观察到构建了一半的 Bundle
//   - 装载失败不落缓存：本次所有等待方拿到同一个错误，之后的请求可重试；
//     一个策略的失败不污染、不阻塞其他策略
type Cache struct {
	load LoadFunc

	mu      sync.RWMutex
	bundles map[Kind]*Bundle
	sf      singleflight.Group
}

// NewCache 创建空缓存。load 不可为 nil。
func NewCache(load LoadFunc) *Cache {
	return &Cache{
		load:    load,
		bundles: make(map[Kind]*Bundle),
	}
}

// NewCacheWithLoader 用标准 Loader 创建缓存。
func NewCacheWithLoader(l *Loader) *Cache {
	return NewCache(l.Load)
}

// Get 返回指定家族的 Bundle，冷缓存时触发一次装载。
// 装载失败返回 ARTIFACT_LOAD_FAILED 领域错误（仅该策略不可用）。
func (c *Cache) Get(ctx context.Context, kind Kind) (*Bundle, error) {
	c.mu.RLock()
	b, ok := c.bundles[kind]
	c.mu.RUnlock()
	if ok {
		return b, nil
	}

	v, err, _ := c.sf.Do(string(kind), func() (any, error) {
		// singleflight 排队期间可能已有前序调用完成装载
		c.mu.RLock()
		b, ok := c.bundles[kind]
		c.mu.RUnlock()
		if ok {
			return b, nil
		}

		b, err := c.load(ctx, kind)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.bundles[kind] = b
		c.mu.Unlock()
		return b, nil
	})
	if err != nil {
		return nil, core.WrapDomainError(
			core.ModuleArtifact,
			core.ErrorCodeArtifactLoadFailed,
			fmt.Sprintf("load artifacts for strategy %q", kind),
			err,
		)
	}
	return v.(*Bundle), nil
}

// Loaded 报告指定家族是否已完成装载（用于观测与测试）。
func (c *Cache) Loaded(kind Kind) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.bundles[kind]
	return ok
}
