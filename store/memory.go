package store

import (
	"context"
	"sync"
	"time"

	"github.com/rushteam/recserve/core"
)

// MemoryStore 是内存实现的 Store，用于测试/开发/原型。
// 支持 TTL（过期时间），但进程重启后数据丢失。
type MemoryStore struct {
	mu    sync.RWMutex
	data  map[string]*entry
	clean *time.Ticker
	done  chan struct{}
}

type entry struct {
	value []byte
	ttl   *time.Time
}

func NewMemoryStore() *MemoryStore {
	ms := &MemoryStore{
		data:  make(map[string]*entry),
		clean: time.NewTicker(10 * time.Second),
		done:  make(chan struct{}),
	}
	go ms.cleanup()
	return ms
}

func (m *MemoryStore) Name() string { return "memory" }

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.data[key]
	if !ok {
		return nil, core.ErrStoreNotFound
	}
	if e.ttl != nil && time.Now().After(*e.ttl) {
		return nil, core.ErrStoreNotFound
	}
	return e.value, nil
}

func (m *MemoryStore) Set(_ context.Context, key string, value []byte, ttl ...int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := &entry{value: value}
	if len(ttl) > 0 && ttl[0] > 0 {
		expire := time.Now().Add(time.Duration(ttl[0]) * time.Second)
		e.ttl = &expire
	}
	m.data[key] = e
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.data, key)
	return nil
}

func (m *MemoryStore) BatchGet(_ context.Context, keys []string) (map[string][]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make(map[string][]byte, len(keys))
	now := time.Now()
	for _, k := range keys {
		e, ok := m.data[k]
		if !ok {
			continue
		}
		if e.ttl != nil && now.After(*e.ttl) {
			continue
		}
		result[k] = e.value
	}
	return result, nil
}

func (m *MemoryStore) Close() error {
	if m.clean != nil {
		m.clean.Stop()
	}
	select {
	case <-m.done:
	default:
		close(m.done)
	}
	return nil
}

func (m *MemoryStore) cleanup() {
	for {
		select {
		case <-m.done:
			return
		case <-m.clean.C:
		}
		m.mu.Lock()
		now := time.Now()
		for k, e := range m.data {
			if e.ttl != nil && now.After(*e.ttl) {
				delete(m.data, k)
			}
		}
		m.mu.Unlock()
	}
}

var _ core.Store = (*MemoryStore)(nil)
