package cache

import (
	"context"
	"strings"
	"sync"

	"github.com/goccy/go-json"
)

// Store 是读穿缓存的抽象。值以 JSON 形式保存
type Store interface {
	// Get 读取 key 并解码到 dst，未命中时返回 false
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any) error
	// SetIfGeneration writes only while Generation still equals gen, so a value
	// loaded before a concurrent Invalidate is not written back.
	SetIfGeneration(ctx context.Context, key string, v any, gen uint64) (bool, error)
	// Invalidate 删除所有以给定前缀开头的键，并递增 Generation
	Invalidate(ctx context.Context, prefixes ...string) error
	// Generation counts the Invalidate calls made through this Store.
	Generation() uint64
	Close() error
}

const (
	PlaylistsPrefix = "playlists:"
	PontosPrefix    = "pontos:list:"
	HistoriaLatest  = "historia:latest"
)

// PlaylistsListKey 是歌单列表的缓存键
func PlaylistsListKey() string { return PlaylistsPrefix + "list" }

// PlaylistKey 是单个歌单的缓存键
func PlaylistKey(id string) string { return PlaylistsPrefix + id }

// PontosListKey 是某个过滤条件下 pontos 列表的缓存键
func PontosListKey(filter string) string { return PontosPrefix + filter }

// Noop never stores anything. Used when Redis is disabled.
type Noop struct{}

func (Noop) Get(context.Context, string, any) (bool, error) { return false, nil }
func (Noop) Set(context.Context, string, any) error         { return nil }
func (Noop) Invalidate(context.Context, ...string) error    { return nil }
func (Noop) Generation() uint64                             { return 0 }
func (Noop) Close() error                                   { return nil }

func (Noop) SetIfGeneration(context.Context, string, any, uint64) (bool, error) {
	return false, nil
}

// Memory is an in-process Store without expiry.
type Memory struct {
	mu    sync.RWMutex
	items map[string][]byte
	gen   uint64
}

func NewMemory() *Memory {
	return &Memory{items: make(map[string][]byte)}
}

func (m *Memory) Get(_ context.Context, key string, dst any) (bool, error) {
	m.mu.RLock()
	data, ok := m.items[key]
	m.mu.RUnlock()
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(data, dst)
}

func (m *Memory) Set(_ context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.items[key] = data
	m.mu.Unlock()
	return nil
}

func (m *Memory) SetIfGeneration(_ context.Context, key string, v any, gen uint64) (bool, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gen != gen {
		return false, nil
	}
	m.items[key] = data
	return true, nil
}

func (m *Memory) Generation() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.gen
}

func (m *Memory) Invalidate(_ context.Context, prefixes ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gen++
	for key := range m.items {
		for _, prefix := range prefixes {
			if strings.HasPrefix(key, prefix) {
				delete(m.items, key)
				break
			}
		}
	}
	return nil
}

func (m *Memory) Close() error { return nil }

// Len returns the number of cached keys.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}
