package media

import (
	"context"
	"errors"
	"sort"
	"sync"
)

// MemoryStore 进程内存储，本地开发与测试使用
type MemoryStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	// FailPut 非空时 Put 对匹配次序返回错误（从 1 计数）
	FailPut func(n int) error
	FailDel error
	Deleted []string
	BaseURL string
	puts    int
}

func NewMemory() *MemoryStore {
	return &MemoryStore{objects: map[string][]byte{}, BaseURL: "memory://media"}
}

func (m *MemoryStore) Put(ctx context.Context, key, _ string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.puts++
	if m.FailPut != nil {
		if err := m.FailPut(m.puts); err != nil {
			return "", err
		}
	}
	m.objects[key] = data
	return m.BaseURL + "/" + key, nil
}

func (m *MemoryStore) Delete(_ context.Context, keys []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailDel != nil {
		return m.FailDel
	}
	for _, k := range keys {
		delete(m.objects, k)
		m.Deleted = append(m.Deleted, k)
	}
	return nil
}

func (m *MemoryStore) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.objects))
	for k := range m.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (m *MemoryStore) Get(key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.objects[key]
	if !ok {
		return nil, errors.New("object not found")
	}
	return b, nil
}
