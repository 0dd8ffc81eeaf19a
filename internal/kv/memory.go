package kv

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

type memoryData struct {
	mu      sync.RWMutex
	values  map[string]string
	handles []*Memory
}

// Memory is an in-process Store. Handles created with Fork share the same
// values but have distinct origins, like two tabs of one browser profile.
type Memory struct {
	data     *memoryData
	origin   string
	watchers Watchers
}

func NewMemory() *Memory {
	d := &memoryData{values: map[string]string{}}
	return d.handle()
}

func (d *memoryData) handle() *Memory {
	m := &Memory{data: d, origin: uuid.NewString()}
	d.mu.Lock()
	d.handles = append(d.handles, m)
	d.mu.Unlock()
	return m
}

// Fork returns another handle over the same values.
func (m *Memory) Fork() *Memory { return m.data.handle() }

func (m *Memory) Origin() string { return m.origin }

func (m *Memory) Get(_ context.Context, key string) (string, error) {
	m.data.mu.RLock()
	defer m.data.mu.RUnlock()
	v, ok := m.data.values[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (m *Memory) Set(_ context.Context, key, value string) error {
	m.data.mu.Lock()
	m.data.values[key] = value
	m.data.mu.Unlock()
	m.broadcast(Change{Key: key, Value: value, Origin: m.origin})
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.data.mu.Lock()
	_, existed := m.data.values[key]
	delete(m.data.values, key)
	m.data.mu.Unlock()
	if existed {
		m.broadcast(Change{Key: key, Deleted: true, Origin: m.origin})
	}
	return nil
}

func (m *Memory) Watch(key string, fn func(Change)) (stop func()) {
	return m.watchers.Add(key, fn)
}

func (m *Memory) broadcast(c Change) {
	m.data.mu.RLock()
	others := make([]*Memory, 0, len(m.data.handles))
	for _, h := range m.data.handles {
		if h != m {
			others = append(others, h)
		}
	}
	m.data.mu.RUnlock()

	for _, h := range others {
		h.watchers.Dispatch(c)
	}
}
