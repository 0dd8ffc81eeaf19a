package kv

import "sync"

// Watchers is the per-handle registry shared by the Store implementations.
type Watchers struct {
	mu    sync.RWMutex
	next  int
	byKey map[string]map[int]func(Change)
}

func (w *Watchers) Add(key string, fn func(Change)) (stop func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.byKey == nil {
		w.byKey = map[string]map[int]func(Change){}
	}
	if w.byKey[key] == nil {
		w.byKey[key] = map[int]func(Change){}
	}
	id := w.next
	w.next++
	w.byKey[key][id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			w.mu.Lock()
			defer w.mu.Unlock()
			delete(w.byKey[key], id)
			if len(w.byKey[key]) == 0 {
				delete(w.byKey, key)
			}
		})
	}
}

// Dispatch calls the watchers of c.Key outside the lock so a callback may
// read or write the store.
func (w *Watchers) Dispatch(c Change) {
	w.mu.RLock()
	fns := make([]func(Change), 0, len(w.byKey[c.Key]))
	for _, fn := range w.byKey[c.Key] {
		fns = append(fns, fn)
	}
	w.mu.RUnlock()

	for _, fn := range fns {
		fn(c)
	}
}
