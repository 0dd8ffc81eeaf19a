// Package cart keeps the line items of the active identity's cart and
// persists the whole list under the identity-scoped kv key on every change.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/ariefcatur/pandagamers-storefront/internal/kv"
	"github.com/ariefcatur/pandagamers-storefront/internal/logx"
	"github.com/ariefcatur/pandagamers-storefront/internal/session"
	"go.uber.org/zap"
)

type Ledger struct {
	store kv.Store
	log   *zap.Logger

	// wmu serializes mutate+persist so same-handle calls persist in call
	// order; mu guards the in-memory state and is never held across a
	// store write, because remote change callbacks take it.
	wmu       sync.Mutex
	mu        sync.RWMutex
	key       string
	items     []LineItem
	stopWatch func()
}

// NewLedger loads the cart of identityID ("" for guest).
func NewLedger(ctx context.Context, store kv.Store, identityID string, log *zap.Logger) *Ledger {
	l := &Ledger{store: store, log: logx.OrNop(log)}
	l.Switch(ctx, identityID)
	return l
}

// Follow reloads the cart whenever the holder's identity changes.
func (l *Ledger) Follow(h *session.Holder) {
	h.Subscribe(func(id *session.Identity) {
		identityID := ""
		if id != nil {
			identityID = id.ID()
		}
		l.Switch(context.Background(), identityID)
	})
}

// Switch replaces the active cart with the one persisted for identityID.
// Carts of different identities are never merged.
func (l *Ledger) Switch(ctx context.Context, identityID string) {
	l.wmu.Lock()
	defer l.wmu.Unlock()

	key := kv.CartKey(identityID)
	items := l.load(ctx, key)

	l.mu.Lock()
	if l.stopWatch != nil {
		l.stopWatch()
	}
	l.key = key
	l.items = items
	l.stopWatch = l.store.Watch(key, l.onRemoteChange)
	l.mu.Unlock()
}

func (l *Ledger) load(ctx context.Context, key string) []LineItem {
	raw, err := l.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, kv.ErrNotFound) {
			l.log.Warn("loading cart", zap.String("key", key), zap.Error(err))
		}
		return nil
	}
	items, err := decodeItems(raw)
	if err != nil {
		l.log.Warn("unreadable cart payload, starting empty", zap.String("key", key), zap.Error(err))
		return nil
	}
	return items
}

// onRemoteChange applies another tab's write to the active key.
func (l *Ledger) onRemoteChange(c kv.Change) {
	var items []LineItem
	if !c.Deleted {
		var err error
		if items, err = decodeItems(c.Value); err != nil {
			l.log.Warn("unreadable cart change, resetting", zap.String("key", c.Key), zap.Error(err))
			items = nil
		}
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if c.Key != l.key {
		return
	}
	l.items = items
}

func (l *Ledger) Key() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.key
}

// Items returns a copy of the line items in insertion order.
func (l *Ledger) Items() []LineItem {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]LineItem(nil), l.items...)
}

func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.items)
}

// Total is the undiscounted sum of unit price times quantity.
func (l *Ledger) Total() int64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var sum int64
	for _, it := range l.items {
		sum += it.LineTotal()
	}
	return sum
}

// Add merges qty into an existing line or appends a new one. A non-positive
// qty adds nothing to an existing line and means 1 for a new line.
func (l *Ledger) Add(ctx context.Context, p Product, qty int) error {
	return l.mutate(ctx, func(items []LineItem) []LineItem {
		for i := range items {
			if items[i].ProductID == p.ID {
				if qty > 0 {
					items[i].Quantity += qty
				}
				return items
			}
		}
		if qty <= 0 {
			qty = 1
		}
		return append(items, LineItem{
			ProductID: p.ID,
			Name:      p.Name,
			UnitPrice: p.Price,
			Image:     p.Image,
			Quantity:  qty,
		})
	})
}

// RemoveUnits takes qty units (1 when qty <= 0) off a line and drops the
// line when nothing is left.
func (l *Ledger) RemoveUnits(ctx context.Context, productID string, qty int) error {
	if qty <= 0 {
		qty = 1
	}
	return l.mutate(ctx, func(items []LineItem) []LineItem {
		out := items[:0]
		for _, it := range items {
			if it.ProductID == productID {
				it.Quantity -= qty
				if it.Quantity <= 0 {
					continue
				}
			}
			out = append(out, it)
		}
		return out
	})
}

// RemoveAll drops the line whatever its quantity.
func (l *Ledger) RemoveAll(ctx context.Context, productID string) error {
	return l.mutate(ctx, func(items []LineItem) []LineItem {
		out := items[:0]
		for _, it := range items {
			if it.ProductID != productID {
				out = append(out, it)
			}
		}
		return out
	})
}

// SetQuantity overwrites a line's quantity; qty <= 0 removes the line.
func (l *Ledger) SetQuantity(ctx context.Context, productID string, qty int) error {
	if qty <= 0 {
		return l.RemoveAll(ctx, productID)
	}
	return l.mutate(ctx, func(items []LineItem) []LineItem {
		for i := range items {
			if items[i].ProductID == productID {
				items[i].Quantity = qty
			}
		}
		return items
	})
}

func (l *Ledger) Clear(ctx context.Context) error {
	return l.mutate(ctx, func([]LineItem) []LineItem { return nil })
}

// mutate applies fn to a private copy, swaps it in, then persists it. The
// in-memory cart keeps the change even if the write fails.
func (l *Ledger) mutate(ctx context.Context, fn func([]LineItem) []LineItem) error {
	l.wmu.Lock()
	defer l.wmu.Unlock()

	l.mu.Lock()
	next := fn(append([]LineItem(nil), l.items...))
	l.items = next
	key := l.key
	snapshot := append([]LineItem{}, next...)
	l.mu.Unlock()

	b, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	if err := l.store.Set(ctx, key, string(b)); err != nil {
		l.log.Error("persisting cart", zap.String("key", key), zap.Error(err))
		return err
	}
	return nil
}
