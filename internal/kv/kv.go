// Package kv is the persistent key-value port every stateful storefront
// component writes through. It mirrors the browser storage contract: whole
// string values per key, plus change notifications delivered to the other
// handles sharing the same backing store.
package kv

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("kv: key not found")

// Change describes a write made through another handle.
type Change struct {
	Key     string `json:"key"`
	Value   string `json:"value,omitempty"`
	Deleted bool   `json:"deleted,omitempty"`
	Origin  string `json:"origin"`
}

type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	// Watch registers fn for changes to key made by other handles. The
	// returned func unregisters it.
	Watch(key string, fn func(Change)) (stop func())
}
