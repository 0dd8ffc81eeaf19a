// Package session holds the current identity and bearer token of one
// storefront profile and mirrors both to the kv store.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/ariefcatur/pandagamers-storefront/internal/kv"
	"github.com/ariefcatur/pandagamers-storefront/internal/logx"
	"go.uber.org/zap"
)

var ErrNoIdentity = errors.New("session: login requires an identity")

type Holder struct {
	store  kv.Store
	domain string
	log    *zap.Logger

	mu       sync.RWMutex
	identity *Identity
	token    string
	subs     []func(*Identity)
}

// NewHolder returns a guest holder. domain is the email suffix granting the
// discount, e.g. "@duocuc.cl".
func NewHolder(store kv.Store, domain string, log *zap.Logger) *Holder {
	return &Holder{store: store, domain: domain, log: logx.OrNop(log)}
}

// Subscribe registers fn for identity changes; nil means guest.
func (h *Holder) Subscribe(fn func(*Identity)) {
	h.mu.Lock()
	h.subs = append(h.subs, fn)
	h.mu.Unlock()
}

// Current returns a copy of the identity, or nil for a guest.
func (h *Holder) Current() *Identity {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.identity == nil {
		return nil
	}
	id := *h.identity
	return &id
}

func (h *Holder) Token() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.token
}

func (h *Holder) DiscountEligible() bool {
	id := h.Current()
	return id != nil && id.DiscountEligible
}

// Restore loads the persisted identity and token. An identity that does not
// parse is dropped without surfacing an error. The stored discount flag is
// ignored and recomputed from the email.
func (h *Holder) Restore(ctx context.Context) error {
	var restored *Identity
	raw, err := h.store.Get(ctx, kv.KeyIdentity)
	switch {
	case errors.Is(err, kv.ErrNotFound):
	case err != nil:
		return err
	default:
		var id Identity
		if jerr := json.Unmarshal([]byte(raw), &id); jerr != nil {
			h.log.Warn("discarding unreadable persisted identity", zap.Error(jerr))
			_ = h.store.Delete(ctx, kv.KeyIdentity)
		} else {
			id.DiscountEligible = discountEligible(id.Email, h.domain)
			restored = &id
		}
	}

	token, err := h.store.Get(ctx, kv.KeyToken)
	if err != nil && !errors.Is(err, kv.ErrNotFound) {
		return err
	}

	h.mu.Lock()
	h.identity = restored
	h.token = token
	h.mu.Unlock()
	h.publish(restored)
	return nil
}

// Login stores the identity, with DiscountEligible recomputed from its email,
// and the token when one is given.
func (h *Holder) Login(ctx context.Context, token string, id Identity) error {
	if id.Username == "" && id.Email == "" {
		return ErrNoIdentity
	}
	if id.Role == "" {
		id.Role = RoleUser
	}
	id.DiscountEligible = discountEligible(id.Email, h.domain)

	b, err := json.Marshal(id)
	if err != nil {
		return err
	}
	if err := h.store.Set(ctx, kv.KeyIdentity, string(b)); err != nil {
		return err
	}
	if token != "" {
		if err := h.store.Set(ctx, kv.KeyToken, token); err != nil {
			return err
		}
	}

	h.mu.Lock()
	h.identity = &id
	if token != "" {
		h.token = token
	}
	h.mu.Unlock()

	h.log.Info("signed in", zap.String("username", id.Username), zap.String("role", id.Role),
		zap.Bool("discount", id.DiscountEligible))
	h.publish(&id)
	return nil
}

// LoginResult accepts the combined login payload.
func (h *Holder) LoginResult(ctx context.Context, r AuthResult) error {
	return h.Login(ctx, r.Token, r.Identity())
}

func (h *Holder) Logout(ctx context.Context) error {
	h.mu.Lock()
	h.identity = nil
	h.token = ""
	h.mu.Unlock()

	errID := h.store.Delete(ctx, kv.KeyIdentity)
	errTok := h.store.Delete(ctx, kv.KeyToken)
	h.publish(nil)
	return errors.Join(errID, errTok)
}

// Invalidate is called when the API rejects the token.
func (h *Holder) Invalidate(ctx context.Context) {
	h.log.Warn("token expired or invalid, sign in again")
	if err := h.Logout(ctx); err != nil {
		h.log.Warn("clearing session", zap.Error(err))
	}
}

func (h *Holder) publish(id *Identity) {
	h.mu.RLock()
	subs := append([]func(*Identity){}, h.subs...)
	h.mu.RUnlock()
	for _, fn := range subs {
		if id == nil {
			fn(nil)
			continue
		}
		cp := *id
		fn(&cp)
	}
}
