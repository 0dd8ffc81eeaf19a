package session

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/ariefcatur/pandagamers-storefront/internal/kv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const domain = "@duocuc.cl"

func TestLoginDerivesDiscountAndPersists(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	h := NewHolder(store, domain, nil)

	var seen []*Identity
	h.Subscribe(func(id *Identity) { seen = append(seen, id) })

	require.NoError(t, h.Login(ctx, "tok-1", Identity{Username: "ana", Email: "Ana@DUOCUC.CL", DiscountEligible: false}))

	cur := h.Current()
	require.NotNil(t, cur)
	assert.True(t, cur.DiscountEligible)
	assert.Equal(t, RoleUser, cur.Role)
	assert.Equal(t, "tok-1", h.Token())

	raw, err := store.Get(ctx, kv.KeyIdentity)
	require.NoError(t, err)
	var persisted Identity
	require.NoError(t, json.Unmarshal([]byte(raw), &persisted))
	assert.True(t, persisted.DiscountEligible)

	tok, err := store.Get(ctx, kv.KeyToken)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", tok)

	require.Len(t, seen, 1)
	assert.Equal(t, "ana", seen[0].Username)
}

func TestLoginIgnoresCallerSuppliedEligibility(t *testing.T) {
	h := NewHolder(kv.NewMemory(), domain, nil)
	require.NoError(t, h.Login(context.Background(), "t", Identity{Username: "bob", Email: "bob@gmail.com", DiscountEligible: true}))
	assert.False(t, h.DiscountEligible())
}

func TestLoginResultCombinedPayload(t *testing.T) {
	h := NewHolder(kv.NewMemory(), domain, nil)
	err := h.LoginResult(context.Background(), AuthResult{
		Token: "jwt", Username: "benja", Email: "ben@gmail.com", Roles: []string{"USER", "ROLE_ADMIN"},
	})
	require.NoError(t, err)
	assert.True(t, h.Current().IsAdmin())
	assert.Equal(t, "jwt", h.Token())
}

func TestLoginRequiresIdentity(t *testing.T) {
	h := NewHolder(kv.NewMemory(), domain, nil)
	assert.ErrorIs(t, h.Login(context.Background(), "t", Identity{}), ErrNoIdentity)
}

func TestLogoutClearsMemoryAndStore(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	h := NewHolder(store, domain, nil)
	require.NoError(t, h.Login(ctx, "t", Identity{Username: "ana", Email: "ana@duocuc.cl"}))

	last := &Identity{}
	h.Subscribe(func(id *Identity) { last = id })
	require.NoError(t, h.Logout(ctx))

	assert.Nil(t, h.Current())
	assert.Empty(t, h.Token())
	assert.Nil(t, last)
	_, err := store.Get(ctx, kv.KeyIdentity)
	assert.ErrorIs(t, err, kv.ErrNotFound)
	_, err = store.Get(ctx, kv.KeyToken)
	assert.ErrorIs(t, err, kv.ErrNotFound)
}

func TestRestore(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	require.NoError(t, store.Set(ctx, kv.KeyIdentity, `{"username":"ana","email":"ana@duocuc.cl","role":"user","hasDuocDiscount":true}`))
	require.NoError(t, store.Set(ctx, kv.KeyToken, "tok"))

	h := NewHolder(store, domain, nil)
	require.NoError(t, h.Restore(ctx))
	require.NotNil(t, h.Current())
	assert.Equal(t, "ana", h.Current().ID())
	assert.True(t, h.DiscountEligible())
	assert.Equal(t, "tok", h.Token())
}

func TestRestoreRecomputesDiscountFromEmail(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	require.NoError(t, store.Set(ctx, kv.KeyIdentity, `{"username":"bob","email":"bob@gmail.com","role":"user","hasDuocDiscount":true}`))

	h := NewHolder(store, domain, nil)
	require.NoError(t, h.Restore(ctx))
	require.NotNil(t, h.Current())
	assert.False(t, h.Current().DiscountEligible)
	assert.False(t, h.DiscountEligible())

	require.NoError(t, store.Set(ctx, kv.KeyIdentity, `{"username":"ana","email":"ana@duocuc.cl","role":"user","hasDuocDiscount":false}`))
	require.NoError(t, h.Restore(ctx))
	assert.True(t, h.DiscountEligible())
}

func TestRestoreDiscardsUnparseableIdentity(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	require.NoError(t, store.Set(ctx, kv.KeyIdentity, "{broken"))
	require.NoError(t, store.Set(ctx, kv.KeyToken, "tok"))

	h := NewHolder(store, domain, nil)
	require.NoError(t, h.Restore(ctx))
	assert.Nil(t, h.Current())
	assert.Equal(t, "tok", h.Token())
	_, err := store.Get(ctx, kv.KeyIdentity)
	assert.ErrorIs(t, err, kv.ErrNotFound)
}

func TestRestoreEmptyStore(t *testing.T) {
	h := NewHolder(kv.NewMemory(), domain, nil)
	require.NoError(t, h.Restore(context.Background()))
	assert.Nil(t, h.Current())
	assert.Empty(t, h.Token())
}

func TestInvalidatePurgesSession(t *testing.T) {
	ctx := context.Background()
	h := NewHolder(kv.NewMemory(), domain, nil)
	require.NoError(t, h.Login(ctx, "t", Identity{Username: "ana"}))
	h.Invalidate(ctx)
	assert.Nil(t, h.Current())
	assert.Empty(t, h.Token())
}

func TestRoleFromList(t *testing.T) {
	assert.Equal(t, RoleAdmin, RoleFromList([]string{"ADMIN"}))
	assert.Equal(t, RoleAdmin, RoleFromList([]string{"user", "role_admin"}))
	assert.Equal(t, RoleUser, RoleFromList(nil))
	assert.Equal(t, RoleUser, RoleFromList([]string{"USER"}))
}
