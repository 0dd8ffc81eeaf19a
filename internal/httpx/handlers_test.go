package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ariefcatur/pandagamers-storefront/internal/api"
	"github.com/ariefcatur/pandagamers-storefront/internal/cart"
	"github.com/ariefcatur/pandagamers-storefront/internal/checkout"
	"github.com/ariefcatur/pandagamers-storefront/internal/datastore"
	"github.com/ariefcatur/pandagamers-storefront/internal/kv"
	"github.com/ariefcatur/pandagamers-storefront/internal/orders"
	"github.com/ariefcatur/pandagamers-storefront/internal/session"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errDown = errors.New("dial tcp: connection refused")

// downRemote fails every call, as if the API were unreachable.
type downRemote struct{}

func (downRemote) ListProducts(context.Context) ([]api.Product, error) { return nil, errDown }
func (downRemote) GetProduct(context.Context, string) (api.Product, error) {
	return api.Product{}, errDown
}
func (downRemote) CreateProduct(context.Context, api.Product) (api.Product, error) {
	return api.Product{}, errDown
}
func (downRemote) UpdateProduct(context.Context, string, api.Product) (api.Product, error) {
	return api.Product{}, errDown
}
func (downRemote) DeleteProduct(context.Context, string) error { return errDown }
func (downRemote) UpdateStock(context.Context, string, int) (api.Product, error) {
	return api.Product{}, errDown
}
func (downRemote) ListOffers(context.Context) ([]api.Offer, error) { return nil, errDown }
func (downRemote) CreateOffer(context.Context, api.Offer) (api.Offer, error) {
	return api.Offer{}, errDown
}
func (downRemote) UpdateOffer(context.Context, string, api.Offer) (api.Offer, error) {
	return api.Offer{}, errDown
}
func (downRemote) DeleteOffer(context.Context, string) error { return errDown }
func (downRemote) ListUsers(context.Context) ([]api.User, error) { return nil, errDown }
func (downRemote) CreateUser(context.Context, api.User) (api.User, error) { return api.User{}, errDown }
func (downRemote) DeleteUser(context.Context, string) error { return errDown }
func (downRemote) ListReviews(context.Context) ([]api.Review, error) { return nil, errDown }
func (downRemote) DeleteReview(context.Context, string) error { return errDown }
func (downRemote) ListOrders(context.Context) ([]orders.Order, error) { return nil, errDown }
func (downRemote) GetOrder(context.Context, string) (orders.Order, error) {
	return orders.Order{}, errDown
}

type mockAccounts struct {
	err error
}

func (m *mockAccounts) Login(_ context.Context, username, password string) (session.AuthResult, error) {
	if m.err != nil {
		return session.AuthResult{}, m.err
	}
	if password != "secret" {
		return session.AuthResult{}, &api.Error{Status: http.StatusUnauthorized}
	}
	return session.AuthResult{Token: "tok", Username: username, Email: username + "@duocuc.cl", Roles: []string{"ROLE_USER"}}, nil
}

func (m *mockAccounts) Register(context.Context, api.Registration) error { return m.err }

type mockGateway struct{}

func (mockGateway) InitiatePayment(context.Context, orders.Request) (api.PaymentRedirect, error) {
	return api.PaymentRedirect{URL: "/webpay", Token: "pay-1"}, nil
}

func (mockGateway) ConfirmPayment(_ context.Context, _ string, s orders.PaymentStatus) (api.PaymentConfirmation, error) {
	if s == orders.PaymentAuthorized {
		return api.PaymentConfirmation{Status: string(s), OrderID: "77", Redirect: "/checkout/success/77"}, nil
	}
	return api.PaymentConfirmation{Status: string(s), Redirect: "/checkout/error"}, nil
}

type harness struct {
	router   *chi.Mux
	holder   *session.Holder
	ledger   *cart.Ledger
	accounts *mockAccounts
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	ctx := context.Background()
	store := kv.NewMemory()
	holder := session.NewHolder(store, "@duocuc.cl", nil)
	ledger := cart.NewLedger(ctx, store, "", nil)
	ledger.Follow(holder)
	local, err := datastore.NewStore(ctx, store, nil)
	require.NoError(t, err)
	data := &datastore.Service{Remote: downRemote{}, Local: local}
	flow := checkout.New(checkout.Deps{Cart: ledger, Session: holder, Gateway: mockGateway{}, Orders: data, Recorder: local})

	h := &harness{router: NewRouter(nil), holder: holder, ledger: ledger, accounts: &mockAccounts{}}
	(&StorefrontHandler{Session: holder, Cart: ledger, Accounts: h.accounts, Data: data, Checkout: flow}).Register(h.router)
	(&AdminHandler{Session: holder, Data: data}).Register(h.router)
	return h
}

func (h *harness) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestHealthz(t *testing.T) {
	h := newHarness(t)
	rec := h.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestCartRoutes(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodPost, "/cart/items", map[string]any{"productId": "3", "quantity": 2})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = h.do(t, http.MethodPost, "/cart/items", map[string]any{"productId": 3, "quantity": "1"})
	require.Equal(t, http.StatusOK, rec.Code)

	view := decodeBody[cartView](t, rec)
	assert.Equal(t, "cart_guest", view.Key)
	require.Len(t, view.Items, 1)
	assert.Equal(t, 3, view.Items[0].Quantity)
	assert.Equal(t, int64(3*29990), view.Quote.Subtotal)
	assert.Equal(t, int64(2500), view.Quote.Shipping)

	rec = h.do(t, http.MethodGet, "/cart?delivery=pickup", nil)
	assert.Zero(t, decodeBody[cartView](t, rec).Quote.Shipping)

	rec = h.do(t, http.MethodDelete, "/cart/items/3?units=2", nil)
	assert.Equal(t, 1, decodeBody[cartView](t, rec).Items[0].Quantity)

	rec = h.do(t, http.MethodPut, "/cart/items/3", map[string]any{"quantity": 0})
	assert.Empty(t, decodeBody[cartView](t, rec).Items)

	rec = h.do(t, http.MethodPost, "/cart/items", map[string]any{"productId": "999"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLoginSwitchesCart(t *testing.T) {
	h := newHarness(t)
	h.do(t, http.MethodPost, "/cart/items", map[string]any{"productId": "1", "quantity": 1})

	rec := h.do(t, http.MethodPost, "/session/login", loginReq{Username: "ana", Password: "bad"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = h.do(t, http.MethodPost, "/session/login", loginReq{Username: "ana", Password: "secret"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, h.holder.DiscountEligible())
	assert.Equal(t, "cart_ana", h.ledger.Key())
	assert.Zero(t, h.ledger.Len())

	rec = h.do(t, http.MethodPost, "/session/logout", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 1, h.ledger.Len())
}

func TestLoginFallsBackToLocalUsers(t *testing.T) {
	h := newHarness(t)
	h.accounts.err = errDown

	rec := h.do(t, http.MethodPost, "/session/login", loginReq{Username: "ben@gmail.com", Password: "ben123"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	cur := h.holder.Current()
	require.NotNil(t, cur)
	assert.True(t, cur.IsAdmin())
}

func TestRegisterValidation(t *testing.T) {
	h := newHarness(t)
	rec := h.do(t, http.MethodPost, "/session/register", registerReq{Username: "", Email: "x", Password: "123", ConfirmPassword: "456"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := decodeBody[map[string]any](t, rec)
	fields := body["fields"].(map[string]any)
	assert.Len(t, fields, 4)

	// same email rule as the checkout form
	rec = h.do(t, http.MethodPost, "/session/register", registerReq{Username: "ana", Email: "ana@duocuc", Password: "123456", ConfirmPassword: "123456"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	fields = decodeBody[map[string]any](t, rec)["fields"].(map[string]any)
	assert.Contains(t, fields, "email")
	assert.False(t, checkout.ValidEmail("ana@duocuc"))

	rec = h.do(t, http.MethodPost, "/session/register", registerReq{Username: "ana", Email: "ana@duocuc.cl", Password: "123456", ConfirmPassword: "123456"})
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestCheckoutRoutes(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodPost, "/checkout", checkout.Form{})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	h.do(t, http.MethodPost, "/cart/items", map[string]any{"productId": "1", "quantity": 1})
	form := checkout.Form{
		Shipping: orders.ShippingInfo{FirstName: "A", LastName: "B", Email: "a@b.cl", Phone: "1", Address: "x", City: "y", Region: "z", PostalCode: "1"},
		Payment:  checkout.PaymentInfo{CardNumber: "1111222233334444", ExpiryDate: "01/30", CVV: "123", CardName: "A B"},
	}
	rec = h.do(t, http.MethodPost, "/checkout", form)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "pay-1", decodeBody[checkout.Redirect](t, rec).Token)

	rec = h.do(t, http.MethodPost, "/checkout/confirm", confirmReq{Token: "pay-1", Status: orders.PaymentFailed})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/checkout/error", decodeBody[checkout.Result](t, rec).Redirect)
	assert.Equal(t, 1, h.ledger.Len())

	rec = h.do(t, http.MethodPost, "/checkout/confirm", confirmReq{Token: "pay-1", Status: orders.PaymentAuthorized})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, h.ledger.Len())

	rec = h.do(t, http.MethodPost, "/checkout/confirm", confirmReq{Token: "pay-1", Status: "MAYBE"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOrdersRequireSignIn(t *testing.T) {
	h := newHarness(t)
	rec := h.do(t, http.MethodGet, "/orders", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = h.do(t, http.MethodGet, "/orders/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCatalogFilters(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodGet, "/products?category=Sillas&maxPrice=350000", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	ps := decodeBody[[]api.Product](t, rec)
	assert.Len(t, ps, 2)

	rec = h.do(t, http.MethodGet, "/products/7", nil)
	assert.Equal(t, "PlayStation 5", decodeBody[api.Product](t, rec).Name)

	rec = h.do(t, http.MethodPost, "/products/7/reviews", map[string]any{"comment": "top"})
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = h.do(t, http.MethodGet, "/products/7/reviews", nil)
	rs := decodeBody[[]api.Review](t, rec)
	require.Len(t, rs, 1)
	assert.Equal(t, "Anónimo", rs[0].Name)

	rec = h.do(t, http.MethodGet, "/offers?min=10", nil)
	assert.Equal(t, "[]\n", rec.Body.String())
}

func TestAdminRequiresRole(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	assert.Equal(t, http.StatusUnauthorized, h.do(t, http.MethodGet, "/admin/products", nil).Code)

	require.NoError(t, h.holder.Login(ctx, "t", session.Identity{Username: "ana", Email: "ana@x.cl"}))
	assert.Equal(t, http.StatusForbidden, h.do(t, http.MethodGet, "/admin/products", nil).Code)

	require.NoError(t, h.holder.Login(ctx, "t", session.Identity{Username: "benja", Email: "ben@gmail.com", Role: "admin"}))
	assert.Equal(t, http.StatusOK, h.do(t, http.MethodGet, "/admin/products", nil).Code)
}

func TestAdminWritesFallBackLocally(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.holder.Login(context.Background(), "t", session.Identity{Username: "benja", Role: "admin"}))

	rec := h.do(t, http.MethodPut, "/admin/products/5/stock", map[string]any{"stock": 42})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 42, decodeBody[api.Product](t, rec).Stock)

	rec = h.do(t, http.MethodPost, "/admin/offers", map[string]any{"productId": 5, "discount": 50})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, int64(174995), int64(decodeBody[api.Offer](t, rec).Price))

	rec = h.do(t, http.MethodGet, "/offers?min=40", nil)
	assert.Len(t, decodeBody[[]api.Offer](t, rec), 1)

	rec = h.do(t, http.MethodPost, "/admin/users", userReq{Username: "bob", Email: "bob@x.cl", Password: "pw", Role: "ADMIN"})
	require.Equal(t, http.StatusCreated, rec.Code)
	u := decodeBody[api.User](t, rec)
	assert.Equal(t, "admin", u.Role)
	assert.Empty(t, u.Password)

	assert.Equal(t, http.StatusForbidden, h.do(t, http.MethodDelete, "/admin/users/0", nil).Code)

	rec = h.do(t, http.MethodPut, "/admin/tab", tabReq{Tab: "users"})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = h.do(t, http.MethodGet, "/admin/tab", nil)
	assert.Equal(t, "users", decodeBody[tabReq](t, rec).Tab)
}

func TestWriteErrorMapping(t *testing.T) {
	for err, code := range map[error]int{
		checkout.ErrEmptyCart:                    http.StatusBadRequest,
		checkout.ErrInProgress:                   http.StatusConflict,
		checkout.ErrSubmitFailed:                 http.StatusBadGateway,
		datastore.ErrNotFound:                    http.StatusNotFound,
		&api.Error{Status: http.StatusForbidden}: http.StatusUnauthorized,
		&api.Error{Status: http.StatusNotFound}:  http.StatusNotFound,
		errors.New("anything"):                   http.StatusInternalServerError,
	} {
		rec := httptest.NewRecorder()
		writeError(rec, err)
		assert.Equal(t, code, rec.Code, err.Error())
	}
}
