package checkout

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ariefcatur/pandagamers-storefront/internal/api"
	"github.com/ariefcatur/pandagamers-storefront/internal/cart"
	"github.com/ariefcatur/pandagamers-storefront/internal/events"
	"github.com/ariefcatur/pandagamers-storefront/internal/kv"
	"github.com/ariefcatur/pandagamers-storefront/internal/orders"
	"github.com/ariefcatur/pandagamers-storefront/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockGateway struct {
	initErr    error
	confirmErr error
	requests   []orders.Request
	confirms   []orders.PaymentStatus
	block      chan struct{}
}

func (m *mockGateway) InitiatePayment(_ context.Context, r orders.Request) (api.PaymentRedirect, error) {
	if m.block != nil {
		<-m.block
	}
	m.requests = append(m.requests, r)
	if m.initErr != nil {
		return api.PaymentRedirect{}, m.initErr
	}
	return api.PaymentRedirect{URL: "/webpay", Token: "tok-1"}, nil
}

func (m *mockGateway) ConfirmPayment(_ context.Context, token string, status orders.PaymentStatus) (api.PaymentConfirmation, error) {
	m.confirms = append(m.confirms, status)
	if m.confirmErr != nil {
		return api.PaymentConfirmation{}, m.confirmErr
	}
	if status == orders.PaymentAuthorized {
		return api.PaymentConfirmation{Status: "AUTHORIZED", OrderID: "42", Redirect: "/checkout/success/42"}, nil
	}
	return api.PaymentConfirmation{Status: "FAILED", OrderID: "42", Redirect: "/checkout/error"}, nil
}

type mockOrders struct {
	recorded []orders.Order
}

func (m *mockOrders) Order(_ context.Context, id string) (orders.Order, error) {
	for _, o := range m.recorded {
		if o.ID == id {
			return o, nil
		}
	}
	return orders.Order{}, errors.New("missing")
}

func (m *mockOrders) RecordOrder(_ context.Context, o orders.Order) (orders.Order, error) {
	m.recorded = append(m.recorded, o)
	return o, nil
}

type fixture struct {
	flow    *Flow
	ledger  *cart.Ledger
	holder  *session.Holder
	gateway *mockGateway
	orders  *mockOrders
	events  []events.Envelope
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := kv.NewMemory()
	holder := session.NewHolder(store, "@duocuc.cl", nil)
	ledger := cart.NewLedger(ctx, store, "", nil)
	ledger.Follow(holder)

	fx := &fixture{ledger: ledger, holder: holder, gateway: &mockGateway{}, orders: &mockOrders{}}
	bus := events.NewBus("test")
	record := func(e events.Envelope) { fx.events = append(fx.events, e) }
	bus.Subscribe(events.EventOrdersUpdated, record)
	bus.Subscribe(events.EventProductsUpdated, record)

	fx.flow = New(Deps{
		Cart:     ledger,
		Session:  holder,
		Gateway:  fx.gateway,
		Orders:   fx.orders,
		Recorder: fx.orders,
		Notifier: bus,
	})
	return fx
}

func validForm() Form {
	return Form{
		Shipping: orders.ShippingInfo{
			FirstName: "Ana", LastName: "Soto", Email: "ana@duocuc.cl", Phone: "+56911111111",
			Address: "Av. Siempre Viva 742", City: "Santiago", Region: "RM", PostalCode: "8320000",
			DeliveryOption: "express",
		},
		Payment: PaymentInfo{CardNumber: "4111 1111 1111 1111", ExpiryDate: "12/29", CVV: "123", CardName: "ANA SOTO"},
	}
}

func (fx *fixture) fillCart(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, fx.ledger.Add(ctx, cart.Product{ID: "A", Name: "Mouse", Price: 10000}, 2))
	require.NoError(t, fx.ledger.Add(ctx, cart.Product{ID: "B", Name: "Teclado", Price: 20000}, 1))
}

func TestSubmitRejectsInvalidFormWithoutNetwork(t *testing.T) {
	fx := newFixture(t)
	fx.fillCart(t)

	form := validForm()
	form.Shipping.Email = "not-an-email"
	form.Payment.CardNumber = "1234"
	form.Shipping.City = "  "

	_, err := fx.flow.Submit(context.Background(), form)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "email")
	assert.Contains(t, verr.Fields, "cardNumber")
	assert.Contains(t, verr.Fields, "city")
	assert.Empty(t, fx.gateway.requests)
	assert.Equal(t, StateIdle, fx.flow.State())
}

func TestSubmitEmptyCart(t *testing.T) {
	fx := newFixture(t)
	_, err := fx.flow.Submit(context.Background(), validForm())
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Empty(t, fx.gateway.requests)
	assert.Equal(t, StateIdle, fx.flow.State())
}

func TestSubmitBuildsRequestFromQuote(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	fx.fillCart(t)
	require.NoError(t, fx.holder.Login(ctx, "tok", session.Identity{Username: "ana", Email: "ana@duocuc.cl"}))
	// the shopper's own cart starts empty after login
	fx.fillCart(t)

	redir, err := fx.flow.Submit(ctx, validForm())
	require.NoError(t, err)
	assert.Equal(t, "/webpay?token=tok-1", redir.URL)
	assert.Equal(t, StateAwaitingConfirmation, fx.flow.State())

	require.Len(t, fx.gateway.requests, 1)
	req := fx.gateway.requests[0]
	assert.Equal(t, int64(40000), req.Subtotal)
	assert.Equal(t, int64(8000), req.Discount)
	assert.Equal(t, int64(6080), req.Tax)
	assert.Equal(t, int64(5000), req.ShippingCost)
	assert.Equal(t, int64(32000+6080+5000), req.Total)
	assert.Equal(t, int64(8000), req.Items[0].Price)
	assert.Equal(t, int64(10000), req.Items[0].OriginalPrice)
	assert.True(t, req.Items[0].DiscountEligible)
}

func TestSubmitFailureKeepsNothing(t *testing.T) {
	fx := newFixture(t)
	fx.fillCart(t)
	fx.gateway.initErr = errors.New("dial tcp: refused")

	_, err := fx.flow.Submit(context.Background(), validForm())
	assert.ErrorIs(t, err, ErrSubmitFailed)
	assert.Equal(t, StateIdle, fx.flow.State())
	assert.Empty(t, fx.flow.pending)
	assert.Equal(t, 2, fx.ledger.Len())
}

func TestSubmitWhileInProgress(t *testing.T) {
	fx := newFixture(t)
	fx.fillCart(t)
	fx.gateway.block = make(chan struct{})

	done := make(chan error, 1)
	go func() {
		_, err := fx.flow.Submit(context.Background(), validForm())
		done <- err
	}()
	require.Eventually(t, func() bool { return fx.flow.State() == StateSubmitting }, time.Second, time.Millisecond)

	_, err := fx.flow.Submit(context.Background(), validForm())
	assert.ErrorIs(t, err, ErrInProgress)
	_, err = fx.flow.Confirm(context.Background(), "tok-1", orders.PaymentAuthorized)
	assert.ErrorIs(t, err, ErrInProgress)

	close(fx.gateway.block)
	require.NoError(t, <-done)
}

func TestAuthorizedPaymentClearsCart(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	fx.fillCart(t)
	_, err := fx.flow.Submit(ctx, validForm())
	require.NoError(t, err)

	res, err := fx.flow.Confirm(ctx, "tok-1", orders.PaymentAuthorized)
	require.NoError(t, err)
	assert.Equal(t, "/checkout/success/42", res.Redirect)
	assert.Equal(t, "42", res.OrderID)
	assert.Zero(t, fx.ledger.Len())
	assert.Equal(t, StateConfirmed, fx.flow.State())

	require.Len(t, fx.orders.recorded, 1)
	assert.Equal(t, orders.StatusCompleted, fx.orders.recorded[0].Status)
	assert.Equal(t, int64(40000), fx.orders.recorded[0].Subtotal)

	require.Len(t, fx.events, 2)
	assert.Equal(t, events.EventOrdersUpdated, fx.events[0].EventType)
	assert.Equal(t, events.EventProductsUpdated, fx.events[1].EventType)

	o, err := fx.flow.Order(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, "42", o.ID)
}

func TestFailedPaymentKeepsCart(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	fx.fillCart(t)
	before := fx.ledger.Items()
	_, err := fx.flow.Submit(ctx, validForm())
	require.NoError(t, err)

	res, err := fx.flow.Confirm(ctx, "tok-1", orders.PaymentFailed)
	require.NoError(t, err)
	assert.Equal(t, RedirectError, res.Redirect)
	assert.Equal(t, before, fx.ledger.Items())
	assert.Equal(t, StateFailed, fx.flow.State())
	assert.Empty(t, fx.events)
	assert.Empty(t, fx.orders.recorded)

	// the shopper can try again
	_, err = fx.flow.Submit(ctx, validForm())
	require.NoError(t, err)
}

func TestConfirmRequestErrorKeepsCart(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	fx.fillCart(t)
	fx.gateway.confirmErr = errors.New("timeout")

	res, err := fx.flow.Confirm(ctx, "tok-x", orders.PaymentAuthorized)
	assert.ErrorIs(t, err, ErrConfirmFailed)
	assert.Equal(t, RedirectError, res.Redirect)
	assert.Equal(t, 2, fx.ledger.Len())
}

func TestConfirmRejectsUnknownStatus(t *testing.T) {
	fx := newFixture(t)
	_, err := fx.flow.Confirm(context.Background(), "tok", orders.PaymentStatus("MAYBE"))
	assert.ErrorIs(t, err, ErrBadStatus)
	assert.Empty(t, fx.gateway.confirms)
}

func TestOrderNotFound(t *testing.T) {
	fx := newFixture(t)
	_, err := fx.flow.Order(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}
