// Package checkout turns the active cart into an order through the external
// payment step.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/ariefcatur/pandagamers-storefront/internal/api"
	"github.com/ariefcatur/pandagamers-storefront/internal/cart"
	"github.com/ariefcatur/pandagamers-storefront/internal/events"
	"github.com/ariefcatur/pandagamers-storefront/internal/logx"
	"github.com/ariefcatur/pandagamers-storefront/internal/orders"
	"github.com/ariefcatur/pandagamers-storefront/internal/pricing"
	"github.com/ariefcatur/pandagamers-storefront/internal/session"
	"go.uber.org/zap"
)

var (
	ErrEmptyCart     = errors.New("checkout: cart is empty")
	ErrInProgress    = errors.New("checkout: a request is already in progress")
	ErrSubmitFailed  = errors.New("checkout: could not start the payment, please try again")
	ErrConfirmFailed = errors.New("checkout: could not confirm the payment")
	ErrOrderNotFound = errors.New("checkout: order not found")
	ErrBadStatus     = errors.New("checkout: unknown payment status")
)

const (
	RedirectError   = "/checkout/error"
	redirectSuccess = "/checkout/success/"
)

type Gateway interface {
	InitiatePayment(ctx context.Context, r orders.Request) (api.PaymentRedirect, error)
	ConfirmPayment(ctx context.Context, token string, status orders.PaymentStatus) (api.PaymentConfirmation, error)
}

type OrderSource interface {
	Order(ctx context.Context, id string) (orders.Order, error)
}

// OrderRecorder keeps a local copy of confirmed orders.
type OrderRecorder interface {
	RecordOrder(ctx context.Context, o orders.Order) (orders.Order, error)
}

type Redirect struct {
	URL   string `json:"url"`
	Token string `json:"token"`
}

type Result struct {
	Status   orders.PaymentStatus `json:"status"`
	OrderID  string               `json:"orderId,omitempty"`
	Redirect string               `json:"redirect"`
}

type Flow struct {
	cart     *cart.Ledger
	session  *session.Holder
	gateway  Gateway
	orders   OrderSource
	recorder OrderRecorder
	notifier events.Notifier
	log      *zap.Logger
	now      func() time.Time

	mu      sync.Mutex
	state   State
	pending map[string]orders.Request // by payment token
}

type Deps struct {
	Cart     *cart.Ledger
	Session  *session.Holder
	Gateway  Gateway
	Orders   OrderSource
	Recorder OrderRecorder   // optional
	Notifier events.Notifier // optional
	Log      *zap.Logger
}

func New(d Deps) *Flow {
	return &Flow{
		cart:     d.Cart,
		session:  d.Session,
		gateway:  d.Gateway,
		orders:   d.Orders,
		recorder: d.Recorder,
		notifier: d.Notifier,
		log:      logx.OrNop(d.Log),
		now:      time.Now,
		state:    StateIdle,
		pending:  map[string]orders.Request{},
	}
}

func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *Flow) to(next State) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.toLocked(next)
}

func (f *Flow) toLocked(next State) {
	if !CanTransition(f.state, next) {
		f.log.Error("invalid checkout transition", zap.String("from", string(f.state)), zap.String("to", string(next)))
	}
	f.state = next
}

// begin moves into next unless a request is outstanding. A finished
// attempt (Confirmed or Failed) is settled back to Idle first.
func (f *Flow) begin(next State) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state.busy() {
		return ErrInProgress
	}
	if f.state == StateConfirmed || f.state == StateFailed {
		f.toLocked(StateIdle)
	}
	if !CanTransition(f.state, next) {
		return ErrInProgress
	}
	f.toLocked(next)
	return nil
}

// Submit validates the form, snapshots the cart and starts the external
// payment. Nothing is persisted when it fails.
func (f *Flow) Submit(ctx context.Context, form Form) (Redirect, error) {
	if err := f.begin(StateValidating); err != nil {
		return Redirect{}, err
	}
	if err := Validate(form); err != nil {
		f.to(StateIdle)
		return Redirect{}, err
	}
	items := f.cart.Items()
	if len(items) == 0 {
		f.to(StateIdle)
		return Redirect{}, ErrEmptyCart
	}

	f.to(StateSubmitting)
	q := pricing.NewQuote(items, f.session.DiscountEligible(), pricing.ParseDelivery(form.Shipping.DeliveryOption))
	req := orders.NewRequest(items, q, form.Shipping)

	resp, err := f.gateway.InitiatePayment(ctx, req)
	if err == nil && (resp.URL == "" || resp.Token == "") {
		err = errors.New("payment redirect without url or token")
	}
	if err != nil {
		f.log.Warn("payment initiation failed", zap.Int64("total", req.Total), zap.Error(err))
		f.to(StateIdle)
		return Redirect{}, fmt.Errorf("%w: %w", ErrSubmitFailed, err)
	}

	f.mu.Lock()
	f.pending[resp.Token] = req
	f.toLocked(StateAwaitingConfirmation)
	f.mu.Unlock()

	return Redirect{URL: resp.URL + "?token=" + url.QueryEscape(resp.Token), Token: resp.Token}, nil
}

// Confirm reports the outcome of the payment page. Only an authorized
// payment clears the cart; anything else leaves it untouched.
func (f *Flow) Confirm(ctx context.Context, token string, status orders.PaymentStatus) (Result, error) {
	if !status.Valid() {
		return Result{}, fmt.Errorf("%w: %q", ErrBadStatus, status)
	}
	if err := f.begin(StateConfirming); err != nil {
		return Result{}, err
	}

	conf, err := f.gateway.ConfirmPayment(ctx, token, status)
	if err != nil {
		f.log.Warn("payment confirmation failed", zap.Error(err))
		f.settle(token, StateFailed)
		return Result{Status: orders.PaymentFailed, Redirect: RedirectError}, fmt.Errorf("%w: %w", ErrConfirmFailed, err)
	}

	res := Result{Status: status, OrderID: string(conf.OrderID), Redirect: conf.Redirect}
	if status != orders.PaymentAuthorized {
		if res.Redirect == "" {
			res.Redirect = RedirectError
		}
		f.settle(token, StateFailed)
		return res, nil
	}
	if res.Redirect == "" {
		res.Redirect = redirectSuccess + res.OrderID
	}

	if err := f.cart.Clear(ctx); err != nil {
		f.log.Warn("clear cart after payment", zap.Error(err))
	}
	req, known := f.settle(token, StateConfirmed)
	userID := ""
	if id := f.session.Current(); id != nil {
		userID = id.ID()
	}
	if known && f.recorder != nil && res.OrderID != "" {
		o := orders.FromRequest(res.OrderID, userID, req, orders.OutcomeStatus(status), f.now().UTC())
		if _, err := f.recorder.RecordOrder(ctx, o); err != nil {
			f.log.Warn("record order locally", zap.String("order_id", res.OrderID), zap.Error(err))
		}
	}
	f.notify(ctx, res, userID, req)
	return res, nil
}

// settle ends the attempt and forgets its pending request.
func (f *Flow) settle(token string, final State) (orders.Request, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	req, ok := f.pending[token]
	delete(f.pending, token)
	f.toLocked(final)
	return req, ok
}

func (f *Flow) notify(ctx context.Context, res Result, userID string, req orders.Request) {
	if f.notifier == nil {
		return
	}
	op := events.OrdersUpdatedPayload{OrderID: res.OrderID, UserID: userID, Status: string(orders.StatusCompleted), Redirect: res.Redirect}
	if err := f.notifier.Notify(ctx, events.EventOrdersUpdated, res.OrderID, op); err != nil {
		f.log.Warn("notify orders updated", zap.Error(err))
	}
	ids := make([]string, 0, len(req.Items))
	for _, it := range req.Items {
		ids = append(ids, it.ProductID)
	}
	pp := events.ProductsUpdatedPayload{ProductIDs: ids, Reason: "PURCHASE"}
	if err := f.notifier.Notify(ctx, events.EventProductsUpdated, res.OrderID, pp); err != nil {
		f.log.Warn("notify products updated", zap.Error(err))
	}
}

// Order looks an order up for the success page.
func (f *Flow) Order(ctx context.Context, id string) (orders.Order, error) {
	o, err := f.orders.Order(ctx, id)
	if err != nil {
		return orders.Order{}, fmt.Errorf("%w: %s", ErrOrderNotFound, id)
	}
	return o, nil
}
