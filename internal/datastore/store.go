// Package datastore is the local fallback dataset used when the API is
// unreachable. Collections are JSON arrays under the dataStore_* keys of
// the shared kv store, so every tab sees the same data.
package datastore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ariefcatur/pandagamers-storefront/internal/api"
	"github.com/ariefcatur/pandagamers-storefront/internal/cart"
	"github.com/ariefcatur/pandagamers-storefront/internal/kv"
	"github.com/ariefcatur/pandagamers-storefront/internal/logx"
	"github.com/ariefcatur/pandagamers-storefront/internal/orders"
	"github.com/ariefcatur/pandagamers-storefront/internal/pricing"
	"github.com/ariefcatur/pandagamers-storefront/internal/session"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrNotFound      = errors.New("datastore: not found")
	ErrProtectedUser = errors.New("datastore: the default admin cannot be deleted")
	ErrBadCredential = errors.New("datastore: invalid credentials")
)

const (
	defaultAdminID = "0"
	defaultTab     = "products"
	anonymous      = "Anónimo"
	defaultRating  = 5
)

type Store struct {
	kv  kv.Store
	log *zap.Logger
	now func() time.Time

	mu sync.Mutex
}

// NewStore seeds the default catalog when no products are stored and makes
// sure the default admin exists.
func NewStore(ctx context.Context, store kv.Store, log *zap.Logger) (*Store, error) {
	s := &Store{kv: store, log: logx.OrNop(log), now: time.Now}

	s.mu.Lock()
	defer s.mu.Unlock()

	products, err := load[api.Product](ctx, s, kv.KeyProducts)
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		if err := save(ctx, s, kv.KeyProducts, defaultCatalog); err != nil {
			return nil, fmt.Errorf("seed catalog: %w", err)
		}
	}

	users, err := load[api.User](ctx, s, kv.KeyUsers)
	if err != nil {
		return nil, err
	}
	i := indexOf(users, func(u api.User) bool { return string(u.ID) == defaultAdminID })
	switch {
	case i < 0:
		users = append([]api.User{defaultAdmin()}, users...)
	case users[i].Role != session.RoleAdmin:
		users[i].Role = session.RoleAdmin
	default:
		return s, nil
	}
	if err := save(ctx, s, kv.KeyUsers, users); err != nil {
		return nil, fmt.Errorf("seed admin: %w", err)
	}
	return s, nil
}

// load treats a missing or unparseable collection as empty.
func load[T any](ctx context.Context, s *Store, key string) ([]T, error) {
	raw, err := s.kv.Get(ctx, key)
	if errors.Is(err, kv.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", key, err)
	}
	var out []T
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		s.log.Warn("discarding unreadable collection", zap.String("key", key), zap.Error(err))
		return nil, nil
	}
	return out, nil
}

func save[T any](ctx context.Context, s *Store, key string, items []T) error {
	if items == nil {
		items = []T{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.kv.Set(ctx, key, string(b))
}

func indexOf[T any](items []T, match func(T) bool) int {
	for i, it := range items {
		if match(it) {
			return i
		}
	}
	return -1
}

// nextID is one past the highest numeric id among items.
func nextID[T any](items []T, id func(T) string) string {
	top := 0
	for _, it := range items {
		if n, err := strconv.Atoi(id(it)); err == nil && n > top {
			top = n
		}
	}
	return strconv.Itoa(top + 1)
}

// ---- products ----

func (s *Store) Products(ctx context.Context) ([]api.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return load[api.Product](ctx, s, kv.KeyProducts)
}

func (s *Store) Product(ctx context.Context, id string) (api.Product, error) {
	ps, err := s.Products(ctx)
	if err != nil {
		return api.Product{}, err
	}
	if i := indexOf(ps, func(p api.Product) bool { return string(p.ID) == id }); i >= 0 {
		return ps[i], nil
	}
	return api.Product{}, ErrNotFound
}

func (s *Store) ProductsByCategory(ctx context.Context, category string) ([]api.Product, error) {
	return s.filterProducts(ctx, func(p api.Product) bool { return p.Category == category })
}

// SearchProducts matches name, description or category, ignoring case.
func (s *Store) SearchProducts(ctx context.Context, query string) ([]api.Product, error) {
	q := strings.ToLower(query)
	return s.filterProducts(ctx, func(p api.Product) bool {
		return strings.Contains(strings.ToLower(p.Name), q) ||
			strings.Contains(strings.ToLower(p.Description), q) ||
			strings.Contains(strings.ToLower(p.Category), q)
	})
}

// ProductsInRange keeps products priced within [lo, hi].
func (s *Store) ProductsInRange(ctx context.Context, lo, hi int64) ([]api.Product, error) {
	return s.filterProducts(ctx, func(p api.Product) bool {
		return int64(p.Price) >= lo && int64(p.Price) <= hi
	})
}

func (s *Store) filterProducts(ctx context.Context, keep func(api.Product) bool) ([]api.Product, error) {
	ps, err := s.Products(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]api.Product, 0, len(ps))
	for _, p := range ps {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *Store) CreateProduct(ctx context.Context, p api.Product) (api.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ps, err := load[api.Product](ctx, s, kv.KeyProducts)
	if err != nil {
		return api.Product{}, err
	}
	p.ID = cart.FlexString(nextID(ps, func(p api.Product) string { return string(p.ID) }))
	return p, save(ctx, s, kv.KeyProducts, append(ps, p))
}

func (s *Store) UpdateProduct(ctx context.Context, id string, fn func(*api.Product)) (api.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ps, err := load[api.Product](ctx, s, kv.KeyProducts)
	if err != nil {
		return api.Product{}, err
	}
	i := indexOf(ps, func(p api.Product) bool { return string(p.ID) == id })
	if i < 0 {
		return api.Product{}, ErrNotFound
	}
	fn(&ps[i])
	ps[i].ID = cart.FlexString(id)
	return ps[i], save(ctx, s, kv.KeyProducts, ps)
}

func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ps, err := load[api.Product](ctx, s, kv.KeyProducts)
	if err != nil {
		return err
	}
	i := indexOf(ps, func(p api.Product) bool { return string(p.ID) == id })
	if i < 0 {
		return ErrNotFound
	}
	return save(ctx, s, kv.KeyProducts, append(ps[:i], ps[i+1:]...))
}

// ReplaceProducts overwrites the local catalog with a fresh API copy.
func (s *Store) ReplaceProducts(ctx context.Context, ps []api.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return save(ctx, s, kv.KeyProducts, ps)
}

// ---- users ----

// Users never carry passwords.
func (s *Store) Users(ctx context.Context) ([]api.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	us, err := load[api.User](ctx, s, kv.KeyUsers)
	if err != nil {
		return nil, err
	}
	for i := range us {
		us[i].Password = ""
	}
	return us, nil
}

// CreateUser numbers users per role: admins and shoppers each count from 1.
func (s *Store) CreateUser(ctx context.Context, u api.User) (api.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	us, err := load[api.User](ctx, s, kv.KeyUsers)
	if err != nil {
		return api.User{}, err
	}
	if u.Role == "" {
		u.Role = session.RoleUser
	}
	isAdmin := u.Role == session.RoleAdmin
	same := make([]api.User, 0, len(us))
	for _, x := range us {
		if (x.Role == session.RoleAdmin) == isAdmin && string(x.ID) != defaultAdminID {
			same = append(same, x)
		}
	}
	u.ID = cart.FlexString(nextID(same, func(u api.User) string { return string(u.ID) }))
	if err := save(ctx, s, kv.KeyUsers, append(us, u)); err != nil {
		return api.User{}, err
	}
	u.Password = ""
	return u, nil
}

func (s *Store) DeleteUser(ctx context.Context, id string) error {
	if id == defaultAdminID {
		return ErrProtectedUser
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	us, err := load[api.User](ctx, s, kv.KeyUsers)
	if err != nil {
		return err
	}
	i := indexOf(us, func(u api.User) bool { return string(u.ID) == id })
	if i < 0 {
		return ErrNotFound
	}
	return save(ctx, s, kv.KeyUsers, append(us[:i], us[i+1:]...))
}

// Authenticate matches identifier against username or email.
func (s *Store) Authenticate(ctx context.Context, identifier, password string) (api.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	us, err := load[api.User](ctx, s, kv.KeyUsers)
	if err != nil {
		return api.User{}, err
	}
	for _, u := range us {
		if (u.Username == identifier || u.Email == identifier) && u.Password == password {
			u.Password = ""
			return u, nil
		}
	}
	return api.User{}, ErrBadCredential
}

// ---- orders ----

func (s *Store) Orders(ctx context.Context) ([]orders.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return load[orders.Order](ctx, s, kv.KeyOrders)
}

func (s *Store) OrdersByUser(ctx context.Context, userID string) ([]orders.Order, error) {
	all, err := s.Orders(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]orders.Order, 0, len(all))
	for _, o := range all {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (s *Store) Order(ctx context.Context, id string) (orders.Order, error) {
	all, err := s.Orders(ctx)
	if err != nil {
		return orders.Order{}, err
	}
	if i := indexOf(all, func(o orders.Order) bool { return o.ID == id }); i >= 0 {
		return all[i], nil
	}
	return orders.Order{}, ErrNotFound
}

// RecordOrder stores o, assigning an id and creation time when missing.
// An order with a known id replaces the stored copy.
func (s *Store) RecordOrder(ctx context.Context, o orders.Order) (orders.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all, err := load[orders.Order](ctx, s, kv.KeyOrders)
	if err != nil {
		return orders.Order{}, err
	}
	if o.ID == "" {
		o.ID = nextID(all, func(o orders.Order) string { return o.ID })
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = s.now().UTC()
	}
	if o.Status == "" {
		o.Status = orders.StatusPending
	}
	if i := indexOf(all, func(x orders.Order) bool { return x.ID == o.ID }); i >= 0 {
		all[i] = o
	} else {
		all = append(all, o)
	}
	return o, save(ctx, s, kv.KeyOrders, all)
}

func (s *Store) UpdateOrderStatus(ctx context.Context, id string, to orders.Status) (orders.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all, err := load[orders.Order](ctx, s, kv.KeyOrders)
	if err != nil {
		return orders.Order{}, err
	}
	i := indexOf(all, func(o orders.Order) bool { return o.ID == id })
	if i < 0 {
		return orders.Order{}, ErrNotFound
	}
	if !orders.CanTransition(all[i].Status, to) {
		return orders.Order{}, fmt.Errorf("invalid status transition %s -> %s", all[i].Status, to)
	}
	all[i].Status = to
	return all[i], save(ctx, s, kv.KeyOrders, all)
}

func (s *Store) ReplaceOrders(ctx context.Context, list []orders.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sort.SliceStable(list, func(i, j int) bool { return list[i].CreatedAt.Before(list[j].CreatedAt) })
	return save(ctx, s, kv.KeyOrders, list)
}

// ---- offers ----

func (s *Store) Offers(ctx context.Context) ([]api.Offer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return load[api.Offer](ctx, s, kv.KeyOffers)
}

// OffersAbove keeps offers whose discount is at least minPercent.
func (s *Store) OffersAbove(ctx context.Context, minPercent int) ([]api.Offer, error) {
	all, err := s.Offers(ctx)
	if err != nil {
		return nil, err
	}
	return FilterOffers(all, minPercent), nil
}

func FilterOffers(all []api.Offer, minPercent int) []api.Offer {
	out := make([]api.Offer, 0, len(all))
	for _, o := range all {
		if o.Discount >= minPercent {
			out = append(out, o)
		}
	}
	return out
}

// NewOffer prices a discount on p and snapshots the product fields.
func NewOffer(p api.Product, discount int) api.Offer {
	return api.Offer{
		ProductID:          p.ID,
		Discount:           discount,
		Price:              cart.FlexInt(pricing.OfferPrice(int64(p.Price), discount)),
		OriginalPrice:      p.Price,
		ProductName:        p.Name,
		ProductDescription: p.Description,
		ProductCategory:    p.Category,
		ProductImage:       p.Image,
		ProductStock:       p.Stock,
	}
}

func (s *Store) CreateOffer(ctx context.Context, o api.Offer) (api.Offer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all, err := load[api.Offer](ctx, s, kv.KeyOffers)
	if err != nil {
		return api.Offer{}, err
	}
	o.ID = cart.FlexString(nextID(all, func(o api.Offer) string { return string(o.ID) }))
	return o, save(ctx, s, kv.KeyOffers, append(all, o))
}

func (s *Store) UpdateOffer(ctx context.Context, id string, o api.Offer) (api.Offer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all, err := load[api.Offer](ctx, s, kv.KeyOffers)
	if err != nil {
		return api.Offer{}, err
	}
	i := indexOf(all, func(o api.Offer) bool { return string(o.ID) == id })
	if i < 0 {
		return api.Offer{}, ErrNotFound
	}
	o.ID = cart.FlexString(id)
	all[i] = o
	return o, save(ctx, s, kv.KeyOffers, all)
}

func (s *Store) DeleteOffer(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	all, err := load[api.Offer](ctx, s, kv.KeyOffers)
	if err != nil {
		return err
	}
	i := indexOf(all, func(o api.Offer) bool { return string(o.ID) == id })
	if i < 0 {
		return ErrNotFound
	}
	return save(ctx, s, kv.KeyOffers, append(all[:i], all[i+1:]...))
}

// ---- reviews ----

// Reviews returns every review when productID is empty.
func (s *Store) Reviews(ctx context.Context, productID string) ([]api.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all, err := load[api.Review](ctx, s, kv.KeyReviews)
	if err != nil || productID == "" {
		return all, err
	}
	out := make([]api.Review, 0, len(all))
	for _, r := range all {
		if string(r.ProductID) == productID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *Store) CreateReview(ctx context.Context, r api.Review) (api.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all, err := load[api.Review](ctx, s, kv.KeyReviews)
	if err != nil {
		return api.Review{}, err
	}
	r.ID = cart.FlexString(uuid.NewString())
	if strings.TrimSpace(r.Name) == "" {
		r.Name = anonymous
	}
	if r.Rating <= 0 {
		r.Rating = defaultRating
	}
	r.Date = s.now().UTC()
	return r, save(ctx, s, kv.KeyReviews, append(all, r))
}

// DeleteReview is a no-op for unknown ids.
func (s *Store) DeleteReview(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	all, err := load[api.Review](ctx, s, kv.KeyReviews)
	if err != nil {
		return err
	}
	out := all[:0]
	for _, r := range all {
		if string(r.ID) != id {
			out = append(out, r)
		}
	}
	return save(ctx, s, kv.KeyReviews, out)
}

// ---- ui prefs ----

func (s *Store) AdminTab(ctx context.Context) string {
	v, err := s.kv.Get(ctx, kv.KeyAdminTab)
	if err != nil || v == "" {
		return defaultTab
	}
	return v
}

func (s *Store) SetAdminTab(ctx context.Context, tab string) error {
	return s.kv.Set(ctx, kv.KeyAdminTab, tab)
}
