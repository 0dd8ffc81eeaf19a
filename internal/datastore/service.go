package datastore

import (
	"context"
	"fmt"

	"github.com/ariefcatur/pandagamers-storefront/internal/api"
	"github.com/ariefcatur/pandagamers-storefront/internal/events"
	"github.com/ariefcatur/pandagamers-storefront/internal/logx"
	"github.com/ariefcatur/pandagamers-storefront/internal/orders"
	"go.uber.org/zap"
)

// Remote is the part of the API client the service reads through.
type Remote interface {
	ListProducts(ctx context.Context) ([]api.Product, error)
	GetProduct(ctx context.Context, id string) (api.Product, error)
	CreateProduct(ctx context.Context, p api.Product) (api.Product, error)
	UpdateProduct(ctx context.Context, id string, p api.Product) (api.Product, error)
	DeleteProduct(ctx context.Context, id string) error
	UpdateStock(ctx context.Context, id string, stock int) (api.Product, error)

	ListOffers(ctx context.Context) ([]api.Offer, error)
	CreateOffer(ctx context.Context, o api.Offer) (api.Offer, error)
	UpdateOffer(ctx context.Context, id string, o api.Offer) (api.Offer, error)
	DeleteOffer(ctx context.Context, id string) error

	ListUsers(ctx context.Context) ([]api.User, error)
	CreateUser(ctx context.Context, u api.User) (api.User, error)
	DeleteUser(ctx context.Context, id string) error

	ListReviews(ctx context.Context) ([]api.Review, error)
	DeleteReview(ctx context.Context, id string) error

	ListOrders(ctx context.Context) ([]orders.Order, error)
	GetOrder(ctx context.Context, id string) (orders.Order, error)
}

// Service reads through the API and falls back to the local dataset when
// the API fails. Failed writes are applied locally instead.
type Service struct {
	Remote   Remote
	Local    *Store
	Notifier events.Notifier // optional
	Log      *zap.Logger
}

func (s *Service) log() *zap.Logger { return logx.OrNop(s.Log) }

func (s *Service) fallback(op string, err error) {
	s.log().Warn("api unavailable, using local data", zap.String("op", op), zap.Error(err))
}

func (s *Service) productsChanged(ctx context.Context, reason string, ids ...string) {
	if s.Notifier == nil {
		return
	}
	p := events.ProductsUpdatedPayload{ProductIDs: ids, Reason: reason}
	if err := s.Notifier.Notify(ctx, events.EventProductsUpdated, "", p); err != nil {
		s.log().Warn("notify products updated", zap.Error(err))
	}
}

// ---- products ----

func (s *Service) Products(ctx context.Context) ([]api.Product, error) {
	ps, err := s.Remote.ListProducts(ctx)
	if err == nil {
		return ps, nil
	}
	s.fallback("list products", err)
	return s.Local.Products(ctx)
}

func (s *Service) Product(ctx context.Context, id string) (api.Product, error) {
	p, err := s.Remote.GetProduct(ctx, id)
	if err == nil {
		return p, nil
	}
	s.fallback("get product", err)
	return s.Local.Product(ctx, id)
}

func (s *Service) CreateProduct(ctx context.Context, p api.Product) (api.Product, error) {
	out, err := s.Remote.CreateProduct(ctx, p)
	if err != nil {
		s.fallback("create product", err)
		return s.Local.CreateProduct(ctx, p)
	}
	s.productsChanged(ctx, "ADMIN_EDIT", string(out.ID))
	return out, nil
}

func (s *Service) UpdateProduct(ctx context.Context, id string, p api.Product) (api.Product, error) {
	out, err := s.Remote.UpdateProduct(ctx, id, p)
	if err != nil {
		s.fallback("update product", err)
		return s.Local.UpdateProduct(ctx, id, func(cur *api.Product) { *cur = p })
	}
	s.productsChanged(ctx, "ADMIN_EDIT", id)
	return out, nil
}

func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	if err := s.Remote.DeleteProduct(ctx, id); err != nil {
		s.fallback("delete product", err)
		return s.Local.DeleteProduct(ctx, id)
	}
	s.productsChanged(ctx, "ADMIN_EDIT", id)
	return nil
}

func (s *Service) UpdateStock(ctx context.Context, id string, stock int) (api.Product, error) {
	if stock < 0 {
		return api.Product{}, fmt.Errorf("stock must not be negative: %d", stock)
	}
	out, err := s.Remote.UpdateStock(ctx, id, stock)
	if err != nil {
		s.fallback("update stock", err)
		return s.Local.UpdateProduct(ctx, id, func(cur *api.Product) { cur.Stock = stock })
	}
	s.productsChanged(ctx, "STOCK", id)
	return out, nil
}

// RefreshProducts copies the API catalog into the local dataset.
func (s *Service) RefreshProducts(ctx context.Context) error {
	ps, err := s.Remote.ListProducts(ctx)
	if err != nil {
		return fmt.Errorf("refresh products: %w", err)
	}
	return s.Local.ReplaceProducts(ctx, ps)
}

// ---- offers ----

// Offers keeps offers of at least minPercent discount; 0 returns all.
func (s *Service) Offers(ctx context.Context, minPercent int) ([]api.Offer, error) {
	all, err := s.Remote.ListOffers(ctx)
	if err == nil {
		return FilterOffers(all, minPercent), nil
	}
	s.fallback("list offers", err)
	return s.Local.OffersAbove(ctx, minPercent)
}

func (s *Service) offerFor(ctx context.Context, productID string, discount int) (api.Offer, error) {
	if discount <= 0 || discount >= 100 {
		return api.Offer{}, fmt.Errorf("discount must be between 1 and 99: %d", discount)
	}
	p, err := s.Product(ctx, productID)
	if err != nil {
		return api.Offer{}, fmt.Errorf("product %s: %w", productID, err)
	}
	return NewOffer(p, discount), nil
}

func (s *Service) CreateOffer(ctx context.Context, productID string, discount int) (api.Offer, error) {
	o, err := s.offerFor(ctx, productID, discount)
	if err != nil {
		return api.Offer{}, err
	}
	out, err := s.Remote.CreateOffer(ctx, o)
	if err != nil {
		s.fallback("create offer", err)
		return s.Local.CreateOffer(ctx, o)
	}
	s.productsChanged(ctx, "OFFER", productID)
	return out, nil
}

func (s *Service) UpdateOffer(ctx context.Context, id, productID string, discount int) (api.Offer, error) {
	o, err := s.offerFor(ctx, productID, discount)
	if err != nil {
		return api.Offer{}, err
	}
	out, err := s.Remote.UpdateOffer(ctx, id, o)
	if err != nil {
		s.fallback("update offer", err)
		return s.Local.UpdateOffer(ctx, id, o)
	}
	s.productsChanged(ctx, "OFFER", productID)
	return out, nil
}

func (s *Service) DeleteOffer(ctx context.Context, id string) error {
	if err := s.Remote.DeleteOffer(ctx, id); err != nil {
		s.fallback("delete offer", err)
		return s.Local.DeleteOffer(ctx, id)
	}
	s.productsChanged(ctx, "OFFER")
	return nil
}

// ---- users ----

func (s *Service) Users(ctx context.Context) ([]api.User, error) {
	us, err := s.Remote.ListUsers(ctx)
	if err == nil {
		for i := range us {
			us[i].Password = ""
		}
		return us, nil
	}
	s.fallback("list users", err)
	return s.Local.Users(ctx)
}

func (s *Service) CreateUser(ctx context.Context, u api.User) (api.User, error) {
	out, err := s.Remote.CreateUser(ctx, u)
	if err != nil {
		s.fallback("create user", err)
		return s.Local.CreateUser(ctx, u)
	}
	out.Password = ""
	return out, nil
}

func (s *Service) DeleteUser(ctx context.Context, id string) error {
	if id == defaultAdminID {
		return ErrProtectedUser
	}
	if err := s.Remote.DeleteUser(ctx, id); err != nil {
		s.fallback("delete user", err)
		return s.Local.DeleteUser(ctx, id)
	}
	return nil
}

// ---- reviews ----

func (s *Service) Reviews(ctx context.Context, productID string) ([]api.Review, error) {
	all, err := s.Remote.ListReviews(ctx)
	if err != nil {
		s.fallback("list reviews", err)
		return s.Local.Reviews(ctx, productID)
	}
	if productID == "" {
		return all, nil
	}
	out := make([]api.Review, 0, len(all))
	for _, r := range all {
		if string(r.ProductID) == productID {
			out = append(out, r)
		}
	}
	return out, nil
}

// CreateReview only ever writes to the local dataset.
func (s *Service) CreateReview(ctx context.Context, r api.Review) (api.Review, error) {
	return s.Local.CreateReview(ctx, r)
}

func (s *Service) DeleteReview(ctx context.Context, id string) error {
	if err := s.Remote.DeleteReview(ctx, id); err != nil {
		s.fallback("delete review", err)
	}
	return s.Local.DeleteReview(ctx, id)
}

// ---- orders ----

// Orders lists the orders the API returns for the current token. The local
// fallback filters by userID; an empty userID returns every order.
func (s *Service) Orders(ctx context.Context, userID string) ([]orders.Order, error) {
	list, err := s.Remote.ListOrders(ctx)
	if err == nil {
		return list, nil
	}
	s.fallback("list orders", err)
	if userID == "" {
		return s.Local.Orders(ctx)
	}
	return s.Local.OrdersByUser(ctx, userID)
}

func (s *Service) Order(ctx context.Context, id string) (orders.Order, error) {
	o, err := s.Remote.GetOrder(ctx, id)
	if err == nil {
		return o, nil
	}
	s.fallback("get order", err)
	return s.Local.Order(ctx, id)
}

// RefreshOrders copies the API order history into the local dataset.
func (s *Service) RefreshOrders(ctx context.Context) error {
	list, err := s.Remote.ListOrders(ctx)
	if err != nil {
		return fmt.Errorf("refresh orders: %w", err)
	}
	return s.Local.ReplaceOrders(ctx, list)
}
