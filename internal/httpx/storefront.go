package httpx

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/ariefcatur/pandagamers-storefront/internal/api"
	"github.com/ariefcatur/pandagamers-storefront/internal/cart"
	"github.com/ariefcatur/pandagamers-storefront/internal/checkout"
	"github.com/ariefcatur/pandagamers-storefront/internal/datastore"
	"github.com/ariefcatur/pandagamers-storefront/internal/logx"
	"github.com/ariefcatur/pandagamers-storefront/internal/orders"
	"github.com/ariefcatur/pandagamers-storefront/internal/pricing"
	"github.com/ariefcatur/pandagamers-storefront/internal/session"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Accounts is the auth side of the API client.
type Accounts interface {
	Login(ctx context.Context, username, password string) (session.AuthResult, error)
	Register(ctx context.Context, r api.Registration) error
}

// StorefrontHandler serves the shopper-facing routes of one profile.
type StorefrontHandler struct {
	Session  *session.Holder
	Cart     *cart.Ledger
	Accounts Accounts
	Data     *datastore.Service
	Checkout *checkout.Flow
	Log      *zap.Logger
}

type loginReq struct {
	Username string `json:"username"` // username or email
	Password string `json:"password"`
}

type registerReq struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

type addItemReq struct {
	ProductID cart.FlexString `json:"productId"`
	Quantity  cart.FlexInt    `json:"quantity"`
}

type setQuantityReq struct {
	Quantity cart.FlexInt `json:"quantity"`
}

type confirmReq struct {
	Token  string               `json:"token"`
	Status orders.PaymentStatus `json:"status"`
}

type reviewReq struct {
	Name    string       `json:"name"`
	Email   string       `json:"email"`
	Rating  cart.FlexInt `json:"rating"`
	Comment string       `json:"comment"`
}

type cartView struct {
	Key   string          `json:"key"`
	Items []cart.LineItem `json:"items"`
	Count int             `json:"count"`
	Quote pricing.Quote   `json:"quote"`
}

func (h *StorefrontHandler) Register(r chi.Router) {
	r.Get("/session", h.getSession)
	r.Post("/session/login", h.login)
	r.Post("/session/register", h.register)
	r.Post("/session/logout", h.logout)

	r.Get("/cart", h.getCart)
	r.Post("/cart/items", h.addItem)
	r.Put("/cart/items/{id}", h.setQuantity)
	r.Delete("/cart/items/{id}", h.removeUnits)
	r.Delete("/cart/items/{id}/all", h.removeAll)
	r.Delete("/cart", h.clearCart)

	r.Post("/checkout", h.submit)
	r.Post("/checkout/confirm", h.confirm)
	r.Get("/orders", h.listOrders)
	r.Get("/orders/{id}", h.getOrder)

	r.Get("/products", h.listProducts)
	r.Get("/products/{id}", h.getProduct)
	r.Get("/products/{id}/reviews", h.listReviews)
	r.Post("/products/{id}/reviews", h.createReview)
	r.Get("/offers", h.listOffers)
}

func (h *StorefrontHandler) log() *zap.Logger { return logx.OrNop(h.Log) }

// ---- session ----

func (h *StorefrontHandler) getSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"identity": h.Session.Current()})
}

// login asks the API first. When the API cannot be reached at all the
// local dataset's users are tried instead.
func (h *StorefrontHandler) login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	ctx := r.Context()

	res, err := h.Accounts.Login(ctx, req.Username, req.Password)
	if err == nil && res.Token != "" {
		if err := h.Session.LoginResult(ctx, res); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"identity": h.Session.Current()})
		return
	}

	var apiErr *api.Error
	if errors.As(err, &apiErr) || err == nil {
		writeError(w, datastore.ErrBadCredential)
		return
	}
	h.log().Warn("login api unavailable, using local users", zap.Error(err))
	u, lerr := h.Data.Local.Authenticate(ctx, req.Username, req.Password)
	if lerr != nil {
		writeError(w, lerr)
		return
	}
	if err := h.Session.Login(ctx, "", session.Identity{Username: u.Username, Email: u.Email, Role: u.Role}); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"identity": h.Session.Current()})
}

func (h *StorefrontHandler) register(w http.ResponseWriter, r *http.Request) {
	var req registerReq
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	fields := map[string]string{}
	if strings.TrimSpace(req.Username) == "" {
		fields["username"] = "name is required"
	}
	if req.Password != req.ConfirmPassword {
		fields["confirmPassword"] = "passwords do not match"
	}
	if len(req.Password) < 6 {
		fields["password"] = "password must have at least 6 characters"
	}
	if !checkout.ValidEmail(req.Email) {
		fields["email"] = "email is not valid"
	}
	if len(fields) > 0 {
		writeError(w, &checkout.ValidationError{Fields: fields})
		return
	}

	reg := api.Registration{Username: strings.TrimSpace(req.Username), Email: req.Email, Password: req.Password}
	if err := h.Accounts.Register(r.Context(), reg); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"username": reg.Username})
}

func (h *StorefrontHandler) logout(w http.ResponseWriter, r *http.Request) {
	if err := h.Session.Logout(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---- cart ----

func (h *StorefrontHandler) cartView(r *http.Request) cartView {
	items := h.Cart.Items()
	if items == nil {
		items = []cart.LineItem{}
	}
	d := pricing.ParseDelivery(r.URL.Query().Get("delivery"))
	return cartView{
		Key:   h.Cart.Key(),
		Items: items,
		Count: h.Cart.Len(),
		Quote: pricing.NewQuote(items, h.Session.DiscountEligible(), d),
	}
}

func (h *StorefrontHandler) getCart(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.cartView(r))
}

func (h *StorefrontHandler) addItem(w http.ResponseWriter, r *http.Request) {
	var req addItemReq
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	p, err := h.Data.Product(r.Context(), string(req.ProductID))
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.Cart.Add(r.Context(), p.CartProduct(), int(req.Quantity)); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.cartView(r))
}

func (h *StorefrontHandler) setQuantity(w http.ResponseWriter, r *http.Request) {
	var req setQuantityReq
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := h.Cart.SetQuantity(r.Context(), chi.URLParam(r, "id"), int(req.Quantity)); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.cartView(r))
}

func (h *StorefrontHandler) removeUnits(w http.ResponseWriter, r *http.Request) {
	if err := h.Cart.RemoveUnits(r.Context(), chi.URLParam(r, "id"), queryInt(r, "units", 1)); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.cartView(r))
}

func (h *StorefrontHandler) removeAll(w http.ResponseWriter, r *http.Request) {
	if err := h.Cart.RemoveAll(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.cartView(r))
}

func (h *StorefrontHandler) clearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.Cart.Clear(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.cartView(r))
}

// ---- checkout ----

func (h *StorefrontHandler) submit(w http.ResponseWriter, r *http.Request) {
	var form checkout.Form
	if err := decode(r, &form); err != nil {
		writeError(w, err)
		return
	}
	redir, err := h.Checkout.Submit(r.Context(), form)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, redir)
}

func (h *StorefrontHandler) confirm(w http.ResponseWriter, r *http.Request) {
	var req confirmReq
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	res, err := h.Checkout.Confirm(r.Context(), req.Token, req.Status)
	if errors.Is(err, checkout.ErrConfirmFailed) {
		// the shopper still gets somewhere to go
		writeJSON(w, http.StatusBadGateway, map[string]any{"error": err.Error(), "redirect": res.Redirect})
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *StorefrontHandler) listOrders(w http.ResponseWriter, r *http.Request) {
	id := h.Session.Current()
	if id == nil {
		writeError(w, errSignedOut)
		return
	}
	list, err := h.Data.Orders(r.Context(), id.ID())
	if err != nil {
		writeError(w, err)
		return
	}
	if list == nil {
		list = []orders.Order{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *StorefrontHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.Checkout.Order(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

// ---- catalog ----

func (h *StorefrontHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	ps, err := h.Data.Products(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	q := r.URL.Query()
	ps = filterProducts(ps, q.Get("q"), q.Get("category"), int64(queryInt(r, "minPrice", 0)), int64(queryInt(r, "maxPrice", 0)))
	writeJSON(w, http.StatusOK, ps)
}

func filterProducts(ps []api.Product, query, category string, lo, hi int64) []api.Product {
	query = strings.ToLower(strings.TrimSpace(query))
	out := make([]api.Product, 0, len(ps))
	for _, p := range ps {
		if category != "" && p.Category != category {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(p.Name), query) &&
			!strings.Contains(strings.ToLower(p.Description), query) &&
			!strings.Contains(strings.ToLower(p.Category), query) {
			continue
		}
		if int64(p.Price) < lo || (hi > 0 && int64(p.Price) > hi) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func (h *StorefrontHandler) getProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.Data.Product(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *StorefrontHandler) listReviews(w http.ResponseWriter, r *http.Request) {
	rs, err := h.Data.Reviews(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if rs == nil {
		rs = []api.Review{}
	}
	writeJSON(w, http.StatusOK, rs)
}

func (h *StorefrontHandler) createReview(w http.ResponseWriter, r *http.Request) {
	var req reviewReq
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	rv, err := h.Data.CreateReview(r.Context(), api.Review{
		ProductID: cart.FlexString(chi.URLParam(r, "id")),
		Name:      req.Name,
		Email:     req.Email,
		Rating:    int(req.Rating),
		Comment:   req.Comment,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rv)
}

func (h *StorefrontHandler) listOffers(w http.ResponseWriter, r *http.Request) {
	list, err := h.Data.Offers(r.Context(), queryInt(r, "min", 0))
	if err != nil {
		writeError(w, err)
		return
	}
	if list == nil {
		list = []api.Offer{}
	}
	writeJSON(w, http.StatusOK, list)
}
