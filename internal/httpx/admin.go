package httpx

import (
	"net/http"
	"strings"

	"github.com/ariefcatur/pandagamers-storefront/internal/api"
	"github.com/ariefcatur/pandagamers-storefront/internal/cart"
	"github.com/ariefcatur/pandagamers-storefront/internal/datastore"
	"github.com/ariefcatur/pandagamers-storefront/internal/orders"
	"github.com/ariefcatur/pandagamers-storefront/internal/session"
	"github.com/go-chi/chi/v5"
)

// AdminHandler serves /admin/*; every route needs an admin identity.
type AdminHandler struct {
	Session *session.Holder
	Data    *datastore.Service
}

type stockReq struct {
	Stock cart.FlexInt `json:"stock"`
}

type offerReq struct {
	ProductID cart.FlexString `json:"productId"`
	Discount  cart.FlexInt    `json:"discount"`
}

type userReq struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	Role            string `json:"role"`
}

type tabReq struct {
	Tab string `json:"tab"`
}

func (h *AdminHandler) Register(r chi.Router) {
	r.Route("/admin", func(r chi.Router) {
		r.Use(h.requireAdmin)

		r.Get("/products", h.listProducts)
		r.Post("/products", h.createProduct)
		r.Put("/products/{id}", h.updateProduct)
		r.Delete("/products/{id}", h.deleteProduct)
		r.Put("/products/{id}/stock", h.updateStock)

		r.Get("/offers", h.listOffers)
		r.Post("/offers", h.createOffer)
		r.Put("/offers/{id}", h.updateOffer)
		r.Delete("/offers/{id}", h.deleteOffer)

		r.Get("/users", h.listUsers)
		r.Post("/users", h.createUser)
		r.Delete("/users/{id}", h.deleteUser)

		r.Get("/orders", h.listOrders)

		r.Get("/reviews", h.listReviews)
		r.Delete("/reviews/{id}", h.deleteReview)

		r.Get("/tab", h.getTab)
		r.Put("/tab", h.setTab)
	})
}

func (h *AdminHandler) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := h.Session.Current()
		if id == nil {
			writeError(w, errSignedOut)
			return
		}
		if !id.IsAdmin() {
			writeError(w, errForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ---- products ----

func (h *AdminHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	ps, err := h.Data.Products(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ps)
}

func (h *AdminHandler) createProduct(w http.ResponseWriter, r *http.Request) {
	var p api.Product
	if err := decode(r, &p); err != nil {
		writeError(w, err)
		return
	}
	out, err := h.Data.CreateProduct(r.Context(), p)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

func (h *AdminHandler) updateProduct(w http.ResponseWriter, r *http.Request) {
	var p api.Product
	if err := decode(r, &p); err != nil {
		writeError(w, err)
		return
	}
	out, err := h.Data.UpdateProduct(r.Context(), chi.URLParam(r, "id"), p)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *AdminHandler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.Data.DeleteProduct(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) updateStock(w http.ResponseWriter, r *http.Request) {
	var req stockReq
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	out, err := h.Data.UpdateStock(r.Context(), chi.URLParam(r, "id"), int(req.Stock))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// ---- offers ----

func (h *AdminHandler) listOffers(w http.ResponseWriter, r *http.Request) {
	list, err := h.Data.Offers(r.Context(), 0)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *AdminHandler) createOffer(w http.ResponseWriter, r *http.Request) {
	var req offerReq
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	out, err := h.Data.CreateOffer(r.Context(), string(req.ProductID), int(req.Discount))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

func (h *AdminHandler) updateOffer(w http.ResponseWriter, r *http.Request) {
	var req offerReq
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	out, err := h.Data.UpdateOffer(r.Context(), chi.URLParam(r, "id"), string(req.ProductID), int(req.Discount))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *AdminHandler) deleteOffer(w http.ResponseWriter, r *http.Request) {
	if err := h.Data.DeleteOffer(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---- users ----

func (h *AdminHandler) listUsers(w http.ResponseWriter, r *http.Request) {
	us, err := h.Data.Users(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, us)
}

func (h *AdminHandler) createUser(w http.ResponseWriter, r *http.Request) {
	var req userReq
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.ConfirmPassword != "" && req.Password != req.ConfirmPassword {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error": "invalid form", "fields": map[string]string{"confirmPassword": "passwords do not match"},
		})
		return
	}
	role := session.RoleUser
	if strings.EqualFold(req.Role, session.RoleAdmin) {
		role = session.RoleAdmin
	}
	out, err := h.Data.CreateUser(r.Context(), api.User{Username: req.Username, Email: req.Email, Password: req.Password, Role: role})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

func (h *AdminHandler) deleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.Data.DeleteUser(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---- orders & reviews ----

func (h *AdminHandler) listOrders(w http.ResponseWriter, r *http.Request) {
	list, err := h.Data.Orders(r.Context(), "")
	if err != nil {
		writeError(w, err)
		return
	}
	if list == nil {
		list = []orders.Order{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *AdminHandler) listReviews(w http.ResponseWriter, r *http.Request) {
	rs, err := h.Data.Reviews(r.Context(), "")
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rs)
}

func (h *AdminHandler) deleteReview(w http.ResponseWriter, r *http.Request) {
	if err := h.Data.DeleteReview(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---- ui prefs ----

func (h *AdminHandler) getTab(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, tabReq{Tab: h.Data.Local.AdminTab(r.Context())})
}

func (h *AdminHandler) setTab(w http.ResponseWriter, r *http.Request) {
	var req tabReq
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := h.Data.Local.SetAdminTab(r.Context(), req.Tab); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}
