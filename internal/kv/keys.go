package kv

import "fmt"

const (
	KeyIdentity  = "auth_user"
	KeyToken     = "token"
	KeyCartGuest = "cart_guest"
	keyCart      = "cart_%s"

	KeyProducts = "dataStore_products"
	KeyUsers    = "dataStore_users"
	KeyOrders   = "dataStore_orders"
	KeyOffers   = "dataStore_ofertas"
	KeyReviews  = "reviews"
	KeyAdminTab = "admin_active_tab"
)

// CartKey scopes a cart to an identity; an empty id is the guest cart.
func CartKey(identityID string) string {
	if identityID == "" {
		return KeyCartGuest
	}
	return fmt.Sprintf(keyCart, identityID)
}
