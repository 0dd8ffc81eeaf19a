package api

import (
	"time"

	"github.com/ariefcatur/pandagamers-storefront/internal/cart"
)

type Product struct {
	ID          cart.FlexString `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       cart.FlexInt    `json:"price"`
	Stock       int             `json:"stock"`
	Image       string          `json:"image"`
	Category    string          `json:"category"`
}

// CartProduct is the subset the cart keeps.
func (p Product) CartProduct() cart.Product {
	return cart.Product{ID: string(p.ID), Name: p.Name, Price: int64(p.Price), Image: p.Image}
}

// Offer is a percentage discount on one product with a snapshot of the
// product taken when the offer was saved.
type Offer struct {
	ID                 cart.FlexString `json:"id"`
	ProductID          cart.FlexString `json:"productId"`
	Discount           int             `json:"discount"`
	Price              cart.FlexInt    `json:"price"`
	OriginalPrice      cart.FlexInt    `json:"originalPrice"`
	ProductName        string          `json:"productName"`
	ProductDescription string          `json:"productDescription,omitempty"`
	ProductCategory    string          `json:"productCategory,omitempty"`
	ProductImage       string          `json:"productImage,omitempty"`
	ProductStock       int             `json:"productStock,omitempty"`
}

type User struct {
	ID       cart.FlexString `json:"id"`
	Name     string          `json:"name,omitempty"`
	Username string          `json:"username"`
	Email    string          `json:"email"`
	Password string          `json:"password,omitempty"`
	Role     string          `json:"role"`
}

type Review struct {
	ID        cart.FlexString `json:"id"`
	ProductID cart.FlexString `json:"productId"`
	Name      string          `json:"name"`
	Email     string          `json:"email,omitempty"`
	Rating    int             `json:"rating"`
	Comment   string          `json:"comment"`
	Date      time.Time       `json:"date"`
}

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type Registration struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// PaymentRedirect is where the shopper is sent to pay.
type PaymentRedirect struct {
	URL   string `json:"url"`
	Token string `json:"token"`
}

type PaymentConfirmation struct {
	Status   string          `json:"status"`
	OrderID  cart.FlexString `json:"orderId"`
	Redirect string          `json:"redirect"`
}
