package orders

import (
	"time"

	"github.com/ariefcatur/pandagamers-storefront/internal/cart"
	"github.com/ariefcatur/pandagamers-storefront/internal/pricing"
)

type ShippingInfo struct {
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	Address        string `json:"address"`
	City           string `json:"city"`
	Region         string `json:"region"`
	PostalCode     string `json:"postalCode"`
	DeliveryOption string `json:"deliveryOption"`
}

// Item carries both the original and the discounted unit price.
type Item struct {
	ProductID        string `json:"productId"`
	Quantity         int    `json:"quantity"`
	Name             string `json:"name"`
	Price            int64  `json:"price"`
	OriginalPrice    int64  `json:"precioOriginal"`
	Image            string `json:"image,omitempty"`
	DiscountEligible bool   `json:"tieneDescuentoDuoc"`
}

// Request is posted to the payment-initiation endpoint.
type Request struct {
	Items          []Item       `json:"items"`
	ShippingInfo   ShippingInfo `json:"shippingInfo"`
	DeliveryOption string       `json:"deliveryOption"`
	Subtotal       int64        `json:"subtotal"`
	Discount       int64        `json:"descuentoDuoc"`
	Tax            int64        `json:"iva"`
	ShippingCost   int64        `json:"shippingCost"`
	Total          int64        `json:"total"`
}

type Order struct {
	ID             string       `json:"id"`
	UserID         string       `json:"userId"`
	Items          []Item       `json:"items"`
	ShippingInfo   ShippingInfo `json:"shippingInfo"`
	DeliveryOption string       `json:"deliveryOption"`
	Subtotal       int64        `json:"subtotal"`
	Discount       int64        `json:"descuentoDuoc"`
	Tax            int64        `json:"iva"`
	ShippingCost   int64        `json:"shippingCost"`
	Total          int64        `json:"total"`
	Status         Status       `json:"status"`
	CreatedAt      time.Time    `json:"createdAt"`
}

// NewRequest snapshots items and the quote computed for them.
func NewRequest(items []cart.LineItem, q pricing.Quote, ship ShippingInfo) Request {
	ship.DeliveryOption = string(q.Delivery)
	out := Request{
		Items:          make([]Item, 0, len(items)),
		ShippingInfo:   ship,
		DeliveryOption: string(q.Delivery),
		Subtotal:       q.Subtotal,
		Discount:       q.Discount,
		Tax:            q.Tax,
		ShippingCost:   q.Shipping,
		Total:          q.Total,
	}
	for i, it := range items {
		price := it.UnitPrice
		if i < len(q.Lines) {
			price = q.Lines[i].DiscountedUnitPrice
		}
		out.Items = append(out.Items, Item{
			ProductID:        it.ProductID,
			Quantity:         it.Quantity,
			Name:             it.Name,
			Price:            price,
			OriginalPrice:    it.UnitPrice,
			Image:            it.Image,
			DiscountEligible: q.DiscountEligible,
		})
	}
	return out
}

// FromRequest builds the locally recorded copy of a submitted order.
func FromRequest(id, userID string, r Request, status Status, at time.Time) Order {
	return Order{
		ID:             id,
		UserID:         userID,
		Items:          append([]Item(nil), r.Items...),
		ShippingInfo:   r.ShippingInfo,
		DeliveryOption: r.DeliveryOption,
		Subtotal:       r.Subtotal,
		Discount:       r.Discount,
		Tax:            r.Tax,
		ShippingCost:   r.ShippingCost,
		Total:          r.Total,
		Status:         status,
		CreatedAt:      at,
	}
}
