// Package pricing derives every displayed amount from cart lines. Amounts
// are whole pesos; rounding is half-up.
package pricing

import (
	"github.com/ariefcatur/pandagamers-storefront/internal/cart"
	"github.com/shopspring/decimal"
)

type Delivery string

const (
	DeliveryStandard Delivery = "standard"
	DeliveryExpress  Delivery = "express"
	DeliveryPickup   Delivery = "pickup"
)

var (
	DiscountRate = decimal.RequireFromString("0.20")
	TaxRate      = decimal.RequireFromString("0.19")

	shippingFees = map[Delivery]int64{
		DeliveryStandard: 2500,
		DeliveryExpress:  5000,
		DeliveryPickup:   0,
	}
)

// ParseDelivery falls back to standard for unknown options.
func ParseDelivery(s string) Delivery {
	d := Delivery(s)
	if _, ok := shippingFees[d]; ok {
		return d
	}
	return DeliveryStandard
}

func ShippingCost(d Delivery) int64 { return shippingFees[ParseDelivery(string(d))] }

type LineQuote struct {
	ProductID           string `json:"productId"`
	Quantity            int    `json:"quantity"`
	UnitPrice           int64  `json:"unitPrice"`
	DiscountedUnitPrice int64  `json:"discountedUnitPrice"`
	Subtotal            int64  `json:"subtotal"`
	// DiscountedTotal is this line's share of DiscountedSubtotal.
	DiscountedTotal int64 `json:"discountedTotal"`
}

type Quote struct {
	Lines              []LineQuote `json:"lines"`
	DiscountEligible   bool        `json:"discountEligible"`
	Delivery           Delivery    `json:"delivery"`
	Subtotal           int64       `json:"subtotal"`
	Discount           int64       `json:"discount"`
	DiscountedSubtotal int64       `json:"discountedSubtotal"`
	Tax                int64       `json:"tax"`
	Shipping           int64       `json:"shipping"`
	Total              int64       `json:"total"`
}

// NewQuote prices items. The aggregate discount, round(subtotal*0.20), is
// authoritative; per-line discounted totals are an allocation of it so the
// lines always add up to DiscountedSubtotal.
func NewQuote(items []cart.LineItem, eligible bool, delivery Delivery) Quote {
	q := Quote{
		Lines:            make([]LineQuote, 0, len(items)),
		DiscountEligible: eligible,
		Delivery:         ParseDelivery(string(delivery)),
	}
	for _, it := range items {
		lq := LineQuote{
			ProductID:           it.ProductID,
			Quantity:            it.Quantity,
			UnitPrice:           it.UnitPrice,
			DiscountedUnitPrice: it.UnitPrice,
			Subtotal:            it.LineTotal(),
		}
		if eligible {
			lq.DiscountedUnitPrice = DiscountedPrice(it.UnitPrice)
		}
		q.Subtotal += lq.Subtotal
		q.Lines = append(q.Lines, lq)
	}

	if eligible {
		q.Discount = round(decimal.NewFromInt(q.Subtotal).Mul(DiscountRate))
	}
	q.DiscountedSubtotal = q.Subtotal - q.Discount
	q.Tax = round(decimal.NewFromInt(q.DiscountedSubtotal).Mul(TaxRate))
	q.Shipping = ShippingCost(q.Delivery)
	q.Total = q.DiscountedSubtotal + q.Tax + q.Shipping

	allocate(q.Lines, q.Subtotal, q.Discount)
	return q
}

// DiscountedPrice is the per-unit display price for an eligible shopper.
func DiscountedPrice(unit int64) int64 {
	return round(decimal.NewFromInt(unit).Mul(decimal.NewFromInt(1).Sub(DiscountRate)))
}

// allocate spreads discount over lines proportionally to their subtotal;
// the last line takes the rounding remainder.
func allocate(lines []LineQuote, subtotal, discount int64) {
	remaining := discount
	for i := range lines {
		share := int64(0)
		switch {
		case i == len(lines)-1:
			share = remaining
		case subtotal > 0:
			share = round(decimal.NewFromInt(discount).Mul(decimal.NewFromInt(lines[i].Subtotal)).Div(decimal.NewFromInt(subtotal)))
			if share > remaining {
				share = remaining
			}
		}
		remaining -= share
		lines[i].DiscountedTotal = lines[i].Subtotal - share
	}
}

// OfferPrice applies an admin offer of percent (clamped to 0..100).
func OfferPrice(original int64, percent int) int64 {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	return round(decimal.NewFromInt(original).Mul(decimal.NewFromInt(int64(100 - percent))).Div(decimal.NewFromInt(100)))
}

func round(d decimal.Decimal) int64 { return d.Round(0).IntPart() }
