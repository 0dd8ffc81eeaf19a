package pricing

import (
	"testing"

	"github.com/ariefcatur/pandagamers-storefront/internal/cart"
	"github.com/stretchr/testify/assert"
)

func line(id string, price int64, qty int) cart.LineItem {
	return cart.LineItem{ProductID: id, UnitPrice: price, Quantity: qty}
}

func TestQuoteIneligible(t *testing.T) {
	q := NewQuote([]cart.LineItem{line("a", 40, 1)}, false, DeliveryStandard)
	assert.Equal(t, int64(40), q.Subtotal)
	assert.Zero(t, q.Discount)
	assert.Equal(t, int64(40), q.DiscountedSubtotal)
	assert.Equal(t, int64(8), q.Tax)
	assert.Equal(t, int64(2500), q.Shipping)
	assert.Equal(t, int64(2548), q.Total)
}

func TestQuoteEligible(t *testing.T) {
	q := NewQuote([]cart.LineItem{line("a", 40, 1)}, true, DeliveryStandard)
	assert.Equal(t, int64(8), q.Discount)
	assert.Equal(t, int64(32), q.DiscountedSubtotal)
	assert.Equal(t, int64(6), q.Tax, "tax is computed after the discount")
	assert.Equal(t, int64(32+6+2500), q.Total)
}

func TestQuoteEndToEndCart(t *testing.T) {
	items := []cart.LineItem{line("A", 10000, 2), line("B", 20000, 1)}

	plain := NewQuote(items, false, DeliveryStandard)
	assert.Equal(t, int64(40000), plain.Subtotal)
	assert.Equal(t, int64(7600), plain.Tax)
	assert.Equal(t, int64(50100), plain.Total)

	duoc := NewQuote(items, true, DeliveryStandard)
	assert.Equal(t, int64(40000), duoc.Subtotal, "subtotal always uses undiscounted prices")
	assert.Equal(t, int64(8000), duoc.Discount)
	assert.Equal(t, int64(6080), duoc.Tax)
	assert.Equal(t, int64(32000+6080+2500), duoc.Total)
	assert.Equal(t, int64(8000), duoc.Lines[0].DiscountedUnitPrice)
	assert.Equal(t, int64(16000), duoc.Lines[0].DiscountedTotal)
	assert.Equal(t, int64(16000), duoc.Lines[1].DiscountedTotal)
}

func TestShippingTiers(t *testing.T) {
	items := []cart.LineItem{line("a", 1000, 1)}
	assert.Equal(t, int64(2500), NewQuote(items, false, DeliveryStandard).Shipping)
	assert.Equal(t, int64(5000), NewQuote(items, false, DeliveryExpress).Shipping)
	assert.Equal(t, int64(0), NewQuote(items, false, DeliveryPickup).Shipping)
	assert.Equal(t, int64(2500), NewQuote(items, false, "drone").Shipping)

	many := []cart.LineItem{line("a", 1000, 50)}
	assert.Equal(t, int64(2500), NewQuote(many, false, DeliveryStandard).Shipping, "fee does not scale with cart size")
}

func TestLineAllocationMatchesAggregate(t *testing.T) {
	items := []cart.LineItem{line("a", 3, 1), line("b", 3, 1), line("c", 3, 1)}
	q := NewQuote(items, true, DeliveryPickup)

	var perUnitSum, allocated int64
	for _, l := range q.Lines {
		perUnitSum += l.DiscountedUnitPrice * int64(l.Quantity)
		allocated += l.DiscountedTotal
	}
	assert.Equal(t, int64(2), q.Discount)
	assert.Equal(t, int64(6), perUnitSum, "independent per-unit rounding drifts")
	assert.Equal(t, q.DiscountedSubtotal, allocated, "allocated line totals never drift")
}

func TestEmptyQuote(t *testing.T) {
	q := NewQuote(nil, true, DeliveryExpress)
	assert.Zero(t, q.Subtotal)
	assert.Zero(t, q.Tax)
	assert.Equal(t, int64(5000), q.Total)
	assert.Empty(t, q.Lines)
}

func TestDiscountedPriceRoundsHalfUp(t *testing.T) {
	assert.Equal(t, int64(8000), DiscountedPrice(10000))
	assert.Equal(t, int64(2), DiscountedPrice(3))
	assert.Equal(t, int64(1), DiscountedPrice(1))
	assert.Equal(t, int64(10), DiscountedPrice(13)) // 10.4
	assert.Equal(t, int64(12), DiscountedPrice(15)) // 12.0
}

func TestOfferPrice(t *testing.T) {
	assert.Equal(t, int64(75000), OfferPrice(100000, 25))
	assert.Equal(t, int64(100000), OfferPrice(100000, -5))
	assert.Equal(t, int64(0), OfferPrice(100000, 150))
	assert.Equal(t, int64(2), OfferPrice(3, 33)) // 2.01
}
